package repositories

import (
	"context"
	"time"

	"task-manager/api/internal/apperrors"
	"task-manager/api/internal/models"

	"github.com/gofrs/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type MongoTokenRepo struct {
	coll *mongo.Collection
}

func NewMongoTokenRepo(db *mongo.Database) *MongoTokenRepo {
	return &MongoTokenRepo{coll: db.Collection(tokensCollection)}
}

func (r *MongoTokenRepo) Create(ctx context.Context, token *models.Token) error {
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now().UTC()
	}
	_, err := r.coll.InsertOne(ctx, newTokenDocument(token))
	return mongoError("create token", err)
}

func (r *MongoTokenRepo) FindByRefreshToken(ctx context.Context, refreshToken string) (*models.Token, error) {
	var doc tokenDocument
	if err := r.coll.FindOne(ctx, bson.M{"refreshToken": refreshToken}).Decode(&doc); err != nil {
		return nil, mongoError("find token", err)
	}
	token := doc.model()
	return &token, nil
}

func (r *MongoTokenRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return mongoError("delete token", err)
	}
	if res.DeletedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *MongoTokenRepo) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	_, err := r.coll.DeleteMany(ctx, bson.M{"userId": userID.String()})
	return mongoError("delete user tokens", err)
}

func (r *MongoTokenRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"expiresAt": bson.M{"$lte": now}})
	if err != nil {
		return 0, mongoError("delete expired tokens", err)
	}
	return res.DeletedCount, nil
}
