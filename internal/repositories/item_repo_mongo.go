package repositories

import (
	"context"
	"time"

	"task-manager/api/internal/apperrors"
	"task-manager/api/internal/models"

	"github.com/gofrs/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoItemRepo struct {
	coll *mongo.Collection
}

func NewMongoItemRepo(db *mongo.Database) *MongoItemRepo {
	return &MongoItemRepo{coll: db.Collection(itemsCollection)}
}

func (r *MongoItemRepo) Create(ctx context.Context, item *models.Item) error {
	now := time.Now().UTC()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now
	_, err := r.coll.InsertOne(ctx, newItemDocument(item))
	return mongoError("create item", err)
}

func (r *MongoItemRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	var doc itemDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc); err != nil {
		return nil, mongoError("find item", err)
	}
	item := doc.model()
	return &item, nil
}

func (r *MongoItemRepo) List(ctx context.Context) ([]models.Item, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}})
	cur, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, mongoError("list items", err)
	}
	var docs []itemDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, mongoError("decode items", err)
	}
	items := make([]models.Item, 0, len(docs))
	for _, d := range docs {
		items = append(items, d.model())
	}
	return items, nil
}

func (r *MongoItemRepo) Update(ctx context.Context, item *models.Item) error {
	item.UpdatedAt = time.Now().UTC()
	doc := newItemDocument(item)
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc)
	if err != nil {
		return mongoError("update item", err)
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *MongoItemRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return mongoError("delete item", err)
	}
	if res.DeletedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *MongoItemRepo) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	_, err := r.coll.DeleteMany(ctx, bson.M{"ownerId": userID.String()})
	return mongoError("delete user items", err)
}
