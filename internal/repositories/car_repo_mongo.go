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

type MongoCarRepo struct {
	coll *mongo.Collection
}

func NewMongoCarRepo(db *mongo.Database) *MongoCarRepo {
	return &MongoCarRepo{coll: db.Collection(carsCollection)}
}

func (r *MongoCarRepo) Create(ctx context.Context, car *models.Car) error {
	now := time.Now().UTC()
	if car.CreatedAt.IsZero() {
		car.CreatedAt = now
	}
	car.UpdatedAt = now
	_, err := r.coll.InsertOne(ctx, newCarDocument(car))
	return mongoError("create car", err)
}

func (r *MongoCarRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Car, error) {
	var doc carDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc); err != nil {
		return nil, mongoError("find car", err)
	}
	car := doc.model()
	return &car, nil
}

func (r *MongoCarRepo) List(ctx context.Context) ([]models.Car, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}})
	cur, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, mongoError("list cars", err)
	}
	var docs []carDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, mongoError("decode cars", err)
	}
	cars := make([]models.Car, 0, len(docs))
	for _, d := range docs {
		cars = append(cars, d.model())
	}
	return cars, nil
}

func (r *MongoCarRepo) Update(ctx context.Context, car *models.Car) error {
	car.UpdatedAt = time.Now().UTC()
	doc := newCarDocument(car)
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc)
	if err != nil {
		return mongoError("update car", err)
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *MongoCarRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return mongoError("delete car", err)
	}
	if res.DeletedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *MongoCarRepo) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	_, err := r.coll.DeleteMany(ctx, bson.M{"createdBy": userID.String()})
	return mongoError("delete user cars", err)
}
