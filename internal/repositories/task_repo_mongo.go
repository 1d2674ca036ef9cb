package repositories

import (
	"context"
	"regexp"
	"time"

	"task-manager/api/internal/apperrors"
	"task-manager/api/internal/models"

	"github.com/gofrs/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoTaskRepo struct {
	coll *mongo.Collection
}

func NewMongoTaskRepo(db *mongo.Database) *MongoTaskRepo {
	return &MongoTaskRepo{coll: db.Collection(tasksCollection)}
}

func (r *MongoTaskRepo) Create(ctx context.Context, task *models.Task) error {
	now := time.Now().UTC()
	if task.CreatedAt.IsZero() {
		task.CreatedAt = now
	}
	task.UpdatedAt = now
	_, err := r.coll.InsertOne(ctx, newTaskDocument(task))
	return mongoError("create task", err)
}

func (r *MongoTaskRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	var doc taskDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc); err != nil {
		return nil, mongoError("find task", err)
	}
	task := doc.model()
	return &task, nil
}

func mongoTaskFilter(f TaskFilter) bson.M {
	filter := bson.M{}
	if f.OwnerID != nil {
		filter["owner"] = f.OwnerID.String()
	}
	if f.Status != "" {
		filter["status"] = string(f.Status)
	}
	if f.Priority != "" {
		filter["priority"] = string(f.Priority)
	}
	if f.Category != "" {
		filter["category"] = primitive.Regex{Pattern: regexp.QuoteMeta(f.Category), Options: "i"}
	}
	if f.Search != "" {
		rx := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		filter["$or"] = bson.A{bson.M{"title": rx}, bson.M{"description": rx}}
	}
	return filter
}

func (r *MongoTaskRepo) List(ctx context.Context, filter TaskFilter) ([]models.Task, int64, error) {
	f := filter.Normalize()
	query := mongoTaskFilter(f)

	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, mongoError("count tasks", err)
	}

	dir := -1
	if f.SortOrder == "asc" {
		dir = 1
	}
	opts := options.Find().
		SetSort(bson.D{{Key: f.sort().bson, Value: dir}, {Key: "_id", Value: 1}}).
		SetSkip(int64(f.offset())).
		SetLimit(int64(f.Limit))

	cur, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, mongoError("list tasks", err)
	}
	var docs []taskDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, mongoError("decode tasks", err)
	}
	tasks := make([]models.Task, 0, len(docs))
	for _, d := range docs {
		tasks = append(tasks, d.model())
	}
	return tasks, total, nil
}

func (r *MongoTaskRepo) Update(ctx context.Context, task *models.Task) error {
	task.UpdatedAt = time.Now().UTC()
	doc := newTaskDocument(task)
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc)
	if err != nil {
		return mongoError("update task", err)
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *MongoTaskRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status models.TaskStatus) error {
	update := bson.M{"$set": bson.M{"status": string(status), "updatedAt": time.Now().UTC()}}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id.String()}, update)
	if err != nil {
		return mongoError("update task status", err)
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *MongoTaskRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return mongoError("delete task", err)
	}
	if res.DeletedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *MongoTaskRepo) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	if _, err := r.coll.DeleteMany(ctx, bson.M{"owner": userID.String()}); err != nil {
		return mongoError("delete user tasks", err)
	}
	update := bson.M{
		"$unset": bson.M{"assignedTo": ""},
		"$set":   bson.M{"updatedAt": time.Now().UTC()},
	}
	_, err := r.coll.UpdateMany(ctx, bson.M{"assignedTo": userID.String()}, update)
	return mongoError("unassign user tasks", err)
}

type groupCount struct {
	Key   string `bson:"_id"`
	Count int64  `bson:"count"`
}

func (r *MongoTaskRepo) groupBy(ctx context.Context, field string) ([]groupCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$" + field},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}}}},
	}
	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	var out []groupCount
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *MongoTaskRepo) Stats(ctx context.Context) (*models.TaskStats, error) {
	stats := &models.TaskStats{
		ByStatus:   []models.StatusCount{},
		ByPriority: []models.PriorityCount{},
	}

	total, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, mongoError("count tasks", err)
	}
	stats.Total = total

	byStatus, err := r.groupBy(ctx, "status")
	if err != nil {
		return nil, mongoError("task stats by status", err)
	}
	for _, g := range byStatus {
		stats.ByStatus = append(stats.ByStatus, models.StatusCount{Status: models.TaskStatus(g.Key), Count: g.Count})
	}

	byPriority, err := r.groupBy(ctx, "priority")
	if err != nil {
		return nil, mongoError("task stats by priority", err)
	}
	for _, g := range byPriority {
		stats.ByPriority = append(stats.ByPriority, models.PriorityCount{Priority: models.TaskPriority(g.Key), Count: g.Count})
	}
	return stats, nil
}
