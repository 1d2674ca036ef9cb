package repositories

import (
	"context"
	"testing"
	"time"

	"task-manager/api/internal/apperrors"
	"task-manager/api/internal/models"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func newMockMongo(t *testing.T) *mtest.T {
	return mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
}

func taskDoc(id, owner uuid.UUID, title string) bson.D {
	now := time.Now().UTC()
	return bson.D{
		{Key: "_id", Value: id.String()},
		{Key: "title", Value: title},
		{Key: "description", Value: ""},
		{Key: "status", Value: "pending"},
		{Key: "priority", Value: "medium"},
		{Key: "category", Value: "General"},
		{Key: "owner", Value: owner.String()},
		{Key: "createdAt", Value: now},
		{Key: "updatedAt", Value: now},
	}
}

func TestMongoTaskRepo(t *testing.T) {
	mt := newMockMongo(t)
	ctx := context.Background()
	owner := uuid.Must(uuid.NewV4())

	mt.Run("create sets timestamps", func(mt *mtest.T) {
		repo := NewMongoTaskRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		task := models.Task{ID: uuid.Must(uuid.NewV4()), Title: "Write docs", OwnerID: owner}
		require.NoError(t, repo.Create(ctx, &task))
		assert.False(t, task.CreatedAt.IsZero())
		assert.Equal(t, task.CreatedAt, task.UpdatedAt)
	})

	mt.Run("find by id", func(mt *mtest.T) {
		repo := NewMongoTaskRepo(mt.DB)
		id := uuid.Must(uuid.NewV4())
		ns := mt.DB.Name() + "." + tasksCollection
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, taskDoc(id, owner, "Found")))

		task, err := repo.FindByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, id, task.ID)
		assert.Equal(t, owner, task.OwnerID)
		assert.Equal(t, models.TaskStatusPending, task.Status)
		assert.False(t, task.AssignedTo.Valid)
	})

	mt.Run("find missing", func(mt *mtest.T) {
		repo := NewMongoTaskRepo(mt.DB)
		ns := mt.DB.Name() + "." + tasksCollection
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := repo.FindByID(ctx, uuid.Must(uuid.NewV4()))
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	mt.Run("list returns page and total", func(mt *mtest.T) {
		repo := NewMongoTaskRepo(mt.DB)
		ns := mt.DB.Name() + "." + tasksCollection
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{{Key: "n", Value: int32(3)}}),
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
				taskDoc(uuid.Must(uuid.NewV4()), owner, "one"),
				taskDoc(uuid.Must(uuid.NewV4()), owner, "two"),
			),
		)

		tasks, total, err := repo.List(ctx, TaskFilter{OwnerID: &owner, Limit: 2})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Len(t, tasks, 2)
	})

	mt.Run("update missing", func(mt *mtest.T) {
		repo := NewMongoTaskRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))

		task := models.Task{ID: uuid.Must(uuid.NewV4()), OwnerID: owner}
		assert.ErrorIs(t, repo.Update(ctx, &task), apperrors.ErrNotFound)
	})

	mt.Run("delete", func(mt *mtest.T) {
		repo := NewMongoTaskRepo(mt.DB)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}),
		)

		id := uuid.Must(uuid.NewV4())
		assert.NoError(t, repo.Delete(ctx, id))
		assert.ErrorIs(t, repo.Delete(ctx, id), apperrors.ErrNotFound)
	})

	mt.Run("update status", func(mt *mtest.T) {
		repo := NewMongoTaskRepo(mt.DB)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}),
		)

		id := uuid.Must(uuid.NewV4())
		require.NoError(t, repo.UpdateStatus(ctx, id, models.TaskStatusCompleted))
		update := mt.GetStartedEvent().Command.Lookup("updates").Array().Index(0).Value().Document().Lookup("u").Document()
		set := update.Lookup("$set").Document()
		assert.Equal(t, "completed", set.Lookup("status").StringValue())
		_, err := set.LookupErr("title")
		assert.Error(t, err, "only the status is written")

		assert.ErrorIs(t, repo.UpdateStatus(ctx, id, models.TaskStatusCompleted), apperrors.ErrNotFound)
	})

	mt.Run("delete by user", func(mt *mtest.T) {
		repo := NewMongoTaskRepo(mt.DB)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 2}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
		)

		require.NoError(t, repo.DeleteByUser(ctx, owner))
		assert.Equal(t, "delete", mt.GetStartedEvent().CommandName)
		unassign := mt.GetStartedEvent()
		assert.Equal(t, "update", unassign.CommandName)
		q := unassign.Command.Lookup("updates").Array().Index(0).Value().Document().Lookup("q").Document()
		assert.Equal(t, owner.String(), q.Lookup("assignedTo").StringValue())
	})

	mt.Run("stats", func(mt *mtest.T) {
		repo := NewMongoTaskRepo(mt.DB)
		ns := mt.DB.Name() + "." + tasksCollection
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{{Key: "n", Value: int32(3)}}),
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
				bson.D{{Key: "_id", Value: "pending"}, {Key: "count", Value: int32(2)}},
				bson.D{{Key: "_id", Value: "completed"}, {Key: "count", Value: int32(1)}},
			),
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
				bson.D{{Key: "_id", Value: "medium"}, {Key: "count", Value: int32(3)}},
			),
		)

		stats, err := repo.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(3), stats.Total)
		assert.Equal(t, []models.StatusCount{{Status: "pending", Count: 2}, {Status: "completed", Count: 1}}, stats.ByStatus)
		assert.Equal(t, []models.PriorityCount{{Priority: "medium", Count: 3}}, stats.ByPriority)
	})
}

func TestMongoTaskFilter(t *testing.T) {
	owner := uuid.Must(uuid.NewV4())
	f := mongoTaskFilter(TaskFilter{OwnerID: &owner, Status: models.TaskStatusCompleted, Category: "a.b", Search: "milk"})

	assert.Equal(t, owner.String(), f["owner"])
	assert.Equal(t, "completed", f["status"])
	assert.Equal(t, primitive.Regex{Pattern: `a\.b`, Options: "i"}, f["category"])
	or, ok := f["$or"].(bson.A)
	require.True(t, ok)
	assert.Len(t, or, 2)

	assert.Empty(t, mongoTaskFilter(TaskFilter{}))
}

func TestMongoUserRepo(t *testing.T) {
	mt := newMockMongo(t)
	ctx := context.Background()

	mt.Run("duplicate email", func(mt *mtest.T) {
		repo := NewMongoUserRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "E11000 duplicate key error"}))

		user := models.User{ID: uuid.Must(uuid.NewV4()), Email: "a@test.com"}
		assert.ErrorIs(t, repo.Create(ctx, &user), apperrors.ErrConflict)
	})

	mt.Run("find by email", func(mt *mtest.T) {
		repo := NewMongoUserRepo(mt.DB)
		id := uuid.Must(uuid.NewV4())
		ns := mt.DB.Name() + "." + usersCollection
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id.String()},
			{Key: "name", Value: "Ana"},
			{Key: "email", Value: "ana@test.com"},
			{Key: "password", Value: "hash"},
			{Key: "role", Value: "admin"},
			{Key: "active", Value: true},
		}))

		user, err := repo.FindByEmail(ctx, "ana@test.com")
		require.NoError(t, err)
		assert.Equal(t, id, user.ID)
		assert.True(t, user.IsAdmin())
		assert.Equal(t, "hash", user.Password)
	})

	mt.Run("list", func(mt *mtest.T) {
		repo := NewMongoUserRepo(mt.DB)
		ns := mt.DB.Name() + "." + usersCollection
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		users, err := repo.List(ctx)
		require.NoError(t, err)
		assert.NotNil(t, users)
		assert.Empty(t, users)
	})
}

func TestMongoCarAndTokenRepos(t *testing.T) {
	mt := newMockMongo(t)
	ctx := context.Background()

	mt.Run("duplicate vin", func(mt *mtest.T) {
		repo := NewMongoCarRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "E11000 duplicate key error"}))

		vin := "1HGCM82633A004352"
		car := models.Car{ID: uuid.Must(uuid.NewV4()), VIN: &vin}
		assert.ErrorIs(t, repo.Create(ctx, &car), apperrors.ErrConflict)
	})

	mt.Run("item update", func(mt *mtest.T) {
		repo := NewMongoItemRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}))

		item := models.Item{ID: uuid.Must(uuid.NewV4()), Title: "Lamp"}
		assert.NoError(t, repo.Update(ctx, &item))
		assert.False(t, item.UpdatedAt.IsZero())
	})

	mt.Run("delete expired tokens", func(mt *mtest.T) {
		repo := NewMongoTokenRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 4}))

		n, err := repo.DeleteExpired(ctx, time.Now())
		require.NoError(t, err)
		assert.Equal(t, int64(4), n)
	})

	mt.Run("delete user items and cars", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 3}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}),
		)
		user := uuid.Must(uuid.NewV4())

		require.NoError(t, NewMongoItemRepo(mt.DB).DeleteByUser(ctx, user))
		q := mt.GetStartedEvent().Command.Lookup("deletes").Array().Index(0).Value().Document().Lookup("q").Document()
		assert.Equal(t, user.String(), q.Lookup("ownerId").StringValue())

		require.NoError(t, NewMongoCarRepo(mt.DB).DeleteByUser(ctx, user))
		q = mt.GetStartedEvent().Command.Lookup("deletes").Array().Index(0).Value().Document().Lookup("q").Document()
		assert.Equal(t, user.String(), q.Lookup("createdBy").StringValue())
	})

	mt.Run("delete token once", func(mt *mtest.T) {
		repo := NewMongoTokenRepo(mt.DB)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}),
		)

		id := uuid.Must(uuid.NewV4())
		assert.NoError(t, repo.Delete(ctx, id))
		assert.ErrorIs(t, repo.Delete(ctx, id), apperrors.ErrNotFound)
	})

	mt.Run("ensure indexes", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(),
			mtest.CreateSuccessResponse(),
			mtest.CreateSuccessResponse(),
			mtest.CreateSuccessResponse(),
			mtest.CreateSuccessResponse(),
		)
		assert.NoError(t, EnsureMongoIndexes(ctx, mt.DB))
	})
}

func TestDocumentRoundTrip(t *testing.T) {
	due := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	task := models.Task{
		ID:         uuid.Must(uuid.NewV4()),
		Title:      "Roundtrip",
		Status:     models.TaskStatusInProgress,
		Priority:   models.TaskPriorityLow,
		Category:   "Work",
		DueDate:    &due,
		OwnerID:    uuid.Must(uuid.NewV4()),
		AssignedTo: uuid.NullUUID{UUID: uuid.Must(uuid.NewV4()), Valid: true},
	}
	assert.Equal(t, task, newTaskDocument(&task).model())

	vin := "ABC"
	car := models.Car{ID: uuid.Must(uuid.NewV4()), Brand: "Kia", VIN: &vin, CreatedBy: uuid.Must(uuid.NewV4())}
	assert.Equal(t, car, newCarDocument(&car).model())
}
