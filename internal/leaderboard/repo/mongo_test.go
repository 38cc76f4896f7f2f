package repo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/radieske/pool-leaderboard/internal/leaderboard/model"
)

var (
	created = time.Date(2026, 6, 11, 18, 0, 0, 0, time.UTC)
	updated = time.Date(2026, 6, 14, 21, 30, 0, 0, time.UTC)
)

func snapshotDoc(id primitive.ObjectID, poolID int64) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "poolId", Value: poolID},
		{Key: "positions", Value: bson.A{
			bson.D{
				{Key: "userId", Value: int64(1)},
				{Key: "username", Value: "Ana"},
				{Key: "email", Value: "ana@example.com"},
				{Key: "points", Value: 3},
				{Key: "predictions", Value: 1},
				{Key: "position", Value: 1},
			},
		}},
		{Key: "updated_at", Value: updated},
		{Key: "created_at", Value: created},
	}
}

func newRepo(mt *mtest.T) *MongoRepository {
	r := NewMongoRepository(mt.Coll)
	r.now = func() time.Time { return updated }
	return r
}

func TestMongoRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("upsert returns the stored document", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: snapshotDoc(id, 7)}))

		snap, err := newRepo(mt).Upsert(context.Background(), 7, []model.Entry{
			{UserID: 1, Username: "Ana", Email: "ana@example.com", Points: 3, Predictions: 1, Position: 1},
		})
		require.NoError(mt, err)

		assert.Equal(mt, id.Hex(), snap.ID)
		assert.Equal(mt, int64(7), snap.PoolID)
		assert.Equal(mt, created, snap.CreatedAt)
		assert.Equal(mt, updated, snap.UpdatedAt)
		require.Len(mt, snap.Positions, 1)
		assert.Equal(mt, "Ana", snap.Positions[0].Username)

		cmd := mt.GetStartedEvent().Command
		assert.Equal(mt, true, cmd.Lookup("upsert").Boolean())
		set := cmd.Lookup("update", "$set").Document()
		assert.NotNil(mt, set.Lookup("positions"))
		onInsert := cmd.Lookup("update", "$setOnInsert").Document()
		assert.Equal(mt, updated, onInsert.Lookup("created_at").Time().UTC())
	})

	mt.Run("upsert retries once after a duplicate key race", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(
			mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 11000, Name: "DuplicateKey", Message: "E11000 duplicate key error"}),
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: snapshotDoc(id, 7)}),
		)

		snap, err := newRepo(mt).Upsert(context.Background(), 7, nil)
		require.NoError(mt, err)
		assert.Equal(mt, id.Hex(), snap.ID)
	})

	mt.Run("upsert failure is upstream", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 91, Name: "ShutdownInProgress", Message: "shutting down"}))

		_, err := newRepo(mt).Upsert(context.Background(), 7, nil)
		require.Error(mt, err)
		assert.ErrorIs(mt, err, model.ErrUpstreamUnavailable)
	})

	mt.Run("get by pool not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "pool.leaderboards", mtest.FirstBatch))

		_, err := newRepo(mt).GetByPool(context.Background(), 42)
		assert.ErrorIs(mt, err, model.ErrNotFound)
	})

	mt.Run("get by id", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "pool.leaderboards", mtest.FirstBatch, snapshotDoc(id, 3)))

		snap, err := newRepo(mt).GetByID(context.Background(), id.Hex())
		require.NoError(mt, err)
		assert.Equal(mt, int64(3), snap.PoolID)
	})

	mt.Run("get by malformed id is not found", func(mt *mtest.T) {
		_, err := newRepo(mt).GetByID(context.Background(), "not-an-object-id")
		assert.ErrorIs(mt, err, model.ErrNotFound)
	})

	mt.Run("list", func(mt *mtest.T) {
		a, b := primitive.NewObjectID(), primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "pool.leaderboards", mtest.FirstBatch, snapshotDoc(a, 1), snapshotDoc(b, 2)))

		list, err := newRepo(mt).List(context.Background())
		require.NoError(mt, err)
		require.Len(mt, list, 2)
		assert.Equal(mt, a.Hex(), list[0].ID)
		assert.Equal(mt, int64(2), list[1].PoolID)
	})

	mt.Run("remove missing document", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		err := newRepo(mt).Remove(context.Background(), primitive.NewObjectID().Hex())
		assert.ErrorIs(mt, err, model.ErrNotFound)
	})

	mt.Run("remove", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		err := newRepo(mt).Remove(context.Background(), primitive.NewObjectID().Hex())
		assert.NoError(mt, err)
	})
}
