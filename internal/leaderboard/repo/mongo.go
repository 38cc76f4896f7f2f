package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/radieske/pool-leaderboard/internal/leaderboard/model"
)

// Collection padrão dos snapshots
const Collection = "leaderboards"

type entryDocument struct {
	UserID      int64  `bson:"userId"`
	Username    string `bson:"username"`
	Email       string `bson:"email"`
	Points      int    `bson:"points"`
	Predictions int    `bson:"predictions"`
	Position    int    `bson:"position"`
}

type snapshotDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	PoolID    int64              `bson:"poolId"`
	Positions []entryDocument    `bson:"positions"`
	UpdatedAt time.Time          `bson:"updated_at"`
	CreatedAt time.Time          `bson:"created_at"`
}

// MongoRepository guarda um documento de leaderboard por pool.
// O índice único em poolId garante o singleton mesmo com upserts concorrentes.
type MongoRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewMongoRepository(coll *mongo.Collection) *MongoRepository {
	return &MongoRepository{coll: coll, now: time.Now}
}

// EnsureIndexes cria o índice único por pool. Rodar no startup.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "poolId", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_pool"),
	})
	if err != nil {
		return model.Upstream("create leaderboard index", err)
	}
	return nil
}

// Upsert troca o array inteiro de posições numa única operação atômica.
// Se o documento já existe, _id e created_at são preservados.
func (r *MongoRepository) Upsert(ctx context.Context, poolID int64, entries []model.Entry) (*model.Snapshot, error) {
	now := r.now().UTC().Truncate(time.Millisecond)
	filter := bson.D{{Key: "poolId", Value: poolID}}
	update := bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "positions", Value: toEntryDocuments(entries)},
			{Key: "updated_at", Value: now},
		}},
		{Key: "$setOnInsert", Value: bson.D{
			{Key: "created_at", Value: now},
		}},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var doc snapshotDocument
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if mongo.IsDuplicateKeyError(err) {
		// outro writer inseriu primeiro; agora o filtro encontra o documento
		err = r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	}
	if err != nil {
		return nil, model.Upstream(fmt.Sprintf("upsert leaderboard for pool %d", poolID), err)
	}
	return doc.toModel(), nil
}

func (r *MongoRepository) GetByPool(ctx context.Context, poolID int64) (*model.Snapshot, error) {
	return r.findOne(ctx, bson.D{{Key: "poolId", Value: poolID}}, fmt.Sprintf("leaderboard for pool %d", poolID))
}

func (r *MongoRepository) GetByID(ctx context.Context, id string) (*model.Snapshot, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, model.NotFound("leaderboard %q", id)
	}
	return r.findOne(ctx, bson.D{{Key: "_id", Value: oid}}, fmt.Sprintf("leaderboard %s", id))
}

// List devolve todos os snapshots, ordenados por pool
func (r *MongoRepository) List(ctx context.Context) ([]model.Snapshot, error) {
	cur, err := r.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "poolId", Value: 1}}))
	if err != nil {
		return nil, model.Upstream("list leaderboards", err)
	}
	defer cur.Close(ctx)

	var out []model.Snapshot
	for cur.Next(ctx) {
		var doc snapshotDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, model.Upstream("decode leaderboard", err)
		}
		out = append(out, *doc.toModel())
	}
	if err := cur.Err(); err != nil {
		return nil, model.Upstream("list leaderboards", err)
	}
	return out, nil
}

func (r *MongoRepository) Remove(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return model.NotFound("leaderboard %q", id)
	}
	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return model.Upstream(fmt.Sprintf("remove leaderboard %s", id), err)
	}
	if res.DeletedCount == 0 {
		return model.NotFound("leaderboard %s", id)
	}
	return nil
}

func (r *MongoRepository) findOne(ctx context.Context, filter bson.D, what string) (*model.Snapshot, error) {
	var doc snapshotDocument
	err := r.coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, model.NotFound("%s", what)
	}
	if err != nil {
		return nil, model.Upstream("find "+what, err)
	}
	return doc.toModel(), nil
}

func toEntryDocuments(entries []model.Entry) []entryDocument {
	out := make([]entryDocument, len(entries))
	for i, e := range entries {
		out[i] = entryDocument(e)
	}
	return out
}

func (d snapshotDocument) toModel() *model.Snapshot {
	positions := make([]model.Entry, len(d.Positions))
	for i, e := range d.Positions {
		positions[i] = model.Entry(e)
	}
	return &model.Snapshot{
		ID:        d.ID.Hex(),
		PoolID:    d.PoolID,
		Positions: positions,
		UpdatedAt: d.UpdatedAt,
		CreatedAt: d.CreatedAt,
	}
}
