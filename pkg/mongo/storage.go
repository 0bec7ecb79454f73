package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dmitrymomot/paywall/pkg/kv"
)

type record struct {
	Key       string    `bson:"_id"`
	Value     string    `bson:"value"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// Storage keeps one document per key. Multi-document transactions need a
// replica set, so Storage does not implement kv.Batch and kv.SetAll falls back
// to ordered writes.
type Storage struct {
	coll *mongo.Collection
}

var _ kv.Storage = (*Storage)(nil)

// NewStorage panics if coll is nil.
func NewStorage(coll *mongo.Collection) *Storage {
	if coll == nil {
		panic("mongo: collection is required")
	}
	return &Storage{coll: coll}
}

func (s *Storage) Get(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", kv.ErrEmptyKey
	}
	var rec record
	err := s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: key}}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", kv.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return rec.Value, nil
}

func (s *Storage) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return kv.ErrEmptyKey
	}
	_, err := s.coll.ReplaceOne(ctx,
		bson.D{{Key: "_id", Value: key}},
		record{Key: key, Value: value, UpdatedAt: time.Now().UTC()},
		options.Replace().SetUpsert(true),
	)
	return err
}

func (s *Storage) Delete(ctx context.Context, key string) error {
	if key == "" {
		return kv.ErrEmptyKey
	}
	_, err := s.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: key}})
	return err
}

// Close disconnects the client owning the collection.
func (s *Storage) Close(ctx context.Context) error {
	return s.coll.Database().Client().Disconnect(ctx)
}
