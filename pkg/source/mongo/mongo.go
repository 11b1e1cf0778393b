// Package mongo loads rosters from a MongoDB collection.
//
// Each document holds one badge with the same field names as the JSON roster
// format (number, primary, secondary, background, background_color, ...).
// Documents are returned sorted by number.
package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/osumercury/badgemaker/pkg/badge"
	"github.com/osumercury/badgemaker/pkg/errors"
	bio "github.com/osumercury/badgemaker/pkg/io"
	"github.com/osumercury/badgemaker/pkg/source"
)

// ConnectTimeout bounds Connect's initial ping.
const ConnectTimeout = 10 * time.Second

// Connect opens a client for uri and pings the primary.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "connect to MongoDB")
	}
	pingCtx, cancel := context.WithTimeout(ctx, ConnectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeIO, err, "ping MongoDB")
	}
	return client, nil
}

// Source reads every document of a collection.
type Source struct {
	coll   *mongo.Collection
	opts   bio.ReadOptions
	filter bson.M
}

// Option configures a Source.
type Option func(*Source)

// WithFilter restricts the documents loaded.
func WithFilter(filter bson.M) Option {
	return func(s *Source) { s.filter = filter }
}

// WithReadOptions sets the size, image cache and logger used to build badges.
// Relative background paths resolve against opts.Dir.
func WithReadOptions(opts bio.ReadOptions) Option {
	return func(s *Source) { s.opts = opts }
}

// New creates a source for db.collection on client.
func New(client *mongo.Client, db, collection string, opts ...Option) *Source {
	s := &Source{
		coll:   client.Database(db).Collection(collection),
		filter: bson.M{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load fetches the roster sorted by number.
func (s *Source) Load(ctx context.Context) ([]*badge.Badge, error) {
	find := options.Find().SetSort(bson.D{{Key: "number", Value: 1}})
	cur, err := s.coll.Find(ctx, s.filter, find)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "query %s", s.coll.Name())
	}
	defer cur.Close(ctx)

	var recs []bio.Record
	if err := cur.All(ctx, &recs); err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "read %s", s.coll.Name())
	}
	return bio.Badges(ctx, recs, s.opts), nil
}

var _ source.Source = (*Source)(nil)
