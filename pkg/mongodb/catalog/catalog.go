package catalog

import (
	"context"
	"sort"
	"sync"
	"time"

	"mongolens-be/internal/apperr"
	"mongolens-be/internal/pkg/logger"
	"mongolens-be/pkg/mongodb/schema"

	"github.com/patrickmn/go-cache"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"golang.org/x/sync/singleflight"
)

const collectionsKey = "collections"

// Database is the slice of *mongo.Database the catalog needs.
type Database interface {
	ListCollectionNames(ctx context.Context, filter interface{}, opts ...*options.ListCollectionsOptions) ([]string, error)
	Collection(name string, opts ...*options.CollectionOptions) *mongo.Collection
}

// SchemaResult pairs an inferred schema with the sample documents it was
// derived from.
type SchemaResult struct {
	Schema  schema.Map `json:"schemaMap"`
	Samples []bson.M   `json:"sampleDocuments"`
}

// Catalog owns the active database slot and the time-boxed caches in front
// of it: the collection listing (with single-flight de-duplication) and the
// per-collection schemas. Swapping or clearing the database flushes both.
type Catalog struct {
	mu     sync.RWMutex
	db     Database
	cache  *cache.Cache
	flight singleflight.Group
	log    logger.ILogger

	sampleSize  int
	inferrer    *schema.Inferrer
	fetchSchema func(ctx context.Context, db Database, collection string) (*SchemaResult, error)
}

func New(ttl time.Duration, sampleSize int, log logger.ILogger) *Catalog {
	c := &Catalog{
		cache:      cache.New(ttl, 2*ttl),
		log:        log,
		sampleSize: sampleSize,
		inferrer:   schema.NewInferrer(),
	}
	c.fetchSchema = c.inferSchema
	return c
}

// SetDatabase installs the active database and drops every cached entry so
// nothing from the previous database stays visible.
func (c *Catalog) SetDatabase(db Database) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.db = db
	c.cache.Flush()
}

// Clear removes the active database. Part of disconnect and session swap.
func (c *Catalog) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.db = nil
	c.cache.Flush()
}

func (c *Catalog) database() (Database, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.db == nil {
		return nil, apperr.ErrNoActiveDatabase
	}
	return c.db, nil
}

// Collection resolves a collection handle on the active database with the
// requested read preference applied.
func (c *Catalog) Collection(name string, rp *readpref.ReadPref) (*mongo.Collection, error) {
	db, err := c.database()
	if err != nil {
		return nil, err
	}
	opts := options.Collection()
	if rp != nil {
		opts.SetReadPreference(rp)
	}
	return db.Collection(name, opts), nil
}

// ListCollections returns the collection names of the active database. A
// fresh cached value is served without touching the store; concurrent
// callers past the TTL share one underlying listing call.
func (c *Catalog) ListCollections(ctx context.Context) ([]string, error) {
	if v, ok := c.cache.Get(collectionsKey); ok {
		return v.([]string), nil
	}

	// The fetch is shared by every concurrent caller, so it must not die
	// with whichever one happened to initiate it.
	fetchCtx := context.WithoutCancel(ctx)
	v, err, _ := c.flight.Do(collectionsKey, func() (interface{}, error) {
		db, err := c.database()
		if err != nil {
			return nil, err
		}
		names, err := db.ListCollectionNames(fetchCtx, bson.D{})
		if err != nil {
			return nil, err
		}
		sort.Strings(names)
		c.cache.Set(collectionsKey, names, cache.DefaultExpiration)
		return names, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]string), nil
}

// Schema returns the inferred schema and sample documents of a collection,
// cached per collection name under the same TTL as the listing.
func (c *Catalog) Schema(ctx context.Context, collection string) (*SchemaResult, error) {
	key := "schema:" + collection
	if v, ok := c.cache.Get(key); ok {
		return v.(*SchemaResult), nil
	}

	db, err := c.database()
	if err != nil {
		return nil, err
	}
	res, err := c.fetchSchema(ctx, db, collection)
	if err != nil {
		return nil, err
	}
	c.cache.Set(key, res, cache.DefaultExpiration)
	return res, nil
}

func (c *Catalog) inferSchema(ctx context.Context, db Database, collection string) (*SchemaResult, error) {
	m, samples, err := c.inferrer.Infer(ctx, db.Collection(collection), c.sampleSize)
	if err != nil {
		return nil, err
	}
	c.log.Debug("catalog", "schema inferred", map[string]interface{}{
		"collection": collection,
		"fields":     len(m),
		"samples":    len(samples),
	})
	return &SchemaResult{Schema: m, Samples: samples}, nil
}
