package catalog

import (
	"context"
	"sync"
	"testing"
	"time"

	"mongolens-be/internal/apperr"
	"mongolens-be/internal/pkg/logger"
	"mongolens-be/pkg/mongodb/schema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type fakeDB struct {
	mu    sync.Mutex
	names []string
	calls int
	gate  chan struct{}
}

func (f *fakeDB) ListCollectionNames(ctx context.Context, filter interface{}, opts ...*options.ListCollectionsOptions) ([]string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.gate != nil {
		<-f.gate
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]string(nil), f.names...), nil
}

func (f *fakeDB) Collection(name string, opts ...*options.CollectionOptions) *mongo.Collection {
	return nil
}

func (f *fakeDB) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newCatalog(db Database) *Catalog {
	c := New(time.Minute, 20, logger.NewNopLogger())
	if db != nil {
		c.SetDatabase(db)
	}
	return c
}

func TestListCollectionsWithoutActiveDatabase(t *testing.T) {
	c := newCatalog(nil)

	_, err := c.ListCollections(context.Background())

	assert.ErrorIs(t, err, apperr.ErrNoActiveDatabase)
}

func TestListCollectionsServedFromCacheWithinTTL(t *testing.T) {
	db := &fakeDB{names: []string{"orders", "users"}}
	c := newCatalog(db)

	first, err := c.ListCollections(context.Background())
	require.NoError(t, err)
	second, err := c.ListCollections(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"orders", "users"}, first)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, db.callCount(), "a call within the TTL must not touch the store")
}

func TestListCollectionsConcurrentCallsCollapse(t *testing.T) {
	db := &fakeDB{names: []string{"orders"}, gate: make(chan struct{})}
	c := newCatalog(db)

	const callers = 8
	var wg sync.WaitGroup
	results := make([][]string, callers)
	errs := make([]error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = c.ListCollections(context.Background())
		}(i)
	}

	// Give every caller time to reach the in-flight fetch, then release it.
	time.Sleep(50 * time.Millisecond)
	close(db.gate)
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, []string{"orders"}, results[i])
	}
	assert.Equal(t, 1, db.callCount(), "concurrent callers must share one underlying listing call")
}

func TestListCollectionsSurvivesInitiatorCancellation(t *testing.T) {
	db := &fakeDB{names: []string{"orders"}, gate: make(chan struct{})}
	c := newCatalog(db)

	initiatorCtx, cancel := context.WithCancel(context.Background())
	initiatorDone := make(chan struct{})
	go func() {
		defer close(initiatorDone)
		_, _ = c.ListCollections(initiatorCtx)
	}()

	// Let the initiator own the in-flight fetch, then join it.
	time.Sleep(20 * time.Millisecond)
	sharerDone := make(chan error, 1)
	var names []string
	go func() {
		var err error
		names, err = c.ListCollections(context.Background())
		sharerDone <- err
	}()
	time.Sleep(20 * time.Millisecond)

	// Cancelling the initiator must not poison the shared fetch.
	cancel()
	close(db.gate)
	<-initiatorDone

	require.NoError(t, <-sharerDone)
	assert.Equal(t, []string{"orders"}, names)
	assert.Equal(t, 1, db.callCount())
}

func TestClearDropsCacheAndDatabase(t *testing.T) {
	db := &fakeDB{names: []string{"orders"}}
	c := newCatalog(db)

	_, err := c.ListCollections(context.Background())
	require.NoError(t, err)

	c.Clear()

	_, err = c.ListCollections(context.Background())
	assert.ErrorIs(t, err, apperr.ErrNoActiveDatabase, "cached entries must not survive a disconnect")
}

func TestSetDatabaseInvalidatesPreviousCache(t *testing.T) {
	first := &fakeDB{names: []string{"orders"}}
	second := &fakeDB{names: []string{"events"}}
	c := newCatalog(first)

	names, err := c.ListCollections(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"orders"}, names)

	c.SetDatabase(second)

	names, err = c.ListCollections(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"events"}, names, "a swapped database must never serve the old listing")
}

func TestSchemaCachedPerCollection(t *testing.T) {
	c := newCatalog(&fakeDB{})

	calls := map[string]int{}
	c.fetchSchema = func(ctx context.Context, db Database, collection string) (*SchemaResult, error) {
		calls[collection]++
		return &SchemaResult{
			Schema:  schema.Map{"_id": {"ObjectId"}},
			Samples: []bson.M{{"_id": 1}},
		}, nil
	}

	for i := 0; i < 3; i++ {
		res, err := c.Schema(context.Background(), "orders")
		require.NoError(t, err)
		assert.Equal(t, []string{"ObjectId"}, res.Schema["_id"])
	}
	_, err := c.Schema(context.Background(), "users")
	require.NoError(t, err)

	assert.Equal(t, 1, calls["orders"], "schema fetch within the TTL must hit the cache")
	assert.Equal(t, 1, calls["users"])
}

func TestSchemaWithoutActiveDatabase(t *testing.T) {
	c := newCatalog(nil)

	_, err := c.Schema(context.Background(), "orders")

	assert.ErrorIs(t, err, apperr.ErrNoActiveDatabase)
}
