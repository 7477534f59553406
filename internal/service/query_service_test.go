package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"mongolens-be/internal/apperr"
	"mongolens-be/internal/dto"
	"mongolens-be/internal/pkg/logger"
	"mongolens-be/pkg/attempt"
	"mongolens-be/pkg/mongodb/catalog"
	"mongolens-be/pkg/mongodb/query"
	"mongolens-be/pkg/mongodb/schema"
)

func newQueryFixture(cat *fakeCatalog) (*queryService, *attempt.Registry) {
	attempts := attempt.NewRegistry("query", logger.NewNopLogger())
	compiler := query.NewCompiler(logger.NewNopLogger())
	svc := NewQueryService(cat, compiler, attempts, logger.NewNopLogger()).(*queryService)
	return svc, attempts
}

func usersCatalog() *fakeCatalog {
	return &fakeCatalog{
		names: []string{"orders", "users"},
		schema: &catalog.SchemaResult{
			Schema: schema.Map{
				"_id":    {"ObjectId"},
				"name":   {"string"},
				"age":    {"int"},
				"joined": {"Date"},
			},
			Samples: []bson.M{{"name": "ada"}},
		},
	}
}

func TestQueryService_ListCollections(t *testing.T) {
	t.Run("returns the catalog listing", func(t *testing.T) {
		svc, _ := newQueryFixture(usersCatalog())

		resp, err := svc.ListCollections(context.Background())

		require.NoError(t, err)
		assert.Equal(t, []string{"orders", "users"}, resp.Collections)
	})

	t.Run("no active database", func(t *testing.T) {
		svc, _ := newQueryFixture(&fakeCatalog{err: apperr.ErrNoActiveDatabase})

		_, err := svc.ListCollections(context.Background())

		assert.ErrorIs(t, err, apperr.ErrNoActiveDatabase)
	})
}

func TestQueryService_GetDocuments(t *testing.T) {
	t.Run("compiles a paginated find and returns documents", func(t *testing.T) {
		svc, attempts := newQueryFixture(usersCatalog())
		var captured *query.Plan
		svc.execute = func(ctx context.Context, coll *mongo.Collection, plan *query.Plan) ([]bson.M, int64, error) {
			captured = plan
			return []bson.M{{"name": "ada"}, {"name": "grace"}}, 2, nil
		}

		resp, err := svc.GetDocuments(context.Background(), &dto.DocumentsRequest{
			QueryId:    "q1",
			Collection: "users",
			Skip:       10,
			Limit:      25,
			Params:     query.Params{Query: `{"name": "ada"}`},
		})

		require.NoError(t, err)
		assert.Len(t, resp.Documents, 2)
		require.NotNil(t, captured)
		assert.Equal(t, query.ModeFind, captured.Mode)
		assert.Equal(t, int64(10), *captured.FindOptions.Skip)
		assert.Equal(t, int64(25), *captured.FindOptions.Limit)
		assert.Zero(t, attempts.Len())
	})

	t.Run("coerces against the collection schema before executing", func(t *testing.T) {
		svc, _ := newQueryFixture(usersCatalog())
		var captured *query.Plan
		svc.execute = func(ctx context.Context, coll *mongo.Collection, plan *query.Plan) ([]bson.M, int64, error) {
			captured = plan
			return nil, 0, nil
		}

		_, err := svc.GetDocuments(context.Background(), &dto.DocumentsRequest{
			Collection: "users",
			Limit:      1,
			Params:     query.Params{Query: `{"joined": {"$gte": "2024-01-01T00:00:00Z"}}`},
		})

		require.NoError(t, err)
		cond := captured.Filter[0].Value.(bson.D)
		_, ok := cond[0].Value.(interface{ Time() time.Time })
		assert.True(t, ok, "ISO string under a Date field should compile to a BSON date")
	})

	t.Run("schema warnings travel with the result", func(t *testing.T) {
		svc, _ := newQueryFixture(usersCatalog())
		svc.execute = func(ctx context.Context, coll *mongo.Collection, plan *query.Plan) ([]bson.M, int64, error) {
			return []bson.M{}, 0, nil
		}

		resp, err := svc.GetDocuments(context.Background(), &dto.DocumentsRequest{
			Collection: "users",
			Limit:      5,
			Params:     query.Params{Query: `{"ghost": 1}`},
		})

		require.NoError(t, err)
		require.Len(t, resp.Warnings, 1)
		assert.Contains(t, resp.Warnings[0], "ghost")
	})

	t.Run("malformed fragment fails before execution", func(t *testing.T) {
		svc, _ := newQueryFixture(usersCatalog())
		executed := false
		svc.execute = func(ctx context.Context, coll *mongo.Collection, plan *query.Plan) ([]bson.M, int64, error) {
			executed = true
			return nil, 0, nil
		}

		_, err := svc.GetDocuments(context.Background(), &dto.DocumentsRequest{
			Collection: "users",
			Limit:      5,
			Params:     query.Params{Query: `{"name":`},
		})

		require.Error(t, err)
		assert.True(t, apperr.IsQueryParse(err))
		assert.False(t, executed)
	})
}

func TestQueryService_GetAllDocuments(t *testing.T) {
	svc, _ := newQueryFixture(usersCatalog())
	var captured *query.Plan
	svc.execute = func(ctx context.Context, coll *mongo.Collection, plan *query.Plan) ([]bson.M, int64, error) {
		captured = plan
		return []bson.M{{"name": "ada"}}, 1, nil
	}

	resp, err := svc.GetAllDocuments(context.Background(), &dto.AllDocumentsRequest{
		Collection: "users",
		Params:     query.Params{Sort: `{"name": 1}`},
	})

	require.NoError(t, err)
	assert.Len(t, resp.Documents, 1)
	require.NotNil(t, captured)
	assert.Nil(t, captured.FindOptions.Skip)
	assert.Nil(t, captured.FindOptions.Limit)
}

func TestQueryService_GetDocumentCount(t *testing.T) {
	svc, _ := newQueryFixture(usersCatalog())
	var captured *query.Plan
	svc.execute = func(ctx context.Context, coll *mongo.Collection, plan *query.Plan) ([]bson.M, int64, error) {
		captured = plan
		return nil, 42, nil
	}

	resp, err := svc.GetDocumentCount(context.Background(), &dto.CountRequest{
		Collection: "users",
		Params: query.Params{
			Query:  `{"name": "ada"}`,
			Filter: `{"age": {"$gt": 30}}`,
			Sort:   `{"name": 1}`,
		},
	})

	require.NoError(t, err)
	assert.Equal(t, int64(42), resp.Count)
	require.NotNil(t, captured)
	assert.Equal(t, query.ModeCount, captured.Mode)
	assert.Nil(t, captured.Pipeline)
	assert.Len(t, captured.Filter, 2)
}

func TestQueryService_GetSchemaAndSamples(t *testing.T) {
	svc, _ := newQueryFixture(usersCatalog())

	resp, err := svc.GetSchemaAndSamples(context.Background(), "users")

	require.NoError(t, err)
	assert.Equal(t, []string{"ObjectId"}, resp.SchemaMap["_id"])
	assert.Len(t, resp.SampleDocuments, 1)
}

func TestQueryService_CancelQuery(t *testing.T) {
	t.Run("unknown query id", func(t *testing.T) {
		svc, _ := newQueryFixture(usersCatalog())

		assert.False(t, svc.CancelQuery("nope"))
	})

	t.Run("cancel aborts an in-flight read", func(t *testing.T) {
		svc, attempts := newQueryFixture(usersCatalog())
		svc.execute = func(ctx context.Context, coll *mongo.Collection, plan *query.Plan) ([]bson.M, int64, error) {
			<-ctx.Done()
			return nil, 0, ctx.Err()
		}

		done := make(chan error, 1)
		go func() {
			_, err := svc.GetDocuments(context.Background(), &dto.DocumentsRequest{
				QueryId:    "q1",
				Collection: "users",
				Limit:      5,
			})
			done <- err
		}()

		for attempts.Len() == 0 {
			time.Sleep(time.Millisecond)
		}
		assert.True(t, svc.CancelQuery("q1"))

		err := <-done
		require.Error(t, err)
		assert.True(t, apperr.IsAbort(err))
	})
}
