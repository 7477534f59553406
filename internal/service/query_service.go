package service

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"mongolens-be/internal/apperr"
	"mongolens-be/internal/dto"
	"mongolens-be/internal/pkg/logger"
	"mongolens-be/pkg/attempt"
	"mongolens-be/pkg/mongodb/catalog"
	"mongolens-be/pkg/mongodb/query"
)

type IQueryService interface {
	ListCollections(ctx context.Context) (*dto.CollectionsResponse, error)
	GetDocuments(ctx context.Context, req *dto.DocumentsRequest) (*dto.DocumentsResponse, error)
	GetAllDocuments(ctx context.Context, req *dto.AllDocumentsRequest) (*dto.DocumentsResponse, error)
	GetDocumentCount(ctx context.Context, req *dto.CountRequest) (*dto.CountResponse, error)
	GetSchemaAndSamples(ctx context.Context, collection string) (*dto.SchemaResponse, error)
	CancelQuery(queryId string) bool
}

// ICatalog is the collection/schema cache contract the services depend on.
// Satisfied by *catalog.Catalog.
type ICatalog interface {
	ListCollections(ctx context.Context) ([]string, error)
	Schema(ctx context.Context, collection string) (*catalog.SchemaResult, error)
	Collection(name string, rp *readpref.ReadPref) (*mongo.Collection, error)
	SetDatabase(db catalog.Database)
	Clear()
}

type queryService struct {
	catalog  ICatalog
	compiler *query.Compiler
	attempts *attempt.Registry
	log      logger.ILogger

	// execute is swappable in tests so plans can be asserted without a
	// live server.
	execute func(ctx context.Context, coll *mongo.Collection, plan *query.Plan) ([]bson.M, int64, error)
}

func NewQueryService(cat ICatalog, compiler *query.Compiler, attempts *attempt.Registry, log logger.ILogger) IQueryService {
	s := &queryService{
		catalog:  cat,
		compiler: compiler,
		attempts: attempts,
		log:      log,
	}
	s.execute = s.run
	return s
}

func (s *queryService) ListCollections(ctx context.Context) (*dto.CollectionsResponse, error) {
	names, err := s.catalog.ListCollections(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.CollectionsResponse{Collections: names}, nil
}

// GetDocuments compiles the request into a typed plan against the
// collection's inferred schema and runs it as a paginated read.
func (s *queryService) GetDocuments(ctx context.Context, req *dto.DocumentsRequest) (*dto.DocumentsResponse, error) {
	queryCtx := s.registerQuery(ctx, req.QueryId)
	defer s.attempts.Remove(req.QueryId)

	plan, err := s.compilePlan(queryCtx, req.Collection, req.Params, &req.Skip, &req.Limit, false)
	if err != nil {
		return nil, err
	}
	docs, _, err := s.dispatch(queryCtx, req.Collection, plan, "documents")
	if err != nil {
		return nil, err
	}
	return &dto.DocumentsResponse{Documents: docs, Warnings: plan.Warnings}, nil
}

// GetAllDocuments runs the same plan shape without pagination bounds.
func (s *queryService) GetAllDocuments(ctx context.Context, req *dto.AllDocumentsRequest) (*dto.DocumentsResponse, error) {
	queryCtx := s.registerQuery(ctx, req.QueryId)
	defer s.attempts.Remove(req.QueryId)

	plan, err := s.compilePlan(queryCtx, req.Collection, req.Params, nil, nil, false)
	if err != nil {
		return nil, err
	}
	docs, _, err := s.dispatch(queryCtx, req.Collection, plan, "documents")
	if err != nil {
		return nil, err
	}
	return &dto.DocumentsResponse{Documents: docs, Warnings: plan.Warnings}, nil
}

// GetDocumentCount counts the documents matching the merged filter only;
// sort, projection and pagination never influence the count.
func (s *queryService) GetDocumentCount(ctx context.Context, req *dto.CountRequest) (*dto.CountResponse, error) {
	queryCtx := s.registerQuery(ctx, req.QueryId)
	defer s.attempts.Remove(req.QueryId)

	plan, err := s.compilePlan(queryCtx, req.Collection, req.Params, nil, nil, true)
	if err != nil {
		return nil, err
	}
	_, count, err := s.dispatch(queryCtx, req.Collection, plan, "count")
	if err != nil {
		return nil, err
	}
	return &dto.CountResponse{Count: count}, nil
}

func (s *queryService) GetSchemaAndSamples(ctx context.Context, collection string) (*dto.SchemaResponse, error) {
	res, err := s.catalog.Schema(ctx, collection)
	if err != nil {
		return nil, err
	}
	return &dto.SchemaResponse{SchemaMap: res.Schema, SampleDocuments: res.Samples}, nil
}

// CancelQuery aborts an in-flight read. Unknown ids report false.
func (s *queryService) CancelQuery(queryId string) bool {
	return s.attempts.Cancel(queryId)
}

// registerQuery wires the request into the cancellation registry when a
// query id is present; reads without one keep the caller's context.
func (s *queryService) registerQuery(ctx context.Context, queryId string) context.Context {
	if queryId == "" {
		return ctx
	}
	return s.attempts.Register(ctx, queryId)
}

func (s *queryService) compilePlan(ctx context.Context, collection string, p query.Params, skip, limit *int64, forCount bool) (*query.Plan, error) {
	schemaRes, err := s.catalog.Schema(ctx, collection)
	if err != nil {
		return nil, err
	}
	return s.compiler.Compile(collection, schemaRes.Schema, p, skip, limit, forCount)
}

func (s *queryService) dispatch(ctx context.Context, collection string, plan *query.Plan, op string) ([]bson.M, int64, error) {
	coll, err := s.catalog.Collection(collection, plan.ReadPref)
	if err != nil {
		return nil, 0, err
	}
	docs, count, err := s.execute(ctx, coll, plan)
	if err != nil {
		if ctx.Err() != nil {
			return nil, 0, &apperr.AbortError{Op: op}
		}
		return nil, 0, err
	}
	return docs, count, nil
}

// run executes a compiled plan against the live collection.
func (s *queryService) run(ctx context.Context, coll *mongo.Collection, plan *query.Plan) ([]bson.M, int64, error) {
	switch plan.Mode {
	case query.ModeCount:
		count, err := coll.CountDocuments(ctx, plan.Filter)
		return nil, count, err
	case query.ModeAggregate:
		cursor, err := coll.Aggregate(ctx, plan.Pipeline, plan.AggOptions)
		if err != nil {
			return nil, 0, err
		}
		return drain(ctx, cursor)
	default:
		cursor, err := coll.Find(ctx, plan.Filter, plan.FindOptions)
		if err != nil {
			return nil, 0, err
		}
		return drain(ctx, cursor)
	}
}

func drain(ctx context.Context, cursor *mongo.Cursor) ([]bson.M, int64, error) {
	defer cursor.Close(ctx)
	docs := make([]bson.M, 0)
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, err
	}
	return docs, int64(len(docs)), nil
}
