package query

import (
	"encoding/json"
	"strings"

	"mongolens-be/internal/apperr"
	"mongolens-be/internal/pkg/logger"
	"mongolens-be/pkg/mongodb/schema"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type Mode int

const (
	// ModeFind is a filtered scan over the merged query+filter.
	ModeFind Mode = iota
	// ModeAggregate runs a full aggregation pipeline.
	ModeAggregate
	// ModeCount short-circuits to the merged filter for a count operation.
	ModeCount
)

// Plan is the strongly-typed execution plan compiled from the stringly-typed
// UI parameters. Exactly one of the three modes applies.
type Plan struct {
	Mode        Mode
	Filter      bson.D
	Pipeline    mongo.Pipeline
	FindOptions *options.FindOptions
	AggOptions  *options.AggregateOptions
	ReadPref    *readpref.ReadPref
	Warnings    []string
}

// Compiler parses, coerces, validates and assembles query fragments against
// an inferred collection schema.
type Compiler struct {
	log logger.ILogger
}

func NewCompiler(log logger.ILogger) *Compiler {
	return &Compiler{log: log}
}

// Compile builds the execution plan for one read. skip and limit are applied
// only when non-nil. forCount skips cursor assembly entirely and returns the
// merged filter; counts are always computed via the filter, never via an
// aggregation $count.
func (c *Compiler) Compile(collection string, sm schema.Map, p Params, skip, limit *int64, forCount bool) (*Plan, error) {
	// All fragments fold into one parse step; a syntax error in any of them
	// fails the call the same way.
	queryDoc, err0 := parseDoc(p.Query)
	sortDoc, err1 := parseDoc(p.Sort)
	filterDoc, err2 := parseDoc(p.Filter)
	projectionDoc, err3 := parseDoc(p.Projection)
	collationDoc, err4 := parseDoc(p.Collation)
	stages, err5 := parseStages(p.Pipeline)
	hint, err6 := parseHint(p.Hint)
	for _, e := range []error{err0, err1, err2, err3, err4, err5, err6} {
		if e != nil {
			return nil, &apperr.QueryParseError{Err: e}
		}
	}

	rp, err := parseReadPref(p.ReadPreference)
	if err != nil {
		return nil, &apperr.QueryParseError{Err: err}
	}

	queryDoc = coerceDoc(queryDoc, sm, "")
	filterDoc = coerceDoc(filterDoc, sm, "")
	for i, stage := range stages {
		stages[i] = coerceDoc(stage, sm, "")
	}

	var warnings []string
	for _, doc := range []bson.D{queryDoc, filterDoc, projectionDoc, collationDoc} {
		warnings = validateDoc(doc, sm, "", warnings)
	}
	for _, stage := range stages {
		warnings = validateDoc(stage, sm, "", warnings)
	}
	if hintDoc, ok := hint.(bson.D); ok {
		warnings = validateDoc(hintDoc, sm, "", warnings)
	}
	for _, w := range warnings {
		c.log.Warn("query", "schema validation", map[string]interface{}{
			"collection": collection,
			"warning":    w,
		})
	}

	merged := mergeDocs(queryDoc, filterDoc)
	plan := &Plan{ReadPref: rp, Warnings: warnings}

	if forCount {
		plan.Mode = ModeCount
		plan.Filter = merged
		return plan, nil
	}

	if len(stages) > 0 {
		plan.Mode = ModeAggregate
		plan.Pipeline = assemblePipeline(merged, sortDoc, stages, projectionDoc, skip, limit)
		plan.AggOptions = options.Aggregate()
		if len(collationDoc) > 0 {
			col, err := toCollation(collationDoc)
			if err != nil {
				return nil, &apperr.QueryParseError{Err: err}
			}
			plan.AggOptions.SetCollation(col)
		}
		if hint != nil {
			plan.AggOptions.SetHint(hint)
		}
		return plan, nil
	}

	plan.Mode = ModeFind
	plan.Filter = merged
	// Fixed option order keeps results deterministic regardless of
	// caller-supplied key ordering.
	fo := options.Find()
	if len(sortDoc) > 0 {
		fo.SetSort(sortDoc)
	}
	if len(projectionDoc) > 0 {
		fo.SetProjection(projectionDoc)
	}
	if len(collationDoc) > 0 {
		col, err := toCollation(collationDoc)
		if err != nil {
			return nil, &apperr.QueryParseError{Err: err}
		}
		fo.SetCollation(col)
	}
	if hint != nil {
		fo.SetHint(hint)
	}
	if skip != nil {
		fo.SetSkip(*skip)
	}
	if limit != nil {
		fo.SetLimit(*limit)
	}
	plan.FindOptions = fo
	return plan, nil
}

// assemblePipeline prefixes a $match over the merged filter, slots $sort
// right after it, appends the caller's stages, then $project, then $skip and
// $limit in that order.
func assemblePipeline(match, sort bson.D, stages mongo.Pipeline, projection bson.D, skip, limit *int64) mongo.Pipeline {
	pipe := mongo.Pipeline{
		bson.D{{Key: "$match", Value: match}},
	}
	if len(sort) > 0 {
		pipe = append(pipe, bson.D{{Key: "$sort", Value: sort}})
	}
	pipe = append(pipe, stages...)
	if len(projection) > 0 {
		pipe = append(pipe, bson.D{{Key: "$project", Value: projection}})
	}
	if skip != nil {
		pipe = append(pipe, bson.D{{Key: "$skip", Value: *skip}})
	}
	if limit != nil {
		pipe = append(pipe, bson.D{{Key: "$limit", Value: *limit}})
	}
	return pipe
}

func parseDoc(fragment string) (bson.D, error) {
	if strings.TrimSpace(fragment) == "" {
		return bson.D{}, nil
	}
	var d bson.D
	if err := bson.UnmarshalExtJSON([]byte(fragment), false, &d); err != nil {
		return nil, err
	}
	return d, nil
}

func parseStages(fragments []string) (mongo.Pipeline, error) {
	stages := make(mongo.Pipeline, 0, len(fragments))
	for _, fragment := range fragments {
		if strings.TrimSpace(fragment) == "" {
			continue
		}
		stage, err := parseDoc(fragment)
		if err != nil {
			return nil, err
		}
		stages = append(stages, stage)
	}
	return stages, nil
}

// parseHint accepts either an index-spec document or a bare index name
// encoded as a JSON string.
func parseHint(fragment string) (interface{}, error) {
	if strings.TrimSpace(fragment) == "" {
		return nil, nil
	}
	var name string
	if err := json.Unmarshal([]byte(fragment), &name); err == nil {
		return name, nil
	}
	doc, err := parseDoc(fragment)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func parseReadPref(pref string) (*readpref.ReadPref, error) {
	if pref == "" {
		pref = "primary"
	}
	mode, err := readpref.ModeFromString(pref)
	if err != nil {
		return nil, err
	}
	return readpref.New(mode)
}

func toCollation(doc bson.D) (*options.Collation, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var col options.Collation
	if err := bson.Unmarshal(raw, &col); err != nil {
		return nil, err
	}
	return &col, nil
}

// mergeDocs overlays filter onto query; duplicate keys take the filter's
// value.
func mergeDocs(query, filter bson.D) bson.D {
	merged := make(bson.D, 0, len(query)+len(filter))
	merged = append(merged, query...)
	for _, el := range filter {
		replaced := false
		for i, existing := range merged {
			if existing.Key == el.Key {
				merged[i] = el
				replaced = true
				break
			}
		}
		if !replaced {
			merged = append(merged, el)
		}
	}
	return merged
}
