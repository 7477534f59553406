package schema

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Sampler is satisfied by *mongo.Collection.
type Sampler interface {
	Aggregate(ctx context.Context, pipeline interface{}, opts ...*options.AggregateOptions) (*mongo.Cursor, error)
}

// Inferrer samples a collection server-side and derives its type schema.
type Inferrer struct{}

func NewInferrer() *Inferrer {
	return &Inferrer{}
}

// Infer draws a random $sample of up to sampleSize documents and returns the
// schema together with the decoded sample documents for display. An empty
// collection yields an empty schema and an empty sample set, not an error.
func (i *Inferrer) Infer(ctx context.Context, coll Sampler, sampleSize int) (Map, []bson.M, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$sample", Value: bson.D{{Key: "size", Value: sampleSize}}}},
	}

	cursor, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to sample collection: %w", err)
	}
	defer cursor.Close(ctx)

	var raws []bson.Raw
	for cursor.Next(ctx) {
		raws = append(raws, append(bson.Raw(nil), cursor.Current...))
	}
	if err := cursor.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to iterate sample: %w", err)
	}

	m, err := Build(raws)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to derive schema: %w", err)
	}

	samples := make([]bson.M, 0, len(raws))
	for _, raw := range raws {
		var doc bson.M
		if err := bson.Unmarshal(raw, &doc); err != nil {
			return nil, nil, fmt.Errorf("failed to decode sample document: %w", err)
		}
		samples = append(samples, doc)
	}

	return m, samples, nil
}
