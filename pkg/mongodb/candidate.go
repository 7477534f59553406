package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Candidate is one driver generation the negotiator can try. Candidates are
// ordered newest to oldest; MinWireVersion gates whether the server is new
// enough for the generation that just connected.
type Candidate interface {
	Tag() string
	MinWireVersion() int32
	Connect(ctx context.Context, uri string) (Client, error)
}

type generation struct {
	tag     string
	minWire int32
	timeout time.Duration
	apply   func(*options.ClientOptions)
}

func (g *generation) Tag() string           { return g.tag }
func (g *generation) MinWireVersion() int32 { return g.minWire }

func (g *generation) Connect(ctx context.Context, uri string) (Client, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(g.timeout).
		SetServerSelectionTimeout(g.timeout)
	if g.apply != nil {
		g.apply(opts)
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return &mongoClient{c: client}, nil
}

// DefaultCandidates returns the supported driver generations, newest first.
// The tag is what gets persisted on the profile after a successful connect.
func DefaultCandidates(connectTimeout time.Duration) []Candidate {
	return []Candidate{
		&generation{
			tag:     "6",
			minWire: 17, // MongoDB 6.0
			timeout: connectTimeout,
			apply: func(o *options.ClientOptions) {
				o.SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1).SetStrict(true))
				o.SetRetryReads(true)
				o.SetRetryWrites(true)
			},
		},
		&generation{
			tag:     "5",
			minWire: 13, // MongoDB 5.0
			timeout: connectTimeout,
			apply: func(o *options.ClientOptions) {
				o.SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1))
				o.SetRetryReads(true)
			},
		},
		&generation{
			tag:     "4",
			minWire: 7, // MongoDB 4.0
			timeout: connectTimeout,
			apply: func(o *options.ClientOptions) {
				o.SetRetryReads(true)
			},
		},
		&generation{
			tag:     "3",
			minWire: 6, // MongoDB 3.6
			timeout: connectTimeout,
			apply: func(o *options.ClientOptions) {
				// Retryable reads need sessions, which 3.6 standalone
				// deployments may not support.
				o.SetRetryReads(false)
				o.SetRetryWrites(false)
			},
		},
	}
}
