package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Client is the narrow slice of a connected driver client the negotiation
// loop and the session layer need. Keeping it an interface lets the loop be
// tested without a live server.
type Client interface {
	// MaxWireVersion runs the capability handshake and reports the server's
	// maximum wire-protocol version.
	MaxWireVersion(ctx context.Context) (int32, error)
	Disconnect(ctx context.Context) error
	// Mongo exposes the underlying driver client for database handles.
	Mongo() *mongo.Client
}

type mongoClient struct {
	c *mongo.Client
}

func (m *mongoClient) MaxWireVersion(ctx context.Context) (int32, error) {
	res := m.c.Database("admin").RunCommand(ctx, bson.D{{Key: "hello", Value: 1}})
	if res.Err() != nil {
		// Pre-4.4 servers do not know the hello command.
		res = m.c.Database("admin").RunCommand(ctx, bson.D{{Key: "isMaster", Value: 1}})
	}

	var out struct {
		MaxWireVersion int32 `bson:"maxWireVersion"`
	}
	if err := res.Decode(&out); err != nil {
		return 0, err
	}
	return out.MaxWireVersion, nil
}

func (m *mongoClient) Disconnect(ctx context.Context) error {
	return m.c.Disconnect(ctx)
}

func (m *mongoClient) Mongo() *mongo.Client {
	return m.c
}
