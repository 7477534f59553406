package entity

import (
	"mongolens-be/pkg/mongodb"

	"go.mongodb.org/mongo-driver/mongo"
)

// ActiveSession is the one live connection. At most one exists at a time;
// the session service owns the slot and swaps it atomically.
type ActiveSession struct {
	Client        mongodb.Client
	Database      *mongo.Database
	ConnectionId  string
	DatabaseName  string
	DriverVersion string
}
