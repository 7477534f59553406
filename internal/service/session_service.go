package service

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"mongolens-be/internal/apperr"
	"mongolens-be/internal/dto"
	"mongolens-be/internal/entity"
	"mongolens-be/internal/pkg/logger"
	"mongolens-be/internal/repository/contract"
	"mongolens-be/pkg/attempt"
	"mongolens-be/pkg/mongodb"
)

// defaultDatabase is what the driver resolves to when the URI names none.
const defaultDatabase = "test"

type ISessionService interface {
	Connect(ctx context.Context, connectionId, attemptId string) (*dto.ConnectResponse, error)
	Disconnect(ctx context.Context) error
	CancelConnectionAttempt(attemptId string) bool
	Session() *entity.ActiveSession
}

// INegotiator is the driver-negotiation contract the session layer depends
// on. Satisfied by *mongodb.Negotiator.
type INegotiator interface {
	Connect(ctx context.Context, uri, knownTag string) (*mongodb.Result, error)
}

type sessionService struct {
	// opMu serializes whole connect/disconnect sequences so teardown,
	// negotiation and install never interleave across callers. mu guards
	// only the session slot itself.
	opMu       sync.Mutex
	mu         sync.Mutex
	profiles   contract.IProfileRepository
	negotiator INegotiator
	catalog    ICatalog
	attempts   *attempt.Registry
	log        logger.ILogger
	session    *entity.ActiveSession
}

func NewSessionService(
	profiles contract.IProfileRepository,
	negotiator INegotiator,
	cat ICatalog,
	attempts *attempt.Registry,
	log logger.ILogger,
) ISessionService {
	return &sessionService{
		profiles:   profiles,
		negotiator: negotiator,
		catalog:    cat,
		attempts:   attempts,
		log:        log,
	}
}

// Connect establishes a new session for the given profile. Any session that
// is already active is fully torn down first, so two sessions are never
// simultaneously live. Every failure path leaves the session Idle: the
// attempt entry is released, any partially-created client is closed, and
// the cache layer keeps no reference to the old database.
func (s *sessionService) Connect(ctx context.Context, connectionId, attemptId string) (*dto.ConnectResponse, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	if err := s.teardown(ctx); err != nil {
		return nil, err
	}

	profile, err := s.profiles.GetById(connectionId)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, &apperr.ProfileNotFoundError{Id: connectionId}
	}

	attemptCtx := s.attempts.Register(ctx, attemptId)
	defer s.attempts.Remove(attemptId)

	res, err := s.negotiator.Connect(attemptCtx, profile.URI, profile.LastDriverVersion)
	if err != nil {
		s.log.Warn("session", "connect failed", map[string]interface{}{
			"connectionId": connectionId,
			"attemptId":    attemptId,
			"error":        err.Error(),
		})
		return nil, err
	}

	// A cancel landing between negotiation success and install must not
	// leave a freshly-opened client behind as the active session.
	if attemptCtx.Err() != nil {
		_ = res.Client.Disconnect(context.Background())
		return nil, &apperr.AbortError{Op: "connect"}
	}

	dbName := databaseNameFromURI(profile.URI)
	session := &entity.ActiveSession{
		Client:        res.Client,
		ConnectionId:  connectionId,
		DatabaseName:  dbName,
		DriverVersion: res.Tag,
	}
	if mc := res.Client.Mongo(); mc != nil {
		session.Database = mc.Database(dbName)
	}

	s.mu.Lock()
	s.session = session
	s.mu.Unlock()

	if session.Database != nil {
		s.catalog.SetDatabase(session.Database)
	}

	if res.Tag != "" && res.Tag != profile.LastDriverVersion {
		profile.LastDriverVersion = res.Tag
		if err := s.profiles.Update(profile); err != nil {
			// The session is already live; a stale tag only costs the next
			// connect a renegotiation.
			s.log.Warn("session", "failed to persist driver version", map[string]interface{}{
				"connectionId": connectionId,
				"error":        err.Error(),
			})
		}
	}

	s.log.Info("session", "connected", map[string]interface{}{
		"connectionId": connectionId,
		"database":     dbName,
		"driver":       res.Tag,
	})

	return &dto.ConnectResponse{
		ConnectionId:  connectionId,
		Database:      dbName,
		DriverVersion: res.Tag,
	}, nil
}

// Disconnect tears the active session down. Idempotent: with no session
// active it does nothing.
func (s *sessionService) Disconnect(ctx context.Context) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	return s.teardown(ctx)
}

// teardown releases the active session slot. Caller holds opMu.
func (s *sessionService) teardown(ctx context.Context) error {
	s.mu.Lock()
	session := s.session
	s.session = nil
	s.mu.Unlock()

	if session == nil {
		return nil
	}

	s.catalog.Clear()

	if session.Client != nil {
		if err := session.Client.Disconnect(ctx); err != nil {
			s.log.Warn("session", "client close failed during disconnect", map[string]interface{}{
				"connectionId": session.ConnectionId,
				"error":        err.Error(),
			})
		}
	}

	s.log.Info("session", "disconnected", map[string]interface{}{
		"connectionId": session.ConnectionId,
	})
	return nil
}

// CancelConnectionAttempt aborts an in-flight connect. Unknown ids report
// false without side effects.
func (s *sessionService) CancelConnectionAttempt(attemptId string) bool {
	return s.attempts.Cancel(attemptId)
}

func (s *sessionService) Session() *entity.ActiveSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

// databaseNameFromURI pulls the database from the URI path segment, falling
// back to the driver default when the URI names none.
func databaseNameFromURI(uri string) string {
	parsed, err := url.Parse(uri)
	if err != nil {
		return defaultDatabase
	}
	name := strings.TrimPrefix(parsed.Path, "/")
	if name == "" {
		return defaultDatabase
	}
	return name
}
