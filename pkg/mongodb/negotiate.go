package mongodb

import (
	"context"
	"fmt"
	"strings"

	"mongolens-be/internal/apperr"
	"mongolens-be/internal/pkg/logger"
)

// Result is a successfully negotiated connection.
type Result struct {
	Client Client
	Tag    string
}

// Negotiator establishes a working connection by walking an ordered list of
// driver generations, newest to oldest, each gated by a wire-version
// handshake.
type Negotiator struct {
	candidates []Candidate
	log        logger.ILogger
}

func NewNegotiator(candidates []Candidate, log logger.ILogger) *Negotiator {
	return &Negotiator{candidates: candidates, log: log}
}

// Connect tries candidates until one connects and passes the handshake. When
// knownTag names a generation that worked before, only that one is tried and
// its failure is final; the profile is presumed trustworthy, so silent
// degradation would only mask a real problem. Cancellation of ctx surfaces
// as apperr.AbortError, never as a generic connection failure.
func (n *Negotiator) Connect(ctx context.Context, uri, knownTag string) (*Result, error) {
	if knownTag != "" {
		return n.connectKnown(ctx, uri, knownTag)
	}

	attempted := make([]string, 0, len(n.candidates))
	for _, cand := range n.candidates {
		// Poll point: before starting a candidate.
		if ctx.Err() != nil {
			return nil, &apperr.AbortError{Op: "connect"}
		}

		res, err := n.attempt(ctx, cand, uri)
		if err != nil {
			// The candidate failure is logged even when cancellation fired
			// while its connect call was pending.
			n.log.Warn("mongodb", "driver candidate failed", map[string]interface{}{
				"tag":   cand.Tag(),
				"error": err.Error(),
			})
			// Poll point: immediately after an attempt settles.
			if ctx.Err() != nil {
				return nil, &apperr.AbortError{Op: "connect"}
			}
			attempted = append(attempted, cand.Tag())
			continue
		}

		n.log.Info("mongodb", "connected", map[string]interface{}{"tag": cand.Tag()})
		return res, nil
	}

	return nil, &apperr.ConnectionError{
		Message: fmt.Sprintf("unable to connect with any supported driver version (tried %s)", strings.Join(attempted, ", ")),
	}
}

func (n *Negotiator) connectKnown(ctx context.Context, uri, knownTag string) (*Result, error) {
	var cand Candidate
	for _, c := range n.candidates {
		if c.Tag() == knownTag {
			cand = c
			break
		}
	}
	if cand == nil {
		return nil, &apperr.ConnectionError{Message: fmt.Sprintf("unsupported driver version %q", knownTag)}
	}

	if ctx.Err() != nil {
		return nil, &apperr.AbortError{Op: "connect"}
	}

	res, err := n.attempt(ctx, cand, uri)
	if err != nil {
		n.log.Warn("mongodb", "known driver version failed", map[string]interface{}{
			"tag":   knownTag,
			"error": err.Error(),
		})
		if ctx.Err() != nil {
			return nil, &apperr.AbortError{Op: "connect"}
		}
		return nil, &apperr.ConnectionError{
			Message: fmt.Sprintf("known driver version %s failed", knownTag),
			Err:     err,
		}
	}
	return res, nil
}

// attempt connects one candidate and runs its handshake. Whatever partial
// resource got opened is released before the error returns, so fallback
// iterations never leak handles.
func (n *Negotiator) attempt(ctx context.Context, cand Candidate, uri string) (*Result, error) {
	client, err := cand.Connect(ctx, uri)
	if err != nil {
		return nil, err
	}

	wire, err := client.MaxWireVersion(ctx)
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("handshake failed: %w", err)
	}
	if wire < cand.MinWireVersion() {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("server wire version %d is below required %d", wire, cand.MinWireVersion())
	}

	return &Result{Client: client, Tag: cand.Tag()}, nil
}
