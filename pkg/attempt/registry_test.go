package attempt

import (
	"context"
	"errors"
	"testing"

	"mongolens-be/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
)

func TestCancelUnknownIdIsNoOp(t *testing.T) {
	r := NewRegistry("connection", logger.NewNopLogger())

	ok := r.Cancel("nope")

	assert.False(t, ok)
	assert.Equal(t, 0, r.Len())
}

func TestCancelFiresContextAndRemovesEntry(t *testing.T) {
	r := NewRegistry("connection", logger.NewNopLogger())
	ctx := r.Register(context.Background(), "a1")

	ok := r.Cancel("a1")

	assert.True(t, ok)
	assert.Error(t, ctx.Err())
	assert.Equal(t, 0, r.Len())
}

func TestCancelRunsCleanup(t *testing.T) {
	r := NewRegistry("connection", logger.NewNopLogger())
	r.Register(context.Background(), "a1")

	cleaned := false
	r.SetCleanup("a1", func() error {
		cleaned = true
		return nil
	})

	assert.True(t, r.Cancel("a1"))
	assert.True(t, cleaned)
}

func TestCancelSwallowsCleanupFailure(t *testing.T) {
	r := NewRegistry("connection", logger.NewNopLogger())
	r.Register(context.Background(), "a1")
	r.SetCleanup("a1", func() error {
		return errors.New("close failed")
	})

	assert.True(t, r.Cancel("a1"))
	assert.Equal(t, 0, r.Len(), "entry must be removed even when cleanup fails")
}

func TestCancelSwallowsCleanupPanic(t *testing.T) {
	r := NewRegistry("query", logger.NewNopLogger())
	r.Register(context.Background(), "q1")
	r.SetCleanup("q1", func() error {
		panic("boom")
	})

	assert.True(t, r.Cancel("q1"))
	assert.Equal(t, 0, r.Len())
}

func TestRegisterReplacesStaleEntry(t *testing.T) {
	r := NewRegistry("query", logger.NewNopLogger())
	first := r.Register(context.Background(), "q1")
	second := r.Register(context.Background(), "q1")

	assert.Error(t, first.Err(), "stale attempt must be cancelled on re-register")
	assert.NoError(t, second.Err())
	assert.Equal(t, 1, r.Len())
}

func TestRemoveResolvedAttempt(t *testing.T) {
	r := NewRegistry("query", logger.NewNopLogger())
	r.Register(context.Background(), "q1")

	r.Remove("q1")

	assert.False(t, r.Cancel("q1"))
}
