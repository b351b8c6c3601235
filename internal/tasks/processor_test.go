package tasks

import (
	"context"
	"errors"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSweeper struct {
	calls int
	err   error
}

func (s *countingSweeper) Sweep(context.Context) (int64, error) {
	s.calls++
	return 3, s.err
}

func message(taskType string) redis.XMessage {
	return redis.XMessage{ID: "1-0", Values: map[string]interface{}{"type": taskType}}
}

func TestProcessorDispatchesByType(t *testing.T) {
	uploads := &countingSweeper{}
	sessions := &countingSweeper{}
	p := NewProcessor(uploads, sessions, zerolog.Nop())
	ctx := context.Background()

	require.NoError(t, p.Handle(ctx, message(TypeSweepUploads)))
	require.NoError(t, p.Handle(ctx, message(TypeSweepSessions)))
	require.NoError(t, p.Handle(ctx, message(TypeSweepSessions)))
	require.NoError(t, p.Handle(ctx, message("thumbnail")))

	assert.Equal(t, 1, uploads.calls)
	assert.Equal(t, 2, sessions.calls)
}

func TestProcessorWithoutSessionSweeper(t *testing.T) {
	p := NewProcessor(&countingSweeper{}, nil, zerolog.Nop())

	assert.NoError(t, p.Handle(context.Background(), message(TypeSweepSessions)))
}

func TestProcessorReturnsSweepError(t *testing.T) {
	boom := errors.New("boom")
	p := NewProcessor(&countingSweeper{err: boom}, nil, zerolog.Nop())

	err := p.Handle(context.Background(), message(TypeSweepUploads))
	assert.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, TypeSweepUploads)
}
