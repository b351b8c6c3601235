// Package tasks runs the maintenance jobs queued on the Redis stream.
package tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	TypeSweepUploads  = "sweep_uploads"
	TypeSweepSessions = "sweep_sessions"
)

// Sweeper removes expired entries and reports how many it removed.
type Sweeper interface {
	Sweep(ctx context.Context) (int64, error)
}

type TaskPayload struct {
	Type string `json:"type"`
}

type Processor struct {
	uploads  Sweeper
	sessions Sweeper
	logger   zerolog.Logger
}

// NewProcessor wires the sweepers. sessions is nil when the session store
// expires keys itself.
func NewProcessor(uploads, sessions Sweeper, logger zerolog.Logger) *Processor {
	return &Processor{
		uploads:  uploads,
		sessions: sessions,
		logger:   logger,
	}
}

func (p *Processor) Handle(ctx context.Context, msg redis.XMessage) error {
	var payload TaskPayload
	if err := decodePayload(msg.Values, &payload); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}

	switch payload.Type {
	case TypeSweepUploads:
		return p.sweep(ctx, payload.Type, p.uploads)
	case TypeSweepSessions:
		return p.sweep(ctx, payload.Type, p.sessions)
	default:
		p.logger.Warn().Str("type", payload.Type).Str("message_id", msg.ID).Msg("unknown task type")
		return nil
	}
}

func decodePayload(values map[string]interface{}, out *TaskPayload) error {
	bytes, err := json.Marshal(values)
	if err != nil {
		return err
	}
	return json.Unmarshal(bytes, out)
}

func (p *Processor) sweep(ctx context.Context, task string, sweeper Sweeper) error {
	if sweeper == nil {
		p.logger.Debug().Str("type", task).Msg("nothing to sweep")
		return nil
	}

	removed, err := sweeper.Sweep(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", task, err)
	}
	p.logger.Info().Str("type", task).Int64("removed", removed).Msg("sweep finished")
	return nil
}
