// Package engine enforces the business rules around ideas, kollabs and
// discussions on top of a repo.Repo.
package engine

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"kloza/internal/metrics"
	"kloza/internal/repo"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

type Engine struct {
	Repo    repo.Repo
	Log     *zap.Logger
	Metrics *metrics.Metrics
	Now     func() time.Time
}

func New(r repo.Repo, log *zap.Logger, m *metrics.Metrics) Engine {
	return Engine{
		Repo:    r,
		Log:     log,
		Metrics: m,
		Now:     time.Now,
	}
}

// now is truncated to milliseconds, the coarsest precision any store keeps.
func (e Engine) now() time.Time {
	t := time.Now()
	if e.Now != nil {
		t = e.Now()
	}
	return t.UTC().Truncate(time.Millisecond)
}

func (e Engine) log() *zap.Logger {
	if e.Log == nil {
		return zap.NewNop()
	}
	return e.Log
}

// fail logs internal failures before handing them back.
func (e Engine) fail(op string, err *Error) *Error {
	if err.Kind == KindInternal {
		e.log().Error("store operation failed", zap.String("op", op), zap.Error(err.Err))
	}
	return err
}

// Ping reports whether the store answers.
func (e Engine) Ping(ctx context.Context) error {
	if err := e.Repo.Ping(ctx); err != nil {
		return fmt.Errorf("store ping: %w", err)
	}
	return nil
}
