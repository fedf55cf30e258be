// Package repo persists ideas, kollabs and discussions. Every driver assigns
// 24 hex digit document ids and enforces at most one active kollab per idea
// with a partial unique index.
package repo

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"kloza/internal/domain"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrDuplicate reports a write rejected by a uniqueness constraint.
	ErrDuplicate = errors.New("duplicate key")
)

// Repo is the entity store used by the engine. Implementations are safe for
// concurrent use.
type Repo interface {
	// InsertIdea stores i and returns it with its assigned id.
	InsertIdea(ctx context.Context, i domain.Idea) (domain.Idea, error)
	GetIdea(ctx context.Context, id string) (domain.Idea, error)
	// ListIdeas returns ideas newest first, id descending on ties.
	ListIdeas(ctx context.Context, skip, limit int) ([]domain.Idea, error)
	CountIdeas(ctx context.Context) (int64, error)

	// InsertKollab returns ErrDuplicate when k is active and its idea already
	// has an active kollab.
	InsertKollab(ctx context.Context, k domain.Kollab) (domain.Kollab, error)
	GetKollab(ctx context.Context, id string) (domain.Kollab, error)
	// FindActiveKollab returns ErrNotFound when the idea has no active kollab.
	FindActiveKollab(ctx context.Context, ideaID string) (domain.Kollab, error)

	InsertDiscussion(ctx context.Context, d domain.Discussion) (domain.Discussion, error)

	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// NewID returns a fresh document id in its hex form.
func NewID() string {
	return primitive.NewObjectID().Hex()
}

// canonicalID lowercases hex ids so lookups match the stored form.
func canonicalID(id string) string {
	return strings.ToLower(id)
}

func copyStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
