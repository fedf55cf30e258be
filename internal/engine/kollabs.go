package engine

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"kloza/internal/domain"
	"kloza/internal/metrics"
	"kloza/internal/repo"
	"kloza/internal/validate"
)

// CreateKollab starts a collaboration on an approved idea. While an idea has
// an active kollab no other kollab can be created for it, whatever its status.
// A lookup rejects the common case and the store's partial unique index
// settles concurrent active creations.
func (e Engine) CreateKollab(ctx context.Context, dto domain.CreateKollabDTO) (domain.Kollab, error) {
	if res := validate.CreateKollab(dto); !res.IsValid {
		return domain.Kollab{}, validationFailed(res.Errors)
	}
	ideaID := dto.IdeaID.(string)

	idea, err := e.Repo.GetIdea(ctx, ideaID)
	if errors.Is(err, repo.ErrNotFound) {
		return domain.Kollab{}, notFound(MsgIdeaNotFound)
	}
	if err != nil {
		return domain.Kollab{}, e.fail("create_kollab", internal(MsgCreateKollab, err))
	}
	if idea.Status != domain.IdeaApproved {
		return domain.Kollab{}, badRequest(MsgIdeaNotApproved)
	}

	status := domain.KollabActive
	if s, ok := dto.Status.(string); ok {
		status = domain.KollabStatus(s)
	}
	existing, err := e.Repo.FindActiveKollab(ctx, idea.ID)
	switch {
	case err == nil:
		e.recordConflict(metrics.ConflictPrecheck, idea.ID, existing.ID)
		return domain.Kollab{}, conflict(MsgActiveKollabExists, nil)
	case !errors.Is(err, repo.ErrNotFound):
		return domain.Kollab{}, e.fail("create_kollab", internal(MsgCreateKollab, err))
	}

	k, err := e.Repo.InsertKollab(ctx, domain.Kollab{
		IdeaID:          idea.ID,
		Goal:            validate.String(dto.Goal),
		Participants:    validate.Participants(dto.Participants),
		SuccessCriteria: validate.String(dto.SuccessCriteria),
		Status:          status,
		CreatedAt:       e.now(),
	})
	if errors.Is(err, repo.ErrDuplicate) {
		e.recordConflict(metrics.ConflictConstraint, idea.ID, "")
		return domain.Kollab{}, conflict(MsgActiveKollabExists, err)
	}
	if err != nil {
		return domain.Kollab{}, e.fail("create_kollab", internal(MsgCreateKollab, err))
	}
	e.Metrics.Created("kollab")
	k.Idea = &idea
	return k, nil
}

func (e Engine) recordConflict(source, ideaID, existingID string) {
	e.Metrics.Conflict(source)
	fields := []zap.Field{zap.String("source", source), zap.String("idea_id", ideaID)}
	if existingID != "" {
		fields = append(fields, zap.String("active_kollab_id", existingID))
	}
	e.log().Warn("active kollab already exists", fields...)
}

// GetKollab returns the kollab with its idea resolved. Idea is nil when the
// referenced idea no longer exists.
func (e Engine) GetKollab(ctx context.Context, id string) (domain.Kollab, error) {
	if !validate.ObjectID(id) {
		return domain.Kollab{}, badRequest(MsgInvalidID)
	}
	k, err := e.Repo.GetKollab(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return domain.Kollab{}, notFound(MsgKollabNotFound)
	}
	if err != nil {
		return domain.Kollab{}, e.fail("get_kollab", internal(MsgFetchKollab, err))
	}
	idea, err := e.Repo.GetIdea(ctx, k.IdeaID)
	switch {
	case err == nil:
		k.Idea = &idea
	case !errors.Is(err, repo.ErrNotFound):
		return domain.Kollab{}, e.fail("get_kollab", internal(MsgFetchKollab, err))
	}
	return k, nil
}
