package engine

import (
	"context"
	"errors"

	"kloza/internal/domain"
	"kloza/internal/repo"
	"kloza/internal/validate"
)

// CreateDiscussion attaches a message to an existing kollab and returns it
// with the kollab resolved.
func (e Engine) CreateDiscussion(ctx context.Context, kollabID string, dto domain.CreateDiscussionDTO) (domain.Discussion, error) {
	if !validate.ObjectID(kollabID) {
		return domain.Discussion{}, badRequest(MsgInvalidID)
	}
	if res := validate.CreateDiscussion(dto); !res.IsValid {
		return domain.Discussion{}, validationFailed(res.Errors)
	}
	k, err := e.Repo.GetKollab(ctx, kollabID)
	if errors.Is(err, repo.ErrNotFound) {
		return domain.Discussion{}, notFound(MsgKollabNotFound)
	}
	if err != nil {
		return domain.Discussion{}, e.fail("create_discussion", internal(MsgCreateDiscussion, err))
	}
	d, err := e.Repo.InsertDiscussion(ctx, domain.Discussion{
		KollabID:  k.ID,
		Message:   validate.String(dto.Message),
		Author:    validate.String(dto.Author),
		CreatedAt: e.now(),
	})
	if err != nil {
		return domain.Discussion{}, e.fail("create_discussion", internal(MsgCreateDiscussion, err))
	}
	e.Metrics.Created("discussion")
	d.Kollab = &k
	return d, nil
}
