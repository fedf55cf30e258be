package engine

import (
	"context"
	"errors"

	"kloza/internal/domain"
	"kloza/internal/repo"
	"kloza/internal/validate"
)

func (e Engine) CreateIdea(ctx context.Context, dto domain.CreateIdeaDTO) (domain.Idea, error) {
	if res := validate.CreateIdea(dto); !res.IsValid {
		return domain.Idea{}, validationFailed(res.Errors)
	}
	status := domain.IdeaDraft
	if s, ok := dto.Status.(string); ok {
		status = domain.IdeaStatus(s)
	}
	idea, err := e.Repo.InsertIdea(ctx, domain.Idea{
		Title:       validate.String(dto.Title),
		Description: validate.String(dto.Description),
		CreatedBy:   validate.String(dto.CreatedBy),
		Status:      status,
		CreatedAt:   e.now(),
	})
	if err != nil {
		return domain.Idea{}, e.fail("create_idea", internal(MsgCreateIdea, err))
	}
	e.Metrics.Created("idea")
	return idea, nil
}

// GetIdea rejects malformed ids without touching the store.
func (e Engine) GetIdea(ctx context.Context, id string) (domain.Idea, error) {
	if !validate.ObjectID(id) {
		return domain.Idea{}, badRequest(MsgInvalidID)
	}
	idea, err := e.Repo.GetIdea(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return domain.Idea{}, notFound(MsgIdeaNotFound)
	}
	if err != nil {
		return domain.Idea{}, e.fail("get_idea", internal(MsgFetchIdea, err))
	}
	return idea, nil
}

// ListIdeas returns one page of ideas, newest first.
func (e Engine) ListIdeas(ctx context.Context, page, limit int) (domain.IdeaPage, error) {
	if page < 1 {
		return domain.IdeaPage{}, badRequest(MsgInvalidPage)
	}
	if limit < 1 || limit > MaxLimit {
		return domain.IdeaPage{}, badRequest(MsgInvalidLimit)
	}
	items, err := e.Repo.ListIdeas(ctx, domain.Pagination{Page: page, Limit: limit}.Skip(), limit)
	if err != nil {
		return domain.IdeaPage{}, e.fail("list_ideas", internal(MsgFetchIdeas, err))
	}
	total, err := e.Repo.CountIdeas(ctx)
	if err != nil {
		return domain.IdeaPage{}, e.fail("count_ideas", internal(MsgFetchIdeas, err))
	}
	if items == nil {
		items = []domain.Idea{}
	}
	return domain.IdeaPage{Items: items, Pagination: domain.NewPagination(page, limit, total)}, nil
}
