package server

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"

	"kloza/internal/domain"
	"kloza/internal/validate"
)

type idPath struct {
	ID string `path:"id" doc:"Document id (24 hex digits)" example:"507f1f77bcf86cd799439011"`
}

func healthHandler(ctx context.Context, _ *struct{}) (*struct {
	Body HealthEnvelope `json:"body"`
}, error) {
	return &struct {
		Body HealthEnvelope `json:"body"`
	}{Body: HealthEnvelope{Success: true, Message: msgServerRunning}}, nil
}

func registerRoot(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "root",
		Method:      http.MethodGet,
		Path:        "/",
		Summary:     "Service banner",
		Tags:        []string{"Health"},
	}, healthHandler)
}

// registerHealth answers 503 while the store does not respond.
func registerHealth(api huma.API, cfg Config) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Description: "Reports 503 when the store does not answer.",
		Tags:        []string{"Health"},
		Errors:      []int{http.StatusServiceUnavailable},
	}, func(ctx context.Context, input *struct{}) (*struct {
		Body HealthEnvelope `json:"body"`
	}, error) {
		if err := cfg.Engine.Ping(ctx); err != nil {
			cfg.Logger.Warn("health check failed", zap.Error(err))
			return nil, newAPIError(http.StatusServiceUnavailable, msgStoreUnavailable, nil, cfg.detail(err.Error()))
		}
		return healthHandler(ctx, input)
	})
}

func registerIdeas(api huma.API, cfg Config) {
	e := cfg.Engine
	huma.Register(api, huma.Operation{
		OperationID:   "create-idea",
		Method:        http.MethodPost,
		Path:          "/ideas",
		Summary:       "Create a new idea",
		Tags:          []string{"Ideas"},
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusInternalServerError},
	}, func(ctx context.Context, input *struct {
		Body domain.CreateIdeaDTO `json:"body" required:"false"`
	}) (*struct {
		Body IdeaEnvelope `json:"body"`
	}, error) {
		idea, err := e.CreateIdea(ctx, input.Body)
		if err != nil {
			return nil, cfg.handleError(err)
		}
		return &struct {
			Body IdeaEnvelope `json:"body"`
		}{Body: IdeaEnvelope{Success: true, Message: msgIdeaCreated, Data: idea}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-ideas",
		Method:      http.MethodGet,
		Path:        "/ideas",
		Summary:     "List ideas, newest first",
		Tags:        []string{"Ideas"},
		Errors:      []int{http.StatusBadRequest, http.StatusInternalServerError},
	}, func(ctx context.Context, input *struct {
		Page  int `query:"page" default:"1" doc:"Page number, starting at 1"`
		Limit int `query:"limit" default:"10" doc:"Items per page, 1 to 100"`
	}) (*struct {
		Body IdeaListEnvelope `json:"body"`
	}, error) {
		page, err := e.ListIdeas(ctx, input.Page, input.Limit)
		if err != nil {
			return nil, cfg.handleError(err)
		}
		return &struct {
			Body IdeaListEnvelope `json:"body"`
		}{Body: IdeaListEnvelope{
			Success:    true,
			Message:    msgIdeasRetrieved,
			Count:      len(page.Items),
			Data:       page.Items,
			Pagination: page.Pagination,
		}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-idea",
		Method:      http.MethodGet,
		Path:        "/ideas/{id}",
		Summary:     "Get an idea",
		Tags:        []string{"Ideas"},
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound, http.StatusInternalServerError},
	}, func(ctx context.Context, input *idPath) (*struct {
		Body IdeaEnvelope `json:"body"`
	}, error) {
		idea, err := e.GetIdea(ctx, validate.NormalizeID(input.ID))
		if err != nil {
			return nil, cfg.handleError(err)
		}
		return &struct {
			Body IdeaEnvelope `json:"body"`
		}{Body: IdeaEnvelope{Success: true, Message: msgIdeaRetrieved, Data: idea}}, nil
	})
}

func registerKollabs(api huma.API, cfg Config) {
	e := cfg.Engine
	huma.Register(api, huma.Operation{
		OperationID:   "create-kollab",
		Method:        http.MethodPost,
		Path:          "/kollabs",
		Summary:       "Start a kollab on an approved idea",
		Description:   "An idea can have at most one active kollab.",
		Tags:          []string{"Kollabs"},
		DefaultStatus: http.StatusCreated,
		Errors: []int{
			http.StatusBadRequest,
			http.StatusNotFound,
			http.StatusConflict,
			http.StatusInternalServerError,
		},
	}, func(ctx context.Context, input *struct {
		Body domain.CreateKollabDTO `json:"body" required:"false"`
	}) (*struct {
		Body KollabEnvelope `json:"body"`
	}, error) {
		k, err := e.CreateKollab(ctx, input.Body)
		if err != nil {
			return nil, cfg.handleError(err)
		}
		return &struct {
			Body KollabEnvelope `json:"body"`
		}{Body: KollabEnvelope{Success: true, Message: msgKollabCreated, Data: k}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-kollab",
		Method:      http.MethodGet,
		Path:        "/kollabs/{id}",
		Summary:     "Get a kollab with its idea",
		Tags:        []string{"Kollabs"},
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound, http.StatusInternalServerError},
	}, func(ctx context.Context, input *idPath) (*struct {
		Body KollabEnvelope `json:"body"`
	}, error) {
		k, err := e.GetKollab(ctx, validate.NormalizeID(input.ID))
		if err != nil {
			return nil, cfg.handleError(err)
		}
		return &struct {
			Body KollabEnvelope `json:"body"`
		}{Body: KollabEnvelope{Success: true, Message: msgKollabRetrieved, Data: k}}, nil
	})
}

func registerDiscussions(api huma.API, cfg Config) {
	e := cfg.Engine
	huma.Register(api, huma.Operation{
		OperationID:   "create-discussion",
		Method:        http.MethodPost,
		Path:          "/kollabs/{id}/discussions",
		Summary:       "Add a discussion message to a kollab",
		Tags:          []string{"Discussions"},
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusNotFound, http.StatusInternalServerError},
	}, func(ctx context.Context, input *struct {
		idPath
		Body domain.CreateDiscussionDTO `json:"body" required:"false"`
	}) (*struct {
		Body DiscussionEnvelope `json:"body"`
	}, error) {
		d, err := e.CreateDiscussion(ctx, validate.NormalizeID(input.ID), input.Body)
		if err != nil {
			return nil, cfg.handleError(err)
		}
		return &struct {
			Body DiscussionEnvelope `json:"body"`
		}{Body: DiscussionEnvelope{Success: true, Message: msgDiscussionCreated, Data: d}}, nil
	})
}

