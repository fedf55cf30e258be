package server

import (
	"kloza/internal/domain"
)

// Every response, success or failure, shares the {success, message, ...}
// envelope.

type IdeaEnvelope struct {
	Success bool        `json:"success" example:"true"`
	Message string      `json:"message" example:"Idea created successfully"`
	Data    domain.Idea `json:"data"`
}

type IdeaListEnvelope struct {
	Success    bool              `json:"success" example:"true"`
	Message    string            `json:"message" example:"Ideas retrieved successfully"`
	Count      int               `json:"count" example:"10"`
	Data       []domain.Idea     `json:"data"`
	Pagination domain.Pagination `json:"pagination"`
}

type KollabEnvelope struct {
	Success bool          `json:"success" example:"true"`
	Message string        `json:"message" example:"Kollab created successfully"`
	Data    domain.Kollab `json:"data"`
}

type DiscussionEnvelope struct {
	Success bool              `json:"success" example:"true"`
	Message string            `json:"message" example:"Discussion created successfully"`
	Data    domain.Discussion `json:"data"`
}

type HealthEnvelope struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message" example:"Server is running"`
}

const (
	msgIdeaCreated       = "Idea created successfully"
	msgIdeasRetrieved    = "Ideas retrieved successfully"
	msgIdeaRetrieved     = "Idea retrieved successfully"
	msgKollabCreated     = "Kollab created successfully"
	msgKollabRetrieved   = "Kollab retrieved successfully"
	msgDiscussionCreated = "Discussion created successfully"
	msgServerRunning     = "Server is running"
	msgRouteNotFound     = "Route not found"
	msgInternal          = "Internal server error"
	msgUnauthorized      = "Authentication required"
	msgInvalidToken      = "Invalid credentials"
	msgRateLimited       = "Too many requests"
	msgStoreUnavailable  = "Service unavailable"
)
