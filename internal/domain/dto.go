package domain

import (
	"bytes"
	"encoding/json"
)

// Creation payloads keep their fields loosely typed so that the validator can
// report every wrong type and every bad participant in a single pass instead of
// the JSON decoder stopping at the first mismatch.

type CreateIdeaDTO struct {
	_           struct{} `json:"-" additionalProperties:"true"`
	Title       any      `json:"title,omitempty" doc:"Idea title, 1-200 characters" example:"Community garden"`
	Description any      `json:"description,omitempty" doc:"Idea description, 1-5000 characters" example:"Turn the empty lot into a shared garden"`
	CreatedBy   any      `json:"createdBy,omitempty" doc:"Author of the idea" example:"user123"`
	Status      any      `json:"status,omitempty" doc:"One of draft, approved, archived (default draft)" example:"draft"`
}

type CreateKollabDTO struct {
	_               struct{} `json:"-" additionalProperties:"true"`
	IdeaID          any      `json:"ideaId,omitempty" doc:"ObjectId of an approved idea" example:"507f1f77bcf86cd799439011"`
	Goal            any      `json:"goal,omitempty" doc:"Goal, 1-1000 characters" example:"Complete the product feature implementation"`
	Participants    any      `json:"participants,omitempty" doc:"Non-empty list of participant names" example:"[\"user123\",\"user456\"]"`
	SuccessCriteria any      `json:"successCriteria,omitempty" doc:"Success criteria, 1-2000 characters" example:"Feature is fully implemented and tested"`
	Status          any      `json:"status,omitempty" doc:"One of active, completed, cancelled (default active)" example:"active"`
}

type CreateDiscussionDTO struct {
	_       struct{} `json:"-" additionalProperties:"true"`
	Message any      `json:"message,omitempty" doc:"Message, 1-5000 characters" example:"This is a discussion message about the Kollab"`
	Author  any      `json:"author,omitempty" doc:"Author of the message" example:"user123"`
}

// Null stands for a field sent as JSON null. It is not a string, so a status
// sent as null fails validation while an absent status takes the default.
type Null struct{}

func (d *CreateIdeaDTO) UnmarshalJSON(data []byte) error {
	type plain CreateIdeaDTO
	if err := json.Unmarshal(data, (*plain)(d)); err != nil {
		return err
	}
	d.Status = markNull(data, "status", d.Status)
	return nil
}

func (d *CreateKollabDTO) UnmarshalJSON(data []byte) error {
	type plain CreateKollabDTO
	if err := json.Unmarshal(data, (*plain)(d)); err != nil {
		return err
	}
	d.Status = markNull(data, "status", d.Status)
	return nil
}

func markNull(data []byte, key string, v any) any {
	if v != nil {
		return v
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return v
	}
	if raw, ok := fields[key]; ok && bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return Null{}
	}
	return v
}

// Pagination describes a limit/offset page of a sorted collection.
type Pagination struct {
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	Total       int64 `json:"total"`
	TotalPages  int   `json:"totalPages"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
}

func NewPagination(page, limit int, total int64) Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	return Pagination{
		Page:        page,
		Limit:       limit,
		Total:       total,
		TotalPages:  totalPages,
		HasNextPage: page < totalPages,
		HasPrevPage: page > 1,
	}
}

// Skip is the number of records preceding the page.
func (p Pagination) Skip() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

type IdeaPage struct {
	Items      []Idea
	Pagination Pagination
}
