package domain

import (
	"fmt"
	"strings"
	"time"
)

type IdeaStatus string

const (
	IdeaDraft    IdeaStatus = "draft"
	IdeaApproved IdeaStatus = "approved"
	IdeaArchived IdeaStatus = "archived"
)

// IdeaStatuses lists every idea status in declaration order.
var IdeaStatuses = []IdeaStatus{IdeaDraft, IdeaApproved, IdeaArchived}

func (s IdeaStatus) Valid() bool {
	for _, v := range IdeaStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// ParseIdeaStatus returns the status named by s or an error listing the allowed values.
func ParseIdeaStatus(s string) (IdeaStatus, error) {
	st := IdeaStatus(s)
	if !st.Valid() {
		return "", fmt.Errorf("invalid idea status %q (allowed: %s)", s, JoinStatuses(IdeaStatuses))
	}
	return st, nil
}

type KollabStatus string

const (
	KollabActive    KollabStatus = "active"
	KollabCompleted KollabStatus = "completed"
	KollabCancelled KollabStatus = "cancelled"
)

// KollabStatuses lists every kollab status in declaration order.
var KollabStatuses = []KollabStatus{KollabActive, KollabCompleted, KollabCancelled}

func (s KollabStatus) Valid() bool {
	for _, v := range KollabStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// ParseKollabStatus returns the status named by s or an error listing the allowed values.
func ParseKollabStatus(s string) (KollabStatus, error) {
	st := KollabStatus(s)
	if !st.Valid() {
		return "", fmt.Errorf("invalid kollab status %q (allowed: %s)", s, JoinStatuses(KollabStatuses))
	}
	return st, nil
}

// JoinStatuses renders a status set as "a, b, c".
func JoinStatuses[S ~string](set []S) string {
	parts := make([]string, 0, len(set))
	for _, s := range set {
		parts = append(parts, string(s))
	}
	return strings.Join(parts, ", ")
}

type Idea struct {
	ID          string     `json:"id" example:"507f1f77bcf86cd799439011"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	CreatedBy   string     `json:"createdBy"`
	Status      IdeaStatus `json:"status" enum:"draft,approved,archived"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// Kollab is a collaboration spawned from an approved idea. Idea is only set
// when the reference has been resolved for a response.
type Kollab struct {
	ID              string       `json:"id" example:"507f1f77bcf86cd799439012"`
	IdeaID          string       `json:"ideaId" example:"507f1f77bcf86cd799439011"`
	Goal            string       `json:"goal"`
	Participants    []string     `json:"participants"`
	SuccessCriteria string       `json:"successCriteria"`
	Status          KollabStatus `json:"status" enum:"active,completed,cancelled"`
	CreatedAt       time.Time    `json:"createdAt"`
	Idea            *Idea        `json:"idea,omitempty"`
}

// Discussion is a message attached to a kollab. Kollab is only set when the
// reference has been resolved for a response.
type Discussion struct {
	ID        string    `json:"id" example:"507f1f77bcf86cd799439013"`
	KollabID  string    `json:"kollabId" example:"507f1f77bcf86cd799439012"`
	Message   string    `json:"message"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
	Kollab    *Kollab   `json:"kollab,omitempty"`
}
