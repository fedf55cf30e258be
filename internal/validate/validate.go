// Package validate checks creation payloads and path identifiers before they
// reach the services. Validators never fail: they report every violated
// constraint in field order.
package validate

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"kloza/internal/domain"
)

const (
	TitleMaxLength           = 200
	DescriptionMaxLength     = 5000
	GoalMaxLength            = 1000
	SuccessCriteriaMaxLength = 2000
	MessageMaxLength         = 5000

	minLength = 1
)

var objectIDPattern = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)

type Result struct {
	IsValid bool     `json:"isValid"`
	Errors  []string `json:"errors"`
}

func result(errs []string) Result {
	if errs == nil {
		errs = []string{}
	}
	return Result{IsValid: len(errs) == 0, Errors: errs}
}

// ObjectID reports whether id has the 24 hex digit shape of a document id.
// It does not check that anything exists under that id.
func ObjectID(id string) bool {
	return objectIDPattern.MatchString(id)
}

// Sanitize trims leading and trailing whitespace.
func Sanitize(value string) string {
	return strings.TrimSpace(value)
}

// NormalizeID reduces a path or argument value that may arrive either as a
// single token or as a sequence of tokens to one token. Anything else yields
// the empty string, which never passes ObjectID.
func NormalizeID(raw any) string {
	switch v := raw.(type) {
	case string:
		return v
	case []string:
		if len(v) > 0 {
			return v[0]
		}
	case []any:
		if len(v) > 0 {
			if s, ok := v[0].(string); ok {
				return s
			}
		}
	}
	return ""
}

func CreateIdea(dto domain.CreateIdeaDTO) Result {
	var errs []string
	errs = checkText(errs, dto.Title, "Title", TitleMaxLength)
	errs = checkText(errs, dto.Description, "Description", DescriptionMaxLength)
	errs = checkText(errs, dto.CreatedBy, "createdBy", 0)
	errs = checkStatus(errs, dto.Status, domain.JoinStatuses(domain.IdeaStatuses), func(s string) bool {
		return domain.IdeaStatus(s).Valid()
	})
	return result(errs)
}

func CreateKollab(dto domain.CreateKollabDTO) Result {
	var errs []string
	if s, ok := dto.IdeaID.(string); !ok || s == "" {
		errs = append(errs, "ideaId is required and must be a string")
	} else if !ObjectID(s) {
		errs = append(errs, "ideaId must be a valid MongoDB ObjectId")
	}
	errs = checkText(errs, dto.Goal, "Goal", GoalMaxLength)
	errs = checkParticipants(errs, dto.Participants)
	errs = checkText(errs, dto.SuccessCriteria, "Success criteria", SuccessCriteriaMaxLength)
	errs = checkStatus(errs, dto.Status, domain.JoinStatuses(domain.KollabStatuses), func(s string) bool {
		return domain.KollabStatus(s).Valid()
	})
	return result(errs)
}

func CreateDiscussion(dto domain.CreateDiscussionDTO) Result {
	var errs []string
	errs = checkText(errs, dto.Message, "Message", MessageMaxLength)
	errs = checkText(errs, dto.Author, "Author", 0)
	return result(errs)
}

// checkText validates a required free-text field. A max of 0 means unbounded.
func checkText(errs []string, v any, label string, max int) []string {
	s, ok := v.(string)
	if !ok || s == "" {
		return append(errs, label+" is required and must be a string")
	}
	n := utf8.RuneCountInString(Sanitize(s))
	if n < minLength {
		errs = append(errs, fmt.Sprintf("%s must be at least %d character(s) long", label, minLength))
	}
	if max > 0 && n > max {
		errs = append(errs, fmt.Sprintf("%s cannot exceed %d characters", label, max))
	}
	return errs
}

func checkStatus(errs []string, v any, allowed string, valid func(string) bool) []string {
	if v == nil {
		return errs
	}
	s, ok := v.(string)
	if !ok {
		return append(errs, "Status must be a string")
	}
	if !valid(s) {
		return append(errs, "Status must be one of: "+allowed)
	}
	return errs
}

func checkParticipants(errs []string, v any) []string {
	var items []any
	switch p := v.(type) {
	case []any:
		items = p
	case []string:
		items = make([]any, len(p))
		for i, s := range p {
			items[i] = s
		}
	default:
		return append(errs, "Participants must be an array")
	}
	if len(items) == 0 {
		return append(errs, "At least one participant is required")
	}
	for i, item := range items {
		if s, ok := item.(string); !ok || Sanitize(s) == "" {
			errs = append(errs, fmt.Sprintf("Participant at index %d must be a non-empty string", i))
		}
	}
	return errs
}

// Participants returns the sanitized participant list of an already validated payload.
func Participants(v any) []string {
	var out []string
	switch p := v.(type) {
	case []any:
		for _, item := range p {
			if s, ok := item.(string); ok {
				out = append(out, Sanitize(s))
			}
		}
	case []string:
		for _, s := range p {
			out = append(out, Sanitize(s))
		}
	}
	return out
}

// String returns the sanitized value of an already validated text field.
func String(v any) string {
	s, _ := v.(string)
	return Sanitize(s)
}
