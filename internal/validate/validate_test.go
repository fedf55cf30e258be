package validate

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kloza/internal/domain"
)

func TestCreateIdea(t *testing.T) {
	tests := []struct {
		name string
		dto  domain.CreateIdeaDTO
		want []string
	}{
		{
			name: "valid minimal",
			dto:  domain.CreateIdeaDTO{Title: "X", Description: "Y", CreatedBy: "u1"},
			want: []string{},
		},
		{
			name: "valid with status",
			dto:  domain.CreateIdeaDTO{Title: "X", Description: "Y", CreatedBy: "u1", Status: "approved"},
			want: []string{},
		},
		{
			name: "everything missing",
			dto:  domain.CreateIdeaDTO{},
			want: []string{
				"Title is required and must be a string",
				"Description is required and must be a string",
				"createdBy is required and must be a string",
			},
		},
		{
			name: "whitespace only",
			dto:  domain.CreateIdeaDTO{Title: "   ", Description: "\t", CreatedBy: " "},
			want: []string{
				"Title must be at least 1 character(s) long",
				"Description must be at least 1 character(s) long",
				"createdBy must be at least 1 character(s) long",
			},
		},
		{
			name: "wrong types",
			dto:  domain.CreateIdeaDTO{Title: 12.0, Description: true, CreatedBy: []any{"u1"}, Status: 3.0},
			want: []string{
				"Title is required and must be a string",
				"Description is required and must be a string",
				"createdBy is required and must be a string",
				"Status must be a string",
			},
		},
		{
			name: "too long",
			dto: domain.CreateIdeaDTO{
				Title:       strings.Repeat("a", TitleMaxLength+1),
				Description: strings.Repeat("b", DescriptionMaxLength+1),
				CreatedBy:   "u1",
			},
			want: []string{
				"Title cannot exceed 200 characters",
				"Description cannot exceed 5000 characters",
			},
		},
		{
			name: "unknown status",
			dto:  domain.CreateIdeaDTO{Title: "X", Description: "Y", CreatedBy: "u1", Status: "published"},
			want: []string{"Status must be one of: draft, approved, archived"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := CreateIdea(tc.dto)
			assert.Equal(t, tc.want, res.Errors)
			assert.Equal(t, len(tc.want) == 0, res.IsValid)
		})
	}
}

func TestCreateIdeaCountsRunesAfterTrim(t *testing.T) {
	title := "  " + strings.Repeat("é", TitleMaxLength) + "  "
	res := CreateIdea(domain.CreateIdeaDTO{Title: title, Description: "d", CreatedBy: "u"})
	assert.True(t, res.IsValid, res.Errors)
}

func TestCreateKollab(t *testing.T) {
	valid := func() domain.CreateKollabDTO {
		return domain.CreateKollabDTO{
			IdeaID:          "507f1f77bcf86cd799439011",
			Goal:            "Ship it",
			Participants:    []any{"a", "b"},
			SuccessCriteria: "Shipped",
		}
	}
	tests := []struct {
		name   string
		mutate func(*domain.CreateKollabDTO)
		want   []string
	}{
		{name: "valid", mutate: func(*domain.CreateKollabDTO) {}, want: []string{}},
		{
			name:   "bad idea id",
			mutate: func(d *domain.CreateKollabDTO) { d.IdeaID = "not-an-id" },
			want:   []string{"ideaId must be a valid MongoDB ObjectId"},
		},
		{
			name:   "missing idea id",
			mutate: func(d *domain.CreateKollabDTO) { d.IdeaID = nil },
			want:   []string{"ideaId is required and must be a string"},
		},
		{
			name:   "participants not an array",
			mutate: func(d *domain.CreateKollabDTO) { d.Participants = "a,b" },
			want:   []string{"Participants must be an array"},
		},
		{
			name:   "no participants",
			mutate: func(d *domain.CreateKollabDTO) { d.Participants = []any{} },
			want:   []string{"At least one participant is required"},
		},
		{
			name:   "bad participants reported per index",
			mutate: func(d *domain.CreateKollabDTO) { d.Participants = []any{"a", " ", 7.0, "b", ""} },
			want: []string{
				"Participant at index 1 must be a non-empty string",
				"Participant at index 2 must be a non-empty string",
				"Participant at index 4 must be a non-empty string",
			},
		},
		{
			name:   "unknown status",
			mutate: func(d *domain.CreateKollabDTO) { d.Status = "paused" },
			want:   []string{"Status must be one of: active, completed, cancelled"},
		},
		{
			name: "field order is preserved",
			mutate: func(d *domain.CreateKollabDTO) {
				*d = domain.CreateKollabDTO{Status: 1.0}
			},
			want: []string{
				"ideaId is required and must be a string",
				"Goal is required and must be a string",
				"Participants must be an array",
				"Success criteria is required and must be a string",
				"Status must be a string",
			},
		},
		{
			name: "too long",
			mutate: func(d *domain.CreateKollabDTO) {
				d.Goal = strings.Repeat("g", GoalMaxLength+1)
				d.SuccessCriteria = strings.Repeat("s", SuccessCriteriaMaxLength+1)
			},
			want: []string{
				"Goal cannot exceed 1000 characters",
				"Success criteria cannot exceed 2000 characters",
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dto := valid()
			tc.mutate(&dto)
			res := CreateKollab(dto)
			assert.Equal(t, tc.want, res.Errors)
			assert.Equal(t, len(tc.want) == 0, res.IsValid)
		})
	}
}

func TestCreateDiscussion(t *testing.T) {
	res := CreateDiscussion(domain.CreateDiscussionDTO{Message: "hello", Author: "u1"})
	require.True(t, res.IsValid)
	require.Empty(t, res.Errors)

	res = CreateDiscussion(domain.CreateDiscussionDTO{Message: strings.Repeat("m", MessageMaxLength+1), Author: "  "})
	assert.False(t, res.IsValid)
	assert.Equal(t, []string{
		"Message cannot exceed 5000 characters",
		"Author must be at least 1 character(s) long",
	}, res.Errors)
}

func TestValidatorsAreDeterministic(t *testing.T) {
	dto := domain.CreateKollabDTO{IdeaID: "xyz", Participants: []any{"", 1.0}, Status: "nope"}
	first := CreateKollab(dto)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, CreateKollab(dto), fmt.Sprintf("run %d", i))
	}
}

func TestObjectID(t *testing.T) {
	assert.True(t, ObjectID("507f1f77bcf86cd799439011"))
	assert.True(t, ObjectID("507F1F77BCF86CD799439011"))
	assert.False(t, ObjectID("not-an-id"))
	assert.False(t, ObjectID("507f1f77bcf86cd79943901"))
	assert.False(t, ObjectID("507f1f77bcf86cd79943901g"))
	assert.False(t, ObjectID(""))
}

func TestNormalizeID(t *testing.T) {
	assert.Equal(t, "abc", NormalizeID("abc"))
	assert.Equal(t, "first", NormalizeID([]string{"first", "second"}))
	assert.Equal(t, "first", NormalizeID([]any{"first", 2}))
	assert.Equal(t, "", NormalizeID([]string{}))
	assert.Equal(t, "", NormalizeID([]any{1}))
	assert.Equal(t, "", NormalizeID(42))
	assert.Equal(t, "", NormalizeID(nil))
}

func TestSanitizeHelpers(t *testing.T) {
	assert.Equal(t, "a b", Sanitize("  a b \n"))
	assert.Equal(t, "x", String(" x "))
	assert.Equal(t, "", String(5))
	assert.Equal(t, []string{"a", "b"}, Participants([]any{" a", "b "}))
	assert.Equal(t, []string{"c"}, Participants([]string{" c "}))
}

func TestNullStatusIsNotAbsent(t *testing.T) {
	var idea domain.CreateIdeaDTO
	require.NoError(t, json.Unmarshal([]byte(`{"title":"X","description":"Y","createdBy":"u1","status":null}`), &idea))
	assert.Equal(t, []string{"Status must be a string"}, CreateIdea(idea).Errors)

	var absent domain.CreateIdeaDTO
	require.NoError(t, json.Unmarshal([]byte(`{"title":"X","description":"Y","createdBy":"u1"}`), &absent))
	assert.True(t, CreateIdea(absent).IsValid)

	var kollab domain.CreateKollabDTO
	require.NoError(t, json.Unmarshal([]byte(`{"ideaId":"507f1f77bcf86cd799439011","goal":"g","participants":["a"],"successCriteria":"s","status":null}`), &kollab))
	assert.Equal(t, []string{"Status must be a string"}, CreateKollab(kollab).Errors)
}
