package domain

import (
	"encoding/json"
	"testing"
)

func TestNewPagination(t *testing.T) {
	cases := []struct {
		page, limit int
		total       int64
		want        Pagination
	}{
		{1, 10, 25, Pagination{Page: 1, Limit: 10, Total: 25, TotalPages: 3, HasNextPage: true, HasPrevPage: false}},
		{2, 10, 25, Pagination{Page: 2, Limit: 10, Total: 25, TotalPages: 3, HasNextPage: true, HasPrevPage: true}},
		{3, 10, 25, Pagination{Page: 3, Limit: 10, Total: 25, TotalPages: 3, HasNextPage: false, HasPrevPage: true}},
		{1, 10, 0, Pagination{Page: 1, Limit: 10, Total: 0, TotalPages: 0}},
		{5, 10, 20, Pagination{Page: 5, Limit: 10, Total: 20, TotalPages: 2, HasPrevPage: true}},
		{1, 100, 100, Pagination{Page: 1, Limit: 100, Total: 100, TotalPages: 1}},
	}
	for _, c := range cases {
		got := NewPagination(c.page, c.limit, c.total)
		if got != c.want {
			t.Fatalf("NewPagination(%d, %d, %d) = %+v, want %+v", c.page, c.limit, c.total, got, c.want)
		}
	}
}

func TestPaginationSkip(t *testing.T) {
	if got := NewPagination(3, 10, 25).Skip(); got != 20 {
		t.Fatalf("expected skip 20, got %d", got)
	}
	if got := (Pagination{Page: 0, Limit: 10}).Skip(); got != 0 {
		t.Fatalf("expected skip 0 for page 0, got %d", got)
	}
}

func TestStatusParsing(t *testing.T) {
	if _, err := ParseIdeaStatus("approved"); err != nil {
		t.Fatalf("parse approved: %v", err)
	}
	if _, err := ParseIdeaStatus("active"); err == nil {
		t.Fatalf("expected active to be rejected as an idea status")
	}
	if st, err := ParseKollabStatus("cancelled"); err != nil || st != KollabCancelled {
		t.Fatalf("parse cancelled: %v %q", err, st)
	}
	if _, err := ParseKollabStatus("draft"); err == nil {
		t.Fatalf("expected draft to be rejected as a kollab status")
	}
	if got := JoinStatuses(KollabStatuses); got != "active, completed, cancelled" {
		t.Fatalf("unexpected join: %q", got)
	}
}

func TestCreateDTONullStatus(t *testing.T) {
	var idea CreateIdeaDTO
	if err := json.Unmarshal([]byte(`{"title":"X","status":null}`), &idea); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := idea.Status.(Null); !ok {
		t.Fatalf("expected explicit null status, got %#v", idea.Status)
	}
	if idea.Title != "X" {
		t.Fatalf("title lost: %#v", idea.Title)
	}

	var absent CreateIdeaDTO
	if err := json.Unmarshal([]byte(`{"title":"X"}`), &absent); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if absent.Status != nil {
		t.Fatalf("expected absent status, got %#v", absent.Status)
	}

	var kollab CreateKollabDTO
	if err := json.Unmarshal([]byte(`{"ideaId":"a","status": null ,"participants":["p"]}`), &kollab); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := kollab.Status.(Null); !ok {
		t.Fatalf("expected explicit null kollab status, got %#v", kollab.Status)
	}

	var withStatus CreateKollabDTO
	if err := json.Unmarshal([]byte(`{"status":"completed"}`), &withStatus); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if withStatus.Status != "completed" {
		t.Fatalf("expected completed, got %#v", withStatus.Status)
	}
}
