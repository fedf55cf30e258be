package klozasdk

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDoDecodesErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/ideas" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"success":false,"message":"Validation error","errors":["Title is required and must be a string"],"error":"Title is required and must be a string"}`)
	}))
	defer srv.Close()

	_, err := New(srv.URL).CreateIdea(context.Background(), CreateIdeaInput{})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest || apiErr.Message != "Validation error" {
		t.Fatalf("unexpected error: %+v", apiErr)
	}
	if len(apiErr.Errors) != 1 || apiErr.Detail == "" {
		t.Fatalf("expected errors and detail: %+v", apiErr)
	}
}

func TestListIdeasQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.RawQuery; got != "limit=5&page=2" {
			t.Errorf("unexpected query %q", got)
		}
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Errorf("missing bearer token")
		}
		io.WriteString(w, `{"success":true,"count":0,"data":[],"pagination":{"page":2,"limit":5,"total":5,"totalPages":1,"hasNextPage":false,"hasPrevPage":true}}`)
	}))
	defer srv.Close()

	c := New(srv.URL + "/")
	c.BearerToken = "tok"
	list, err := c.ListIdeas(context.Background(), 2, 5)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !list.Pagination.HasPrevPage || list.Pagination.Total != 5 {
		t.Fatalf("unexpected pagination: %+v", list.Pagination)
	}
}

func TestBaseWithoutPath(t *testing.T) {
	c := &Client{BaseURL: "http://example.test/"}
	if got := c.base(); got != "http://example.test" {
		t.Fatalf("unexpected base %q", got)
	}
}
