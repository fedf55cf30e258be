package klozasdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client is a minimal Kloza HTTP API client.
type Client struct {
	BaseURL     string
	BasePath    string
	BearerToken string
	HTTPClient  *http.Client
	Timeout     time.Duration
}

// New creates a client with sane defaults.
func New(baseURL string) *Client {
	return &Client{
		BaseURL:  baseURL,
		BasePath: "/api",
		Timeout:  10 * time.Second,
	}
}

type Idea struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedBy   string    `json:"createdBy"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Kollab struct {
	ID              string    `json:"id"`
	IdeaID          string    `json:"ideaId"`
	Goal            string    `json:"goal"`
	Participants    []string  `json:"participants"`
	SuccessCriteria string    `json:"successCriteria"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"createdAt"`
	Idea            *Idea     `json:"idea,omitempty"`
}

type Discussion struct {
	ID        string    `json:"id"`
	KollabID  string    `json:"kollabId"`
	Message   string    `json:"message"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
	Kollab    *Kollab   `json:"kollab,omitempty"`
}

type Pagination struct {
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	Total       int64 `json:"total"`
	TotalPages  int   `json:"totalPages"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
}

// IdeaList is one page of ideas.
type IdeaList struct {
	Count      int        `json:"count"`
	Items      []Idea     `json:"data"`
	Pagination Pagination `json:"pagination"`
}

type CreateIdeaInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	CreatedBy   string `json:"createdBy"`
	Status      string `json:"status,omitempty"`
}

type CreateKollabInput struct {
	IdeaID          string   `json:"ideaId"`
	Goal            string   `json:"goal"`
	Participants    []string `json:"participants"`
	SuccessCriteria string   `json:"successCriteria"`
	Status          string   `json:"status,omitempty"`
}

type CreateDiscussionInput struct {
	Message string `json:"message"`
	Author  string `json:"author"`
}

// APIError wraps non-2xx responses.
type APIError struct {
	StatusCode int
	Message    string
	Errors     []string
	Detail     string
	Body       string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status=%d body=%s", e.StatusCode, e.Body)
	}
	if len(e.Errors) > 0 {
		return fmt.Sprintf("api error: status=%d message=%s errors=%s", e.StatusCode, e.Message, strings.Join(e.Errors, "; "))
	}
	return fmt.Sprintf("api error: status=%d message=%s", e.StatusCode, e.Message)
}

type envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

// CreateIdea creates an idea.
func (c *Client) CreateIdea(ctx context.Context, in CreateIdeaInput) (Idea, error) {
	var resp envelope[Idea]
	err := c.do(ctx, http.MethodPost, "ideas", in, &resp)
	return resp.Data, err
}

// ListIdeas returns a page of ideas. Zero page or limit uses the server default.
func (c *Client) ListIdeas(ctx context.Context, page, limit int) (IdeaList, error) {
	q := url.Values{}
	if page != 0 {
		q.Set("page", fmt.Sprint(page))
	}
	if limit != 0 {
		q.Set("limit", fmt.Sprint(limit))
	}
	endpoint := "ideas"
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}
	var resp IdeaList
	err := c.do(ctx, http.MethodGet, endpoint, nil, &resp)
	return resp, err
}

// GetIdea fetches an idea by id.
func (c *Client) GetIdea(ctx context.Context, id string) (Idea, error) {
	var resp envelope[Idea]
	err := c.do(ctx, http.MethodGet, "ideas/"+url.PathEscape(id), nil, &resp)
	return resp.Data, err
}

// CreateKollab starts a kollab on an approved idea.
func (c *Client) CreateKollab(ctx context.Context, in CreateKollabInput) (Kollab, error) {
	var resp envelope[Kollab]
	err := c.do(ctx, http.MethodPost, "kollabs", in, &resp)
	return resp.Data, err
}

// GetKollab fetches a kollab with its idea.
func (c *Client) GetKollab(ctx context.Context, id string) (Kollab, error) {
	var resp envelope[Kollab]
	err := c.do(ctx, http.MethodGet, "kollabs/"+url.PathEscape(id), nil, &resp)
	return resp.Data, err
}

// CreateDiscussion adds a message to a kollab.
func (c *Client) CreateDiscussion(ctx context.Context, kollabID string, in CreateDiscussionInput) (Discussion, error) {
	var resp envelope[Discussion]
	endpoint := fmt.Sprintf("kollabs/%s/discussions", url.PathEscape(kollabID))
	err := c.do(ctx, http.MethodPost, endpoint, in, &resp)
	return resp.Data, err
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any, out any) error {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.Timeout}
	}
	url := c.base() + "/" + strings.TrimLeft(endpoint, "/")
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, url, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.BearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.BearerToken)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		apiErr := &APIError{StatusCode: resp.StatusCode, Body: string(b)}
		var payload struct {
			Message string   `json:"message"`
			Errors  []string `json:"errors"`
			Error   string   `json:"error"`
		}
		if json.Unmarshal(b, &payload) == nil {
			apiErr.Message = payload.Message
			apiErr.Errors = payload.Errors
			apiErr.Detail = payload.Error
		}
		return apiErr
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *Client) base() string {
	base := strings.TrimRight(c.BaseURL, "/")
	if p := strings.Trim(c.BasePath, "/"); p != "" {
		base += "/" + p
	}
	return base
}
