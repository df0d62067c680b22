package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/five82/tripbook/internal/book"
	"github.com/five82/tripbook/internal/objectstore"
)

// Ensure Client implements objectstore.Store at compile time.
var _ objectstore.Store = (*Client)(nil)

// Client mirrors books to a sync service over HTTP.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	limiter   *rate.Limiter
	userAgent string
}

const (
	defaultUserAgent = "tripbook/0.1"
	requestTimeout   = 10 * time.Second
)

// Options configure NewClient.
type Options struct {
	// URL is the service root, e.g. https://sync.example.com.
	URL string
	// RequestsPerSecond caps outgoing requests. Zero or less disables the cap.
	RequestsPerSecond float64
	// HTTPClient overrides the default client, mainly for tests.
	HTTPClient *http.Client
}

// booksPayload is the body of the collection endpoints.
type booksPayload struct {
	Books []book.Book `json:"books"`
}

// NewClient builds a Client for opts.URL.
func NewClient(opts Options) (*Client, error) {
	base, err := parseBaseURL(opts.URL)
	if err != nil {
		return nil, err
	}
	limit := rate.Inf
	burst := 1
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
		burst = max(1, int(opts.RequestsPerSecond))
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: requestTimeout}
	}
	return &Client{
		baseURL:   base,
		http:      httpClient,
		limiter:   rate.NewLimiter(limit, burst),
		userAgent: defaultUserAgent,
	}, nil
}

// LoadAll fetches every book from GET /api/books.
func (c *Client) LoadAll(ctx context.Context) ([]book.Book, error) {
	var payload booksPayload
	if err := c.do(ctx, http.MethodGet, "/api/books", nil, &payload); err != nil {
		return nil, err
	}
	return payload.Books, nil
}

// SaveAll replaces the remote collection with PUT /api/books.
func (c *Client) SaveAll(ctx context.Context, books []book.Book) error {
	if books == nil {
		books = []book.Book{}
	}
	return c.do(ctx, http.MethodPut, "/api/books", booksPayload{Books: books}, nil)
}

// Put upserts one book with PUT /api/books/{id}.
func (c *Client) Put(ctx context.Context, b book.Book) error {
	if strings.TrimSpace(b.ID) == "" {
		return fmt.Errorf("book id required")
	}
	return c.do(ctx, http.MethodPut, bookPath(b.ID), b, nil)
}

// Delete removes one book with DELETE /api/books/{id}. A 404 counts as done.
func (c *Client) Delete(ctx context.Context, id string) error {
	err := c.do(ctx, http.MethodDelete, bookPath(id), nil, nil)
	var se *StatusError
	if errors.As(err, &se) && se.Code == http.StatusNotFound {
		return nil
	}
	return err
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// StatusError reports a non-2xx response.
type StatusError struct {
	Path string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api %s returned status %d", e.Path, e.Code)
}

func bookPath(id string) string {
	return "/api/books/" + url.PathEscape(id)
}

func (c *Client) do(ctx context.Context, method, path string, body, dest any) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	reqURL := c.baseURL.ResolveReference(&url.URL{Path: path})
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", objectstore.ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return &StatusError{Path: path, Code: resp.StatusCode}
	}
	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("remote url required")
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse remote url %q: %w", raw, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
