package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/swaploop/swaploop/internal/domain"
)

// Gateway is the remote contract the messaging core talks to. All calls may
// fail; how each failure is absorbed is the caller's concern.
type Gateway interface {
	FetchThread(ctx context.Context, swapID, userID string) ([]domain.Message, error)
	Send(ctx context.Context, swapID, userID, content string) (*domain.Message, error)
	MarkRead(ctx context.Context, messageID, swapID, userID string) (*domain.Message, error)
	UnreadCounts(ctx context.Context, userID string) (*domain.UnreadCounts, error)
}

// HTTPGateway talks to the swaploop message API over HTTP. Identity travels
// as a bearer token; the userID arguments exist for the contract's sake and
// are not sent separately.
type HTTPGateway struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewHTTPGateway(baseURL, token string) *HTTPGateway {
	return &HTTPGateway{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (g *HTTPGateway) FetchThread(ctx context.Context, swapID, userID string) ([]domain.Message, error) {
	body, err := g.do(ctx, http.MethodGet, "/api/v1/messages/swap/"+url.PathEscape(swapID), nil)
	if err != nil {
		return nil, err
	}

	var messages []domain.Message
	if err := json.Unmarshal(body, &messages); err != nil {
		// A non-array payload is normalized away rather than propagated.
		log.Printf("fetch thread %s: non-array payload, treating as empty: %v", swapID, err)
		return []domain.Message{}, nil
	}
	if messages == nil {
		messages = []domain.Message{}
	}
	return messages, nil
}

func (g *HTTPGateway) Send(ctx context.Context, swapID, userID, content string) (*domain.Message, error) {
	payload, err := json.Marshal(map[string]string{"content": content})
	if err != nil {
		return nil, err
	}

	body, err := g.do(ctx, http.MethodPost, "/api/v1/messages/swap/"+url.PathEscape(swapID), payload)
	if err != nil {
		return nil, err
	}

	var msg domain.Message
	if err := json.Unmarshal(body, &msg); err != nil || msg.ID == "" {
		return nil, ErrMalformedResponse
	}
	return &msg, nil
}

func (g *HTTPGateway) MarkRead(ctx context.Context, messageID, swapID, userID string) (*domain.Message, error) {
	path := "/api/v1/messages/" + url.PathEscape(messageID) + "/read?swap_id=" + url.QueryEscape(swapID)
	body, err := g.do(ctx, http.MethodPut, path, nil)
	if err != nil {
		return nil, err
	}

	var msg domain.Message
	if err := json.Unmarshal(body, &msg); err != nil {
		return nil, ErrMalformedResponse
	}
	return &msg, nil
}

func (g *HTTPGateway) UnreadCounts(ctx context.Context, userID string) (*domain.UnreadCounts, error) {
	body, err := g.do(ctx, http.MethodGet, "/api/v1/messages/unread", nil)
	if err != nil {
		return nil, err
	}

	// Validate shape before trusting it; a malformed payload must leave the
	// caller's previous counts intact.
	var raw struct {
		Count *int                `json:"count"`
		Swaps []domain.SwapUnread `json:"swaps"`
	}
	if err := json.Unmarshal(body, &raw); err != nil || raw.Count == nil {
		return nil, ErrMalformedResponse
	}
	counts := &domain.UnreadCounts{Count: *raw.Count, Swaps: raw.Swaps}
	if counts.Swaps == nil {
		counts.Swaps = []domain.SwapUnread{}
	}
	return counts, nil
}

// do performs one request and returns the response body, converting every
// failure mode into a *TransportError.
func (g *HTTPGateway) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reqBody)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+g.token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.http.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Status: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{Status: resp.StatusCode, Detail: errorDetail(body)}
	}

	return body, nil
}

// errorDetail extracts a human-readable message from an error body. Both the
// `{"detail": "..."}` and `{"error": {"message": "..."}}` envelopes are seen
// in the wild.
func errorDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
		Error  struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return ""
	}
	if parsed.Detail != "" {
		return parsed.Detail
	}
	return parsed.Error.Message
}

var _ Gateway = (*HTTPGateway)(nil)
