package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swaploop/swaploop/internal/domain"
	"github.com/swaploop/swaploop/internal/service"
	"github.com/swaploop/swaploop/internal/transport/http/middleware"
	"github.com/swaploop/swaploop/pkg/token"
)

const testSecret = "test-secret"

// Minimal in-memory repos; the handler tests care about status codes and
// envelopes, not storage.

type stubMessageRepo struct {
	mu       sync.Mutex
	messages []domain.Message
}

func (r *stubMessageRepo) Create(ctx context.Context, msg *domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, *msg)
	return nil
}

func (r *stubMessageRepo) GetByID(ctx context.Context, swapID, messageID string) (*domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.messages {
		if m.SwapID == swapID && m.ID == messageID {
			return &m, nil
		}
	}
	return nil, nil
}

func (r *stubMessageRepo) ListBySwap(ctx context.Context, swapID string) ([]domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Message{}
	for _, m := range r.messages {
		if m.SwapID == swapID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *stubMessageRepo) MarkRead(ctx context.Context, swapID, messageID, recipientID string) (*domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.messages {
		m := &r.messages[i]
		if m.SwapID == swapID && m.ID == messageID && m.RecipientID == recipientID {
			m.IsRead = true
			copied := *m
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *stubMessageRepo) CountUnread(ctx context.Context, userID string) (*domain.UnreadCounts, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := &domain.UnreadCounts{Swaps: []domain.SwapUnread{}}
	perSwap := map[string]int{}
	for _, m := range r.messages {
		if m.RecipientID == userID && !m.IsRead {
			perSwap[m.SwapID]++
			counts.Count++
		}
	}
	for id, n := range perSwap {
		counts.Swaps = append(counts.Swaps, domain.SwapUnread{SwapID: id, Count: n})
	}
	return counts, nil
}

func (r *stubMessageRepo) Delete(ctx context.Context, swapID, messageID string) error {
	return nil
}

type stubSwapRepo struct {
	swaps map[string]domain.Swap
}

func (r *stubSwapRepo) Create(ctx context.Context, swap *domain.Swap) error {
	r.swaps[swap.ID] = *swap
	return nil
}

func (r *stubSwapRepo) GetByID(ctx context.Context, id string) (*domain.Swap, error) {
	if s, ok := r.swaps[id]; ok {
		return &s, nil
	}
	return nil, nil
}

func (r *stubSwapRepo) ListByUser(ctx context.Context, userID string) ([]domain.Swap, error) {
	out := []domain.Swap{}
	for _, s := range r.swaps {
		if s.Involves(userID) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *stubSwapRepo) UpdateStatus(ctx context.Context, swap *domain.Swap) error {
	r.swaps[swap.ID] = *swap
	return nil
}

func (r *stubSwapRepo) Delete(ctx context.Context, id string) error {
	delete(r.swaps, id)
	return nil
}

func newTestServer(t *testing.T) (*httptest.Server, *stubMessageRepo) {
	t.Helper()

	now := time.Now().UTC()
	msgRepo := &stubMessageRepo{}
	swapRepo := &stubSwapRepo{swaps: map[string]domain.Swap{
		"swap-1": {
			ID: "swap-1", RequesterID: "alice", OwnerID: "bob",
			Status: domain.SwapStatusPending, CreatedAt: now, UpdatedAt: now,
		},
	}}

	messageService := service.NewMessageService(msgRepo, swapRepo)
	handler := NewMessageHandler(messageService)
	auth := middleware.Auth(testSecret)

	mux := http.NewServeMux()
	mux.Handle("GET /api/v1/messages/swap/{id}", auth(http.HandlerFunc(handler.List)))
	mux.Handle("POST /api/v1/messages/swap/{id}", auth(http.HandlerFunc(handler.Send)))
	mux.Handle("PUT /api/v1/messages/{id}/read", auth(http.HandlerFunc(handler.MarkRead)))
	mux.Handle("GET /api/v1/messages/unread", auth(http.HandlerFunc(handler.Unread)))

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, msgRepo
}

func bearerFor(t *testing.T, userID string) string {
	t.Helper()
	signed, err := token.Mint(testSecret, userID, time.Hour)
	require.NoError(t, err)
	return "Bearer " + signed
}

func doRequest(t *testing.T, method, url, auth, body string) *http.Response {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestMessageEndpointsRequireAuth(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doRequest(t, "GET", srv.URL+"/api/v1/messages/swap/swap-1", "", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doRequest(t, "GET", srv.URL+"/api/v1/messages/swap/swap-1", "Bearer garbage", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSendAndListRoundTrip(t *testing.T) {
	srv, _ := newTestServer(t)
	alice := bearerFor(t, "alice")
	bob := bearerFor(t, "bob")

	resp := doRequest(t, "POST", srv.URL+"/api/v1/messages/swap/swap-1", alice, `{"content":"hello bob"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var sent domain.Message
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&sent))
	assert.Equal(t, "alice", sent.SenderID)
	assert.Equal(t, "bob", sent.RecipientID)
	assert.Equal(t, domain.MessageTypeUser, sent.Type)

	resp = doRequest(t, "GET", srv.URL+"/api/v1/messages/swap/swap-1", bob, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var thread []domain.Message
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&thread))
	require.Len(t, thread, 1)
	assert.Equal(t, sent.ID, thread[0].ID)
}

func TestSendValidation(t *testing.T) {
	srv, _ := newTestServer(t)
	alice := bearerFor(t, "alice")

	tests := []struct {
		name string
		body string
		want int
	}{
		{"blank content", `{"content":"   "}`, http.StatusBadRequest},
		{"bad json", `{`, http.StatusBadRequest},
		{"ok", `{"content":"hi"}`, http.StatusCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doRequest(t, "POST", srv.URL+"/api/v1/messages/swap/swap-1", alice, tt.body)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestSendForbiddenForOutsider(t *testing.T) {
	srv, _ := newTestServer(t)
	mallory := bearerFor(t, "mallory")

	resp := doRequest(t, "POST", srv.URL+"/api/v1/messages/swap/swap-1", mallory, `{"content":"let me in"}`)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	assert.Equal(t, "FORBIDDEN", envelope.Error.Code)
}

func TestMarkReadAndUnreadFlow(t *testing.T) {
	srv, _ := newTestServer(t)
	alice := bearerFor(t, "alice")
	bob := bearerFor(t, "bob")

	resp := doRequest(t, "POST", srv.URL+"/api/v1/messages/swap/swap-1", alice, `{"content":"ping"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var sent domain.Message
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&sent))

	resp = doRequest(t, "GET", srv.URL+"/api/v1/messages/unread", bob, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var counts domain.UnreadCounts
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&counts))
	assert.Equal(t, 1, counts.Count)

	// Sender cannot mark it read; recipient can, twice.
	resp = doRequest(t, "PUT", srv.URL+"/api/v1/messages/"+sent.ID+"/read?swap_id=swap-1", alice, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	for i := 0; i < 2; i++ {
		resp = doRequest(t, "PUT", srv.URL+"/api/v1/messages/"+sent.ID+"/read?swap_id=swap-1", bob, "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var read domain.Message
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&read))
		assert.True(t, read.IsRead)
	}

	resp = doRequest(t, "GET", srv.URL+"/api/v1/messages/unread", bob, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&counts))
	assert.Equal(t, 0, counts.Count)
}

func TestMarkReadRequiresSwapID(t *testing.T) {
	srv, _ := newTestServer(t)
	bob := bearerFor(t, "bob")

	resp := doRequest(t, "PUT", srv.URL+"/api/v1/messages/m1/read", bob, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
