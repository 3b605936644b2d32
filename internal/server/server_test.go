package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandeepkv93/daybook/internal/db"
	"github.com/sandeepkv93/daybook/internal/remote"
)

const testSecret = "test-secret"

func newTestServer(t *testing.T) string {
	t.Helper()
	conn, err := db.Open(filepath.Join(t.TempDir(), "server.db"))
	require.NoError(t, err)

	handler, err := New(Config{
		Store:  db.NewTodoStore(conn),
		Auth:   AuthConfig{JWTSecret: testSecret},
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)

	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	require.NoError(t, err)
	srv := &http.Server{Handler: handler}
	go srv.Serve(ln)
	t.Cleanup(func() {
		srv.Shutdown(context.Background())
		conn.Close()
	})
	return "http://" + ln.Addr().String()
}

func testClient(t *testing.T, baseURL string) *remote.Client {
	t.Helper()
	token, err := IssueToken(testSecret, "tester", time.Hour, time.Now())
	require.NoError(t, err)
	return remote.NewClient(baseURL, token)
}

func record(id, text string) remote.Record {
	return remote.Record{
		ID:         id,
		Text:       text,
		TargetDate: "2024-04-15",
		CreatedAt:  "2024-04-15T08:00:00.000Z",
		UpdatedAt:  "2024-04-15T08:00:00.000Z",
		Repeat:     "none",
	}
}

func TestHealthSkipsAuth(t *testing.T) {
	base := newTestServer(t)
	res, err := http.Get(base + "/v1/health")
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestTodosRequireBearerToken(t *testing.T) {
	base := newTestServer(t)
	res, err := http.Get(base + "/v1/todos")
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusUnauthorized, res.StatusCode)

	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	assert.Equal(t, "unauthorized", body.Error.Code)

	bad := remote.NewClient(base, "not-a-jwt")
	_, err = bad.SelectAll(t.Context())
	assert.True(t, errors.Is(err, remote.ErrUnauthorized), "got %v", err)
}

func TestClientRoundTrip(t *testing.T) {
	base := newTestServer(t)
	c := testClient(t, base)
	ctx := t.Context()

	require.NoError(t, c.Ping(ctx))
	require.NoError(t, c.Insert(ctx, record("a", "buy milk")))
	require.NoError(t, c.Insert(ctx, record("b", "walk dog")))
	assert.ErrorIs(t, c.Insert(ctx, record("a", "again")), remote.ErrConflict)

	err := c.Update(ctx, "a", remote.Fields{
		"completed":    true,
		"completed_at": "2024-04-15T09:00:00.000Z",
		"updated_at":   "2024-04-15T09:00:00.000Z",
	})
	require.NoError(t, err)
	assert.ErrorIs(t, c.Update(ctx, "missing", remote.Fields{"text": "x"}), remote.ErrNotFound)

	var apiErr *remote.APIError
	err = c.Update(ctx, "a", remote.Fields{"colour": "red"})
	require.True(t, errors.As(err, &apiErr), "got %v", err)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)

	require.NoError(t, c.Delete(ctx, "b"))
	assert.ErrorIs(t, c.Delete(ctx, "b"), remote.ErrNotFound)

	items, err := c.SelectAll(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "a", items[0].ID)
	assert.True(t, items[0].Completed)
	require.NotNil(t, items[0].CompletedAt)

	todo, err := items[0].ToTodo()
	require.NoError(t, err)
	assert.Equal(t, "buy milk", todo.Text)
}

func TestInsertValidatesRecord(t *testing.T) {
	base := newTestServer(t)
	c := testClient(t, base)
	rec := record("x", "")
	err := c.Insert(t.Context(), rec)
	var apiErr *remote.APIError
	require.True(t, errors.As(err, &apiErr), "got %v", err)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
}

func TestIssueTokenRequiresSecret(t *testing.T) {
	_, err := IssueToken("", "me", time.Hour, time.Now())
	assert.Error(t, err)

	token, err := IssueToken(testSecret, "me", time.Hour, time.Now())
	require.NoError(t, err)
	p, err := authenticateJWT(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "me", p.Subject)

	expired, err := IssueToken(testSecret, "me", time.Minute, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	_, err = authenticateJWT(expired, testSecret)
	assert.Error(t, err)
}
