package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfrund/guestbook/internal/board"
	"github.com/nfrund/guestbook/internal/config"
	"github.com/nfrund/guestbook/internal/pubsub"
	"github.com/nfrund/guestbook/internal/storage/memory"
)

func newTestServer(t *testing.T, mutate ...func(*config.Config)) *Server {
	t.Helper()
	cfg, err := config.Parse(nil)
	require.NoError(t, err)
	cfg.Backend = config.BackendMemory
	cfg.PostRateLimit = 0
	for _, m := range mutate {
		m(cfg)
	}

	bus := pubsub.NewWatermillBridge(nil)
	t.Cleanup(func() { _ = bus.Close() })
	l := board.New(context.Background(), memory.New(), board.WithPublisher(bus), board.WithCapacity(cfg.MaxEntries))
	t.Cleanup(func() { _ = l.Close() })

	return New(Dependencies{Config: cfg, Log: l, Subscriber: bus})
}

func do(s *Server, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	s.E.ServeHTTP(rec, req)
	return rec
}

func TestServer_MessagesRoundTrip(t *testing.T) {
	s := newTestServer(t)

	rec := do(s, http.MethodPost, "/messages", `{"author":"Ann","content":"hello"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"success"}`, rec.Body.String())

	rec = do(s, http.MethodPost, "/messages", `{"author":"Bo","content":"hi"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(s, http.MethodGet, "/messages", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON)

	var got []struct {
		Author  string `json:"author"`
		Content string `json:"content"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "Bo", got[0].Author)
	assert.Equal(t, "hi", got[0].Content)
	assert.Equal(t, "Ann", got[1].Author)
	assert.Equal(t, "hello", got[1].Content)
}

func TestServer_RepeatedReadsAreEqual(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusOK, do(s, http.MethodPost, "/messages", `{"content":"one"}`).Code)

	first := do(s, http.MethodGet, "/messages", "").Body.String()
	second := do(s, http.MethodGet, "/messages", "").Body.String()
	assert.JSONEq(t, first, second)
}

func TestServer_Capacity(t *testing.T) {
	s := newTestServer(t, func(c *config.Config) { c.MaxEntries = 3 })
	for _, c := range []string{"a", "b", "c", "d"} {
		require.Equal(t, http.StatusOK, do(s, http.MethodPost, "/messages", `{"content":"`+c+`"}`).Code)
	}

	var got []map[string]any
	require.NoError(t, json.Unmarshal(do(s, http.MethodGet, "/messages", "").Body.Bytes(), &got))
	require.Len(t, got, 3)
	assert.Equal(t, "d", got[0]["content"])
	assert.Equal(t, "b", got[2]["content"])
}

func TestServer_ValidationError(t *testing.T) {
	s := newTestServer(t)

	rec := do(s, http.MethodPost, "/messages", `{"content":"  "}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"content must not be empty"}`, rec.Body.String())
	assert.JSONEq(t, `[]`, do(s, http.MethodGet, "/messages", "").Body.String())
}

func TestServer_Options(t *testing.T) {
	s := newTestServer(t)

	rec := do(s, http.MethodOptions, "/messages", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.Equal(t, "*", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	assert.Equal(t, "GET, POST, OPTIONS", rec.Header().Get(echo.HeaderAccessControlAllowMethods))
}

func TestServer_MethodNotAllowed(t *testing.T) {
	s := newTestServer(t)

	for _, method := range []string{http.MethodPut, http.MethodDelete, http.MethodPatch} {
		t.Run(method, func(t *testing.T) {
			rec := do(s, method, "/messages", "")

			assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
			assert.Equal(t, "*", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
		})
	}
}

func TestServer_NotFoundIsJSON(t *testing.T) {
	s := newTestServer(t)

	rec := do(s, http.MethodGet, "/nowhere", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error"`)
}

func TestServer_BodyLimit(t *testing.T) {
	s := newTestServer(t, func(c *config.Config) { c.BodyLimit = "1K" })

	rec := do(s, http.MethodPost, "/messages", `{"content":"`+strings.Repeat("a", 4096)+`"}`)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error"`)
}

func TestServer_RequestID(t *testing.T) {
	s := newTestServer(t)

	rec := do(s, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
	assert.Len(t, rec.Header().Get(echo.HeaderXRequestID), 36)
}

func TestServer_RateLimitedPosts(t *testing.T) {
	s := newTestServer(t, func(c *config.Config) { c.PostRateLimit = 0.001 })

	assert.Equal(t, http.StatusOK, do(s, http.MethodPost, "/messages", `{"content":"one"}`).Code)
	assert.Equal(t, http.StatusTooManyRequests, do(s, http.MethodPost, "/messages", `{"content":"two"}`).Code)
	assert.Equal(t, http.StatusOK, do(s, http.MethodGet, "/messages", "").Code, "reads are not limited")
}

func TestServer_StartAndShutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	s := newTestServer(t, func(c *config.Config) {
		c.Addr = addr
		c.ShutdownTimeout = 2 * time.Second
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 3*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestServer_StartFailsOnBusyAddress(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	s := newTestServer(t, func(c *config.Config) { c.Addr = ln.Addr().String() })

	err = s.Start(context.Background())
	assert.Error(t, err)
}
