package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/nowstatus/internal/common"
	"github.com/dmitrijs2005/nowstatus/internal/logging"
	"github.com/dmitrijs2005/nowstatus/internal/server/access"
	"github.com/dmitrijs2005/nowstatus/internal/server/credentials"
	"github.com/dmitrijs2005/nowstatus/internal/server/models"
	"github.com/dmitrijs2005/nowstatus/internal/server/render"
	"github.com/dmitrijs2005/nowstatus/internal/server/repositories/statuses"
	"github.com/dmitrijs2005/nowstatus/internal/server/services"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	adminSecret  = "admin-s3cret"
	familySecret = "family-s3cret"
	friendSecret = "friend-s3cret"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	server *Server
	repo   statuses.Repository
	logs   *bytes.Buffer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store, err := credentials.New(adminSecret, familySecret, friendSecret)
	require.NoError(t, err)

	var logs bytes.Buffer
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug})))

	repo := statuses.Locked(statuses.NewMemoryRepository())
	svc := services.NewStatusService(access.NewController(store), repo, render.NewRenderer("random6"), logger)
	srv := NewServer("127.0.0.1:0", time.Second, svc, NewMetrics(prometheus.NewRegistry()), logger)

	return &testEnv{server: srv, repo: repo, logs: &logs}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(w, req)
	return w
}

func (e *testEnv) publish(t *testing.T, body any) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/post", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return e.do(req)
}

func (e *testEnv) view(query string) *httptest.ResponseRecorder {
	return e.do(httptest.NewRequest(http.MethodGet, "/"+query, nil))
}

func publishBody(role, session, title, text, image string) services.PublishRequest {
	return services.PublishRequest{Role: role, Session: session, Title: title, Text: text, Image: image}
}

func TestPublishThenView(t *testing.T) {
	env := newTestEnv(t)

	w := env.publish(t, publishBody("random", adminSecret, "Hi", "Hello", ""))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())

	w = env.view("?role=random")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	body := w.Body.String()
	assert.Contains(t, body, "Hi")
	assert.Contains(t, body, "Hello")
	assert.Contains(t, body, `src="data:image/png;base64,"`)
}

func TestPublish_StatusCodes(t *testing.T) {
	tests := []struct {
		name string
		body services.PublishRequest
		want int
	}{
		{"ok", publishBody("family", adminSecret, "t", "x", "aQ=="), http.StatusOK},
		{"wrong admin token", publishBody("family", "guess", "t", "x", ""), http.StatusUnauthorized},
		{"segment secret is not admin", publishBody("family", familySecret, "t", "x", ""), http.StatusUnauthorized},
		{"unknown role", publishBody("admin", adminSecret, "t", "x", ""), http.StatusUnprocessableEntity},
		{"unknown role and bad token", publishBody("admin", "guess", "t", "x", ""), http.StatusUnauthorized},
		{"title too long", publishBody("random", adminSecret, strings.Repeat("a", 51), "", ""), http.StatusUnprocessableEntity},
		{"text too long", publishBody("random", adminSecret, "", strings.Repeat("a", 501), ""), http.StatusUnprocessableEntity},
		{"title at limit", publishBody("random", adminSecret, strings.Repeat("a", 50), "", ""), http.StatusOK},
		{"capitalised role", publishBody("Family", adminSecret, "t", "x", ""), http.StatusUnprocessableEntity},
		{"upper-case role", publishBody("FAMILY", adminSecret, "t", "x", ""), http.StatusUnprocessableEntity},
		{"NUL in text", publishBody("random", adminSecret, "t", "a\x00b", ""), http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			w := env.publish(t, tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())

			if tt.want != http.StatusOK {
				for _, seg := range models.AllSegments {
					st, err := env.repo.Load(context.Background(), seg)
					require.NoError(t, err)
					assert.True(t, st.IsAbsent(), "segment %s changed", seg)
				}
			}
		})
	}
}

func TestPublish_MalformedJSON(t *testing.T) {
	env := newTestEnv(t)

	for _, body := range []string{"", "{", "[]", `{"title": 5}`} {
		req := httptest.NewRequest(http.MethodPost, "/post", strings.NewReader(body))
		w := env.do(req)
		assert.Equal(t, http.StatusBadRequest, w.Code, "body %q", body)
	}
}

func TestPublish_BodyTooLarge(t *testing.T) {
	env := newTestEnv(t)

	huge := `{"role":"random","session":"` + adminSecret + `","image":"` + strings.Repeat("A", MaxBodyBytes) + `"}`
	w := env.do(httptest.NewRequest(http.MethodPost, "/post", strings.NewReader(huge)))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	st, err := env.repo.Load(context.Background(), models.SegmentRandom)
	require.NoError(t, err)
	assert.True(t, st.IsAbsent())
}

func TestPublish_ImageBoundary(t *testing.T) {
	env := newTestEnv(t)

	w := env.publish(t, publishBody("random", adminSecret, "", "", strings.Repeat("A", models.MaxImageLen)))
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.publish(t, publishBody("random", adminSecret, "", "", strings.Repeat("A", models.MaxImageLen+1)))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestView_Degradation(t *testing.T) {
	env := newTestEnv(t)
	require.Equal(t, http.StatusOK, env.publish(t, publishBody("family", adminSecret, "family secret news", "x", "")).Code)
	require.Equal(t, http.StatusOK, env.publish(t, publishBody("random", adminSecret, "public news", "y", "")).Code)

	public := env.view("?role=random").Body.String()

	for _, q := range []string{"", "?role=family", "?role=family&session=nope", "?role=family&session=" + friendSecret, "?role=nobody&session=" + familySecret} {
		w := env.view(q)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, public, w.Body.String(), "query %q", q)
	}

	w := env.view("?role=family&session=" + familySecret)
	assert.Contains(t, w.Body.String(), "family secret news")
}

func TestView_RoleIgnoresCase(t *testing.T) {
	env := newTestEnv(t)
	require.Equal(t, http.StatusOK, env.publish(t, publishBody("family", adminSecret, "family news", "x", "")).Code)

	w := env.view("?role=FAMILY&session=" + familySecret)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "family news")
}

func TestPublish_EscapedSlashesInImage(t *testing.T) {
	env := newTestEnv(t)

	// every "/" written as "\/" doubles the encoded image
	image := strings.Repeat(`\/`, models.MaxImageLen)
	body := `{"role":"random","session":"` + adminSecret + `","title":"t","text":"x","image":"` + image + `"}`
	require.Greater(t, len(body), models.MaxImageLen+64<<10)

	w := env.do(httptest.NewRequest(http.MethodPost, "/post", strings.NewReader(body)))
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	st, err := env.repo.Load(context.Background(), models.SegmentRandom)
	require.NoError(t, err)
	assert.Len(t, st.Image, models.MaxImageLen)
}

func TestView_AbsentFriendPlaceholder(t *testing.T) {
	env := newTestEnv(t)

	w := env.view("?role=friend&session=" + friendSecret)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "I don't know :(")
}

func TestSecretsNeverLogged(t *testing.T) {
	env := newTestEnv(t)

	env.publish(t, publishBody("family", adminSecret, "t", "x", ""))
	env.publish(t, publishBody("family", "wrong-admin-guess", "t", "x", ""))
	env.view("?role=family&session=" + familySecret)
	env.view("?role=friend&session=" + friendSecret)

	logs := env.logs.String()
	require.NotEmpty(t, logs)
	for _, secret := range []string{adminSecret, familySecret, friendSecret, "wrong-admin-guess"} {
		assert.NotContains(t, logs, secret)
	}
}

func TestRequestID(t *testing.T) {
	env := newTestEnv(t)

	w := env.view("")
	assert.NotEmpty(t, w.Header().Get(common.RequestIDHeaderName))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(common.RequestIDHeaderName, "abc-123")
	w = env.do(req)
	assert.Equal(t, "abc-123", w.Header().Get(common.RequestIDHeaderName))
	assert.Contains(t, env.logs.String(), `"request_id":"abc-123"`)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, w.Body.String())
}

func TestMetrics(t *testing.T) {
	env := newTestEnv(t)

	env.publish(t, publishBody("random", adminSecret, "t", "", ""))
	env.publish(t, publishBody("random", "bad", "t", "", ""))
	env.view("?role=family&session=bad")

	w := env.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Contains(t, body, `nowstatus_publish_total{result="ok"} 1`)
	assert.Contains(t, body, `nowstatus_publish_total{result="unauthorized"} 1`)
	assert.Contains(t, body, `nowstatus_view_total{effective="random",requested="family"} 1`)
	assert.Contains(t, body, "nowstatus_http_request_duration_seconds")
	assert.Contains(t, body, `nowstatus_build_info{commit="N/A",version="N/A"} 1`)
}

// stubService lets handler tests force outcomes.
type stubService struct {
	publishErr error
	panicOn    string
}

func (s *stubService) Publish(ctx context.Context, req services.PublishRequest) error {
	if s.panicOn == "publish" {
		panic("boom")
	}
	return s.publishErr
}

func (s *stubService) View(ctx context.Context, role, session string) ([]byte, models.Segment) {
	return []byte("page"), models.SegmentRandom
}

func TestPublish_StorageFailureIsGeneric(t *testing.T) {
	svc := &stubService{publishErr: common.ErrorStorage}
	srv := NewServer("", time.Second, svc, NewMetrics(prometheus.NewRegistry()), logging.Nop{})

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/post", strings.NewReader(`{}`)))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal error"}`, w.Body.String())
}

func TestRecovery(t *testing.T) {
	svc := &stubService{panicOn: "publish"}
	srv := NewServer("", time.Second, svc, NewMetrics(prometheus.NewRegistry()), logging.Nop{})

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/post", strings.NewReader(`{}`)))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "boom")
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	srv := NewServer("127.0.0.1:0", time.Second, &stubService{}, NewMetrics(prometheus.NewRegistry()), logging.Nop{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- srv.Run(ctx)
	}()

	select {
	case err := <-done:
		t.Fatalf("server exited too early: %v", err)
	case <-time.After(150 * time.Millisecond):
	}

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop within timeout after context cancel")
	}
}

func TestRun_ListenError(t *testing.T) {
	srv := NewServer("256.0.0.1:bad", time.Second, &stubService{}, NewMetrics(prometheus.NewRegistry()), logging.Nop{})
	assert.Error(t, srv.Run(context.Background()))
}
