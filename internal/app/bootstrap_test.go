package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"kala/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func testConfig() config.Config {
	return config.Config{
		App: config.AppConfig{AppName: "kala-test", HTTPPort: "0"},
		JWT: config.JWTConfig{
			AccessSecret:     "access-secret",
			RefreshSecret:    "refresh-secret",
			AccessExpiresIn:  time.Minute,
			RefreshExpiresIn: time.Hour,
		},
		Session: config.SessionConfig{TTL: time.Hour, SweepSchedule: "@every 1h"},
		Chat:    config.ChatConfig{ReplyDelay: time.Millisecond},
	}
}

func newTestApp(t *testing.T, cfg config.Config) *fiber.App {
	t.Helper()
	a, cleanup, err := Bootstrap(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, cleanup()) })
	return a.Fiber
}

func call(t *testing.T, app *fiber.App, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, fiber.TestConfig{Timeout: 5 * time.Second})
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp.StatusCode, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

type tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func startSession(t *testing.T, app *fiber.App) tokens {
	t.Helper()
	status, env := call(t, app, http.MethodPost, "/api/v1/sessions", "", nil)
	require.Equal(t, http.StatusCreated, status)
	tok := decode[tokens](t, env.Data)
	require.NotEmpty(t, tok.AccessToken)
	return tok
}

func TestHTTP_HealthAndCatalog(t *testing.T) {
	app := newTestApp(t, testConfig())

	status, _ := call(t, app, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = call(t, app, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, status)

	status, env := call(t, app, http.MethodGet, "/api/v1/catalog/languages", "", nil)
	require.Equal(t, http.StatusOK, status)
	kind := decode[struct {
		Options []struct{ ID string } `json:"options"`
	}](t, env.Data)
	assert.Len(t, kind.Options, 6)

	status, _ = call(t, app, http.MethodGet, "/api/v1/catalog/spaceships", "", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, env = call(t, app, http.MethodGet, "/api/v1/catalog", "", nil)
	require.Equal(t, http.StatusOK, status)
	all := decode[map[string]json.RawMessage](t, env.Data)
	assert.Len(t, all, 11)
}

func TestHTTP_AuthGuards(t *testing.T) {
	app := newTestApp(t, testConfig())
	tok := startSession(t, app)

	status, env := call(t, app, http.MethodGet, "/api/v1/session", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, http.StatusUnauthorized, env.Status)

	status, _ = call(t, app, http.MethodGet, "/api/v1/session", tok.RefreshToken, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = call(t, app, http.MethodPost, "/api/v1/auth/refresh", tok.AccessToken, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, env = call(t, app, http.MethodPost, "/api/v1/auth/refresh", "", map[string]string{"refresh_token": tok.RefreshToken})
	require.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, decode[tokens](t, env.Data).AccessToken)

	status, _ = call(t, app, http.MethodDelete, "/api/v1/session", tok.AccessToken, nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = call(t, app, http.MethodGet, "/api/v1/session", tok.AccessToken, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestHTTP_WizardFlow(t *testing.T) {
	app := newTestApp(t, testConfig())
	tok := startSession(t, app).AccessToken

	type transition struct {
		From  string `json:"from"`
		To    string `json:"to"`
		Route string `json:"route"`
	}
	act := func(action string, body any) (int, envelope) {
		return call(t, app, http.MethodPost, "/api/v1/wizard/"+action, tok, body)
	}

	status, env := act("get_started", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "language", decode[transition](t, env.Data).To)

	status, _ = act("sign_up", nil)
	assert.Equal(t, http.StatusConflict, status)
	status, _ = act("fly", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = act("continue", nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = act("swipe", map[string]float64{"offset": 400, "width": 0})
	assert.Equal(t, http.StatusBadRequest, status)
	status, env = act("swipe", map[string]float64{"offset": 400, "width": 390})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "carousel", decode[transition](t, env.Data).To)

	for _, a := range []string{"skip", "sign_up"} {
		status, _ = act(a, nil)
		require.Equal(t, http.StatusOK, status, a)
	}

	status, env = act("advance", nil)
	require.Equal(t, http.StatusUnprocessableEntity, status)
	res := decode[struct {
		Valid  bool `json:"valid"`
		Notice struct {
			Title string `json:"title"`
		} `json:"notice"`
	}](t, env.Data)
	assert.False(t, res.Valid)
	assert.Equal(t, "Incomplete", res.Notice.Title)

	status, env = call(t, app, http.MethodPatch, "/api/v1/onboarding/draft", tok, map[string]string{
		"full_name":          "Lakshmi",
		"preferred_language": "te",
	})
	require.Equal(t, http.StatusOK, status)
	draft := decode[struct {
		Progress struct {
			Percentage int `json:"percentage"`
		} `json:"progress"`
	}](t, env.Data)
	assert.Equal(t, 20, draft.Progress.Percentage)

	status, env = act("advance", nil)
	require.Equal(t, http.StatusOK, status)
	tr := decode[transition](t, env.Data)
	assert.Equal(t, "profile", tr.To)
	assert.Equal(t, "/(onboarding)/profile", tr.Route)

	status, _ = call(t, app, http.MethodPatch, "/api/v1/onboarding/draft", tok, map[string]string{"craft_category": "spaceships"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = call(t, app, http.MethodPost, "/api/v1/onboarding/platforms/etsy/connect", tok, nil)
	assert.Equal(t, http.StatusConflict, status)

	status, env = call(t, app, http.MethodGet, "/api/v1/onboarding/steps/identity/validation", tok, nil)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, decode[struct {
		Valid bool `json:"valid"`
	}](t, env.Data).Valid)

	status, _ = call(t, app, http.MethodGet, "/api/v1/profile", tok, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestHTTP_ChatAndProducts(t *testing.T) {
	app := newTestApp(t, testConfig())
	tok := startSession(t, app).AccessToken

	status, env := call(t, app, http.MethodPost, "/api/v1/chat/messages", tok, map[string]any{
		"quick_action": "suggest_price",
		"wait":         true,
	})
	require.Equal(t, http.StatusOK, status)
	sent := decode[struct {
		User  struct{ Text string } `json:"user"`
		Reply *struct {
			Text string `json:"text"`
		} `json:"reply"`
	}](t, env.Data)
	assert.Equal(t, "suggest_price", sent.User.Text)
	require.NotNil(t, sent.Reply)
	assert.Contains(t, sent.Reply.Text, "To suggest the best price")

	status, _ = call(t, app, http.MethodPost, "/api/v1/chat/messages", tok, map[string]any{"text": "  "})
	assert.Equal(t, http.StatusBadRequest, status)

	status, env = call(t, app, http.MethodGet, "/api/v1/chat/messages", tok, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]json.RawMessage](t, env.Data), 3)

	status, env = call(t, app, http.MethodPost, "/api/v1/products", tok, map[string]string{"title": "Blue Pottery Vase"})
	require.Equal(t, http.StatusCreated, status)
	created := decode[struct {
		Product struct {
			ID string `json:"id"`
		} `json:"product"`
	}](t, env.Data)

	status, env = call(t, app, http.MethodPost, "/api/v1/products/"+created.Product.ID+"/publish", tok, nil)
	require.Equal(t, http.StatusUnprocessableEntity, status)
	missing := decode[struct {
		Missing []string `json:"missing"`
	}](t, env.Data)
	assert.ElementsMatch(t, []string{"price", "category"}, missing.Missing)

	status, _ = call(t, app, http.MethodPost, "/api/v1/products/"+created.Product.ID+"/suggestions/colour", tok, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = call(t, app, http.MethodGet, "/api/v1/products/not-a-uuid", tok, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = call(t, app, http.MethodGet, "/api/v1/products?filter=archived", tok, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, env = call(t, app, http.MethodGet, "/api/v1/products?filter=draft", tok, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, decode[struct {
		Count int `json:"count"`
	}](t, env.Data).Count)
}

func TestHTTP_RedisSessions(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig()
	cfg.Redis = config.RedisConfig{Enabled: true, Address: mr.Addr()}
	app := newTestApp(t, cfg)

	tok := startSession(t, app).AccessToken
	assert.Len(t, mr.Keys(), 1)

	status, _ := call(t, app, http.MethodPost, "/api/v1/wizard/get_started", tok, nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = call(t, app, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, status)

	mr.FastForward(2 * time.Hour)
	status, _ = call(t, app, http.MethodGet, "/api/v1/session", tok, nil)
	assert.Equal(t, http.StatusNotFound, status)
}
