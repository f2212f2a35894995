package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/AzielCF/az-settings/core/settings/application"
	"github.com/AzielCF/az-settings/core/settings/domain"
	"github.com/AzielCF/az-settings/core/settings/infrastructure"
	"github.com/AzielCF/az-settings/pkg/activitylog"
	"github.com/AzielCF/az-settings/ui/rest/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Status  int             `json:"status"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Results json.RawMessage `json:"results"`
}

func newTestApp(t *testing.T) (*fiber.App, *application.SettingsStore, *activitylog.Log) {
	t.Helper()
	activity := activitylog.New(50, 0)
	repo := infrastructure.NewSettingsMemoryRepository()
	store := application.NewSettingsStore(context.Background(), repo, application.WithActivityRecorder(activity))

	app := fiber.New()
	app.Use(middleware.Recovery())
	api := app.Group("/api")
	InitRestSettings(api, store, activity)
	InitRestHealth(api, store, repo, "memory", "test-node")
	return app, store, activity
}

func call(t *testing.T, app *fiber.App, method, path string, body any) (*http.Response, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	require.NoError(t, err)

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	_ = json.Unmarshal(raw, &env)
	return resp, env
}

func TestGetState(t *testing.T) {
	app, _, _ := newTestApp(t)
	resp, env := call(t, app, http.MethodGet, "/api/settings", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "SUCCESS", env.Code)

	var state domain.StoreState
	require.NoError(t, json.Unmarshal(env.Results, &state))
	assert.Equal(t, domain.Defaults(), state.Settings)
	assert.Equal(t, "15.1", state.AppInfo.Version)
}

func TestUpdateFieldEndpoint(t *testing.T) {
	app, store, _ := newTestApp(t)

	resp, _ := call(t, app, http.MethodPut, "/api/settings/fields/theme", map[string]any{"value": "light"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, domain.ThemeLight, store.GetSettings().Theme)

	resp, env := call(t, app, http.MethodGet, "/api/settings/fields/theme", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var view FieldView
	require.NoError(t, json.Unmarshal(env.Results, &view))
	assert.Equal(t, "light", view.Value)
	assert.Equal(t, domain.GroupDisplay, view.Group)
}

func TestUpdateFieldEndpointRejects(t *testing.T) {
	app, store, _ := newTestApp(t)

	resp, env := call(t, app, http.MethodPut, "/api/settings/fields/theme", map[string]any{"value": "neon"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION_ERROR", env.Code)

	resp, _ = call(t, app, http.MethodPut, "/api/settings/fields/brightness", map[string]any{"value": 1})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = call(t, app, http.MethodPut, "/api/settings/fields/showGrid", map[string]any{"value": "yes"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	assert.Equal(t, domain.Defaults(), store.GetSettings())
}

func TestPatchSettingsAndVolumes(t *testing.T) {
	app, _, _ := newTestApp(t)

	resp, _ := call(t, app, http.MethodPatch, "/api/settings/values", map[string]any{
		"masterVolume": 0.5,
		"musicVolume":  0.4,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, env := call(t, app, http.MethodGet, "/api/settings/volumes", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var volumes domain.Volumes
	require.NoError(t, json.Unmarshal(env.Results, &volumes))
	assert.InDelta(t, 0.2, volumes.Music, 1e-9)
	assert.InDelta(t, 0.5, volumes.Master, 1e-9)

	resp, _ = call(t, app, http.MethodPatch, "/api/settings/values", map[string]any{"volume": 1})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListFields(t *testing.T) {
	app, _, _ := newTestApp(t)
	resp, env := call(t, app, http.MethodGet, "/api/settings/fields", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var views []FieldView
	require.NoError(t, json.Unmarshal(env.Results, &views))
	assert.Len(t, views, len(domain.Fields()))
	assert.Equal(t, domain.FieldTheme, views[0].Field)
}

func TestResetEndpoint(t *testing.T) {
	app, store, _ := newTestApp(t)
	require.NoError(t, store.UpdateField(context.Background(), domain.KeyShowFPS.Set(true)))

	resp, _ := call(t, app, http.MethodPost, "/api/settings/reset", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, domain.Defaults(), store.GetSettings())
}

func TestPanelEndpoints(t *testing.T) {
	app, store, _ := newTestApp(t)
	call(t, app, http.MethodPost, "/api/settings/panel/open", nil)
	assert.True(t, store.GetState().IsPanelOpen)
	call(t, app, http.MethodPost, "/api/settings/panel/close", nil)
	assert.False(t, store.GetState().IsPanelOpen)
}

func TestExportImportEndpoints(t *testing.T) {
	app, store, _ := newTestApp(t)
	require.NoError(t, store.UpdateField(context.Background(), domain.KeyDifficulty.Set(domain.DifficultyHard)))

	req := httptest.NewRequest(http.MethodGet, "/api/settings/export", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "grand-opus-settings-")
	assert.True(t, strings.HasPrefix(resp.Header.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON))
	text, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	store.ResetToDefaults(context.Background())
	resp, _ = call(t, app, http.MethodPost, "/api/settings/import", domain.ImportRequest{Data: string(text)})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, domain.DifficultyHard, store.GetSettings().Difficulty)

	resp, env := call(t, app, http.MethodPost, "/api/settings/import", domain.ImportRequest{Data: "not json"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "IMPORT_FAILED", env.Code)
	assert.Equal(t, domain.DifficultyHard, store.GetSettings().Difficulty)

	resp, _ = call(t, app, http.MethodPost, "/api/settings/import", domain.ImportRequest{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUnlockEndpoints(t *testing.T) {
	app, _, _ := newTestApp(t)

	var last UnlockClickResponse
	for i := 0; i < domain.UnlockThreshold; i++ {
		resp, env := call(t, app, http.MethodPost, "/api/settings/unlock/click", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.NoError(t, json.Unmarshal(env.Results, &last))
		if i < domain.UnlockThreshold-1 {
			assert.False(t, last.Unlocked)
			assert.Equal(t, i+1, last.Progress.Count)
		}
	}
	assert.True(t, last.Unlocked)
	assert.Equal(t, domain.UnlockProgress{Count: 0, Remaining: domain.UnlockThreshold}, last.Progress)

	_, env := call(t, app, http.MethodGet, "/api/settings/developer-mode", nil)
	var mode map[string]bool
	require.NoError(t, json.Unmarshal(env.Results, &mode))
	assert.True(t, mode["unlocked"])
}

func TestActivityEndpoint(t *testing.T) {
	app, _, _ := newTestApp(t)
	call(t, app, http.MethodPut, "/api/settings/fields/showGrid", map[string]any{"value": false})
	call(t, app, http.MethodPost, "/api/settings/reset", nil)

	resp, env := call(t, app, http.MethodGet, "/api/settings/activity", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var stats activitylog.Stats
	require.NoError(t, json.Unmarshal(env.Results, &stats))
	assert.Equal(t, int64(1), stats.TotalUpdates)
	assert.Equal(t, int64(1), stats.TotalResets)
	require.Len(t, stats.RecentEvents, 2)
	assert.Equal(t, []string{"showGrid"}, stats.RecentEvents[0].Fields)
}

func TestSummaryEndpoint(t *testing.T) {
	app, _, _ := newTestApp(t)
	_, env := call(t, app, http.MethodGet, "/api/settings/summary", nil)
	var summary domain.Summary
	require.NoError(t, json.Unmarshal(env.Results, &summary))
	assert.Equal(t, "15.1", summary.Version)
}

func TestHealthEndpoint(t *testing.T) {
	app, _, _ := newTestApp(t)
	resp, env := call(t, app, http.MethodGet, "/api/health/status", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var status HealthStatus
	require.NoError(t, json.Unmarshal(env.Results, &status))
	assert.Equal(t, "ok", status.Storage)
	assert.Equal(t, "memory", status.Backend)
	assert.Equal(t, "test-node", status.ServerID)
}
