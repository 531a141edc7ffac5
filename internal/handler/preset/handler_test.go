package preset

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/prompt-chat/backend/internal/model/preset"
)

func setupRouter() *chi.Mux {
	r := chi.NewRouter()
	New(preset.NewMemoryStore(preset.Seed())).RegisterRoutes(r)
	return r
}

func TestListPresets(t *testing.T) {
	rec := httptest.NewRecorder()
	setupRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/presets", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got []preset.Preset
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, preset.Seed(), got)
}

func TestGetPresetNotFound(t *testing.T) {
	rec := httptest.NewRecorder()
	setupRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/presets/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
