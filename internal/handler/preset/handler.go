package preset

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/prompt-chat/backend/internal/model/preset"
	"github.com/zhouzirui/prompt-chat/backend/pkg/utils"
)

// Handler 快捷提问的HTTP处理器
type Handler struct {
	presets preset.Store
}

// New 创建preset处理器
func New(presets preset.Store) *Handler {
	return &Handler{presets: presets}
}

// RegisterRoutes 注册preset相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/presets", h.handleListPresets)
	r.Get("/presets/{presetID}", h.handleGetPreset)
}

// handleListPresets 列出所有快捷提问
func (h *Handler) handleListPresets(w http.ResponseWriter, _ *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.presets.List())
}

func (h *Handler) handleGetPreset(w http.ResponseWriter, r *http.Request) {
	p, ok := h.presets.FindByID(chi.URLParam(r, "presetID"))
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "preset not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, p)
}
