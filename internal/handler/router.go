package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/zhouzirui/prompt-chat/backend/internal/handler/chat"
	presetHandler "github.com/zhouzirui/prompt-chat/backend/internal/handler/preset"
	"github.com/zhouzirui/prompt-chat/backend/internal/handler/stream"
	"github.com/zhouzirui/prompt-chat/backend/internal/handler/widget"
	"github.com/zhouzirui/prompt-chat/backend/internal/handler/ws"
	middlewarePkg "github.com/zhouzirui/prompt-chat/backend/internal/middleware"
	"github.com/zhouzirui/prompt-chat/backend/internal/model/preset"
	chatService "github.com/zhouzirui/prompt-chat/backend/internal/service/chat"
	"github.com/zhouzirui/prompt-chat/backend/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(chatSvc *chatService.Service, corsOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewarePkg.RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS(corsOrigins))

	widget.New().RegisterRoutes(r)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]any{
			"status":   "ok",
			"sessions": chatSvc.Count(),
		})
	})

	r.Route("/api", func(api chi.Router) {
		chat.New(chatSvc).RegisterRoutes(api)
		presetHandler.New(preset.NewMemoryStore(preset.Seed())).RegisterRoutes(api)
		stream.New(chatSvc).RegisterRoutes(api)
		ws.NewWebSocketHandler(chatSvc).RegisterRoutes(api)
	})

	return r
}
