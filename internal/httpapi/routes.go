package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/lcu-tools/dodgewatch/internal/appstate"
	"github.com/lcu-tools/dodgewatch/internal/config"
	"github.com/lcu-tools/dodgewatch/internal/dodge"
	"github.com/lcu-tools/dodgewatch/internal/opgg"
	"github.com/lcu-tools/dodgewatch/internal/ws"
)

// Deps is everything the command surface needs, injected by main.
type Deps struct {
	Conn   *appstate.Connection
	Config *config.Store
	Watch  *dodge.Watch
	Stats  *opgg.Client
	Log    *zap.Logger
}

func SetupRoutes(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", Healthz)
	r.Get("/status", GetStatus(d))
	r.Get("/config", GetConfig(d))
	r.Put("/config", SetConfig(d))
	r.Get("/lobby", GetLobby(d))
	r.Get("/client-info", GetClientInfo(d))
	r.Post("/dodge", Dodge(d))
	r.Post("/dodge/watch", ToggleWatch(d))
	r.Post("/opgg/call", CallStats(d))
	r.Get("/ws", ws.Handler(d.Conn, d.Log))
	return r
}
