package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/lcu-tools/dodgewatch/internal/config"
	"github.com/lcu-tools/dodgewatch/internal/lcu"
	"github.com/lcu-tools/dodgewatch/internal/lobby"
	"github.com/lcu-tools/dodgewatch/internal/opgg"
)

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func GetStatus(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"connected": d.Conn.Connected()})
	}
}

func GetConfig(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, d.Config.Get())
	}
}

func SetConfig(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var cfg config.UserConfig
		if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", "config body did not parse")
			return
		}
		if err := d.Config.Set(cfg); err != nil {
			writeFailure(w, d.Log, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// GetLobby returns the champion-select lobby snapshot plus the derived
// stats link. The snapshot itself is best-effort, but reaching the game
// client at all is not: without a connection this is a 409, so the UI can
// tell "no game client" apart from "empty lobby".
func GetLobby(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		client, err := d.Conn.Gateway()
		if err != nil {
			writeFailure(w, d.Log, err)
			return
		}
		cfg := d.Config.Get()

		lb := lobby.Build(r.Context(), client, cfg.ChatPhaseMarker, d.Log)

		region := cfg.RegionOverride
		if region == "" {
			info, err := lobby.FetchRegion(r.Context(), client)
			if err != nil {
				// Link derivation degrades with the lobby; the snapshot
				// is still worth returning.
				d.Log.Warn("region fetch failed", zap.Error(err))
			}
			region = lobby.ShortRegion(info.WebRegion)
		}

		writeJSON(w, http.StatusOK, struct {
			Lobby     lobby.Lobby `json:"lobby"`
			Region    string      `json:"region"`
			StatsLink string      `json:"statsLink"`
		}{
			Lobby:     lb,
			Region:    region,
			StatsLink: lobby.StatsLink(lb, region, cfg.StatsProvider),
		})
	}
}

func GetClientInfo(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		info, ok := d.Conn.Info()
		if !ok {
			writeFailure(w, d.Log, lcu.ErrGatewayUnavailable)
			return
		}
		writeJSON(w, http.StatusOK, info)
	}
}

func Dodge(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		client, err := d.Conn.Gateway()
		if err != nil {
			writeFailure(w, d.Log, err)
			return
		}
		if err := d.Watch.Leave(r.Context(), client); err != nil {
			writeFailure(w, d.Log, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func ToggleWatch(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		client, err := d.Conn.Gateway()
		if err != nil {
			writeFailure(w, d.Log, err)
			return
		}
		armed, gameID, err := d.Watch.Toggle(r.Context(), client)
		if err != nil {
			writeFailure(w, d.Log, err)
			return
		}
		resp := struct {
			Armed  bool   `json:"armed"`
			GameID *int64 `json:"gameId,omitempty"`
		}{Armed: armed}
		if armed {
			resp.GameID = &gameID
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func CallStats(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Function string          `json:"function"`
			Params   json.RawMessage `json:"params"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Function == "" {
			writeError(w, http.StatusBadRequest, "bad_request", "expected {function, params}")
			return
		}
		result, err := d.Stats.Call(r.Context(), body.Function, body.Params)
		if err != nil {
			writeFailure(w, d.Log, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]json.RawMessage{"result": result})
	}
}

// writeFailure maps error kinds to distinct statuses so the UI never tells
// the user to retry something unfixable.
func writeFailure(w http.ResponseWriter, log *zap.Logger, err error) {
	switch {
	case errors.Is(err, lcu.ErrGatewayUnavailable):
		writeError(w, http.StatusConflict, "gateway_unavailable", err.Error())
	case errors.Is(err, lcu.ErrParse):
		writeError(w, http.StatusUnprocessableEntity, "parse_error", err.Error())
	case errors.Is(err, lcu.ErrTransport):
		writeError(w, http.StatusBadGateway, "transport_error", err.Error())
	case errors.Is(err, config.ErrPersistence):
		writeError(w, http.StatusInternalServerError, "persistence_error", err.Error())
	case errors.Is(err, opgg.ErrRemoteAPI):
		writeError(w, http.StatusBadGateway, "remote_api_error", err.Error())
	case errors.Is(err, opgg.ErrEmptyResponse), errors.Is(err, opgg.ErrTransport):
		writeError(w, http.StatusBadGateway, "transport_error", err.Error())
	default:
		log.Error("unclassified failure", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, kind, msg string) {
	writeJSON(w, status, struct {
		Kind  string `json:"kind"`
		Error string `json:"error"`
	}{Kind: kind, Error: msg})
}
