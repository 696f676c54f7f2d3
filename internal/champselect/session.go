// Package champselect models the in-progress champion-select session.
package champselect

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/lcu-tools/dodgewatch/internal/lcu"
)

const sessionPath = "/lol-champ-select/v1/session"

// Session identifies one in-progress champion-select phase. It is stale as
// soon as that phase ends; GameID is the only field callers rely on.
type Session struct {
	GameID            int64 `json:"gameId"`
	LocalPlayerCellID int64 `json:"localPlayerCellId"`
	IsCustomGame      bool  `json:"isCustomGame"`
	Timer             Timer `json:"timer"`
}

type Timer struct {
	Phase                   string `json:"phase"`
	AdjustedTimeLeftInPhase int64  `json:"adjustedTimeLeftInPhase"`
	IsInfinite              bool   `json:"isInfinite"`
}

// Fetch strict-parses the current session. There is no degraded value for
// "current game id", so any transport or parse failure is returned and the
// calling action must fail whole.
func Fetch(ctx context.Context, client lcu.Client) (Session, error) {
	raw, err := client.Request(ctx, http.MethodGet, sessionPath, nil)
	if err != nil {
		return Session{}, err
	}
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return Session{}, fmt.Errorf("%w: champ select session: %v", lcu.ErrParse, err)
	}
	if s.GameID == 0 {
		return Session{}, fmt.Errorf("%w: champ select session has no game id", lcu.ErrParse)
	}
	return s, nil
}
