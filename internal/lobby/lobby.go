// Package lobby builds a best-effort snapshot of the champion-select chat
// lobby and derives the external stats link for it.
package lobby

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/lcu-tools/dodgewatch/internal/lcu"
)

const participantsPath = "/chat/v5/participants"

// Participant is one remote chat participant. Immutable once built.
type Participant struct {
	Cid      string `json:"cid"`
	Name     string `json:"name"`
	GameName string `json:"gameName"`
	GameTag  string `json:"gameTag"`
	Pid      string `json:"pid"`
	Puuid    string `json:"puuid"`
	Region   string `json:"region"`
	Muted    bool   `json:"muted"`
}

type Lobby struct {
	Participants []Participant `json:"participants"`
}

// Build fetches the participant list and keeps only entries whose cid marks
// them as part of the champion-select phase, preserving the response order.
// Lobby display is best-effort: on any transport or parse failure it logs
// and returns an empty Lobby rather than an error.
func Build(ctx context.Context, client lcu.Client, marker string, log *zap.Logger) Lobby {
	empty := Lobby{Participants: []Participant{}}

	raw, err := client.Request(ctx, http.MethodGet, participantsPath, nil)
	if err != nil {
		log.Warn("lobby fetch failed", zap.Error(err))
		return empty
	}

	var all Lobby
	if err := json.Unmarshal(raw, &all); err != nil {
		log.Warn("lobby response did not parse", zap.Error(err))
		return empty
	}

	kept := make([]Participant, 0, len(all.Participants))
	for _, p := range all.Participants {
		if strings.Contains(p.Cid, marker) {
			kept = append(kept, p)
		}
	}
	return Lobby{Participants: kept}
}
