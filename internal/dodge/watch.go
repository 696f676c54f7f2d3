// Package dodge holds the watch state machine that decides when a leave
// request may fire, and the poll loop that drives it.
package dodge

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"github.com/lcu-tools/dodgewatch/internal/champselect"
	"github.com/lcu-tools/dodgewatch/internal/lcu"
)

// leavePath invokes the lcds quit for the current teambuilder draft.
const leavePath = `/lol-login/v1/session/invoke?destination=lcdsServiceProxy&method=call&args=["","teambuilder-draft","quitV2",""]`

// Watch is armed for at most one game id at a time. It is the single
// authority on whether an automatic leave may fire. The lock is never held
// across a gateway call.
type Watch struct {
	mu          sync.Mutex
	armedGameID *int64
	log         *zap.Logger
}

func NewWatch(log *zap.Logger) *Watch {
	return &Watch{log: log}
}

// Armed reports the watched game id, if any.
func (w *Watch) Armed() (int64, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.armedGameID == nil {
		return 0, false
	}
	return *w.armedGameID, true
}

// Toggle cancels an armed watch, or arms one against the current champion
// select game. Arming requires a successful session fetch; on fetch failure
// the watch stays disarmed and the error is returned. The returns are the
// resulting armed state and, when armed, the watched game id, both taken
// inside the critical section so they can't drift apart under concurrent
// toggles.
func (w *Watch) Toggle(ctx context.Context, client lcu.Client) (bool, int64, error) {
	w.mu.Lock()
	if w.armedGameID != nil {
		w.armedGameID = nil
		w.mu.Unlock()
		w.log.Info("dodge watch disarmed")
		return false, 0, nil
	}
	w.mu.Unlock()

	sess, err := champselect.Fetch(ctx, client)
	if err != nil {
		return false, 0, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.armedGameID != nil {
		// A concurrent toggle armed while we were fetching; this call
		// keeps its toggle meaning and cancels that watch.
		w.armedGameID = nil
		w.log.Info("dodge watch disarmed")
		return false, 0, nil
	}
	id := sess.GameID
	w.armedGameID = &id
	w.log.Info("dodge watch armed", zap.Int64("gameId", id))
	return true, id, nil
}

// Leave issues a single quit request. Manual action: it ignores watch state
// and is never retried.
func (w *Watch) Leave(ctx context.Context, client lcu.Client) error {
	_, err := client.Request(ctx, http.MethodPost, leavePath, struct{}{})
	return err
}

// FireIfArmed checks the armed game against the current session and fires
// the leave exactly once when the armed game has disappeared. A live
// session with a different game id means champion select rolled over; the
// watch disarms without firing so it cannot dodge the wrong game. A live
// session with the armed id keeps waiting, and so does any fetch failure
// other than a definitive "no session": a transient error or timeout must
// not be mistaken for the game ending while champ select may still be live.
func (w *Watch) FireIfArmed(ctx context.Context, client lcu.Client) (bool, error) {
	w.mu.Lock()
	if w.armedGameID == nil {
		w.mu.Unlock()
		return false, nil
	}
	armed := *w.armedGameID
	w.mu.Unlock()

	sess, err := champselect.Fetch(ctx, client)
	switch {
	case err == nil && sess.GameID == armed:
		return false, nil
	case err == nil:
		w.disarmIf(armed)
		w.log.Info("dodge watch disarmed, a different game is in champ select",
			zap.Int64("armedGameId", armed), zap.Int64("currentGameId", sess.GameID))
		return false, nil
	case !errors.Is(err, lcu.ErrNotFound):
		// Inconclusive; stay armed and let the next poll decide.
		return false, err
	}

	// The monitored game is gone. Claim the watch before firing so two
	// concurrent triggers can't both issue the leave.
	if !w.disarmIf(armed) {
		return false, nil
	}
	if err := w.Leave(ctx, client); err != nil {
		return false, err
	}
	w.log.Info("dodged", zap.Int64("gameId", armed))
	return true, nil
}

func (w *Watch) disarmIf(gameID int64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.armedGameID == nil || *w.armedGameID != gameID {
		return false
	}
	w.armedGameID = nil
	return true
}
