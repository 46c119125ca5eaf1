package reconciler

import (
	"fmt"
	"strings"

	"trio.game/internal/protocol"
)

func stateMessage(s protocol.GameState) string {
	switch s {
	case protocol.StatePreparing:
		return "Waiting for players to join the game"
	case protocol.StatePlaying:
		return "The game has started, look for a trio!"
	case protocol.StateOver:
		return "No trio left, the game is over"
	case protocol.StateFinished:
		return "The game is finished"
	}
	return fmt.Sprintf("Game is now %s", s)
}

func (r *Reconciler) queueMessage(ev protocol.QueueEvent) string {
	q := ev.Change()
	name := r.displayName(q.Player)
	switch e := ev.(type) {
	case protocol.PlayerSelects:
		return name + " is selecting a trio"
	case protocol.PlayerDeclares:
		return fmt.Sprintf("%s declared a trio and waits in position %d", name, indexOf(q.Queue, q.Player.ID)+1)
	case protocol.SelectTimeout:
		return name + " was too slow"
	case protocol.SelectGiveUp:
		return name + " gave up"
	case protocol.SelectNoLonger:
		return name + " no longer has a trio to select"
	case protocol.SelectSuccess:
		return fmt.Sprintf("%s found a trio%s", name, scoreSuffix(q.NewScore))
	case protocol.SelectFailure:
		msg := name + " made a mistake"
		if len(e.Faulty) > 0 {
			msg += " on " + strings.Join(e.Faulty, ", ")
		}
		return msg + scoreSuffix(q.NewScore)
	}
	return name + ": " + ev.EventType()
}

func drawMessage(reason protocol.DrawReason) string {
	switch reason {
	case protocol.DrawExtra:
		return "No trio on the board, 3 more cards are drawn"
	case protocol.DrawReplaced:
		return "Still no trio, the extra cards are replaced"
	}
	return ""
}

func scoreSuffix(score *int) string {
	if score == nil {
		return ""
	}
	return fmt.Sprintf(" (score %d)", *score)
}

func (r *Reconciler) displayName(p protocol.Player) string {
	name := p.Name
	if name == "" {
		name = r.game.PlayerName(p.ID)
	}
	if r.viewer.UserID != "" && p.ID == r.viewer.UserID {
		return name + " (you)"
	}
	return name
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
