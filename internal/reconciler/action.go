package reconciler

import "trio.game/internal/protocol"

// Action is what the single action button shows. An empty Type means disabled.
type Action struct {
	Label string
	Type  protocol.ActionType
}

func (a Action) Enabled() bool { return a.Type != "" }

func (a Action) String() string {
	if !a.Enabled() {
		return a.Label + "/disabled"
	}
	return a.Label + "/" + string(a.Type)
}

var (
	ActionStart  = Action{Label: "Start", Type: protocol.ActionStartGame}
	ActionJoin   = Action{Label: "Join", Type: protocol.ActionPlayerJoin}
	ActionLeave  = Action{Label: "Leave", Type: protocol.ActionPlayerLeave}
	ActionSignin = Action{Label: "Signin"}
	ActionTrio   = Action{Label: "Trio!", Type: protocol.ActionDeclareTrio}
	ActionCancel = Action{Label: "Cancel", Type: protocol.ActionCancelTrio}
	ActionWait   = Action{Label: "Wait"}
	ActionFinish = Action{Label: "Finish", Type: protocol.ActionFinishGame}
	ActionAgain  = Action{Label: "Again", Type: protocol.ActionPrepareGame}
)

// LegalAction evaluates the decision table for the viewer identified by userID ("" for an
// anonymous session).
func LegalAction(g GameState, userID string) Action {
	anonymous := userID == ""
	owner := !anonymous && g.OwnerID == userID

	switch g.State {
	case protocol.StatePreparing:
		switch {
		case owner:
			return ActionStart
		case anonymous:
			return ActionSignin
		case g.IsPlayer(userID):
			return ActionLeave
		default:
			return ActionJoin
		}
	case protocol.StatePlaying:
		if !g.IsPlayer(userID) {
			return ActionWait
		}
		switch rank := g.QueueRank(userID); {
		case rank == 0:
			return ActionCancel
		case rank > 0:
			return ActionWait
		default:
			return ActionTrio
		}
	case protocol.StateOver:
		switch {
		case owner:
			return ActionFinish
		case anonymous:
			return ActionSignin
		default:
			return ActionWait
		}
	case protocol.StateFinished:
		switch {
		case owner:
			return ActionAgain
		case anonymous:
			return ActionSignin
		default:
			return ActionWait
		}
	}
	return ActionWait
}
