package protocol

import "fmt"

// ActionType names a player action posted to the game's action endpoint.
type ActionType string

const (
	ActionStartGame   ActionType = "start_game"
	ActionPlayerJoin  ActionType = "player_join"
	ActionPlayerLeave ActionType = "player_leave"
	ActionFinishGame  ActionType = "finish_game"
	ActionPrepareGame ActionType = "prepare_game"
	ActionCancelTrio  ActionType = "cancel_trio"
	ActionDeclareTrio ActionType = "declare_trio"
	ActionSelectTrio  ActionType = "select_trio"
)

// Action is the body of POST /games/{id}/actions.
type Action struct {
	Type      ActionType `json:"type"`
	Selection []int      `json:"selection,omitempty"`
}

func (a Action) Validate() error {
	switch a.Type {
	case ActionStartGame, ActionPlayerJoin, ActionPlayerLeave, ActionFinishGame,
		ActionPrepareGame, ActionCancelTrio, ActionDeclareTrio:
		if len(a.Selection) != 0 {
			return fmt.Errorf("%s takes no selection", a.Type)
		}
		return nil
	case ActionSelectTrio:
		if len(a.Selection) != 3 {
			return fmt.Errorf("select_trio needs 3 positions, got %d", len(a.Selection))
		}
		return nil
	case "":
		return fmt.Errorf("empty action type")
	default:
		return fmt.Errorf("unknown action type %q", a.Type)
	}
}

func SelectTrio(positions []int) Action {
	return Action{Type: ActionSelectTrio, Selection: append([]int(nil), positions...)}
}
