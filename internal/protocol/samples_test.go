package protocol

// sampleEvents holds one frame per event type, shaped like the game server's output.
var sampleEvents = map[string]string{
	TypeGameStateChanged: `{"type":"game_state_changed","state":"playing"}`,
	TypePlayerJoined:     `{"type":"player_joined","player":{"id":"bob","name":"Bob"}}`,
	TypePlayerLeft:       `{"type":"player_left","player":{"id":"bob","name":"Bob"}}`,
	TypePlayerSelects:    `{"type":"player_selects","player":{"id":"bob","name":"Bob"},"newScore":null,"queue":["bob"]}`,
	TypePlayerDeclares:   `{"type":"player_declares","player":{"id":"amy","name":"Amy"},"newScore":null,"queue":["bob","amy"]}`,
	TypeSelectTimeout:    `{"type":"select_timeout","player":{"id":"bob","name":"Bob"},"newScore":-1,"queue":["amy"]}`,
	TypeSelectGiveUp:     `{"type":"select_giveup","player":{"id":"bob","name":"Bob"},"newScore":-1,"queue":[]}`,
	TypeSelectNoLonger:   `{"type":"select_nolonger","player":{"id":"amy","name":"Amy"},"newScore":null,"queue":[]}`,
	TypeSelectSuccess:    `{"type":"select_success","player":{"id":"bob","name":"Bob"},"positions":[0,4,7],"newScore":3,"queue":[]}`,
	TypeSelectFailure:    `{"type":"select_failure","player":{"id":"bob","name":"Bob"},"faulty":["color","fill"],"newScore":-1,"queue":[]}`,
	TypeCardsDrawn:       `{"type":"cards_drawn","reason":"refill","nbCardsBeforeDraw":81,"cards":[{"value":0},{"value":21},{"value":170}],"positions":[0,1,2]}`,
	TypeCardsMoved:       `{"type":"cards_moved","from":[12,13],"to":[3,5]}`,
}

const sampleSnapshot = `{
  "id":"g1",
  "ownerId":"bob",
  "created":"2017-06-20T10:00:00Z",
  "state":"playing",
  "players":{"bob":{"id":"bob","name":"Bob"},"amy":{"id":"amy","name":"Amy"}},
  "scores":{"bob":3,"amy":-1},
  "queue":["amy"],
  "cardsLeft":66,
  "board":[{"value":0},null,{"value":85},{"value":170},null,null,null,null,null,null,null,null,null,null,null]
}`
