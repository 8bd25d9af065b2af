package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError    Event = "error"
	EventSnapshot Event = "snapshot"
	EventUpdate   Event = "update"
	EventPong     Event = "pong"
)

// SnapshotResponse carries the current leaderboard when a client connects.
type SnapshotResponse struct {
	Event  Event `json:"event"`
	Scores any   `json:"scores"`
}

// UpdateResponse carries one completed session as it lands on the board.
type UpdateResponse struct {
	Event  Event `json:"event"`
	Update any   `json:"update"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
