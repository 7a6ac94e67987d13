package websocket

import "github.com/blueskyzii/Latihan-PPKN/internal/model"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionAnswer    Action = "answer"
	ActionNavigate  Action = "navigate"
	ActionViolation Action = "violation"
	ActionFinish    Action = "finish"
	ActionPing      Action = "ping"
)

// Command is the single client request shape; fields that do not apply to an
// action stay zero. Index is a pointer so question 0 is distinguishable from
// an omitted index.
type Command struct {
	Action Action `json:"action"`
	Index  *int   `json:"index,omitempty"`
	Option string `json:"option,omitempty"`
	Forced bool   `json:"forced,omitempty"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventTick     Event = "tick"
	EventSaved    Event = "saved"
	EventWarning  Event = "violation_warning"
	EventReset    Event = "hard_reset"
	EventFinished Event = "finished"
	EventError    Event = "error"
	EventPong     Event = "pong"
)

// TickEvent is pushed once per second while the session is active.
type TickEvent struct {
	Event            Event  `json:"event"`
	RemainingSeconds int    `json:"remaining_seconds"`
	Display          string `json:"display"`
	LowTime          bool   `json:"low_time"`
}

// SavedEvent acknowledges an answer or navigation command.
type SavedEvent struct {
	Event Event `json:"event"`
	Index int   `json:"index"`
}

// WarningEvent reports a violation below the limit.
type WarningEvent struct {
	Event Event `json:"event"`
	Count int   `json:"count"`
	Max   int   `json:"max"`
}

// ResetEvent reports that the violation limit was reached and the attempt
// discarded. The connection closes after this event.
type ResetEvent struct {
	Event   Event  `json:"event"`
	Message string `json:"message"`
}

// FinishedEvent carries the terminal result. Forced marks an expiry finish.
type FinishedEvent struct {
	Event  Event         `json:"event"`
	Forced bool          `json:"forced"`
	Result *model.Result `json:"result"`
}

type ErrorEvent struct {
	Event Event  `json:"event"`
	Code  string `json:"code,omitempty"`
	Error string `json:"error"`
}

type PongEvent struct {
	Event Event `json:"event"`
}
