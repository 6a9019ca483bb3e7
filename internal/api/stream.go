package api

// StreamMessageType discriminates control frames on the live feed.
type StreamMessageType string

const (
	// StreamMessageTypeEvent carries a RawEvent payload
	StreamMessageTypeEvent StreamMessageType = "event"
	// StreamMessageTypeDisconnect tells the client the task has finished and
	// no further events will be delivered
	StreamMessageTypeDisconnect StreamMessageType = "disconnect"
)

// StreamDisconnectReason explains a server-initiated disconnect.
type StreamDisconnectReason string

const (
	// StreamDisconnectReasonTaskCompleted indicates the task reached a
	// terminal status
	StreamDisconnectReasonTaskCompleted StreamDisconnectReason = "task_completed"
)

// StreamControlMessage is a non-event frame on the live feed. Event frames
// are plain RawEvent JSON objects; they carry no "type" field, which is how
// the two frame shapes are told apart.
type StreamControlMessage struct {
	Type   StreamMessageType       `json:"type"`
	Reason *StreamDisconnectReason `json:"reason,omitempty"`
}
