package models

// -----------------------------------------------------------------------------
// SubscribeCommand for client messages
// -----------------------------------------------------------------------------

type MSubscribeCommand struct {
	Command string   `json:"command"` // "subscribe" or "unsubscribe"
	Charts  []string `json:"charts"`
}
