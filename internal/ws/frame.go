package ws

// Inbound frame kinds.
const (
	frameAIMessage   = "ai_message"
	frameChatMessage = "chat_message"
)

// Outbound frame kinds. Peer messages go out under the same "chat_message"
// tag they came in with.
const (
	frameAIResponse = "ai_response"
)

// inboundFrame is the tagged union covering everything a client may send.
// The zero values double as "field missing" during validation.
type inboundFrame struct {
	Type     string `json:"type"`
	Content  string `json:"content"`
	ToUserID uint64 `json:"toUserId"`
}

type outboundFrame struct {
	Type       string `json:"type"`
	Content    string `json:"content"`
	FromUserID uint64 `json:"fromUserId,omitempty"`
	Timestamp  string `json:"timestamp,omitempty"`
}
