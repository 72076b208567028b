package ws

import (
	"encoding/json"

	"kala/internal/domain/chat"

	"github.com/google/uuid"
)

const EventChatMessage = "chat_message"

type ChatMessageEvent struct {
	Type      string       `json:"type"`
	SessionID uuid.UUID    `json:"session_id"`
	Message   chat.Message `json:"message"`
}

func encodeChatMessage(sessionID uuid.UUID, m chat.Message) ([]byte, error) {
	return json.Marshal(ChatMessageEvent{Type: EventChatMessage, SessionID: sessionID, Message: m})
}
