package chat

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrEmptyMessage = errors.New("message is empty")

const Greeting = "Hi! I'm your AI assistant. I can help you with product descriptions, pricing, marketing tips, and more. What would you like to work on today?"

type Message struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	IsUser    bool      `json:"is_user"`
	Timestamp time.Time `json:"timestamp"`
}

// Request is one user turn: free text, or a quick action id.
type Request struct {
	Text        string `json:"text"`
	QuickAction string `json:"quick_action,omitempty"`
}

// Prepare checks r and returns the text to log for the user and the input
// for Select. Quick actions are logged by their id.
func (r Request) Prepare() (shown, input string, isQuickAction bool, err error) {
	if id := strings.TrimSpace(r.QuickAction); id != "" {
		return id, id, true, nil
	}
	if strings.TrimSpace(r.Text) == "" {
		return "", "", false, ErrEmptyMessage
	}
	return r.Text, r.Text, false, nil
}

func NewMessage(text string, isUser bool, now time.Time) Message {
	return Message{ID: uuid.NewString(), Text: text, IsUser: isUser, Timestamp: now.UTC()}
}

// NewLog starts a conversation with the assistant greeting.
func NewLog(now time.Time) []Message {
	return []Message{NewMessage(Greeting, false, now)}
}
