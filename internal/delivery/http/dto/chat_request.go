package dto

type SendMessageRequest struct {
	Text        string `json:"text"`
	QuickAction string `json:"quick_action"`
	// Wait blocks the request until the assistant reply is appended.
	Wait bool `json:"wait"`
}
