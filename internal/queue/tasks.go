package queue

const (
	TypeGuideGenerate = "guide:generate"
)

type GuideGeneratePayload struct {
	MessageID string `json:"message_id"`
	UserID    string `json:"user_id"`
	Title     string `json:"title"`
}
