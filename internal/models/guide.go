package models

import (
	"time"

	"github.com/google/uuid"
)

// Guide is one generated style guide: the synchronously rendered main document
// plus the async processing tasks derived from it. A guide is owned by the
// message that triggered generation; regenerating supersedes, never mutates.
type Guide struct {
	ID          uuid.UUID   `json:"id" db:"id"`
	UserID      uuid.UUID   `json:"user_id" db:"user_id"`
	MessageID   uuid.UUID   `json:"message_id" db:"message_id"`
	Title       string      `json:"title" db:"title"`
	DocumentID  string      `json:"document_id" db:"document_id"`
	PreviewText string      `json:"preview_text,omitempty" db:"preview_text"`
	PageCount   int         `json:"page_count" db:"page_count"`
	SizeBytes   int64       `json:"size_bytes" db:"size_bytes"`
	Status      string      `json:"status" db:"status"`
	Tasks       []GuideTask `json:"tasks,omitempty"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
}

// GuideTask tracks one asynchronous derived-artifact job on the remote
// document service. Status is monotonic: processing moves to completed or
// failed exactly once and terminal states never revert.
type GuideTask struct {
	ID          uuid.UUID `json:"id" db:"id"`
	GuideID     uuid.UUID `json:"guide_id" db:"guide_id"`
	TaskID      string    `json:"task_id" db:"task_id"`
	Kind        string    `json:"kind" db:"kind"`
	Status      string    `json:"status" db:"status"`
	DownloadURL string    `json:"download_url,omitempty" db:"download_url"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

const (
	TaskStatusProcessing = "processing"
	TaskStatusCompleted  = "completed"
	TaskStatusFailed     = "failed"
)

// Terminal reports whether a task status can no longer change.
func Terminal(status string) bool {
	return status == TaskStatusCompleted || status == TaskStatusFailed
}

// Derived-artifact kinds submitted for every guide.
const (
	TaskKindCompressed     = "compressed"
	TaskKindSocialImages   = "social-images"
	TaskKindQuickReference = "quick-reference"
	TaskKindDocxVersion    = "docx-version"
)

const (
	GuideStatusGenerating = "generating"
	GuideStatusReady      = "ready"
	GuideStatusPartial    = "partial"
	GuideStatusFailed     = "failed"
)
