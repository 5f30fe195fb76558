package docservice

import (
	"strings"

	"github.com/stylemuse/shopassist/internal/models"
)

// MapStatus translates the remote status vocabulary onto the local one.
// Anything unrecognized (including an absent status) maps to failed rather
// than processing, so a misbehaving remote cannot keep a batch alive forever.
func MapStatus(remote string) string {
	switch strings.ToUpper(strings.TrimSpace(remote)) {
	case "PENDING", "PROCESSING":
		return models.TaskStatusProcessing
	case "COMPLETED":
		return models.TaskStatusCompleted
	default:
		return models.TaskStatusFailed
	}
}
