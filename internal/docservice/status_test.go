package docservice

import (
	"testing"

	"github.com/stylemuse/shopassist/internal/models"
)

func TestMapStatus(t *testing.T) {
	cases := []struct {
		remote string
		want   string
	}{
		{"PENDING", models.TaskStatusProcessing},
		{"PROCESSING", models.TaskStatusProcessing},
		{"processing", models.TaskStatusProcessing},
		{" pending ", models.TaskStatusProcessing},
		{"COMPLETED", models.TaskStatusCompleted},
		{"completed", models.TaskStatusCompleted},
		{"FAILED", models.TaskStatusFailed},
		{"CANCELLED", models.TaskStatusFailed},
		{"banana", models.TaskStatusFailed},
		{"", models.TaskStatusFailed},
	}

	for _, c := range cases {
		if got := MapStatus(c.remote); got != c.want {
			t.Errorf("MapStatus(%q) = %q, want %q", c.remote, got, c.want)
		}
	}
}
