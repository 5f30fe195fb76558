package guide

import (
	"testing"

	"github.com/stylemuse/shopassist/internal/models"
	"github.com/stylemuse/shopassist/internal/poller"
)

func TestFinalStatus(t *testing.T) {
	cases := []struct {
		name    string
		summary poller.Summary
		want    string
	}{
		{"all completed", poller.Summary{Completed: 4}, models.GuideStatusReady},
		{"some failed", poller.Summary{Completed: 2, Failed: 2}, models.GuideStatusPartial},
		{"some pending", poller.Summary{Completed: 3, Pending: 1}, models.GuideStatusPartial},
		{"all failed", poller.Summary{Failed: 4}, models.GuideStatusFailed},
		{"nothing submitted", poller.Summary{}, models.GuideStatusFailed},
		{"all pending", poller.Summary{Pending: 4}, models.GuideStatusFailed},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := FinalStatus(c.summary); got != c.want {
				t.Errorf("FinalStatus(%+v) = %q, want %q", c.summary, got, c.want)
			}
		})
	}
}

func TestDerivedJobs_CoverAllKinds(t *testing.T) {
	want := map[string]bool{
		models.TaskKindCompressed:     false,
		models.TaskKindSocialImages:   false,
		models.TaskKindQuickReference: false,
		models.TaskKindDocxVersion:    false,
	}
	for _, job := range derivedJobs() {
		seen, ok := want[job.kind]
		if !ok {
			t.Errorf("unexpected job kind %q", job.kind)
		}
		if seen {
			t.Errorf("duplicate job kind %q", job.kind)
		}
		want[job.kind] = true
	}
	for kind, seen := range want {
		if !seen {
			t.Errorf("missing job for kind %q", kind)
		}
	}
}

func TestGuideFileName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Coastal Grandmother Summer", "coastal-grandmother-summer.pdf"},
		{"  Y2K / Cyber! ", "y2k--cyber.pdf"},
		{"", "style-guide.pdf"},
		{"###", "style-guide.pdf"},
	}
	for _, c := range cases {
		if got := guideFileName(c.in); got != c.want {
			t.Errorf("guideFileName(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
