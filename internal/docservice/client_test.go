package docservice

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stylemuse/shopassist/internal/config"
	"github.com/stylemuse/shopassist/internal/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.DocServiceConfig{BaseURL: srv.URL, APIKey: "test-key"})
}

func TestRender(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/documents/render" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("auth header = %q", got)
		}
		w.Write([]byte("%PDF-1.7 fake"))
	})

	data, err := c.Render(context.Background(), RenderRequest{TemplateID: "style-guide-v2"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if string(data) != "%PDF-1.7 fake" {
		t.Errorf("unexpected body %q", data)
	}
}

func TestRender_RemoteError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "template not found", http.StatusUnprocessableEntity)
	})

	if _, err := c.Render(context.Background(), RenderRequest{TemplateID: "nope"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestUpload(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"document_id":"doc-123"}`))
	})

	id, err := c.Upload(context.Background(), "guide.pdf", []byte("pdf"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if id != "doc-123" {
		t.Errorf("document id = %q", id)
	}
}

func TestSubmitJob(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/jobs" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Write([]byte(`{"task_id":"task-9"}`))
	})

	id, err := c.SubmitJob(context.Background(), "doc-123", JobCompress, nil)
	if err != nil {
		t.Fatalf("SubmitJob: %v", err)
	}
	if id != "task-9" {
		t.Errorf("task id = %q", id)
	}
}

func TestSubmitJob_MissingTaskID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})
	if _, err := c.SubmitJob(context.Background(), "doc-123", JobCompress, nil); err == nil {
		t.Fatal("expected error for missing task_id")
	}
}

func TestTaskStatus_MapsRemoteVocabulary(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"COMPLETED","download_url":"https://cdn.example/x.pdf"}`))
	})

	st, err := c.TaskStatus(context.Background(), "task-9")
	if err != nil {
		t.Fatalf("TaskStatus: %v", err)
	}
	if st.Status != models.TaskStatusCompleted {
		t.Errorf("status = %q", st.Status)
	}
	if st.DownloadURL == "" {
		t.Error("missing download URL")
	}
}

func TestDownload_Classification(t *testing.T) {
	cases := []struct {
		code int
		want error
	}{
		{http.StatusGone, ErrExpired},
		{http.StatusNotFound, ErrExpired},
		{http.StatusAccepted, ErrNotReady},
		{http.StatusConflict, ErrNotReady},
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusForbidden, ErrUnauthorized},
	}

	for _, tc := range cases {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.code)
		})
		_, err := c.Download(context.Background(), c.baseURL+"/v1/artifacts/a1")
		if !errors.Is(err, tc.want) {
			t.Errorf("code %d: err = %v, want %v", tc.code, err, tc.want)
		}
	}
}

func TestDownload_GenericError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	_, err := c.Download(context.Background(), c.baseURL+"/v1/artifacts/a1")
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, ErrExpired) || errors.Is(err, ErrNotReady) || errors.Is(err, ErrUnauthorized) {
		t.Errorf("generic error misclassified: %v", err)
	}
}

func TestDownload_Success(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("artifact-bytes"))
	})
	data, err := c.Download(context.Background(), c.baseURL+"/v1/artifacts/a1")
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if string(data) != "artifact-bytes" {
		t.Errorf("body = %q", data)
	}
}
