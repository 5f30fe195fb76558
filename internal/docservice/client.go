// Package docservice is the HTTP client for the remote document-generation
// API: synchronous template rendering, document upload, asynchronous
// processing jobs and artifact download.
package docservice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/stylemuse/shopassist/internal/config"
)

// Download failure classification. Handlers surface these buckets verbatim.
var (
	ErrExpired      = errors.New("download link expired")
	ErrNotReady     = errors.New("artifact not ready yet")
	ErrUnauthorized = errors.New("not authorized to download artifact")
)

// Processing job kinds accepted by the remote service.
const (
	JobCompress     = "compress"
	JobImageConvert = "image-convert"
	JobPageExtract  = "page-extract"
	JobDocConvert   = "doc-convert"
	JobMerge        = "merge"
)

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(cfg config.DocServiceConfig) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: 2 * time.Minute,
		},
	}
}

type RenderRequest struct {
	TemplateID string         `json:"template_id"`
	Data       map[string]any `json:"data"`
}

// Render generates the main document synchronously and returns its bytes.
func (c *Client) Render(ctx context.Context, req RenderRequest) ([]byte, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal render request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/v1/documents/render", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create render request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("render document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("render failed (%d): %s", resp.StatusCode, string(msg))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read rendered document: %w", err)
	}
	return data, nil
}

// Upload stores a document with the remote service and returns its opaque id.
func (c *Client) Upload(ctx context.Context, name string, data []byte) (string, error) {
	url := fmt.Sprintf("%s/v1/documents?name=%s", c.baseURL, name)

	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("create upload request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/pdf")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("upload document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("upload failed (%d): %s", resp.StatusCode, string(msg))
	}

	var out struct {
		DocumentID string `json:"document_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}
	if out.DocumentID == "" {
		return "", fmt.Errorf("upload response missing document_id")
	}
	return out.DocumentID, nil
}

// SubmitJob queues an asynchronous processing job against an uploaded
// document and returns the opaque task id to poll.
func (c *Client) SubmitJob(ctx context.Context, documentID, kind string, params map[string]any) (string, error) {
	payload := map[string]any{
		"document_id": documentID,
		"operation":   kind,
	}
	if len(params) > 0 {
		payload["params"] = params
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal job request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/v1/jobs", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create job request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("submit %s job: %w", kind, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("submit %s job failed (%d): %s", kind, resp.StatusCode, string(msg))
	}

	var out struct {
		TaskID string `json:"task_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode job response: %w", err)
	}
	if out.TaskID == "" {
		return "", fmt.Errorf("job response missing task_id")
	}
	return out.TaskID, nil
}

// TaskStatus is a remote job's state, with the vendor vocabulary already
// mapped onto the local one. DownloadURL is set only for completed tasks.
type TaskStatus struct {
	Status      string `json:"status"`
	DownloadURL string `json:"download_url,omitempty"`
}

// TaskStatus queries one job's state.
func (c *Client) TaskStatus(ctx context.Context, taskID string) (TaskStatus, error) {
	httpReq, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/v1/jobs/"+taskID, nil)
	if err != nil {
		return TaskStatus{}, fmt.Errorf("create status request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return TaskStatus{}, fmt.Errorf("query task %s: %w", taskID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return TaskStatus{}, fmt.Errorf("task status failed (%d)", resp.StatusCode)
	}

	var out struct {
		Status      string `json:"status"`
		DownloadURL string `json:"download_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return TaskStatus{}, fmt.Errorf("decode task status: %w", err)
	}

	return TaskStatus{
		Status:      MapStatus(out.Status),
		DownloadURL: out.DownloadURL,
	}, nil
}

// Download fetches an artifact by its download URL. Failures are classified
// into expired / not-ready / auth buckets; everything else stays generic.
func (c *Client) Download(ctx context.Context, url string) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("create download request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("download artifact: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusGone || resp.StatusCode == http.StatusNotFound:
		return nil, ErrExpired
	case resp.StatusCode == http.StatusAccepted || resp.StatusCode == http.StatusConflict:
		return nil, ErrNotReady
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, ErrUnauthorized
	case resp.StatusCode >= 400:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("download failed (%d): %s", resp.StatusCode, string(msg))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}
	return data, nil
}
