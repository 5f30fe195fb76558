// Package guide generates style guides: a synchronously rendered PDF plus a
// set of derived artifacts produced asynchronously by the remote document
// service.
package guide

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stylemuse/shopassist/internal/config"
	"github.com/stylemuse/shopassist/internal/docservice"
	"github.com/stylemuse/shopassist/internal/models"
	"github.com/stylemuse/shopassist/internal/poller"
	"github.com/stylemuse/shopassist/internal/webhook"
	"github.com/stylemuse/shopassist/pkg/textextract"
)

var ErrNotFound = errors.New("guide not found")

const previewMaxRunes = 400

type Service struct {
	db    *pgxpool.Pool
	docs  *docservice.Client
	hooks *webhook.Service
	cfg   config.GuideConfig
}

func NewService(db *pgxpool.Pool, docs *docservice.Client, hooks *webhook.Service, cfg config.GuideConfig) *Service {
	return &Service{db: db, docs: docs, hooks: hooks, cfg: cfg}
}

type GenerateInput struct {
	UserID    uuid.UUID
	MessageID uuid.UUID
	Title     string
	Profile   models.StyleProfile
	Products  []models.Product
}

// derivedJob maps a local artifact kind to the remote job it is produced by.
type derivedJob struct {
	kind      string
	operation string
	params    map[string]any
}

func derivedJobs() []derivedJob {
	return []derivedJob{
		{models.TaskKindCompressed, docservice.JobCompress, nil},
		{models.TaskKindSocialImages, docservice.JobImageConvert, map[string]any{"format": "png"}},
		{models.TaskKindQuickReference, docservice.JobPageExtract, map[string]any{"pages": "1-2"}},
		{models.TaskKindDocxVersion, docservice.JobDocConvert, map[string]any{"format": "docx"}},
	}
}

// Generate renders the main guide document, uploads it and submits the
// derived-artifact jobs. Job submission is best effort: a submission failure
// skips that artifact without failing the guide. The returned guide is in
// generating state; PollDerived settles it.
func (s *Service) Generate(ctx context.Context, in GenerateInput) (*models.Guide, error) {
	pdfData, err := s.docs.Render(ctx, docservice.RenderRequest{
		TemplateID: s.cfg.TemplateID,
		Data:       renderData(in),
	})
	if err != nil {
		return nil, fmt.Errorf("render guide: %w", err)
	}

	preview := ""
	pages := 0
	if extracted, err := textextract.FromPDF(pdfData); err == nil {
		preview = textextract.Snippet(extracted.Content, previewMaxRunes)
		pages = extracted.Pages
	} else {
		slog.Warn("guide preview extraction failed", "error", err)
	}

	docID, err := s.docs.Upload(ctx, guideFileName(in.Title), pdfData)
	if err != nil {
		return nil, fmt.Errorf("upload guide: %w", err)
	}

	var tasks []models.GuideTask
	for _, job := range derivedJobs() {
		taskID, err := s.docs.SubmitJob(ctx, docID, job.operation, job.params)
		if err != nil {
			slog.Warn("derived job submission failed, skipping artifact",
				"kind", job.kind, "error", err)
			continue
		}
		tasks = append(tasks, models.GuideTask{
			TaskID: taskID,
			Kind:   job.kind,
			Status: models.TaskStatusProcessing,
		})
	}

	g := &models.Guide{
		UserID:      in.UserID,
		MessageID:   in.MessageID,
		Title:       in.Title,
		DocumentID:  docID,
		PreviewText: preview,
		PageCount:   pages,
		SizeBytes:   int64(len(pdfData)),
		Status:      models.GuideStatusGenerating,
	}

	if err := s.persist(ctx, g, tasks); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *Service) persist(ctx context.Context, g *models.Guide, tasks []models.GuideTask) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO guides (user_id, message_id, title, document_id, preview_text, page_count, size_bytes, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at`,
		g.UserID, g.MessageID, g.Title, g.DocumentID, g.PreviewText, g.PageCount, g.SizeBytes, g.Status,
	).Scan(&g.ID, &g.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert guide: %w", err)
	}

	for i := range tasks {
		t := &tasks[i]
		t.GuideID = g.ID
		err = tx.QueryRow(ctx,
			`INSERT INTO guide_tasks (guide_id, task_id, kind, status)
			 VALUES ($1, $2, $3, $4)
			 RETURNING id, updated_at`,
			t.GuideID, t.TaskID, t.Kind, t.Status,
		).Scan(&t.ID, &t.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert guide task: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit guide: %w", err)
	}
	g.Tasks = tasks
	return nil
}

// PollDerived polls the guide's outstanding tasks until they settle or the
// batch timeout elapses, persists every terminal transition, resolves the
// guide status and notifies the user's webhooks.
func (s *Service) PollDerived(ctx context.Context, guideID uuid.UUID) error {
	g, err := s.getByID(ctx, guideID)
	if err != nil {
		return err
	}

	batch := make([]poller.Task, len(g.Tasks))
	for i, t := range g.Tasks {
		batch[i] = poller.Task{TaskID: t.TaskID, Kind: t.Kind, Status: t.Status, DownloadURL: t.DownloadURL}
	}

	p := poller.New(s.docs, s.cfg.PollInterval, s.cfg.PollTimeout)
	summary := p.Run(ctx, batch, func(t poller.Task) {
		s.saveTaskResult(guideID, t)
	})

	status := FinalStatus(summary)
	if _, err := s.db.Exec(ctx,
		"UPDATE guides SET status = $1 WHERE id = $2", status, guideID); err != nil {
		return fmt.Errorf("update guide status: %w", err)
	}

	event := models.EventGuideCompleted
	if status == models.GuideStatusFailed {
		event = models.EventGuideFailed
	}
	if s.hooks != nil {
		payload := map[string]any{
			"guide_id":  guideID,
			"status":    status,
			"completed": summary.Completed,
			"failed":    summary.Failed,
			"pending":   summary.Pending,
		}
		if err := s.hooks.Dispatch(ctx, g.UserID, event, payload); err != nil {
			slog.Error("guide webhook dispatch failed", "guide_id", guideID, "error", err)
		}
	}

	slog.Info("guide settled", "guide_id", guideID, "status", status,
		"completed", summary.Completed, "failed", summary.Failed, "pending", summary.Pending)
	return nil
}

// saveTaskResult may run concurrently for different tasks within one poll
// tick, so it uses its own short-lived context rather than the batch one.
func (s *Service) saveTaskResult(guideID uuid.UUID, t poller.Task) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := s.db.Exec(ctx,
		`UPDATE guide_tasks SET status = $1, download_url = $2, updated_at = now()
		 WHERE guide_id = $3 AND task_id = $4 AND status = 'processing'`,
		t.Status, t.DownloadURL, guideID, t.TaskID,
	)
	if err != nil {
		slog.Error("failed to persist task result", "task_id", t.TaskID, "error", err)
	}
}

// FinalStatus resolves a settled batch to the guide's display status. Tasks
// still pending after the timeout count against ready but not toward failed.
func FinalStatus(s poller.Summary) string {
	switch {
	case s.Completed > 0 && s.Failed == 0 && s.Pending == 0:
		return models.GuideStatusReady
	case s.Completed > 0:
		return models.GuideStatusPartial
	default:
		return models.GuideStatusFailed
	}
}

// Get returns a guide with its tasks, scoped to the owning user.
func (s *Service) Get(ctx context.Context, userID, guideID uuid.UUID) (*models.Guide, error) {
	g, err := s.getByID(ctx, guideID)
	if err != nil {
		return nil, err
	}
	if g.UserID != userID {
		return nil, ErrNotFound
	}
	return g, nil
}

func (s *Service) getByID(ctx context.Context, guideID uuid.UUID) (*models.Guide, error) {
	var g models.Guide
	err := s.db.QueryRow(ctx,
		`SELECT id, user_id, message_id, title, document_id, preview_text, page_count, size_bytes, status, created_at
		 FROM guides WHERE id = $1`,
		guideID,
	).Scan(&g.ID, &g.UserID, &g.MessageID, &g.Title, &g.DocumentID, &g.PreviewText,
		&g.PageCount, &g.SizeBytes, &g.Status, &g.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get guide: %w", err)
	}

	rows, err := s.db.Query(ctx,
		`SELECT id, guide_id, task_id, kind, status, COALESCE(download_url, ''), updated_at
		 FROM guide_tasks WHERE guide_id = $1 ORDER BY kind`,
		guideID,
	)
	if err != nil {
		return nil, fmt.Errorf("get guide tasks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var t models.GuideTask
		if err := rows.Scan(&t.ID, &t.GuideID, &t.TaskID, &t.Kind, &t.Status, &t.DownloadURL, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan guide task: %w", err)
		}
		g.Tasks = append(g.Tasks, t)
	}
	return &g, nil
}

// ListForUser returns the user's guides, newest first, without task details.
func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Guide, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := s.db.Query(ctx,
		`SELECT id, user_id, message_id, title, document_id, preview_text, page_count, size_bytes, status, created_at
		 FROM guides WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list guides: %w", err)
	}
	defer rows.Close()

	var guides []models.Guide
	for rows.Next() {
		var g models.Guide
		if err := rows.Scan(&g.ID, &g.UserID, &g.MessageID, &g.Title, &g.DocumentID, &g.PreviewText,
			&g.PageCount, &g.SizeBytes, &g.Status, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan guide: %w", err)
		}
		guides = append(guides, g)
	}
	return guides, nil
}

// DownloadArtifact fetches a completed derived artifact. Requests for tasks
// still processing return docservice.ErrNotReady so handlers can answer 409.
func (s *Service) DownloadArtifact(ctx context.Context, userID, guideID uuid.UUID, kind string) ([]byte, error) {
	g, err := s.Get(ctx, userID, guideID)
	if err != nil {
		return nil, err
	}

	for _, t := range g.Tasks {
		if t.Kind != kind {
			continue
		}
		switch t.Status {
		case models.TaskStatusCompleted:
			return s.docs.Download(ctx, t.DownloadURL)
		case models.TaskStatusProcessing:
			return nil, docservice.ErrNotReady
		default:
			return nil, fmt.Errorf("artifact %s failed to generate", kind)
		}
	}
	return nil, ErrNotFound
}

func renderData(in GenerateInput) map[string]any {
	products := make([]map[string]any, 0, len(in.Products))
	for _, p := range in.Products {
		products = append(products, map[string]any{
			"title":      p.Title,
			"price":      p.Price,
			"rating":     p.Rating,
			"image_url":  p.ImageURL,
			"url":        p.ProductURL,
			"price_tier": p.PriceTier,
			"reasons":    p.MatchReasons,
		})
	}
	return map[string]any{
		"title":      in.Title,
		"aesthetics": in.Profile.Aesthetics,
		"colors":     in.Profile.Colors,
		"textures":   in.Profile.Textures,
		"mood":       in.Profile.Mood,
		"keywords":   in.Profile.Keywords,
		"products":   products,
	}
}

func guideFileName(title string) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	slug = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r == ' ' || r == '-' || r == '_':
			return '-'
		default:
			return -1
		}
	}, slug)
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "style-guide"
	}
	return slug + ".pdf"
}
