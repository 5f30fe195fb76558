// Package chat runs the conversational shopping loop: analyze a style
// request, search the catalog, rank the results and persist the turn.
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stylemuse/shopassist/internal/catalog"
	"github.com/stylemuse/shopassist/internal/config"
	"github.com/stylemuse/shopassist/internal/embedding"
	"github.com/stylemuse/shopassist/internal/match"
	"github.com/stylemuse/shopassist/internal/models"
	"github.com/stylemuse/shopassist/internal/stylist"
	"github.com/stylemuse/shopassist/internal/usage"
	"github.com/stylemuse/shopassist/internal/vectorstore"
)

var ErrNotFound = errors.New("conversation not found")

const (
	maxProducts    = 8
	maxHistoryMsgs = 50
	similarLooksK  = 3
)

type Service struct {
	db            *pgxpool.Pool
	analyzer      *stylist.Analyzer
	catalog       *catalog.Client
	embedder      *embedding.Service
	vectors       *vectorstore.Store
	usage         *usage.Service
	model         string
	historyTokens int
}

func NewService(
	db *pgxpool.Pool,
	analyzer *stylist.Analyzer,
	cat *catalog.Client,
	embedder *embedding.Service,
	vectors *vectorstore.Store,
	us *usage.Service,
	cfg config.LLMConfig,
) *Service {
	return &Service{
		db:            db,
		analyzer:      analyzer,
		catalog:       cat,
		embedder:      embedder,
		vectors:       vectors,
		usage:         us,
		model:         cfg.DefaultModel,
		historyTokens: cfg.HistoryTokens,
	}
}

type TurnInput struct {
	UserID         uuid.UUID
	ConversationID uuid.UUID // zero starts a new conversation
	Text           string
	Image          string // optional data: or https: URL
}

type TurnResult struct {
	ConversationID uuid.UUID                    `json:"conversation_id"`
	MessageID      uuid.UUID                    `json:"message_id"`
	Reply          string                       `json:"reply"`
	Profile        *models.StyleProfile         `json:"style_profile,omitempty"`
	Products       []models.Product             `json:"products,omitempty"`
	SimilarLooks   []vectorstore.SimilarProfile `json:"similar_looks,omitempty"`
}

// Turn runs one conversation turn end to end. Catalog and enrichment failures
// degrade the result rather than failing it; only persistence errors surface.
func (s *Service) Turn(ctx context.Context, in TurnInput) (*TurnResult, error) {
	conv, err := s.ensureConversation(ctx, in)
	if err != nil {
		return nil, err
	}

	history, err := s.recentMessages(ctx, conv.ID, maxHistoryMsgs)
	if err != nil {
		return nil, err
	}
	window := HistoryWindow(history, s.historyTokens, s.model)

	if _, err := s.insertMessage(ctx, conv.ID, models.RoleUser, in.Text, nil, nil); err != nil {
		return nil, err
	}

	analysis := s.analyzer.Analyze(ctx, stylist.Request{
		Text:    in.Text,
		Image:   in.Image,
		History: window,
	})

	var products []models.Product
	if !analysis.Profile.IsEmpty() {
		raw := s.catalog.Search(ctx, analysis.Profile.SearchTerms(), maxProducts)
		products = match.Rank(raw, analysis.Profile)
	}

	var profile *models.StyleProfile
	if !analysis.Profile.IsEmpty() {
		p := analysis.Profile
		profile = &p
	}

	assistantMsg, err := s.insertMessage(ctx, conv.ID, models.RoleAssistant, analysis.Reply, products, profile)
	if err != nil {
		return nil, err
	}

	if s.usage != nil && analysis.Usage != nil {
		if err := s.usage.RecordChat(ctx, in.UserID, "chat.analyze", analysis.Usage); err != nil {
			slog.Error("usage recording failed", "error", err)
		}
	}

	result := &TurnResult{
		ConversationID: conv.ID,
		MessageID:      assistantMsg.ID,
		Reply:          analysis.Reply,
		Profile:        profile,
		Products:       products,
	}

	if profile != nil {
		result.SimilarLooks = s.enrichSimilarLooks(ctx, in.UserID, *profile)
	}

	return result, nil
}

// enrichSimilarLooks embeds the new profile, stores the vector and returns the
// user's nearest past looks. Every step is best effort.
func (s *Service) enrichSimilarLooks(ctx context.Context, userID uuid.UUID, profile models.StyleProfile) []vectorstore.SimilarProfile {
	if s.embedder == nil || s.vectors == nil {
		return nil
	}

	vec, err := s.embedder.EmbedProfile(ctx, profile)
	if err != nil {
		slog.Warn("profile embedding failed", "error", err)
		return nil
	}

	if err := s.vectors.Upsert(ctx, vectorstore.ProfileVector{
		ProfileID: profile.ID,
		UserID:    userID,
		Summary:   embedding.ProfileText(profile),
		Embedding: vec,
	}); err != nil {
		slog.Warn("profile vector upsert failed", "error", err)
	}

	similar, err := s.vectors.Similar(ctx, userID, vec, profile.ID, similarLooksK)
	if err != nil {
		slog.Warn("similar looks query failed", "error", err)
		return nil
	}
	return similar
}

func (s *Service) ensureConversation(ctx context.Context, in TurnInput) (*models.Conversation, error) {
	if in.ConversationID == uuid.Nil {
		return s.createConversation(ctx, in.UserID, titleFromText(in.Text))
	}

	var conv models.Conversation
	err := s.db.QueryRow(ctx,
		`SELECT id, user_id, title, created_at, updated_at
		 FROM conversations WHERE id = $1 AND user_id = $2`,
		in.ConversationID, in.UserID,
	).Scan(&conv.ID, &conv.UserID, &conv.Title, &conv.CreatedAt, &conv.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get conversation: %w", err)
	}
	return &conv, nil
}

func (s *Service) createConversation(ctx context.Context, userID uuid.UUID, title string) (*models.Conversation, error) {
	var conv models.Conversation
	err := s.db.QueryRow(ctx,
		`INSERT INTO conversations (user_id, title)
		 VALUES ($1, $2)
		 RETURNING id, user_id, title, created_at, updated_at`,
		userID, title,
	).Scan(&conv.ID, &conv.UserID, &conv.Title, &conv.CreatedAt, &conv.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}
	return &conv, nil
}

// insertMessage stores a message; for assistant turns it also stores the
// attached products and, when present, the extracted style profile.
func (s *Service) insertMessage(ctx context.Context, convID uuid.UUID, role, content string, products []models.Product, profile *models.StyleProfile) (*models.Message, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var productsJSON []byte
	if len(products) > 0 {
		productsJSON, _ = json.Marshal(products)
	}

	m := &models.Message{ConversationID: convID, Role: role, Content: content, Products: products}
	err = tx.QueryRow(ctx,
		`INSERT INTO messages (conversation_id, role, content, products)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		convID, role, content, productsJSON,
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}

	if profile != nil {
		profile.MessageID = m.ID
		err = tx.QueryRow(ctx,
			`INSERT INTO style_profiles (message_id, aesthetics, colors, textures, mood, keywords, budget)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 RETURNING id, created_at`,
			m.ID, profile.Aesthetics, profile.Colors, profile.Textures, profile.Mood, profile.Keywords, profile.Budget,
		).Scan(&profile.ID, &profile.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("insert style profile: %w", err)
		}
		m.StyleProfile = profile
	}

	_, err = tx.Exec(ctx, "UPDATE conversations SET updated_at = now() WHERE id = $1", convID)
	if err != nil {
		return nil, fmt.Errorf("touch conversation: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit message: %w", err)
	}
	return m, nil
}

func (s *Service) recentMessages(ctx context.Context, convID uuid.UUID, limit int) ([]models.Message, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, conversation_id, role, content, guide_id, created_at
		 FROM (
		   SELECT id, conversation_id, role, content, guide_id, created_at
		   FROM messages WHERE conversation_id = $1
		   ORDER BY created_at DESC LIMIT $2
		 ) recent ORDER BY created_at ASC`,
		convID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	defer rows.Close()

	var msgs []models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Role, &m.Content, &m.GuideID, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}

// ListConversations returns the user's conversations, most recently active
// first.
func (s *Service) ListConversations(ctx context.Context, userID uuid.UUID, limit int) ([]models.Conversation, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := s.db.Query(ctx,
		`SELECT id, user_id, title, created_at, updated_at
		 FROM conversations WHERE user_id = $1 ORDER BY updated_at DESC LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	var convs []models.Conversation
	for rows.Next() {
		var c models.Conversation
		if err := rows.Scan(&c.ID, &c.UserID, &c.Title, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		convs = append(convs, c)
	}
	return convs, nil
}

// Messages returns a conversation's messages oldest first, with products and
// style profiles attached.
func (s *Service) Messages(ctx context.Context, userID, convID uuid.UUID) ([]models.Message, error) {
	var owner uuid.UUID
	err := s.db.QueryRow(ctx, "SELECT user_id FROM conversations WHERE id = $1", convID).Scan(&owner)
	if errors.Is(err, pgx.ErrNoRows) || (err == nil && owner != userID) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("check conversation: %w", err)
	}

	rows, err := s.db.Query(ctx,
		`SELECT id, conversation_id, role, content, COALESCE(products, 'null'), guide_id, created_at
		 FROM messages WHERE conversation_id = $1 ORDER BY created_at ASC`,
		convID,
	)
	if err != nil {
		return nil, fmt.Errorf("load messages: %w", err)
	}
	defer rows.Close()

	var msgs []models.Message
	for rows.Next() {
		var m models.Message
		var productsJSON []byte
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Role, &m.Content, &productsJSON, &m.GuideID, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		if len(productsJSON) > 0 {
			_ = json.Unmarshal(productsJSON, &m.Products)
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}

// MessageForGuide loads one assistant message with its products and profile,
// verifying ownership through the conversation. Guide generation reads its
// inputs through this.
func (s *Service) MessageForGuide(ctx context.Context, userID, messageID uuid.UUID) (*models.Message, error) {
	var m models.Message
	var productsJSON []byte
	err := s.db.QueryRow(ctx,
		`SELECT m.id, m.conversation_id, m.role, m.content, COALESCE(m.products, 'null'), m.guide_id, m.created_at
		 FROM messages m
		 JOIN conversations c ON c.id = m.conversation_id
		 WHERE m.id = $1 AND c.user_id = $2`,
		messageID, userID,
	).Scan(&m.ID, &m.ConversationID, &m.Role, &m.Content, &productsJSON, &m.GuideID, &m.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get message: %w", err)
	}
	if len(productsJSON) > 0 {
		_ = json.Unmarshal(productsJSON, &m.Products)
	}

	var p models.StyleProfile
	err = s.db.QueryRow(ctx,
		`SELECT id, message_id, aesthetics, colors, textures, mood, keywords, budget, created_at
		 FROM style_profiles WHERE message_id = $1`,
		messageID,
	).Scan(&p.ID, &p.MessageID, &p.Aesthetics, &p.Colors, &p.Textures, &p.Mood, &p.Keywords, &p.Budget, &p.CreatedAt)
	if err == nil {
		m.StyleProfile = &p
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("get style profile: %w", err)
	}

	return &m, nil
}

// AttachGuide links a generated guide back to the message that triggered it.
func (s *Service) AttachGuide(ctx context.Context, messageID, guideID uuid.UUID) error {
	_, err := s.db.Exec(ctx, "UPDATE messages SET guide_id = $1 WHERE id = $2", guideID, messageID)
	return err
}

func titleFromText(text string) string {
	title := strings.Join(strings.Fields(text), " ")
	if title == "" {
		return "New conversation"
	}
	runes := []rune(title)
	if len(runes) > 60 {
		title = strings.TrimSpace(string(runes[:60])) + "…"
	}
	return title
}
