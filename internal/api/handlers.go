package api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spacesedan/moodflow/internal/db"
	"github.com/spacesedan/moodflow/internal/insights"
	"github.com/spacesedan/moodflow/internal/models"
	"github.com/spacesedan/moodflow/internal/sentiment"
)

const (
	errUserIDRequired  = "user_id required"
	errContentRequired = "content required"
	entryAddedMessage  = "Entry added!"
)

type EntryStore interface {
	PutEntry(ctx context.Context, entry models.JournalEntry) error
	GetEntries(ctx context.Context, userID string) ([]models.JournalEntry, error)
	GetEntriesSince(ctx context.Context, userID string, since time.Time) ([]models.JournalEntry, error)
}

// EntryPublisher hands saved entries to the Kafka pipeline for scoring.
type EntryPublisher interface {
	PublishEntryEvent(ctx context.Context, event models.EntryEvent) error
}

type BatchAnalyzer interface {
	AnalyzeUnscored(ctx context.Context, userID string) (models.BatchAnalysisReport, error)
}

type InsightGenerator interface {
	Generate(ctx context.Context, userID string) (models.GeneratedInsight, error)
}

type AIStatus struct {
	Available bool   `json:"available"`
	Scorer    string `json:"scorer"`
	Healthy   bool   `json:"healthy"`
	Cached    bool   `json:"cached"`
}

type Handler struct {
	Store    EntryStore
	Scorer   sentiment.Scorer
	Analyzer BatchAnalyzer
	Insights InsightGenerator
	// Publisher is nil in inline mode, where entries are scored on save.
	Publisher EntryPublisher
	Status    func() AIStatus
	Now       func() time.Time
}

type analyzeTextRequest struct {
	Text  string `json:"text"`
	Debug bool   `json:"debug"`
}

type analyzeEntriesRequest struct {
	UserID string `json:"user_id"`
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func abortWithError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func queryUserID(c *gin.Context) (string, bool) {
	userID := strings.TrimSpace(c.Query("user_id"))
	if userID == "" {
		abortWithError(c, http.StatusBadRequest, errUserIDRequired)
		return "", false
	}
	return userID, true
}

// CreateEntry saves an entry. Inline mode scores it first, async mode
// publishes an event after the write.
func (h *Handler) CreateEntry(c *gin.Context) {
	var req models.CreateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		abortWithError(c, http.StatusBadRequest, errUserIDRequired)
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		abortWithError(c, http.StatusBadRequest, errContentRequired)
		return
	}

	ctx := c.Request.Context()
	now := h.now().UTC()
	entry := models.JournalEntry{
		UserID:    req.UserID,
		EntryID:   db.NewEntryID(now),
		Content:   req.Content,
		Prompt:    req.Prompt,
		CreatedAt: now,
	}

	if h.Publisher == nil {
		result, err := h.Scorer.Score(ctx, entry.Content)
		if err != nil {
			result = sentiment.Analyze(entry.Content)
		}
		entry.ApplyAnalysis(result)
	}

	if err := h.Store.PutEntry(ctx, entry); err != nil {
		slog.Error("[API] Failed to save entry",
			slog.String("user_id", entry.UserID),
			slog.String("error", err.Error()))
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}

	if h.Publisher != nil {
		event := models.EntryEvent{
			UserID:    entry.UserID,
			EntryID:   entry.EntryID,
			Content:   entry.Content,
			CreatedAt: entry.CreatedAt,
		}
		// the scheduler picks up entries whose event was lost
		if err := h.Publisher.PublishEntryEvent(ctx, event); err != nil {
			slog.Warn("[API] Failed to publish entry event",
				slog.String("entry_id", entry.EntryID),
				slog.String("error", err.Error()))
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": entryAddedMessage, "entry": entry})
}

func (h *Handler) ListEntries(c *gin.Context) {
	userID, ok := queryUserID(c)
	if !ok {
		return
	}
	entries, err := h.Store.GetEntries(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	if entries == nil {
		entries = []models.JournalEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// AnalyzeText scores ad hoc text. With debug set the lexicon breakdown is
// returned instead.
func (h *Handler) AnalyzeText(c *gin.Context) {
	var req analyzeTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	if req.Debug {
		c.JSON(http.StatusOK, sentiment.Breakdown(req.Text))
		return
	}
	result, err := h.Scorer.Score(c.Request.Context(), req.Text)
	if err != nil {
		result = sentiment.Analyze(req.Text)
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) AnalyzeEntries(c *gin.Context) {
	var req analyzeEntriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		abortWithError(c, http.StatusBadRequest, errUserIDRequired)
		return
	}
	report, err := h.Analyzer.AnalyzeUnscored(c.Request.Context(), req.UserID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) GetInsights(c *gin.Context) {
	userID, ok := queryUserID(c)
	if !ok {
		return
	}
	result, err := insights.LoadMoodInsights(c.Request.Context(), h.Store, userID, h.now())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) GenerateInsight(c *gin.Context) {
	userID, ok := queryUserID(c)
	if !ok {
		return
	}
	result, err := h.Insights.Generate(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) AIStatus(c *gin.Context) {
	var status AIStatus
	if h.Status != nil {
		status = h.Status()
	}
	c.JSON(http.StatusOK, status)
}

func Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
