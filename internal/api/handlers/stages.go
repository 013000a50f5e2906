package handlers

import (
	"net/http"

	"github.com/chordquest/chordquest-api/internal/composer"
	"github.com/chordquest/chordquest-api/internal/config"
	"github.com/chordquest/chordquest-api/internal/metrics"
	"github.com/chordquest/chordquest-api/internal/models"
	"github.com/chordquest/chordquest-api/internal/store"
	"github.com/gin-gonic/gin"
)

// StageHandler serves the stage library CRUD routes and the optional
// composer-assisted progression draft endpoint. Every stage a run actually
// plays is loaded through store.ToStageConfig, the single JSON-to-engine
// conversion boundary; this handler never constructs a rhythm.StageConfig
// by hand.
type StageHandler struct {
	repo    *store.StageRepo
	cfg     *config.Config
	metrics *metrics.Client
}

func NewStageHandler(repo *store.StageRepo, cfg *config.Config, m *metrics.Client) *StageHandler {
	return &StageHandler{repo: repo, cfg: cfg, metrics: m}
}

type createStageRequest struct {
	Slug       string                 `json:"slug" binding:"required"`
	Title      string                 `json:"title" binding:"required"`
	Definition models.StageDefinition `json:"definition" binding:"required"`
}

func (h *StageHandler) List(c *gin.Context) {
	records, err := h.repo.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"stages": records})
}

func (h *StageHandler) Get(c *gin.Context) {
	rec, err := h.repo.Get(c.Param("slug"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "stage not found"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *StageHandler) Create(c *gin.Context) {
	var req createStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := h.repo.Create(req.Title, req.Slug, req.Definition)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// Check that the stored document decodes into an engine config before
	// telling the caller it succeeded. Only decoding is checked here: chord
	// ids and field ranges are not validated until a run starts.
	if _, err := store.ToStageConfig(rec); err != nil {
		_ = h.repo.Delete(rec.Slug)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, rec)
}

func (h *StageHandler) Delete(c *gin.Context) {
	if err := h.repo.Delete(c.Param("slug")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

type draftProgressionRequest struct {
	Prompt          string   `json:"prompt" binding:"required"`
	AllowedChordIDs []string `json:"allowed_chord_ids" binding:"required"`
	MeasureCount    int      `json:"measure_count" binding:"required"`
	TimeSignature   int      `json:"time_signature" binding:"required"`
}

// DraftProgression drafts a chord_progression from a natural-language
// prompt via whichever composer backend is configured (OpenAI or Gemini),
// returning the wire-shaped steps the caller then folds into a
// StageDefinition and POSTs to Create.
func (h *StageHandler) DraftProgression(c *gin.Context) {
	var req draftProgressionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	provider, err := composer.NewProvider(c.Request.Context(), h.cfg)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}

	resp, err := composer.Draft(c.Request.Context(), provider, composer.DraftRequest{
		Prompt:          req.Prompt,
		AllowedChordIDs: req.AllowedChordIDs,
		MeasureCount:    req.MeasureCount,
		TimeSignature:   req.TimeSignature,
	})
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	if h.metrics != nil {
		h.metrics.RecordComposerUsage(provider.Name(), resp.Usage.TotalTokens, resp.Usage.InputTokens, resp.Usage.OutputTokens)
	}
	metrics.Sentry.RecordTokenUsage(c.Request.Context(), provider.Name(), resp.Usage.TotalTokens, resp.Usage.InputTokens, resp.Usage.OutputTokens)

	c.JSON(http.StatusOK, resp)
}
