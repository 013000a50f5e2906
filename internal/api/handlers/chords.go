package handlers

import (
	"net/http"

	"github.com/chordquest/chordquest-api/internal/models"
	"github.com/chordquest/chordquest-api/internal/rhythm"
	"github.com/chordquest/chordquest-api/internal/store"
	"github.com/gin-gonic/gin"
)

// ChordHandler serves the chord library CRUD routes backing StageConfig's
// AllowedChords. Persistence here is a host concern kept out of
// internal/rhythm; this handler is the one place the chord-name parser
// (rhythm.NewChordFromName) is exercised against operator input before it
// is ever stored.
type ChordHandler struct {
	repo *store.ChordRepo
}

func NewChordHandler(repo *store.ChordRepo) *ChordHandler {
	return &ChordHandler{repo: repo}
}

type createChordRequest struct {
	DisplayName string `json:"display_name" binding:"required"`
	ChordID     string `json:"chord_id" binding:"required"`
	Notes       string `json:"notes"`
}

func (h *ChordHandler) List(c *gin.Context) {
	records, err := h.repo.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"chords": records})
}

func (h *ChordHandler) Create(c *gin.Context) {
	var req createChordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := rhythm.NewChordFromName(req.ChordID); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	rec := &models.ChordRecord{
		ChordID:     req.ChordID,
		DisplayName: req.DisplayName,
		Notes:       req.Notes,
	}
	if err := h.repo.Create(rec); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func (h *ChordHandler) Delete(c *gin.Context) {
	chordID := c.Param("chordID")
	if err := h.repo.Delete(chordID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}
