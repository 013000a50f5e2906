package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/chordquest/chordquest-api/internal/config"
	"github.com/chordquest/chordquest-api/internal/logger"
	"github.com/chordquest/chordquest-api/internal/metrics"
	"github.com/chordquest/chordquest-api/internal/middleware"
	"github.com/chordquest/chordquest-api/internal/rhythm"
	"github.com/chordquest/chordquest-api/internal/store"
	"github.com/chordquest/chordquest-api/internal/transport"
	"github.com/gin-gonic/gin"
	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// tickInterval is the host's drive rate for RhythmCore.Tick — the engine
// itself has no notion of wall-clock cadence, the host supplies it.
const tickInterval = 16 * time.Millisecond

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// RunHandler starts a rhythm run and drives it over a websocket: one
// connection carries both the Transport position-report/command channel
// and the player's pitch-input frames, demultiplexed by transport.WebSocket.
type RunHandler struct {
	stages  *store.StageRepo
	chords  *store.ChordRepo
	cfg     *config.Config
	metrics *metrics.Client
}

func NewRunHandler(stages *store.StageRepo, chords *store.ChordRepo, cfg *config.Config, m *metrics.Client) *RunHandler {
	return &RunHandler{stages: stages, chords: chords, cfg: cfg, metrics: m}
}

type startRunRequest struct {
	StageSlug string `json:"stage_slug" binding:"required"`
}

// StartRun issues a short-lived run token plus the websocket URL the client
// should connect to next. It does not itself start the engine — the engine
// starts once that websocket connection is established, in Stream.
func (h *RunHandler) StartRun(c *gin.Context) {
	var req startRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := h.stages.Get(req.StageSlug); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "stage not found"})
		return
	}

	playerID, _ := middleware.GetPlayerID(c)
	runID := uuid.New().String()

	token, err := middleware.IssueRunToken(h.cfg, playerID, runID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"run_id":        runID,
		"run_token":     token,
		"websocket_url": "/api/runs/" + runID + "/stream?stage=" + req.StageSlug,
	})
}

// Stream upgrades to a websocket, starts a RhythmCore against the requested
// stage, and drives it until the run ends or the connection drops.
func (h *RunHandler) Stream(c *gin.Context) {
	claims, ok := middleware.GetRunClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "run token required"})
		return
	}
	runID := c.Param("runID")
	if claims.RunID != runID {
		c.JSON(http.StatusForbidden, gin.H{"error": "run token does not match run"})
		return
	}

	stageSlug := c.Query("stage")
	rec, err := h.stages.Get(stageSlug)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "stage not found"})
		return
	}
	stageCfg, err := store.ToStageConfig(rec)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	chordIDs, err := h.chords.IDs()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	lib, err := rhythm.NewChordLibrary(chordIDs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", logger.Fields{"run_id": runID, "error": err.Error()})
		return
	}
	defer conn.Close()

	ws := transport.NewWebSocket(conn)

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	var notesJudged, inputOverflows int

	sink := rhythm.FuncSink(func(e rhythm.Event) {
		switch evt := e.(type) {
		case rhythm.NoteHit, rhythm.NoteMissed:
			notesJudged++
		case rhythm.InputOverflowEvent:
			inputOverflows++
			metrics.Sentry.RecordRunEvent(runID, string(e.Kind()))
		case rhythm.TransposeOutOfRangeEvent:
			metrics.Sentry.RecordRunEvent(runID, string(e.Kind()))
			logger.LogRunEvent(runID, e)
		case rhythm.RunPaused:
			metrics.Sentry.RecordRunEvent(runID, string(e.Kind()))
			logger.LogRunEvent(runID, e)
		case rhythm.RunEnded:
			logger.Info("run ended", logger.Fields{"run_id": runID, "outcome": string(evt.Outcome)})
		}
		_ = conn.WriteJSON(map[string]interface{}{"event": e.Kind(), "data": e})
	})

	core := rhythm.NewRhythmCore(ctx, stageCfg, lib, ws, sink, time.Now().UnixNano())
	if err := core.Start(time.Now()); err != nil {
		_ = conn.WriteJSON(map[string]interface{}{"error": err.Error()})
		return
	}

	go func() {
		_ = ws.ReadPositions(ctx, func(raw []byte) {
			handleInputFrame(core, raw)
		})
		cancel()
	}()

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	start := time.Now()
	ticks := 0
	for {
		select {
		case <-ctx.Done():
			if h.metrics != nil {
				elapsed := time.Since(start).Seconds()
				tps := 0.0
				if elapsed > 0 {
					tps = float64(ticks) / elapsed
				}
				h.metrics.RecordRunMetrics(stageSlug, tps, float64(notesJudged), float64(inputOverflows))
			}
			return
		case now := <-ticker.C:
			ticks++
			if err := core.Tick(now); err != nil {
				logger.LogToSentry(sentry.LevelError, "run tick failed", logger.Fields{"run_id": runID, "error": err.Error()})
				_ = conn.WriteJSON(map[string]interface{}{"error": err.Error()})
				cancel()
				return
			}
		}
	}
}

type pitchFrame struct {
	Type   string `json:"type"`
	Pitch  int    `json:"pitch"`
	Source string `json:"source"`
}

func handleInputFrame(core *rhythm.RhythmCore, raw []byte) {
	var frame pitchFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return
	}

	var evtType rhythm.InputEventType
	switch frame.Type {
	case "pitch_down":
		evtType = rhythm.PitchDown
	case "pitch_up":
		evtType = rhythm.PitchUp
	default:
		return
	}

	source := rhythm.SourceMIDI
	switch frame.Source {
	case "on_screen":
		source = rhythm.SourceOnScreen
	case "voice":
		source = rhythm.SourceVoice
	}

	core.HandleInput(rhythm.InputEvent{
		Type:      evtType,
		Source:    source,
		Pitch:     rhythm.PitchClass(frame.Pitch),
		Timestamp: time.Now(),
	})
}
