// Package transport adapts rhythm.Transport to a browser audio element over
// a websocket: commands (load/play/stop/seek/volume/pitch) are sent as JSON
// frames, and the browser reports its audio element's currentTime back on
// the same connection. Grounded on the gorilla/websocket request/response
// framing used throughout the pack's retrieved repos for live duplex state.
package transport

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// commandType is the discriminator for outbound command frames.
type commandType string

const (
	cmdLoad        commandType = "load"
	cmdPlay        commandType = "play"
	cmdStop        commandType = "stop"
	cmdSetVolume   commandType = "set_volume"
	cmdSetPitch    commandType = "set_pitch_shift"
	cmdSeekToBar1  commandType = "seek_to_bar1"
	cmdPrepareNext commandType = "prepare_next"
	cmdSwapToNext  commandType = "swap_to_next"
)

// command is one outbound frame. Fields beyond Type are populated per
// command and ignored by the client when not applicable.
type command struct {
	Type                commandType `json:"type"`
	URL                 string      `json:"url,omitempty"`
	BPM                 float64     `json:"bpm,omitempty"`
	TimeSignature       int         `json:"time_signature,omitempty"`
	MeasureCount        int         `json:"measure_count,omitempty"`
	CountInMeasures     int         `json:"count_in_measures,omitempty"`
	Volume              float64     `json:"volume,omitempty"`
	Rate                float64     `json:"rate,omitempty"`
	PitchShiftSemitones float64     `json:"pitch_shift_semitones,omitempty"`
	NoLoopMode          bool        `json:"no_loop_mode,omitempty"`
}

// positionReport is the one inbound frame shape this adapter understands;
// any other frame on the connection is assumed to be player input and is
// handed to ReadPositions' onOther callback (see internal/api/handlers for
// the run websocket, which passes it on to the run's input handling).
type positionReport struct {
	Type            string  `json:"type"`
	PositionSeconds float64 `json:"position_seconds"`
}

var errNotReported = errors.New("transport: position not yet reported by client")

// WebSocket implements rhythm.Transport over one player's websocket
// connection. PositionSeconds returns the most recent positionReport frame;
// ReadPositions must run in a goroutine to keep that value current.
type WebSocket struct {
	conn *websocket.Conn

	mu       sync.Mutex
	lastPos  float64
	hasPos   bool
	lastSeen time.Time
}

func NewWebSocket(conn *websocket.Conn) *WebSocket {
	return &WebSocket{conn: conn}
}

// ReadPositions drains position_seconds frames until the connection closes
// or ctx is cancelled. Any other inbound frame is forwarded to onOther
// (typically the run's InputBus.Push adapter) instead of being dropped.
func (w *WebSocket) ReadPositions(ctx context.Context, onOther func(raw []byte)) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		_, raw, err := w.conn.ReadMessage()
		if err != nil {
			return err
		}
		var probe struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(raw, &probe); err != nil {
			continue
		}
		if probe.Type != "position" {
			if onOther != nil {
				onOther(raw)
			}
			continue
		}
		var report positionReport
		if err := json.Unmarshal(raw, &report); err != nil {
			continue
		}
		w.mu.Lock()
		w.lastPos = report.PositionSeconds
		w.hasPos = true
		w.lastSeen = time.Now()
		w.mu.Unlock()
	}
}

func (w *WebSocket) send(cmd command) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conn.WriteJSON(cmd)
}

func (w *WebSocket) Load(_ context.Context, url string, bpm float64, timeSignature, measureCount, countInMeasures int, volume, rate, pitchShiftSemitones float64, noLoopMode bool) error {
	return w.send(command{
		Type: cmdLoad, URL: url, BPM: bpm, TimeSignature: timeSignature,
		MeasureCount: measureCount, CountInMeasures: countInMeasures,
		Volume: volume, Rate: rate, PitchShiftSemitones: pitchShiftSemitones,
		NoLoopMode: noLoopMode,
	})
}

func (w *WebSocket) Play(context.Context) error { return w.send(command{Type: cmdPlay}) }
func (w *WebSocket) Stop(context.Context) error { return w.send(command{Type: cmdStop}) }

func (w *WebSocket) SetVolume(v float64) { _ = w.send(command{Type: cmdSetVolume, Volume: v}) }
func (w *WebSocket) SetPitchShift(semitones float64) {
	_ = w.send(command{Type: cmdSetPitch, PitchShiftSemitones: semitones})
}

func (w *WebSocket) SeekToBar1Start(context.Context) error {
	return w.send(command{Type: cmdSeekToBar1})
}

func (w *WebSocket) PositionSeconds() (float64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.hasPos {
		return 0, errNotReported
	}
	return w.lastPos, nil
}

func (w *WebSocket) PrepareNext(_ context.Context, url string, bpm float64, timeSignature, measureCount int) error {
	return w.send(command{Type: cmdPrepareNext, URL: url, BPM: bpm, TimeSignature: timeSignature, MeasureCount: measureCount})
}

func (w *WebSocket) SwapToNext(context.Context) error {
	return w.send(command{Type: cmdSwapToNext})
}
