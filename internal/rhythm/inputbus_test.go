package rhythm

import (
	"testing"
	"time"
)

func TestInputBusDebouncesDuplicatePitchDown(t *testing.T) {
	bus := NewInputBus()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	if ok := bus.Push(InputEvent{Type: PitchDown, Source: SourceMIDI, Pitch: 0, Timestamp: base}); !ok {
		t.Fatalf("expected first press to be accepted")
	}
	if ok := bus.Push(InputEvent{Type: PitchDown, Source: SourceMIDI, Pitch: 0, Timestamp: base.Add(2 * time.Millisecond)}); ok {
		t.Errorf("expected duplicate press within debounce window to be suppressed")
	}
	if ok := bus.Push(InputEvent{Type: PitchDown, Source: SourceMIDI, Pitch: 0, Timestamp: base.Add(10 * time.Millisecond)}); !ok {
		t.Errorf("expected press after debounce window to be accepted")
	}
	if got := bus.Len(); got != 2 {
		t.Errorf("expected 2 queued events, got %d", got)
	}
}

func TestInputBusDebounceIsPerSourceAndPitch(t *testing.T) {
	bus := NewInputBus()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	bus.Push(InputEvent{Type: PitchDown, Source: SourceMIDI, Pitch: 0, Timestamp: base})
	if ok := bus.Push(InputEvent{Type: PitchDown, Source: SourceOnScreen, Pitch: 0, Timestamp: base.Add(time.Millisecond)}); !ok {
		t.Errorf("expected a different source's press to bypass the other source's debounce window")
	}
	if ok := bus.Push(InputEvent{Type: PitchDown, Source: SourceMIDI, Pitch: 1, Timestamp: base.Add(time.Millisecond)}); !ok {
		t.Errorf("expected a different pitch to bypass the debounce window")
	}
}

func TestInputBusDrainOrdersByTimestampThenSourcePriority(t *testing.T) {
	bus := NewInputBus()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	bus.Push(InputEvent{Type: PitchDown, Source: SourceVoice, Pitch: 0, Timestamp: base})
	bus.Push(InputEvent{Type: PitchDown, Source: SourceMIDI, Pitch: 1, Timestamp: base})
	bus.Push(InputEvent{Type: PitchDown, Source: SourceOnScreen, Pitch: 2, Timestamp: base.Add(-time.Millisecond)})

	events := bus.Drain()
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	if events[0].Source != SourceOnScreen {
		t.Errorf("expected earliest timestamp first, got source %v", events[0].Source)
	}
	if events[1].Source != SourceMIDI || events[2].Source != SourceVoice {
		t.Errorf("expected MIDI before Voice on a same-timestamp tie, got order %v, %v", events[1].Source, events[2].Source)
	}
}

func TestInputBusDrainEmptiesQueue(t *testing.T) {
	bus := NewInputBus()
	bus.Push(InputEvent{Type: PitchDown, Source: SourceMIDI, Pitch: 0, Timestamp: time.Now()})
	bus.Drain()
	if bus.Len() != 0 {
		t.Errorf("expected queue to be empty after Drain, got %d", bus.Len())
	}
}

func TestInputBusOverflowDropsOldestPitchUpAndCounts(t *testing.T) {
	bus := NewInputBus()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	// Fill with alternating down/up at distinct pitches (avoids debounce) so
	// an eventual overflow has a PitchUp to evict.
	for i := 0; i < inputBusCapacity; i++ {
		ts := base.Add(time.Duration(i) * time.Millisecond * 10)
		pitch := PitchClass(i % 12)
		eventType := PitchDown
		if i%2 == 1 {
			eventType = PitchUp
		}
		bus.Push(InputEvent{Type: eventType, Source: SourceMIDI, Pitch: pitch, Timestamp: ts})
	}
	if bus.Len() != inputBusCapacity {
		t.Fatalf("expected queue full at capacity, got %d", bus.Len())
	}

	overflowTS := base.Add(time.Duration(inputBusCapacity) * time.Millisecond * 10)
	bus.Push(InputEvent{Type: PitchDown, Source: SourceMIDI, Pitch: 5, Timestamp: overflowTS})

	if bus.Len() != inputBusCapacity {
		t.Errorf("expected queue to stay bounded at capacity, got %d", bus.Len())
	}
	if bus.DroppedCount() != 1 {
		t.Errorf("expected dropped count 1, got %d", bus.DroppedCount())
	}
}
