package player

import (
	"sync"

	"github.com/okkei/cueplay/internal/app/queue"
)

// Verify MockRenderer implements Renderer at compile time.
var _ Renderer = (*MockRenderer)(nil)

// MockRenderer is an in-memory Renderer for tests. It records commands and
// lets tests inject signals as if they came from a real rendering subsystem.
type MockRenderer struct {
	mu sync.Mutex

	items      []queue.Item
	playing    bool
	volume     float64
	playCalls  int
	pauseCalls int
	clearCalls int

	signals chan Signal
}

// NewMockRenderer creates a mock renderer.
func NewMockRenderer() *MockRenderer {
	return &MockRenderer{
		volume:  1.0,
		signals: make(chan Signal, 64),
	}
}

func (m *MockRenderer) Enqueue(item queue.Item) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(m.items, item)
}

func (m *MockRenderer) RemoveAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = nil
	m.playing = false
	m.clearCalls++
}

func (m *MockRenderer) Play() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playing = true
	m.playCalls++
}

func (m *MockRenderer) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playing = false
	m.pauseCalls++
}

func (m *MockRenderer) SetVolume(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.volume = v
}

func (m *MockRenderer) Signals() <-chan Signal {
	return m.signals
}

// Emit injects a signal into the stream.
func (m *MockRenderer) Emit(sig Signal) {
	m.signals <- sig
}

// Items returns a copy of the enqueued items.
func (m *MockRenderer) Items() []queue.Item {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]queue.Item, len(m.items))
	copy(out, m.items)
	return out
}

// IsPlaying reports whether Play was called more recently than Pause/RemoveAll.
func (m *MockRenderer) IsPlaying() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playing
}

// Volume returns the last applied volume.
func (m *MockRenderer) Volume() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.volume
}

// Calls returns the play, pause and clear call counts.
func (m *MockRenderer) Calls() (play, pause, clear int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playCalls, m.pauseCalls, m.clearCalls
}
