package mocks

import (
	"image"
	"sync"

	"github.com/user/optiflow/pkg/flow"
	"github.com/user/optiflow/pkg/ports"
)

// Sink is a recording mock implementation of ports.DebugSink.
type Sink struct {
	mu            sync.Mutex
	EnabledValue  bool
	JobJSON       [][]byte
	FlowFields    map[string]*flow.Field
	PyramidLevels []int
	FrameIndexes  []int
}

// NewSink creates a recording sink.
func NewSink(enabled bool) *Sink {
	return &Sink{
		EnabledValue: enabled,
		FlowFields:   map[string]*flow.Field{},
	}
}

func (m *Sink) Enabled() bool { return m.EnabledValue }

func (m *Sink) SaveJobJSON(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.JobJSON = append(m.JobJSON, data)
	return nil
}

func (m *Sink) SaveFlowField(name string, field *flow.Field) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FlowFields[name] = field
	return nil
}

func (m *Sink) SavePyramidLevel(level int, img image.Image) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PyramidLevels = append(m.PyramidLevels, level)
	return nil
}

func (m *Sink) SaveFrame(index int, img image.Image) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FrameIndexes = append(m.FrameIndexes, index)
	return nil
}

var _ ports.DebugSink = (*Sink)(nil)
