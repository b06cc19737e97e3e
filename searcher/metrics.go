package searcher

import (
	"sync/atomic"
	"time"
)

type MoveMetrics struct {
	StartTime    time.Time
	Duration     time.Duration
	Simulations  int64
	TerminalHits int64
	Evaluations  int64
	Nodes        int64
}

type MetricsCollector interface {
	Start()
	AddSimulation()
	AddTerminal()
	AddEvaluation()
	Complete(nodes int) MoveMetrics
}

type metricsCollector struct {
	startTime    time.Time
	simulations  atomic.Int64
	terminalHits atomic.Int64
	evaluations  atomic.Int64
}

func NewMetricsCollector() MetricsCollector {
	return &metricsCollector{}
}

func (m *metricsCollector) Start() {
	m.startTime = time.Now()
	m.simulations.Store(0)
	m.terminalHits.Store(0)
	m.evaluations.Store(0)
}

func (m *metricsCollector) AddSimulation() {
	m.simulations.Add(1)
}

func (m *metricsCollector) AddTerminal() {
	m.terminalHits.Add(1)
}

func (m *metricsCollector) AddEvaluation() {
	m.evaluations.Add(1)
}

func (m *metricsCollector) Complete(nodes int) MoveMetrics {
	return MoveMetrics{
		StartTime:    m.startTime,
		Duration:     time.Since(m.startTime),
		Simulations:  m.simulations.Load(),
		TerminalHits: m.terminalHits.Load(),
		Evaluations:  m.evaluations.Load(),
		Nodes:        int64(nodes),
	}
}

type noMetricsCollector struct{}

func NewNoMetricsCollector() MetricsCollector {
	return &noMetricsCollector{}
}

func (m *noMetricsCollector) Start()                         {}
func (m *noMetricsCollector) AddSimulation()                 {}
func (m *noMetricsCollector) AddTerminal()                   {}
func (m *noMetricsCollector) AddEvaluation()                 {}
func (m *noMetricsCollector) Complete(nodes int) MoveMetrics { return MoveMetrics{} }
