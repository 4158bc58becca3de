package searcher

import (
	"sync/atomic"
	"time"
)

type SolveMetrics struct {
	StartTime  time.Time
	Duration   time.Duration
	Iterations int64
	Nodes      int
	Infosets   int
}

type MetricsCollector interface {
	Start(nodes, infosets int)
	AddIteration()
	Complete() SolveMetrics
}

type metricsCollector struct {
	startTime  time.Time
	nodes      int
	infosets   int
	iterations atomic.Int64
}

func NewMetricsCollector() MetricsCollector {
	return &metricsCollector{}
}

func (m *metricsCollector) Start(nodes, infosets int) {
	m.startTime = time.Now()
	m.nodes = nodes
	m.infosets = infosets
	m.iterations.Store(0)
}

func (m *metricsCollector) AddIteration() {
	m.iterations.Add(1)
}

func (m *metricsCollector) Complete() SolveMetrics {
	return SolveMetrics{
		StartTime:  m.startTime,
		Duration:   time.Since(m.startTime),
		Iterations: m.iterations.Load(),
		Nodes:      m.nodes,
		Infosets:   m.infosets,
	}
}

type noMetricsCollector struct{}

func NewNoMetricsCollector() MetricsCollector {
	return &noMetricsCollector{}
}

func (m *noMetricsCollector) Start(nodes, infosets int) {}
func (m *noMetricsCollector) AddIteration()             {}
func (m *noMetricsCollector) Complete() SolveMetrics    { return SolveMetrics{} }
