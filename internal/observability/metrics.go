package observability

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/civicvoice/complaint-service/internal/events"
)

// Metrics provides basic in-memory counters.
type Metrics struct {
	mu            sync.Mutex
	requestCount  map[string]int64
	errorCount    map[string]int64
	latencyTotal  map[string]time.Duration
	lifecycle     map[string]int64
	transitionsTo map[string]int64
}

// Snapshot is a point-in-time copy of every counter.
type Snapshot struct {
	Requests       map[string]int64 `json:"requests"`
	Errors         map[string]int64 `json:"errors"`
	AvgLatencyMs   map[string]int64 `json:"avg_latency_ms"`
	Lifecycle      map[string]int64 `json:"lifecycle"`
	TransitionsTo  map[string]int64 `json:"transitions_to"`
	CollectedAtUTC time.Time        `json:"collected_at"`
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount:  make(map[string]int64),
		errorCount:    make(map[string]int64),
		latencyTotal:  make(map[string]time.Duration),
		lifecycle:     make(map[string]int64),
		transitionsTo: make(map[string]int64),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := pathKey(path, method, status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
	m.latencyTotal[key] += duration
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// RegisterHandlers counts lifecycle events published on the dispatcher.
func (m *Metrics) RegisterHandlers(dispatcher events.Dispatcher) {
	for _, eventType := range []events.EventType{
		events.EventComplaintFiled,
		events.EventComplaintStatusChange,
		events.EventComplaintEscalated,
		events.EventVoteCast,
		events.EventComplaintRated,
	} {
		dispatcher.Subscribe(eventType, m.recordEvent)
	}
}

func (m *Metrics) recordEvent(_ context.Context, event events.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lifecycle[string(event.Type)]++
	if payload, ok := event.Payload.(events.StatusChangedPayload); ok {
		m.transitionsTo[string(payload.NewStatus)]++
	}
	return nil
}

// Snapshot copies the counters.
func (m *Metrics) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	avg := make(map[string]int64, len(m.latencyTotal))
	for key, total := range m.latencyTotal {
		if n := m.requestCount[key]; n > 0 {
			avg[key] = total.Milliseconds() / n
		}
	}
	return Snapshot{
		Requests:       copyCounts(m.requestCount),
		Errors:         copyCounts(m.errorCount),
		AvgLatencyMs:   avg,
		Lifecycle:      copyCounts(m.lifecycle),
		TransitionsTo:  copyCounts(m.transitionsTo),
		CollectedAtUTC: time.Now().UTC(),
	}
}

func copyCounts(in map[string]int64) map[string]int64 {
	out := make(map[string]int64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func pathKey(path, method string, status int) string {
	return path + "|" + method + "|" + strconv.Itoa(status)
}
