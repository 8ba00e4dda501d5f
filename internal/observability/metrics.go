package observability

import (
	"strconv"
	"sync"
)

// Metric names recorded by the ticket workflow.
const (
	MetricTicketsCreated      = "tickets_created"
	MetricTicketsClosed       = "tickets_closed"
	MetricCloseDenied         = "tickets_close_denied"
	MetricProvisioningFailed  = "tickets_provisioning_failed"
	MetricCounterPersistError = "counter_persist_errors"
	MetricMembersVerified     = "members_verified"
	MetricPanelsPublished     = "panels_published"
)

// Metrics provides basic in-memory counters.
type Metrics struct {
	mu           sync.Mutex
	counters     map[string]int64
	requestCount map[string]int64
	errorCount   map[string]int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		counters:     make(map[string]int64),
		requestCount: make(map[string]int64),
		errorCount:   make(map[string]int64),
	}
}

// Inc increments a named counter.
func (m *Metrics) Inc(name string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[name]++
}

// RecordRequest increments counters for health server requests.
func (m *Metrics) RecordRequest(path, method string, status int) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + strconv.Itoa(status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
}

// RecordError increments error counters keyed by handler and error code.
func (m *Metrics) RecordError(source, code string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[source+"|"+code]++
}

// Snapshot is a point-in-time copy of all counters.
type Snapshot struct {
	Counters map[string]int64 `json:"counters"`
	Requests map[string]int64 `json:"requests"`
	Errors   map[string]int64 `json:"errors"`
}

// Snapshot copies the current counters.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{
		Counters: copyCounts(m.counters),
		Requests: copyCounts(m.requestCount),
		Errors:   copyCounts(m.errorCount),
	}
}

func copyCounts(src map[string]int64) map[string]int64 {
	out := make(map[string]int64, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
