package stats

import (
	"encoding/json"
	"expvar"
	"net/http"
	"time"
)

const publishedName = "opschat-stats"

// Counters maintained by the HTTP layer.
const (
	MessagesSent        = "MessagesSent"
	RoomsCreated        = "RoomsCreated"
	RoomsDeleted        = "RoomsDeleted"
	ParticipantsAdded   = "ParticipantsAdded"
	ParticipantsRemoved = "ParticipantsRemoved"
	MessagesMarkedRead  = "MessagesMarkedRead"
)

var DefaultMetrics = []string{
	MessagesSent,
	RoomsCreated,
	RoomsDeleted,
	ParticipantsAdded,
	ParticipantsRemoved,
	MessagesMarkedRead,
}

type StatsProvider interface {
	Incr(name string)
	Add(name string, delta int64)
	RegisterMetric(name string)
	Run()
}

type StatsUpdater struct {
	vars       *expvar.Map
	updateChan chan *metricsUpdateReq
}

type metricsUpdateReq struct {
	name  string
	value int64
}

func (su *StatsUpdater) expvarHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	expvarData := make(map[string]any)
	su.vars.Do(func(kv expvar.KeyValue) {
		var value any
		json.Unmarshal([]byte(kv.Value.String()), &value)
		expvarData[kv.Key] = value
	})

	json.NewEncoder(w).Encode(expvarData)
}

// NewStatsUpdater registers GET /debug/vars on mux and creates a counter
// for each of metrics.
func NewStatsUpdater(mux *http.ServeMux, metrics ...string) *StatsUpdater {
	su := &StatsUpdater{
		vars:       new(expvar.Map).Init(),
		updateChan: make(chan *metricsUpdateReq, 512),
	}
	mux.Handle("GET /debug/vars", http.HandlerFunc(su.expvarHandler))

	// expvar panics on a second Publish of the same name.
	if expvar.Get(publishedName) == nil {
		expvar.Publish(publishedName, su.vars)
	}

	su.initializeMetrics()
	for _, name := range metrics {
		su.RegisterMetric(name)
	}

	return su
}

func (su *StatsUpdater) initializeMetrics() {
	startTime := time.Now()
	su.vars.Set("Uptime", expvar.Func(func() any {
		return time.Since(startTime).Milliseconds()
	}))
}

func (su *StatsUpdater) updateMetrics() {
	for req := range su.updateChan {
		metric, ok := su.vars.Get(req.name).(*expvar.Int)
		if !ok {
			panic("metric not found: " + req.name)
		}

		metric.Add(req.value)
	}
}

func (su *StatsUpdater) Incr(name string) {
	su.Add(name, 1)
}

func (su *StatsUpdater) Add(name string, delta int64) {
	su.updateChan <- &metricsUpdateReq{name: name, value: delta}
}

func (su *StatsUpdater) RegisterMetric(name string) {
	su.vars.Set(name, new(expvar.Int))
}

func (su *StatsUpdater) Run() {
	go su.updateMetrics()
}

func (su *StatsUpdater) Stop() {
	close(su.updateChan)
}
