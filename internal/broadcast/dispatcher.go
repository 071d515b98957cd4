package broadcast

import (
	"go.uber.org/zap"

	"github.com/allinone/backend/internal/metrics"
	"github.com/allinone/backend/internal/storage/models"
	"github.com/allinone/backend/pkg/logger"
)

// Sink receives the outbound event stream. The websocket Hub is the
// production sink; tests substitute a recorder.
type Sink interface {
	Broadcast(event Event)
}

// Dispatcher pairs the dedup working set with the outbound sink: every
// create or update replaces by id exactly once and emits exactly one event.
type Dispatcher struct {
	recent *RecentSet
	sink   Sink
}

func NewDispatcher(recent *RecentSet, sink Sink) *Dispatcher {
	return &Dispatcher{recent: recent, sink: sink}
}

func (d *Dispatcher) Created(record models.IncidentRecord) {
	fresh := d.recent.Put(record)
	if !fresh {
		logger.Warn("Duplicate create replaced in place",
			zap.String("incident_id", record.ID),
		)
	}
	d.sink.Broadcast(Event{Type: EventCreated, Incident: record})
	metrics.BroadcastsTotal.WithLabelValues(string(EventCreated)).Inc()
	metrics.WorkingSetSize.Set(float64(d.recent.Len()))
}

func (d *Dispatcher) Updated(record models.IncidentRecord) {
	d.recent.Put(record)
	d.sink.Broadcast(Event{Type: EventUpdated, Incident: record})
	metrics.BroadcastsTotal.WithLabelValues(string(EventUpdated)).Inc()
	metrics.WorkingSetSize.Set(float64(d.recent.Len()))
}

func (d *Dispatcher) Get(id string) (models.IncidentRecord, bool) {
	return d.recent.Get(id)
}

func (d *Dispatcher) Recent(limit int) []models.IncidentRecord {
	return d.recent.Recent(limit)
}
