package metrics

import "github.com/prometheus/client_golang/prometheus"

// DispatchMetrics records outcomes of the order assignment workflow.
type DispatchMetrics struct {
	broadcasts      prometheus.Counter
	offersCreated   prometheus.Counter
	accepts         prometheus.Counter
	acceptConflicts prometheus.Counter
}

// NewDispatchMetrics registers the dispatch metrics on the provided registerer.
func NewDispatchMetrics(reg prometheus.Registerer) *DispatchMetrics {
	if reg == nil {
		return &DispatchMetrics{}
	}
	broadcasts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dispatch_broadcasts_total",
		Help: "Orders fanned out to available drivers.",
	})
	offersCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dispatch_offers_created_total",
		Help: "Broadcast records created or reset to pending.",
	})
	accepts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dispatch_accepts_total",
		Help: "Offers accepted by drivers.",
	})
	acceptConflicts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dispatch_accept_conflicts_total",
		Help: "Accept attempts that lost the assignment race.",
	})
	reg.MustRegister(broadcasts, offersCreated, accepts, acceptConflicts)
	return &DispatchMetrics{
		broadcasts:      broadcasts,
		offersCreated:   offersCreated,
		accepts:         accepts,
		acceptConflicts: acceptConflicts,
	}
}

// IncBroadcast increments the fan-out counter.
func (d *DispatchMetrics) IncBroadcast() {
	if d == nil || d.broadcasts == nil {
		return
	}
	d.broadcasts.Inc()
}

// AddOffersCreated records how many driver offers a broadcast produced.
func (d *DispatchMetrics) AddOffersCreated(n int) {
	if d == nil || d.offersCreated == nil || n <= 0 {
		return
	}
	d.offersCreated.Add(float64(n))
}

// IncAccept increments the accepted-offer counter.
func (d *DispatchMetrics) IncAccept() {
	if d == nil || d.accepts == nil {
		return
	}
	d.accepts.Inc()
}

// IncAcceptConflict increments the lost-race counter.
func (d *DispatchMetrics) IncAcceptConflict() {
	if d == nil || d.acceptConflicts == nil {
		return
	}
	d.acceptConflicts.Inc()
}
