package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the service's prometheus collectors.
type Metrics struct {
	RecordsIngested *prometheus.CounterVec
	RecordsRejected *prometheus.CounterVec
	SkippedSubjects *prometheus.CounterVec
	CacheLookups    *prometheus.CounterVec
	BadgesAwarded   *prometheus.CounterVec
}

// New creates the collectors and registers them with reg. A nil reg leaves them unregistered.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RecordsIngested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lgs",
			Name:      "records_ingested_total",
			Help:      "Stored records by kind.",
		}, []string{"kind"}),
		RecordsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lgs",
			Name:      "records_rejected_total",
			Help:      "Records rejected at the validation boundary by kind.",
		}, []string{"kind"}),
		SkippedSubjects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lgs",
			Name:      "exam_skipped_subjects_total",
			Help:      "Exam subjects ignored by weighted scoring because they have no reference data.",
		}, []string{"subject"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lgs",
			Name:      "dashboard_cache_lookups_total",
			Help:      "Dashboard overview cache lookups by result.",
		}, []string{"result"}),
		BadgesAwarded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lgs",
			Name:      "badges_awarded_total",
			Help:      "Badges newly earned by users.",
		}, []string{"badge"}),
	}
	if reg != nil {
		reg.MustRegister(m.RecordsIngested, m.RecordsRejected, m.SkippedSubjects, m.CacheLookups, m.BadgesAwarded)
	}
	return m
}

// Nop returns unregistered collectors for tests and tools.
func Nop() *Metrics {
	return New(nil)
}
