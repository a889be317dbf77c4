package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MirrorDocuments = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backoffice_mirror_documents_total",
			Help: "Documents handled by reconciliation passes",
		},
		[]string{"schema", "outcome"},
	)

	Disbursements = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backoffice_disbursements_total",
			Help: "Disbursement workflow outcomes",
		},
		[]string{"outcome"},
	)

	RemoteRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "backoffice_remote_request_duration_seconds",
			Help:    "Duration of calls to the lending server",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "status"},
	)
)
