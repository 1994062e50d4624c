// Package metrics exports converter activity to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/reoring/jsonapi"
)

const (
	opEncode = "encode"
	opDecode = "decode"

	resultOK    = "ok"
	resultError = "error"
)

// Metrics implements jsonapi.Observer.
type Metrics struct {
	// Calls by operation ("encode", "decode") and result ("ok", "error")
	Operations *prometheus.CounterVec

	// Resources written or returned by operation
	Resources *prometheus.CounterVec

	// Data dropped by the lenient decoder by issue code
	DroppedData *prometheus.CounterVec

	// Resources per document by operation
	DocumentSize *prometheus.HistogramVec
}

// New registers the converter metrics with reg. A nil reg uses the default
// registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		Operations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "jsonapi_operations_total",
			Help: "Total encode and decode calls by result",
		}, []string{"op", "result"}),

		Resources: f.NewCounterVec(prometheus.CounterOpts{
			Name: "jsonapi_resources_total",
			Help: "Total resources encoded or decoded",
		}, []string{"op"}),

		DroppedData: f.NewCounterVec(prometheus.CounterOpts{
			Name: "jsonapi_decode_issues_total",
			Help: "Total resources and fields dropped while decoding by issue code",
		}, []string{"code"}),

		DocumentSize: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "jsonapi_document_resources",
			Help:    "Number of resources per document",
			Buckets: []float64{0, 1, 5, 10, 50, 100, 500, 1000},
		}, []string{"op"}),
	}
}

var _ jsonapi.Observer = (*Metrics)(nil)

// ObserveEncode records one ToJSON call.
func (m *Metrics) ObserveEncode(resources int, err error) {
	if m != nil {
		m.observe(opEncode, resources, err)
	}
}

// ObserveDecode records one FromJSON call and its issues.
func (m *Metrics) ObserveDecode(resources int, issues jsonapi.Issues, err error) {
	if m == nil {
		return
	}
	m.observe(opDecode, resources, err)
	for _, it := range issues {
		m.DroppedData.WithLabelValues(it.Code).Inc()
	}
}

func (m *Metrics) observe(op string, resources int, err error) {
	if err != nil {
		m.Operations.WithLabelValues(op, resultError).Inc()
		return
	}
	m.Operations.WithLabelValues(op, resultOK).Inc()
	m.Resources.WithLabelValues(op).Add(float64(resources))
	m.DocumentSize.WithLabelValues(op).Observe(float64(resources))
}
