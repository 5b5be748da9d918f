package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	barsValidated    *prometheus.CounterVec
	validationScore  *prometheus.GaugeVec
	trainingDuration *prometheus.HistogramVec
	cvScore          *prometheus.GaugeVec
	orders           *prometheus.CounterVec
	equity           *prometheus.GaugeVec
	errorsTotal      *prometheus.CounterVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		barsValidated: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradeforge_bars_validated_total",
				Help: "Total number of bars run through validation",
			},
			[]string{"symbol"},
		),
		validationScore: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "tradeforge_validation_score",
				Help: "Last data-quality score per symbol",
			},
			[]string{"symbol"},
		),
		trainingDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tradeforge_training_duration_seconds",
				Help:    "Duration of training runs in seconds",
				Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
			},
			[]string{"model"},
		),
		cvScore: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "tradeforge_cv_score_mean",
				Help: "Mean walk-forward validation score per model",
			},
			[]string{"model"},
		),
		orders: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradeforge_orders_total",
				Help: "Orders placed, labeled by acceptance",
			},
			[]string{"result"},
		),
		equity: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "tradeforge_equity",
				Help: "Last mark-to-market equity per symbol",
			},
			[]string{"symbol"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradeforge_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
	}
}

// RecordBarsValidated records a validation pass over a bar series.
func (r *Recorder) RecordBarsValidated(symbol string, rows int, score int) {
	r.barsValidated.WithLabelValues(symbol).Add(float64(rows))
	r.validationScore.WithLabelValues(symbol).Set(float64(score))
}

// RecordTrainingDuration records one training run's wall time.
func (r *Recorder) RecordTrainingDuration(model string, seconds float64) {
	r.trainingDuration.WithLabelValues(model).Observe(seconds)
}

// RecordCVScore records the cross-validation mean for a model.
func (r *Recorder) RecordCVScore(model string, mean float64) {
	r.cvScore.WithLabelValues(model).Set(mean)
}

// RecordOrder records an order attempt and whether it was accepted.
func (r *Recorder) RecordOrder(accepted bool) {
	result := "accepted"
	if !accepted {
		result = "rejected"
	}
	r.orders.WithLabelValues(result).Inc()
}

// RecordEquity records the latest equity mark for a symbol.
func (r *Recorder) RecordEquity(symbol string, equity float64) {
	r.equity.WithLabelValues(symbol).Set(equity)
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}
