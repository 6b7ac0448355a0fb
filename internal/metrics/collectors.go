package metrics

import (
	stdprometheus "github.com/prometheus/client_golang/prometheus"
)

// Engine collectors, registered once at package load and shared by every
// engine instance (tests included)
var (
	EventsProcessed = newRegisteredCounterVec("events_processed_total",
		"number of events that reached a terminal status", []string{"status"})

	RuleTriggers = newRegisteredCounter("rule_triggers_total",
		"number of rule triggers that passed the cooldown gate")

	ActionFailures = newRegisteredCounterVec("action_failures_total",
		"number of failed action executions", []string{"action_type"})

	EngineQueueGauge = newRegisteredGauge("engine_queue",
		"number of events waiting in the engine queue")
)

func newRegisteredCounter(name string, help string) stdprometheus.Counter {
	counter := stdprometheus.NewCounter(stdprometheus.CounterOpts{
		Namespace:   MetricNamespace,
		ConstLabels: MetricPrometheusLabels,
		Name:        name,
		Help:        help,
	})
	stdprometheus.MustRegister(counter)
	return counter
}

func newRegisteredCounterVec(name string, help string, labels []string) *stdprometheus.CounterVec {
	counter := stdprometheus.NewCounterVec(stdprometheus.CounterOpts{
		Namespace:   MetricNamespace,
		ConstLabels: MetricPrometheusLabels,
		Name:        name,
		Help:        help,
	}, labels)
	stdprometheus.MustRegister(counter)
	return counter
}

func newRegisteredGauge(name string, help string) stdprometheus.Gauge {
	gauge := stdprometheus.NewGauge(stdprometheus.GaugeOpts{
		Namespace:   MetricNamespace,
		ConstLabels: MetricPrometheusLabels,
		Name:        name,
		Help:        help,
	})
	stdprometheus.MustRegister(gauge)
	gauge.Set(0)
	return gauge
}
