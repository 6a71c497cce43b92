// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package metrics counts path resolutions, change notifications and
// document imports, and serves them for Prometheus.
package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samber/oops"

	"github.com/holomush/metaprop/pkg/meta"
	"github.com/holomush/metaprop/pkg/property"
	"github.com/holomush/metaprop/pkg/serial"
)

// Metrics holds the metaprop counters and the registry they live in.
type Metrics struct {
	Resolves      *prometheus.CounterVec
	Notifications *prometheus.CounterVec
	Imports       *prometheus.CounterVec

	registry *prometheus.Registry
}

// New creates the counters in a fresh registry that also carries the
// standard Go and process collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	factory := promauto.With(registry)
	return &Metrics{
		Resolves: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "metaprop_resolve_total",
			Help: "Property path resolutions by result",
		}, []string{"result"}),
		Notifications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "metaprop_notifications_total",
			Help: "Property change notifications by mode",
		}, []string{"mode"}),
		Imports: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "metaprop_imports_total",
			Help: "Document imports by format and result",
		}, []string{"format", "result"}),
		registry: registry,
	}
}

// Registry returns the registry holding the counters.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func result(ok bool) string {
	if ok {
		return "ok"
	}
	return "fail"
}

// Install routes the resolver, property and import hooks into m. The
// returned func removes them again. Only one Metrics can be installed at a
// time; a later Install replaces an earlier one.
func (m *Metrics) Install() (uninstall func()) {
	meta.SetResolveObserver(func(ok bool) {
		m.Resolves.WithLabelValues(result(ok)).Inc()
	})
	property.SetNotifyObserver(func(mode property.NotifyMode) {
		m.Notifications.WithLabelValues(mode.String()).Inc()
	})
	serial.SetImportObserver(func(format string, ok bool) {
		m.Imports.WithLabelValues(format, result(ok)).Inc()
	})
	return func() {
		meta.SetResolveObserver(nil)
		property.SetNotifyObserver(nil)
		serial.SetImportObserver(nil)
	}
}

// Handler returns the /metrics handler for the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// WriteText writes the current values in the Prometheus text format.
func (m *Metrics) WriteText(w io.Writer) error {
	rec := httptest.NewRecorder()
	promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		return oops.Code("METRICS_FAILED").With("status", rec.Code).Errorf("gathering metrics failed")
	}
	if _, err := w.Write(rec.Body.Bytes()); err != nil {
		return oops.Code("METRICS_FAILED").Wrap(err)
	}
	return nil
}
