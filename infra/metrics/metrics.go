// Package metrics exposes the book's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "lob"

// Book groups the collectors updated by the order service.
type Book struct {
	Commands     *prometheus.CounterVec
	RestingOrder *prometheus.GaugeVec
	Levels       *prometheus.GaugeVec
	BestPrice    *prometheus.GaugeVec
	QuoteDrops   prometheus.Counter
	Published    *prometheus.CounterVec
}

// NewBook creates the collectors and registers them on reg.
func NewBook(reg prometheus.Registerer, instrument string) *Book {
	labels := prometheus.Labels{"instrument": instrument}
	m := &Book{
		Commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "commands_total",
			Help:        "Book commands by operation and result.",
			ConstLabels: labels,
		}, []string{"op", "result"}),
		RestingOrder: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "resting_orders",
			Help:        "Resting orders per side.",
			ConstLabels: labels,
		}, []string{"side"}),
		Levels: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "price_levels",
			Help:        "Price levels per side.",
			ConstLabels: labels,
		}, []string{"side"}),
		BestPrice: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "best_price",
			Help:        "Best bid and ask; NaN when the side is empty.",
			ConstLabels: labels,
		}, []string{"side"}),
		QuoteDrops: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "quote_drops_total",
			Help:        "Top-of-book updates dropped because the quote channel was full.",
			ConstLabels: labels,
		}),
		Published: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "published_total",
			Help:        "Messages handed to external sinks by sink and result.",
			ConstLabels: labels,
		}, []string{"sink", "result"}),
	}
	reg.MustRegister(m.Commands, m.RestingOrder, m.Levels, m.BestPrice, m.QuoteDrops, m.Published)
	return m
}

// Result maps an error to the "result" label.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
