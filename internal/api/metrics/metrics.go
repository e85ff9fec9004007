// Package metrics defines and registers all custom Prometheus metrics for the
// bike rental service. It is the single source of truth for metric names,
// labels, and help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "bikerental"

// ── Rental metrics ────────────────────────────────────────────────────────────

// BookingsTotal counts successful bookings.
var BookingsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bookings_total",
		Help:      "Total number of successful bike bookings.",
	},
)

// ReturnsTotal counts successful returns.
var ReturnsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "returns_total",
		Help:      "Total number of successful bike returns.",
	},
)

// BikesListedTotal counts bikes added to the inventory.
var BikesListedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bikes_listed_total",
		Help:      "Total number of bikes listed for rent.",
	},
)

// WriteConflictsTotal counts write requests rejected because the requested
// transition is not permitted from the bike's current state.
// Label:
//   - operation: "book", "return", or "remove"
var WriteConflictsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "write_conflicts_total",
		Help:      "Total number of write requests rejected with a state conflict.",
	},
	[]string{"operation"},
)

// ── Push channel metrics ──────────────────────────────────────────────────────

// ObserversConnected tracks the number of currently registered observers.
var ObserversConnected = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "observers_connected",
		Help:      "Number of push-channel observers currently connected.",
	},
)

// SnapshotsPublishedTotal counts snapshots published to the fan-out hub.
var SnapshotsPublishedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "snapshots_published_total",
		Help:      "Total number of inventory snapshots published to observers.",
	},
)

// SnapshotDropsTotal counts snapshots dropped from observer queues because a
// newer snapshot superseded them before delivery.
var SnapshotDropsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "snapshot_drops_total",
		Help:      "Total number of queued snapshots superseded before delivery.",
	},
)
