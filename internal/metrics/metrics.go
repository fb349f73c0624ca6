// AngelaMos | 2026
// metrics.go

// Package metrics holds the Prometheus collectors for the marketplace API.
// Collectors register with the default registry on package init through
// promauto and are scraped at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "marketplace"

// HTTPRequestDuration is labelled by method, route pattern and status class.
var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests by route pattern.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "route", "status"},
)

// LeadsCreatedTotal counts first contacts by the recipient tier locked on
// the lead.
var LeadsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "leads_created_total",
		Help:      "Total number of leads created, by locked recipient tier.",
	},
	[]string{"recipient_tier"},
)

var LeadConflictsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "lead_conflicts_total",
		Help:      "Lead creations rejected because the tuple already exists.",
	},
)

var QuotaDenialsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "quota_denials_total",
		Help:      "Project creations denied by tier quota.",
	},
	[]string{"tier"},
)

// AccessDenialsTotal counts single-resource reads refused by the
// visibility resolver.
// Label:
//   - resource: "project" or "document"
var AccessDenialsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "access_denials_total",
		Help:      "Reads refused because the access level is not visible to the viewer.",
	},
	[]string{"resource"},
)

var AuditEntriesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_entries_total",
		Help:      "Request audit entries by outcome (written, dropped, failed).",
	},
	[]string{"result"},
)

var AuditQueueDepth = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Entries waiting in the audit sink queue.",
	},
)

var DocumentBytesUploaded = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "document_bytes_uploaded_total",
		Help:      "Total bytes of project documents stored.",
	},
)

// DealsRecordedTotal counts deals attached to leads, by the tier locked on
// the originating lead.
var DealsRecordedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "deals_recorded_total",
		Help:      "Deals recorded against leads, by locked recipient tier.",
	},
	[]string{"locked_tier"},
)

var RateLimitedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limited_total",
		Help:      "Requests rejected by a rate limit, by limit label.",
	},
	[]string{"limit"},
)
