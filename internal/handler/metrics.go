package handler

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/classfund/classfund/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "classfund_users_registered_total %d\n", snap.UsersRegistered)
	writeLabeledMetric(w, "classfund_registrations_rejected_total", snap.RegistrationsRejected)

	writeMetric(w, "classfund_logins_total{status=\"success\"} %d\n", snap.LoginsSucceeded)
	writeMetric(w, "classfund_logins_total{status=\"failed\"} %d\n", snap.LoginsFailed)

	writeMetric(w, "classfund_donations_recorded_total %d\n", snap.DonationsRecorded)
	writeLabeledMetric(w, "classfund_donations_rejected_total", snap.DonationsRejected)
	writeMetric(w, "classfund_donation_amount_sum %.2f\n", snap.DonationAmountSum)

	writeMetric(w, "classfund_funding_views_total %d\n", snap.FundingViews)
	writeMetric(w, "classfund_funding_cache_hits_total %d\n", snap.FundingCacheHits)
	writeMetric(w, "classfund_funding_cache_misses_total %d\n", snap.FundingCacheMisses)

	writeMetric(w, "classfund_audit_events_published_total{status=\"success\"} %d\n", snap.AuditEventsPublished)
	writeMetric(w, "classfund_audit_events_published_total{status=\"dropped\"} %d\n", snap.AuditEventsDropped)
	writeMetric(w, "classfund_audit_events_processed_total{status=\"success\"} %d\n", snap.AuditEventsProcessed)
	writeMetric(w, "classfund_audit_events_processed_total{status=\"failed\"} %d\n", snap.AuditEventsFailed)
	writeMetric(w, "classfund_audit_batches_total %d\n", snap.AuditBatchCount)
	writeMetric(w, "classfund_audit_batch_events_total %d\n", snap.AuditBatchEventsTotal)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}

// writeLabeledMetric emits one line per reason, sorted for stable output.
func writeLabeledMetric(w http.ResponseWriter, name string, byReason map[string]uint64) {
	reasons := make([]string, 0, len(byReason))
	for reason := range byReason {
		reasons = append(reasons, reason)
	}
	sort.Strings(reasons)
	for _, reason := range reasons {
		writeMetric(w, "%s{reason=%q} %d\n", name, reason, byReason[reason])
	}
}
