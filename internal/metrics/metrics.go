// Package metrics provides lightweight hooks for instrumentation.
package metrics

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Identity metrics
	IncUserRegistered()
	IncRegistrationRejected(reason string)
	IncLoginSucceeded()
	IncLoginFailed()

	// Donation ledger metrics
	IncDonationRecorded()
	IncDonationRejected(reason string)
	ObserveDonationAmount(amount float64)

	// Funding view metrics
	IncFundingView()
	IncFundingCacheHit()
	IncFundingCacheMiss()

	// Audit trail metrics
	IncAuditEventPublished(status string) // status: "success" or "dropped"
	IncAuditEventProcessed(status string) // status: "success" or "failed"
	ObserveAuditBatchSize(size int)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
