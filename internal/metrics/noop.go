package metrics

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncUserRegistered is a no-op.
func (n *NoopRecorder) IncUserRegistered() {}

// IncRegistrationRejected is a no-op.
func (n *NoopRecorder) IncRegistrationRejected(reason string) {}

// IncLoginSucceeded is a no-op.
func (n *NoopRecorder) IncLoginSucceeded() {}

// IncLoginFailed is a no-op.
func (n *NoopRecorder) IncLoginFailed() {}

// IncDonationRecorded is a no-op.
func (n *NoopRecorder) IncDonationRecorded() {}

// IncDonationRejected is a no-op.
func (n *NoopRecorder) IncDonationRejected(reason string) {}

// ObserveDonationAmount is a no-op.
func (n *NoopRecorder) ObserveDonationAmount(amount float64) {}

// IncFundingView is a no-op.
func (n *NoopRecorder) IncFundingView() {}

// IncFundingCacheHit is a no-op.
func (n *NoopRecorder) IncFundingCacheHit() {}

// IncFundingCacheMiss is a no-op.
func (n *NoopRecorder) IncFundingCacheMiss() {}

// IncAuditEventPublished is a no-op.
func (n *NoopRecorder) IncAuditEventPublished(status string) {}

// IncAuditEventProcessed is a no-op.
func (n *NoopRecorder) IncAuditEventProcessed(status string) {}

// ObserveAuditBatchSize is a no-op.
func (n *NoopRecorder) ObserveAuditBatchSize(size int) {}
