package metrics

import (
	"sync"
	"sync/atomic"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	UsersRegistered       uint64
	RegistrationsRejected map[string]uint64
	LoginsSucceeded       uint64
	LoginsFailed          uint64
	DonationsRecorded     uint64
	DonationsRejected     map[string]uint64
	DonationAmountSum     float64
	FundingViews          uint64
	FundingCacheHits      uint64
	FundingCacheMisses    uint64
	AuditEventsPublished  uint64
	AuditEventsDropped    uint64
	AuditEventsProcessed  uint64
	AuditEventsFailed     uint64
	AuditBatchCount       uint64
	AuditBatchEventsTotal uint64
}

// InMemoryRecorder stores metrics in memory, for tests and for the
// internal /metrics endpoint.
type InMemoryRecorder struct {
	usersRegistered       uint64
	loginsSucceeded       uint64
	loginsFailed          uint64
	donationsRecorded     uint64
	fundingViews          uint64
	fundingCacheHits      uint64
	fundingCacheMisses    uint64
	auditEventsPublished  uint64
	auditEventsDropped    uint64
	auditEventsProcessed  uint64
	auditEventsFailed     uint64
	auditBatchCount       uint64
	auditBatchEventsTotal uint64

	mu                    sync.Mutex
	registrationsRejected map[string]uint64
	donationsRejected     map[string]uint64
	donationAmountSum     float64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{
		registrationsRejected: make(map[string]uint64),
		donationsRejected:     make(map[string]uint64),
	}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	regRejected := make(map[string]uint64, len(m.registrationsRejected))
	for reason, count := range m.registrationsRejected {
		regRejected[reason] = count
	}
	donRejected := make(map[string]uint64, len(m.donationsRejected))
	for reason, count := range m.donationsRejected {
		donRejected[reason] = count
	}
	amountSum := m.donationAmountSum
	m.mu.Unlock()

	return Snapshot{
		UsersRegistered:       atomic.LoadUint64(&m.usersRegistered),
		RegistrationsRejected: regRejected,
		LoginsSucceeded:       atomic.LoadUint64(&m.loginsSucceeded),
		LoginsFailed:          atomic.LoadUint64(&m.loginsFailed),
		DonationsRecorded:     atomic.LoadUint64(&m.donationsRecorded),
		DonationsRejected:     donRejected,
		DonationAmountSum:     amountSum,
		FundingViews:          atomic.LoadUint64(&m.fundingViews),
		FundingCacheHits:      atomic.LoadUint64(&m.fundingCacheHits),
		FundingCacheMisses:    atomic.LoadUint64(&m.fundingCacheMisses),
		AuditEventsPublished:  atomic.LoadUint64(&m.auditEventsPublished),
		AuditEventsDropped:    atomic.LoadUint64(&m.auditEventsDropped),
		AuditEventsProcessed:  atomic.LoadUint64(&m.auditEventsProcessed),
		AuditEventsFailed:     atomic.LoadUint64(&m.auditEventsFailed),
		AuditBatchCount:       atomic.LoadUint64(&m.auditBatchCount),
		AuditBatchEventsTotal: atomic.LoadUint64(&m.auditBatchEventsTotal),
	}
}

// IncUserRegistered increments the registration counter.
func (m *InMemoryRecorder) IncUserRegistered() {
	atomic.AddUint64(&m.usersRegistered, 1)
}

// IncRegistrationRejected counts a rejected registration by reason code.
func (m *InMemoryRecorder) IncRegistrationRejected(reason string) {
	m.mu.Lock()
	m.registrationsRejected[reason]++
	m.mu.Unlock()
}

// IncLoginSucceeded increments the successful login counter.
func (m *InMemoryRecorder) IncLoginSucceeded() {
	atomic.AddUint64(&m.loginsSucceeded, 1)
}

// IncLoginFailed increments the failed login counter.
func (m *InMemoryRecorder) IncLoginFailed() {
	atomic.AddUint64(&m.loginsFailed, 1)
}

// IncDonationRecorded increments the recorded donation counter.
func (m *InMemoryRecorder) IncDonationRecorded() {
	atomic.AddUint64(&m.donationsRecorded, 1)
}

// IncDonationRejected counts a rejected donation by reason code.
func (m *InMemoryRecorder) IncDonationRejected(reason string) {
	m.mu.Lock()
	m.donationsRejected[reason]++
	m.mu.Unlock()
}

// ObserveDonationAmount adds a recorded amount to the running sum.
func (m *InMemoryRecorder) ObserveDonationAmount(amount float64) {
	m.mu.Lock()
	m.donationAmountSum += amount
	m.mu.Unlock()
}

// IncFundingView increments the funding view counter.
func (m *InMemoryRecorder) IncFundingView() {
	atomic.AddUint64(&m.fundingViews, 1)
}

// IncFundingCacheHit increments the funding cache hit counter.
func (m *InMemoryRecorder) IncFundingCacheHit() {
	atomic.AddUint64(&m.fundingCacheHits, 1)
}

// IncFundingCacheMiss increments the funding cache miss counter.
func (m *InMemoryRecorder) IncFundingCacheMiss() {
	atomic.AddUint64(&m.fundingCacheMisses, 1)
}

// IncAuditEventPublished counts a published or dropped audit event.
func (m *InMemoryRecorder) IncAuditEventPublished(status string) {
	if status == "success" {
		atomic.AddUint64(&m.auditEventsPublished, 1)
		return
	}
	atomic.AddUint64(&m.auditEventsDropped, 1)
}

// IncAuditEventProcessed counts a processed or failed audit event.
func (m *InMemoryRecorder) IncAuditEventProcessed(status string) {
	if status == "success" {
		atomic.AddUint64(&m.auditEventsProcessed, 1)
		return
	}
	atomic.AddUint64(&m.auditEventsFailed, 1)
}

// ObserveAuditBatchSize records one flushed audit batch.
func (m *InMemoryRecorder) ObserveAuditBatchSize(size int) {
	atomic.AddUint64(&m.auditBatchCount, 1)
	atomic.AddUint64(&m.auditBatchEventsTotal, uint64(size))
}
