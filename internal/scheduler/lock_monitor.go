package scheduler

import (
	"context"
	"time"

	"enquiry_intake_backend/internal/enquiries/domain"
	"enquiry_intake_backend/internal/enquiries/repository"
	"enquiry_intake_backend/platform/logger"
)

const defaultLockMonitorInterval = 15 * time.Minute

// LockMonitor periodically recomputes the staff assignment lock and logs when
// it engages or releases, so operators notice a growing backlog.
type LockMonitor struct {
	counter  repository.LockCounter
	log      *logger.Logger
	interval time.Duration
	now      func() time.Time
	locked   bool
}

func NewLockMonitor(counter repository.LockCounter, log *logger.Logger, interval time.Duration) *LockMonitor {
	if interval <= 0 {
		interval = defaultLockMonitorInterval
	}

	return &LockMonitor{
		counter:  counter,
		log:      log,
		interval: interval,
		now:      time.Now,
	}
}

func (m *LockMonitor) Run(ctx context.Context) {
	if m == nil || m.counter == nil {
		return
	}

	m.check(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.check(ctx)
		}
	}
}

func (m *LockMonitor) check(ctx context.Context) {
	cutoff := m.now().Add(-domain.OldEnquiryAge)
	oldUnassigned, err := m.counter.CountOldUnassigned(ctx, cutoff)
	if err != nil {
		m.log.Warn("staff lock check failed", "error", err)
		return
	}
	assigned, err := m.counter.CountAssigned(ctx)
	if err != nil {
		m.log.Warn("staff lock check failed", "error", err)
		return
	}

	status := domain.ComputeStatus(oldUnassigned, assigned)
	switch {
	case status.Locked && !m.locked:
		m.log.Warn("staff assignment lock engaged", "unassignedOld", oldUnassigned, "reason", status.Reason)
	case !status.Locked && m.locked:
		m.log.Info("staff assignment lock released", "assigned", assigned)
	}
	m.locked = status.Locked
}
