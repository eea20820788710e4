package domain

import (
	"fmt"
	"time"
)

// OldEnquiryAge is how long an enquiry may sit before it counts as backlog.
const OldEnquiryAge = 24 * time.Hour

// StaffLockStatus is the global staff assignment lock, recomputed on every read.
type StaffLockStatus struct {
	Locked                    bool   `json:"locked"`
	Reason                    string `json:"reason"`
	UnassignedOldEnquiryCount int    `json:"unassigned_old_enquiries"`
	AssignedEnquiryCount      int    `json:"assigned_enquiries"`
}

// DropdownState is the staff selector hint shown next to an enquiry.
type DropdownState struct {
	Enabled   bool   `json:"enabled"`
	Clickable bool   `json:"clickable"`
	Reason    string `json:"reason"`
	UIState   string `json:"ui_state"`
}

// Dropdown UI states.
const (
	UIStateEnabled  = "enabled"
	UIStatePriority = "priority"
	UIStateLocked   = "locked"
)

// ComputeStatus derives the lock from the two aggregate counts. The lock holds
// while old unclaimed enquiries exist and no human owns any enquiry at all.
func ComputeStatus(oldUnassigned, assigned int) StaffLockStatus {
	status := StaffLockStatus{
		Locked:                    oldUnassigned > 0 && assigned == 0,
		UnassignedOldEnquiryCount: oldUnassigned,
		AssignedEnquiryCount:      assigned,
	}

	switch {
	case status.Locked:
		status.Reason = fmt.Sprintf("%d old enquiries (>1 day) must be assigned first", oldUnassigned)
	case oldUnassigned == 0:
		status.Reason = "No lock: no old unassigned enquiries"
	default:
		status.Reason = fmt.Sprintf("No lock: %d enquiries already assigned to staff", assigned)
	}
	return status
}

// CanAssign applies the lock to a single enquiry. While locked only old
// enquiries may be claimed; claiming one of them releases the lock.
func CanAssign(e Enquiry, status StaffLockStatus, now time.Time) bool {
	if !status.Locked {
		return true
	}
	return e.IsOld(now)
}

// StaffDropdown projects CanAssign into the hint the staff UI renders.
func StaffDropdown(e Enquiry, status StaffLockStatus, now time.Time) DropdownState {
	if !status.Locked {
		return DropdownState{Enabled: true, Clickable: true, UIState: UIStateEnabled}
	}
	if CanAssign(e, status, now) {
		return DropdownState{
			Enabled:   true,
			Clickable: true,
			Reason:    "Old enquiry: assigning it releases the staff lock",
			UIState:   UIStatePriority,
		}
	}
	return DropdownState{Reason: status.Reason, UIState: UIStateLocked}
}

// RecordLockRejects reports whether the per-record lock forbids moving the
// enquiry to next. Once a human owns a locked record only that same human may
// be written again; system and unclaimed values never hit this gate.
func RecordLockRejects(e Enquiry, next Owner) bool {
	if !e.StaffLocked || !next.IsHuman() {
		return false
	}
	if !e.Staff.IsHuman() {
		return false
	}
	return !e.Staff.Equal(next)
}
