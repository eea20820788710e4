package repository

import (
	"context"
	"time"

	"enquiry_intake_backend/internal/enquiries/domain"

	"github.com/google/uuid"
)

// NullableString is an update field that can also clear a column.
type NullableString struct {
	Set   bool
	Value *string
}

// SetString returns a NullableString that writes v (nil clears the column).
func SetString(v *string) NullableString {
	return NullableString{Set: true, Value: v}
}

// UpdateParams is a partial update; unset fields keep their stored value.
type UpdateParams struct {
	Date                  *time.Time
	DisplayName           *string
	UserName              NullableString
	MobileNumber          *string
	SecondaryMobileNumber NullableString
	GST                   *domain.GSTFlag
	GSTStatus             NullableString
	BusinessType          NullableString
	BusinessNature        NullableString
	Staff                 *domain.Owner
	StaffLocked           *bool
	Comments              NullableString
	AdditionalComments    NullableString
	UpdatedBy             *string
}

// IsEmpty reports whether the patch touches no column.
func (p UpdateParams) IsEmpty() bool {
	return p.Date == nil && p.DisplayName == nil && !p.UserName.Set && p.MobileNumber == nil &&
		!p.SecondaryMobileNumber.Set && p.GST == nil && !p.GSTStatus.Set && !p.BusinessType.Set &&
		!p.BusinessNature.Set && p.Staff == nil && p.StaffLocked == nil && !p.Comments.Set &&
		!p.AdditionalComments.Set
}

// LabelCount is one row of a grouped count.
type LabelCount struct {
	Label string
	Count int
}

// Stats aggregates the enquiry table for the dashboard.
type Stats struct {
	Total       int
	GSTYes      int
	GSTNo       int
	TopComments []LabelCount
	TopStaff    []LabelCount
}

// =====================================
// Segregated Interfaces
// =====================================

// EnquiryReader provides read access to enquiries.
type EnquiryReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (domain.Enquiry, error)
	FindByDedupKey(ctx context.Context, mobileNumber, providerMessageID string) (domain.Enquiry, error)
	List(ctx context.Context) ([]domain.Enquiry, error)
	Stats(ctx context.Context) (Stats, error)
}

// EnquiryWriter provides write operations for enquiries.
type EnquiryWriter interface {
	// InsertIfAbsent stores e unless its dedup key already exists, in which
	// case the stored enquiry is returned with inserted=false.
	InsertIfAbsent(ctx context.Context, e domain.Enquiry) (stored domain.Enquiry, inserted bool, err error)
	Create(ctx context.Context, e domain.Enquiry) (domain.Enquiry, error)
	UpdateByID(ctx context.Context, id uuid.UUID, params UpdateParams) (domain.Enquiry, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// LockCounter provides the aggregate counts behind the staff lock.
type LockCounter interface {
	CountOldUnassigned(ctx context.Context, cutoff time.Time) (int, error)
	CountAssigned(ctx context.Context) (int, error)
}

// Repository combines all enquiry repository operations.
type Repository interface {
	EnquiryReader
	EnquiryWriter
	LockCounter
}
