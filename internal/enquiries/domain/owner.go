package domain

import "strings"

// OwnerKind tells who currently holds an enquiry.
type OwnerKind int

const (
	// OwnerUnclaimed means nobody has picked the enquiry up yet.
	OwnerUnclaimed OwnerKind = iota
	// OwnerSystem means an intake channel created the enquiry and no human owns it.
	OwnerSystem
	// OwnerStaff means a human staff member has claimed the enquiry.
	OwnerStaff
)

// System owner names written by the intake channels.
const (
	SystemPublicForm   = "Public Form"
	SystemWhatsAppBot  = "WhatsApp Bot"
	SystemWhatsAppForm = "WhatsApp Form"
)

var (
	unclaimedValues = []string{"", "None", "null"}
	systemValues    = []string{SystemPublicForm, SystemWhatsAppBot, SystemWhatsAppForm}
)

// Owner is the parsed form of the stored staff column.
type Owner struct {
	Kind OwnerKind
	Name string
}

// Unclaimed returns the owner of an enquiry nobody picked up.
func Unclaimed() Owner { return Owner{Kind: OwnerUnclaimed} }

// System returns a system owner for one of the intake channel names.
func System(name string) Owner { return Owner{Kind: OwnerSystem, Name: name} }

// Staff returns a human owner.
func Staff(name string) Owner { return Owner{Kind: OwnerStaff, Name: strings.TrimSpace(name)} }

// ParseOwner maps a stored or submitted staff value onto the owner variant.
func ParseOwner(raw string) Owner {
	value := strings.TrimSpace(raw)
	for _, v := range unclaimedValues {
		if value == v {
			return Unclaimed()
		}
	}
	for _, v := range systemValues {
		if strings.EqualFold(value, v) {
			return System(v)
		}
	}
	return Staff(value)
}

// String is the stored representation.
func (o Owner) String() string {
	if o.Kind == OwnerUnclaimed {
		return ""
	}
	return o.Name
}

// IsHuman reports whether a staff member owns the enquiry.
func (o Owner) IsHuman() bool { return o.Kind == OwnerStaff && o.Name != "" }

// Equal compares two owners by kind and name.
func (o Owner) Equal(other Owner) bool {
	return o.Kind == other.Kind && o.Name == other.Name
}

// UnclaimedStaffValues lists the stored staff values that mean "nobody".
// Repositories match it against trim(staff) and SystemStaffKeys against
// lower(trim(staff)) to express the assigned and unassigned predicates.
func UnclaimedStaffValues() []string {
	return append([]string(nil), unclaimedValues...)
}

// SystemStaffValues lists the stored staff values of the intake channels.
func SystemStaffValues() []string {
	return append([]string(nil), systemValues...)
}

// SystemStaffKeys lists the system names lower-cased. SQL compares them
// against lower(trim(staff)) so the predicates fold case like ParseOwner.
func SystemStaffKeys() []string {
	keys := make([]string, len(systemValues))
	for i, v := range systemValues {
		keys[i] = strings.ToLower(v)
	}
	return keys
}
