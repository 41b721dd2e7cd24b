package domain

// Override is the tri-state user decision on a lead's duplicate status.
// Unset means the user has made no decision; Confirmed and Rejected are
// explicit human decisions that the automated detector must never overwrite.
type Override int

const (
	// OverrideUnset means no explicit user decision exists.
	OverrideUnset Override = iota
	// OverrideConfirmed means the user explicitly marked the lead a duplicate.
	OverrideConfirmed
	// OverrideRejected means the user explicitly marked the lead NOT a duplicate.
	OverrideRejected
)

// OverrideFromBool maps an explicit boolean decision to an Override.
func OverrideFromBool(confirmed bool) Override {
	if confirmed {
		return OverrideConfirmed
	}
	return OverrideRejected
}

// Bool returns the explicit decision and whether one was made.
func (o Override) Bool() (value, set bool) {
	switch o {
	case OverrideConfirmed:
		return true, true
	case OverrideRejected:
		return false, true
	default:
		return false, false
	}
}

// StatusOverlay is the per-lead status document kept in the overlay store.
// Flags default to false when the document (or a field) is absent; absence is
// always a safe "no override" default for readers.
type StatusOverlay struct {
	LeadID              int64
	Duplicate           bool
	Booked              bool
	Invalid             bool
	UserMarkedDuplicate Override
}

// OverlayPatch is a partial overlay write. Only non-nil fields are persisted;
// the overlay store merges at field level so concurrent writers touching
// different fields never lose each other's updates.
type OverlayPatch struct {
	Duplicate           *bool
	Booked              *bool
	Invalid             *bool
	UserMarkedDuplicate *bool
}

// IsEmpty reports whether the patch carries no fields.
func (p OverlayPatch) IsEmpty() bool {
	return p.Duplicate == nil && p.Booked == nil && p.Invalid == nil && p.UserMarkedDuplicate == nil
}
