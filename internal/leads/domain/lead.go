// Package domain holds the lead bounded context's core types. The relational
// lead record and the overlay status flags are owned by two independent
// stores and only joined at read time.
package domain

import "time"

// ValidationRejected is the validation code marking a lead as rejected by the
// upstream validation pipeline.
const ValidationRejected = "0"

// Lead is the authoritative relational record. The core never creates or
// deletes leads; it only reads them and performs scoped field updates. All
// business fields beyond id/label/phone1/validation/timestamp are passed
// through unmodified.
type Lead struct {
	ID         int64
	Timestamp  time.Time
	Label      string
	Firstname  string
	Email      string
	Phone1     string
	Ozip       string
	Dzip       string
	Ocity      string
	Ostate     string
	Dcity      string
	Dstate     string
	Movesize   string
	Movedte    string
	Conversion string
	Validation string
	Notes      string
	Moverref   string
	SentGronat bool
	SentSheets bool
}

// IsRejected reports whether the upstream validation pipeline rejected this
// lead.
func (l Lead) IsRejected() bool {
	return l.Validation == ValidationRejected
}

// HasContact reports whether the lead carries a usable contact phone.
func (l Lead) HasContact() bool {
	return l.Phone1 != ""
}

// DuplicateGroup is a set of lead ids sharing the same contact phone,
// optionally scoped to a single vendor label.
type DuplicateGroup struct {
	Key string
	IDs []int64
}

// AugmentedLead is a lead joined at read time with its overlay flags. It is
// recomputed on every read and never persisted.
type AugmentedLead struct {
	Lead
	IsDuplicate bool
	IsBooked    bool
	Invalid     bool
}
