package transport

import (
	"time"

	"leadportal_backend/internal/leads/domain"
)

// AugmentedLeadResponse is the wire shape of a lead joined with its overlay
// flags, as consumed by the admin and vendor screens.
type AugmentedLeadResponse struct {
	ID           int64  `json:"id"`
	Timestamp    string `json:"timestamp"`
	Label        string `json:"label"`
	Firstname    string `json:"firstname"`
	Email        string `json:"email"`
	Phone1       string `json:"phone1"`
	Ozip         string `json:"ozip"`
	Dzip         string `json:"dzip"`
	Ocity        string `json:"ocity"`
	Ostate       string `json:"ostate"`
	Dcity        string `json:"dcity"`
	Dstate       string `json:"dstate"`
	Movesize     string `json:"movesize"`
	Movedte      string `json:"movedte"`
	Conversion   string `json:"conversion"`
	Validation   string `json:"validation"`
	Notes        string `json:"notes"`
	Moverref     string `json:"moverref"`
	SentToGronat bool   `json:"sent_to_gronat"`
	SentToSheets bool   `json:"sent_to_sheets"`
	IsDuplicate  bool   `json:"isDuplicate"`
	IsBooked     bool   `json:"isBooked"`
	Invalid      bool   `json:"invalid"`
}

// FromAugmentedLead maps a domain row to its wire shape.
func FromAugmentedLead(lead domain.AugmentedLead) AugmentedLeadResponse {
	return AugmentedLeadResponse{
		ID:           lead.ID,
		Timestamp:    lead.Timestamp.Format("2006-01-02"),
		Label:        lead.Label,
		Firstname:    lead.Firstname,
		Email:        lead.Email,
		Phone1:       lead.Phone1,
		Ozip:         lead.Ozip,
		Dzip:         lead.Dzip,
		Ocity:        lead.Ocity,
		Ostate:       lead.Ostate,
		Dcity:        lead.Dcity,
		Dstate:       lead.Dstate,
		Movesize:     lead.Movesize,
		Movedte:      lead.Movedte,
		Conversion:   lead.Conversion,
		Validation:   lead.Validation,
		Notes:        lead.Notes,
		Moverref:     lead.Moverref,
		SentToGronat: lead.SentGronat,
		SentToSheets: lead.SentSheets,
		IsDuplicate:  lead.IsDuplicate,
		IsBooked:     lead.IsBooked,
		Invalid:      lead.Invalid,
	}
}

// FromAugmentedLeads maps a slice of domain rows to wire shapes.
func FromAugmentedLeads(leads []domain.AugmentedLead) []AugmentedLeadResponse {
	out := make([]AugmentedLeadResponse, 0, len(leads))
	for _, lead := range leads {
		out = append(out, FromAugmentedLead(lead))
	}
	return out
}

// UpdateLeadRequest is the payload for PUT /leads/:id. All relational fields
// are written as given (full-field update); isBooked is optional and, when
// present, routed to the overlay store instead of the lead table.
type UpdateLeadRequest struct {
	Timestamp    string       `json:"timestamp" binding:"required" validate:"required,datetime=2006-01-02"`
	Label        string       `json:"label" binding:"required" validate:"required"`
	Firstname    string       `json:"firstname"`
	Email        string       `json:"email" validate:"omitempty,email"`
	Phone1       string       `json:"phone1"`
	Ozip         string       `json:"ozip"`
	Dzip         string       `json:"dzip"`
	Ocity        string       `json:"ocity"`
	Ostate       string       `json:"ostate"`
	Dcity        string       `json:"dcity"`
	Dstate       string       `json:"dstate"`
	Movesize     string       `json:"movesize"`
	Movedte      string       `json:"movedte"`
	Conversion   string       `json:"conversion"`
	Validation   string       `json:"validation"`
	Notes        string       `json:"notes"`
	Moverref     string       `json:"moverref"`
	SentToGronat bool         `json:"sent_to_gronat"`
	SentToSheets bool         `json:"sent_to_sheets"`
	IsBooked     OptionalBool `json:"isBooked"`
}

// ParseTimestamp returns the request timestamp as a date.
func (r UpdateLeadRequest) ParseTimestamp() (time.Time, error) {
	return time.Parse("2006-01-02", r.Timestamp)
}

// MarkDuplicateRequest is the payload for PUT /admin/leads/:id/mark-duplicate.
// The pointer is required so an explicit false is distinguishable from a
// missing field.
type MarkDuplicateRequest struct {
	IsDuplicate *bool `json:"isDuplicate" binding:"required"`
}

// OverlayResponse is the wire shape of a status overlay document.
type OverlayResponse struct {
	LeadID              int64 `json:"leadId"`
	Duplicate           bool  `json:"duplicate"`
	Booked              bool  `json:"booked"`
	Invalid             bool  `json:"invalid"`
	UserMarkedDuplicate *bool `json:"userMarkedDuplicate,omitempty"`
}

// FromOverlay maps an overlay to its wire shape, keeping the tri-state
// override as absent / true / false.
func FromOverlay(overlay domain.StatusOverlay) OverlayResponse {
	resp := OverlayResponse{
		LeadID:    overlay.LeadID,
		Duplicate: overlay.Duplicate,
		Booked:    overlay.Booked,
		Invalid:   overlay.Invalid,
	}
	if value, set := overlay.UserMarkedDuplicate.Bool(); set {
		resp.UserMarkedDuplicate = &value
	}
	return resp
}

// TriggerResponse reports whether an asynchronous job was queued or a prior
// run is still in flight.
type TriggerResponse struct {
	Status string `json:"status"`
}
