package handler

import (
	"context"
	"net/http"
	"strconv"

	"leadportal_backend/internal/leads/repository"
	"leadportal_backend/internal/leads/service"
	"leadportal_backend/internal/leads/status"
	"leadportal_backend/internal/leads/transport"
	"leadportal_backend/platform/httpkit"
	"leadportal_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

const (
	msgInvalidRequest = "invalid request"
	msgInvalidLeadID  = "invalid lead ID"
)

// JobTrigger enqueues background jobs from the API process. Enqueue calls
// report queued=false when an identical job is already queued or in flight.
type JobTrigger interface {
	EnqueueReconcile(ctx context.Context, scopeLabel, triggeredBy string) (bool, error)
	EnqueueBookingImport(ctx context.Context, triggeredBy string) (bool, error)
}

// Handler handles HTTP requests for lead views and status updates.
type Handler struct {
	svc     *service.Service
	val     *validator.Validator
	trigger JobTrigger // nil when the API runs without a job queue
}

// New creates a new leads handler.
func New(svc *service.Service, val *validator.Validator, trigger JobTrigger) *Handler {
	return &Handler{svc: svc, val: val, trigger: trigger}
}

// Vendors lists the distinct vendor labels.
// GET /api/v1/admin/vendors
func (h *Handler) Vendors(c *gin.Context) {
	labels, err := h.svc.ListVendors(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, labels)
}

// ExclusiveLeads returns today's augmented leads from the primary database.
// GET /api/v1/admin/exclusive-leads
func (h *Handler) ExclusiveLeads(c *gin.Context) {
	h.todaysLeads(c, service.ScopeExclusive)
}

// SharedLeads returns today's augmented leads from the shared database.
// GET /api/v1/admin/shared-leads
func (h *Handler) SharedLeads(c *gin.Context) {
	h.todaysLeads(c, service.ScopeShared)
}

// CombinedLeads returns today's augmented leads from both databases.
// GET /api/v1/admin/combined-leads
func (h *Handler) CombinedLeads(c *gin.Context) {
	h.todaysLeads(c, service.ScopeCombined)
}

func (h *Handler) todaysLeads(c *gin.Context, scope service.Scope) {
	leads, err := h.svc.TodaysLeads(c.Request.Context(), scope)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.FromAugmentedLeads(leads))
}

// VendorLeads returns the augmented leads for the caller's vendor label.
// Admins may read any vendor via ?vendorLabel=.
// GET /api/v1/vendor/leads
func (h *Handler) VendorLeads(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	label := identity.Username()
	if identity.HasRole("admin") {
		if queried := c.Query("vendorLabel"); queried != "" {
			label = queried
		}
	}
	if label == "" {
		httpkit.Error(c, http.StatusBadRequest, "vendor label is required", nil)
		return
	}

	leads, err := h.svc.VendorLeads(c.Request.Context(), label)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.FromAugmentedLeads(leads))
}

// FlaggedLeads returns augmented leads filtered by overlay flags.
// GET /api/v1/admin/leads/flagged?duplicate=true&booked=&invalid=
func (h *Handler) FlaggedLeads(c *gin.Context) {
	filter, ok := parseFlagFilter(c)
	if !ok {
		return
	}

	leads, err := h.svc.FlaggedLeads(c.Request.Context(), filter)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.FromAugmentedLeads(leads))
}

// UpdateLead performs the full-field relational update and, when isBooked is
// present in the payload, the overlay booked upsert.
// PUT /api/v1/leads/:id
func (h *Handler) UpdateLead(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidLeadID, nil)
		return
	}

	var req transport.UpdateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	timestamp, err := req.ParseTimestamp()
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid timestamp", nil)
		return
	}

	params := repository.UpdateLeadParams{
		Timestamp:  timestamp,
		Label:      req.Label,
		Firstname:  req.Firstname,
		Email:      req.Email,
		Phone1:     req.Phone1,
		Ozip:       req.Ozip,
		Dzip:       req.Dzip,
		Ocity:      req.Ocity,
		Ostate:     req.Ostate,
		Dcity:      req.Dcity,
		Dstate:     req.Dstate,
		Movesize:   req.Movesize,
		Movedte:    req.Movedte,
		Conversion: req.Conversion,
		Validation: req.Validation,
		Notes:      req.Notes,
		Moverref:   req.Moverref,
		SentGronat: req.SentToGronat,
		SentSheets: req.SentToSheets,
	}

	var isBooked *bool
	if req.IsBooked.Set {
		isBooked = req.IsBooked.Value
	}

	if err := h.svc.UpdateLead(c.Request.Context(), id, params, isBooked); httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"message": "lead updated successfully"})
}

// MarkDuplicate records an explicit user decision on a lead's duplicate
// status.
// PUT /api/v1/admin/leads/:id/mark-duplicate
func (h *Handler) MarkDuplicate(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidLeadID, nil)
		return
	}

	var req transport.MarkDuplicateRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.IsDuplicate == nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	overlay, err := h.svc.MarkDuplicate(c.Request.Context(), id, *req.IsDuplicate)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.FromOverlay(overlay))
}

// Reconcile enqueues a full duplicate-detection pass. Responds 202 with
// status "scheduled", or "already-running" when a pass is already queued or
// in flight.
// POST /api/v1/admin/leads/reconcile
func (h *Handler) Reconcile(c *gin.Context) {
	if h.trigger == nil {
		httpkit.Error(c, http.StatusServiceUnavailable, "job queue is not configured", nil)
		return
	}

	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	queued, err := h.trigger.EnqueueReconcile(c.Request.Context(), c.Query("vendorLabel"), identity.Username())
	if httpkit.HandleError(c, err) {
		return
	}

	statusText := "scheduled"
	if !queued {
		statusText = "already-running"
	}
	httpkit.Accepted(c, transport.TriggerResponse{Status: statusText})
}

// ImportBooked enqueues a booking import pass over the external feed.
// POST /api/v1/admin/leads/import-booked
func (h *Handler) ImportBooked(c *gin.Context) {
	if h.trigger == nil {
		httpkit.Error(c, http.StatusServiceUnavailable, "job queue is not configured", nil)
		return
	}

	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	queued, err := h.trigger.EnqueueBookingImport(c.Request.Context(), identity.Username())
	if httpkit.HandleError(c, err) {
		return
	}

	statusText := "scheduled"
	if !queued {
		statusText = "already-running"
	}
	httpkit.Accepted(c, transport.TriggerResponse{Status: statusText})
}

// parseFlagFilter reads optional boolean query params into a status filter.
func parseFlagFilter(c *gin.Context) (status.Filter, bool) {
	var filter status.Filter
	for name, target := range map[string]**bool{
		"duplicate": &filter.Duplicate,
		"booked":    &filter.Booked,
		"invalid":   &filter.Invalid,
	} {
		raw := c.Query(name)
		if raw == "" {
			continue
		}
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, "invalid "+name+" filter", nil)
			return status.Filter{}, false
		}
		*target = &parsed
	}
	return filter, true
}
