// Package leads provides the lead status bounded context: duplicate
// detection, invalid classification, overlay merging, and the admin/vendor
// read and update APIs composed from them.
package leads

import (
	"time"

	apphttp "leadportal_backend/internal/http"
	"leadportal_backend/internal/leads/handler"
	"leadportal_backend/internal/leads/repository"
	"leadportal_backend/internal/leads/service"
	"leadportal_backend/internal/leads/status"
	"leadportal_backend/platform/logger"
	"leadportal_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    *repository.Repository
}

// NewModule wires the lead store adapter, the overlay store, and the status
// engine. sharedPool and trigger may be nil.
func NewModule(
	pool *pgxpool.Pool,
	sharedPool *pgxpool.Pool,
	rdb *goredis.Client,
	trigger handler.JobTrigger,
	callTimeout time.Duration,
	val *validator.Validator,
	log *logger.Logger,
) *Module {
	repo := repository.New(pool, callTimeout)

	var shared repository.Store
	if sharedPool != nil {
		shared = repository.New(sharedPool, callTimeout)
	}

	overlay := status.New(rdb, callTimeout)
	svc := service.New(repo, shared, overlay, log)
	h := handler.New(svc, val, trigger)

	return &Module{handler: h, service: svc, repo: repo}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Service returns the status engine for use by the scheduler worker.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the primary lead store adapter, e.g. for health checks.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// RegisterRoutes mounts lead routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Admin.GET("/vendors", m.handler.Vendors)
	ctx.Admin.GET("/exclusive-leads", m.handler.ExclusiveLeads)
	ctx.Admin.GET("/shared-leads", m.handler.SharedLeads)
	ctx.Admin.GET("/combined-leads", m.handler.CombinedLeads)
	ctx.Admin.GET("/leads/flagged", m.handler.FlaggedLeads)
	ctx.Admin.POST("/leads/reconcile", m.handler.Reconcile)
	ctx.Admin.POST("/leads/import-booked", m.handler.ImportBooked)
	ctx.Admin.PUT("/leads/:id/mark-duplicate", m.handler.MarkDuplicate)

	ctx.Protected.GET("/vendor/leads", m.handler.VendorLeads)
	ctx.Protected.PUT("/leads/:id", m.handler.UpdateLead)
}

// Compile-time check that Module implements http.Module.
var _ apphttp.Module = (*Module)(nil)
