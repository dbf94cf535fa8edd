// Package leads provides the lead management bounded context module.
// This file defines the module that encapsulates all leads setup and route registration.
package leads

import (
	"leadtracker_backend/internal/events"
	apphttp "leadtracker_backend/internal/http"
	"leadtracker_backend/internal/leads/handler"
	"leadtracker_backend/internal/leads/repository"
	"leadtracker_backend/internal/leads/scoring"
	"leadtracker_backend/internal/leads/service"
	"leadtracker_backend/internal/leads/transport"
	"leadtracker_backend/platform/logger"
	"leadtracker_backend/platform/validator"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule wires the lead service over store and subscribes the activity
// recorder to the bus.
func NewModule(store repository.Store, eventBus events.Bus, val *validator.Validator, scoringCfg scoring.Config, log *logger.Logger, opts ...service.Option) (*Module, error) {
	if err := transport.RegisterValidations(val); err != nil {
		return nil, err
	}

	service.NewActivityRecorder(store, log).Subscribe(eventBus)

	svc := service.New(store, scoringCfg, eventBus, log, opts...)
	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}, nil
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Service returns the lead service for jobs that run outside HTTP.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts leads routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.V1.Group("/leads"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
