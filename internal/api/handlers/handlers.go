package handlers

import (
	"github.com/sirupsen/logrus"

	"github.com/brightpanel/brightpanel-go/internal/config"
	"github.com/brightpanel/brightpanel-go/internal/core/brightness"
	"github.com/brightpanel/brightpanel-go/internal/core/detector"
	"github.com/brightpanel/brightpanel-go/internal/core/panel"
	"github.com/brightpanel/brightpanel-go/internal/core/settings"
	"github.com/brightpanel/brightpanel-go/internal/core/syscheck"
	"github.com/brightpanel/brightpanel-go/internal/database"
	"github.com/brightpanel/brightpanel-go/internal/websocket"
)

// Handlers holds all HTTP handlers and their dependencies
type Handlers struct {
	cfg        *config.Config
	log        *logrus.Logger
	wsHub      *websocket.Hub
	detector   *detector.Service
	controller *brightness.Controller
	panel      *panel.Service
	store      *settings.Store
	checker    *syscheck.Checker
	history    *database.HistoryRepository
}

// NewHandlers creates a new handlers instance
func NewHandlers(
	cfg *config.Config,
	logger *logrus.Logger,
	wsHub *websocket.Hub,
	det *detector.Service,
	ctrl *brightness.Controller,
	panelSvc *panel.Service,
	store *settings.Store,
	checker *syscheck.Checker,
	history *database.HistoryRepository,
) *Handlers {
	return &Handlers{
		cfg:        cfg,
		log:        logger,
		wsHub:      wsHub,
		detector:   det,
		controller: ctrl,
		panel:      panelSvc,
		store:      store,
		checker:    checker,
		history:    history,
	}
}
