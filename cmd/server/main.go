package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/brightpanel/brightpanel-go/internal/adapters/powershell"
	"github.com/brightpanel/brightpanel-go/internal/adapters/winapi"
	"github.com/brightpanel/brightpanel-go/internal/api"
	"github.com/brightpanel/brightpanel-go/internal/api/handlers"
	"github.com/brightpanel/brightpanel-go/internal/config"
	"github.com/brightpanel/brightpanel-go/internal/core/brightness"
	"github.com/brightpanel/brightpanel-go/internal/core/detector"
	"github.com/brightpanel/brightpanel-go/internal/core/discovery"
	"github.com/brightpanel/brightpanel-go/internal/core/metrics"
	"github.com/brightpanel/brightpanel-go/internal/core/panel"
	"github.com/brightpanel/brightpanel-go/internal/core/security"
	"github.com/brightpanel/brightpanel-go/internal/core/settings"
	"github.com/brightpanel/brightpanel-go/internal/core/syscheck"
	"github.com/brightpanel/brightpanel-go/internal/database"
	"github.com/brightpanel/brightpanel-go/internal/websocket"
	"github.com/brightpanel/brightpanel-go/pkg/logger"
	"github.com/brightpanel/brightpanel-go/pkg/version"
)

func main() {
	// Initialize logger
	log := logger.New()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}
	logger.Configure(log, cfg.Logging.Level, cfg.Logging.Format)

	log.WithField("version", version.GetFullVersion()).Info("Starting BrightPanel")

	// Metrics and the shell boundary
	collector := metrics.NewCollector("brightpanel")
	validator := security.NewValidator(log)
	runner := powershell.NewRunner(log, collector)

	// Startup environment checks
	checker := syscheck.NewChecker(runner, validator, log, cfg.System.ProbeDuration(), cfg.System.SkipPlatformCheck)
	checkCtx, checkCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if _, err := checker.Run(checkCtx); err != nil {
		checkCancel()
		log.Fatal("Startup checks failed: ", err)
	}
	checkCancel()

	// Initialize database
	db, err := database.Initialize(cfg.Database.Path, log)
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer db.Close()
	history := database.NewHistoryRepository(db, cfg.Database.HistoryLimit)

	// Create WebSocket hub
	wsHub := websocket.NewHub(log, collector)
	go wsHub.Run()

	// Display detection
	strategies := []detector.Strategy{
		detector.NewWMIStrategy(runner, validator, log, cfg.Detection.TimeoutDuration()),
	}
	if cfg.Detection.EnumerationEnabled {
		strategies = append(strategies, detector.NewMonitorStrategy(winapi.NewEnumerator(), log))
	}
	det := detector.NewService(log, strategies...)

	detectCtx, detectCancel := context.WithTimeout(context.Background(), 30*time.Second)
	det.Detect(detectCtx)
	detectCancel()

	// Brightness control
	ctrl := brightness.NewController(validator, log, map[detector.ControlMethod]brightness.MethodController{
		detector.MethodWMI: brightness.NewWMIController(runner, validator, log, cfg.Control.TimeoutDuration()),
		detector.MethodDDC: brightness.NewDDCController(log),
	}).WithMetrics(collector)

	// Panel orchestration
	store := settings.NewStore(cfg.Settings.Path, log)
	panelSvc := panel.New(det, ctrl, store, wsHub, history, log, cfg.Panel.DebounceDuration(), cfg.Control.TimeoutDuration())
	panelSvc.Start(context.Background())

	// Levels arrive as JSON numbers from the bundled client and as strings
	// from anything scripting the socket by hand; string input goes through
	// the validator before parsing.
	levelFromData := func(data map[string]interface{}) (int, bool) {
		switch v := data["level"].(type) {
		case float64:
			return int(v), true
		case string:
			if !validator.ValidateBrightness(v) {
				return 0, false
			}
			f, _ := strconv.ParseFloat(strings.TrimSpace(v), 64)
			return int(f), true
		}
		return 0, false
	}

	// Route client websocket commands into the panel
	wsHub.OnCommand(func(command string, data map[string]interface{}) {
		switch command {
		case websocket.CommandSetBrightness:
			if level, ok := levelFromData(data); ok {
				if err := panelSvc.SetBrightness(level); err != nil {
					log.WithError(err).Warn("WebSocket brightness set failed")
				}
			}
		case websocket.CommandSlideBrightness:
			if level, ok := levelFromData(data); ok {
				panelSvc.Slide(level)
			}
		case websocket.CommandSelectDisplay:
			if index, ok := data["index"].(float64); ok {
				if err := panelSvc.SelectDisplay(context.Background(), int(index)); err != nil {
					log.WithError(err).Warn("WebSocket display selection failed")
				}
			}
		case websocket.CommandRefreshDisplays:
			go panelSvc.RefreshDisplays(context.Background())
		case websocket.CommandTestSupport:
			go func() {
				if _, err := panelSvc.TestSupport(context.Background()); err != nil {
					log.WithError(err).Warn("WebSocket support test failed")
				}
			}()
		}
	})

	// Periodic re-detection
	scheduler := cron.New()
	if spec := cfg.Detection.RefreshSchedule; spec != "" {
		if _, err := scheduler.AddFunc(spec, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			panelSvc.RefreshDisplays(ctx)
		}); err != nil {
			log.WithError(err).Warn("Invalid detection refresh schedule, periodic refresh disabled")
		}
	}
	if _, err := scheduler.AddFunc("@daily", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		deleted, err := history.Prune(ctx, cfg.Database.RetentionDuration())
		if err != nil {
			log.WithError(err).Warn("History prune failed")
			return
		}
		if deleted > 0 {
			log.WithField("deleted", deleted).Info("Pruned brightness history")
		}
	}); err != nil {
		log.WithError(err).Warn("Failed to schedule history prune")
	}
	scheduler.Start()
	defer scheduler.Stop()

	// mDNS announcement
	var mdns *discovery.Service
	if cfg.Discovery.Enabled {
		if mdns, err = discovery.Register(cfg.Discovery.Instance, cfg.Server.Port, log); err != nil {
			log.WithError(err).Warn("mDNS registration failed, continuing without discovery")
		}
	}

	// Initialize router
	h := handlers.NewHandlers(cfg, log, wsHub, det, ctrl, panelSvc, store, checker, history)
	router := api.NewRouter(cfg, log, h, wsHub)

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	go func() {
		log.Infof("Starting BrightPanel on %s:%d", cfg.Server.Host, cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server:", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if mdns != nil {
		mdns.Shutdown()
	}

	// Flush the pending slider write and persist panel state
	if err := panelSvc.Shutdown(); err != nil {
		log.WithError(err).Warn("Failed to persist panel state")
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Info("Server exited")
}
