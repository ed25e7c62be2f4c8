package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gridwarden/internal/adapter"
	"gridwarden/internal/config"
	"gridwarden/internal/handler"
	"gridwarden/internal/hub"
	"gridwarden/internal/loader"
	"gridwarden/internal/repository/sqlite"
	"gridwarden/internal/service"
	"gridwarden/internal/watcher"
)

func main() {
	configPath := flag.String("config", "", "config file path (default: search standard locations)")
	addr := flag.String("addr", "", "HTTP listen address (overrides config)")
	requirementsPath := flag.String("requirements", "", "requirement table path (overrides config)")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	flag.Parse()

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting Gridwarden server...")

	// Load configuration
	var cfg *config.Config
	var cfgSource string
	var err error
	if *configPath != "" {
		cfg, cfgSource, err = config.LoadFromPath(*configPath)
	} else {
		cfg, cfgSource, err = config.Load()
	}
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfgSource != "" {
		log.Printf("Config loaded from %s", cfgSource)
	} else {
		log.Printf("No config file found, using defaults")
	}

	if *addr != "" {
		cfg.Listen = *addr
	}
	if *requirementsPath != "" {
		cfg.Requirements = *requirementsPath
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}

	// Load the requirement table; a malformed table is fatal
	spec, err := loader.LoadRequirements(cfg.Requirements)
	if err != nil {
		log.Fatalf("Failed to load requirements: %v", err)
	}
	log.Printf("Requirements loaded from %s (%d roles)", cfg.Requirements, len(spec.Roles))

	// Initialize SQLite repository
	repo, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer repo.Close()
	log.Printf("Database opened: %s", cfg.Database.Path)

	// Initialize event bus
	eventBus := service.NewEventBus()

	// Initialize SSE hub and bridge the event bus into it
	sseHub := hub.New()
	go sseHub.Run()

	eventChan := make(chan service.Event, 100)
	eventBus.Subscribe(eventChan)
	go sseHub.Forward(eventChan)

	// Initialize the admission service
	admissionSvc := service.NewAdmissionService(spec, repo, eventBus)

	// Initialize HTTP handlers
	admissionHandler := handler.NewAdmissionHandler(admissionSvc)

	// Wire the probe pipeline when enabled
	if cfg.Probe.Enabled {
		collector, err := adapter.NewSSHCollector(adapter.SSHCollectorConfig{
			User:    cfg.Probe.SSHUser,
			KeyPath: cfg.Probe.SSHKeyPath,
			Port:    cfg.Probe.SSHPort,
			Timeout: cfg.ProbeTimeout(),
		})
		if err != nil {
			log.Fatalf("Failed to configure SSH collector: %v", err)
		}

		netProber := adapter.NewNetProber(
			adapter.WithPortRange(cfg.Probe.PortRange),
			adapter.WithSkipHostDiscovery(true),
		)

		prober := adapter.NewProber(netProber, collector, admissionSvc, cfg.Probe.SSHPort, cfg.Probe.MaxConcurrent)
		prober.SetEventPublisher(&probePublisher{bus: eventBus})
		admissionHandler.SetProber(prober)
		log.Printf("Probing enabled (user=%s, port=%d, ports=%s)", cfg.Probe.SSHUser, cfg.Probe.SSHPort, cfg.Probe.PortRange)
	}

	// Watch the requirement table and reload on change
	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()

	fileWatcher := watcher.New(cfg.Requirements, func() {
		next, err := loader.LoadRequirements(cfg.Requirements)
		if err != nil {
			// Keep serving with the previous epoch
			log.Printf("Requirement reload rejected: %v", err)
			return
		}
		admissionSvc.Reload(next)
	})
	go func() {
		if err := fileWatcher.Watch(watchCtx); err != nil && err != context.Canceled {
			log.Printf("Requirement watcher stopped: %v", err)
		}
	}()

	// Setup routes
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/validate", admissionHandler.ValidateNode)
	mux.HandleFunc("GET /api/requirements", admissionHandler.GetRequirements)
	mux.HandleFunc("GET /api/requirements/{role}", admissionHandler.GetRoleRequirements)
	mux.HandleFunc("GET /api/reports/{node_id}", admissionHandler.GetReports)
	mux.HandleFunc("POST /api/probe", admissionHandler.Probe)
	mux.HandleFunc("GET /api/health", admissionHandler.Health)
	mux.Handle("GET /api/events", sseHub)

	// Apply middleware
	finalHandler := handler.Chain(mux,
		handler.Recover,
		handler.CORS,
		handler.Logger,
	)

	server := &http.Server{
		Addr:         cfg.Listen,
		Handler:      finalHandler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server listening on %s", cfg.Listen)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	watchCancel()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}

// probePublisher forwards adapter probe events onto the event bus
type probePublisher struct {
	bus *service.EventBus
}

func (p *probePublisher) PublishProbeEvent(eventType string, payload interface{}) {
	p.bus.Publish(service.Event{
		Type:    service.EventType(eventType),
		Payload: payload,
	})
}
