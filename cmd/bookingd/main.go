package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/patrickmn/go-cache"

	"github.com/artin59/3311-Project-sub001/config"
	"github.com/artin59/3311-Project-sub001/internal/api"
	"github.com/artin59/3311-Project-sub001/internal/booking"
	"github.com/artin59/3311-Project-sub001/internal/db"
	"github.com/artin59/3311-Project-sub001/internal/lock"
	"github.com/artin59/3311-Project-sub001/internal/model"
	"github.com/artin59/3311-Project-sub001/internal/mw"
	"github.com/artin59/3311-Project-sub001/internal/notification"
	"github.com/artin59/3311-Project-sub001/internal/payment"
	"github.com/artin59/3311-Project-sub001/internal/queue"
	"github.com/artin59/3311-Project-sub001/internal/scheduler"
	"github.com/artin59/3311-Project-sub001/internal/store"
)

func main() {
	// Setup logger
	logger := log.New(os.Stdout, "bookingd ", log.LstdFlags)

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Printf("failed to read .env: %v", err)
	}

	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	webpushOptions := webpush.Options{
		VAPIDPublicKey:  cfg.Push.PublicKey,
		VAPIDPrivateKey: cfg.Push.PrivateKey,
		Subscriber:      cfg.Push.Subject,
		TTL:             cfg.Push.TTL,
	}
	if cfg.Push.Enabled && (cfg.Push.PublicKey == "" || cfg.Push.PrivateKey == "") {
		logger.Fatalf("VAPID keys must be configured when push is enabled. Please generate them and add them to your config file.")
	}

	// Initialize database
	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB)
	if err := seed(ctx, appStore, cfg.Seed); err != nil {
		logger.Fatalf("failed to seed: %v", err)
	}
	logger.Println("data store initialized")

	deps := booking.Deps{
		Repository:   appStore,
		Accounts:     appStore,
		Payments:     payment.NewLedger(gormDB, cfg.Payment.MaxAmount),
		Pricing:      booking.NewPricingPolicyFactory(rateTable(cfg.Pricing.Rates), cfg.Pricing.DefaultRate),
		Location:     cfg.Booking.Location,
		Logger:       logger,
		NoShowGrace:  cfg.Booking.NoShowGrace,
		HistoryLimit: cfg.Booking.UndoHistory,
	}
	if cfg.Redis.Addr != "" {
		client, err := lock.Connect(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Fatalf("failed to connect to redis: %v", err)
		}
		defer client.Close()
		deps.Locker = lock.NewRedisLocker(client, time.Duration(cfg.Redis.LockTTLSec)*time.Second)
		logger.Printf("engine lock held in redis at %s", cfg.Redis.Addr)
	}
	controller := booking.NewController(deps)
	observers := controller.Observers()

	cacheStore := cache.New(5*time.Minute, 10*time.Minute)
	observers.Subscribe(mw.NewCacheInvalidator(cacheStore))

	if cfg.Push.Enabled {
		workerPool := notification.NewWorkerPool(cfg.WorkerPool.Size, cfg.WorkerPool.QueueSize, gormDB, &webpushOptions)
		workerPool.Start(ctx)
		push := notification.NewPushObserver(workerPool, 24*time.Hour)
		for _, status := range []model.BookingStatus{model.BookingReserved, model.BookingInUse} {
			open, err := appStore.FindBookingsByStatus(ctx, status)
			if err != nil {
				logger.Fatalf("failed to load %s bookings: %v", status, err)
			}
			for _, b := range open {
				push.Remember(b)
			}
		}
		observers.Subscribe(push)
		logger.Printf("push notifications enabled with %d workers", cfg.WorkerPool.Size)
	}

	if cfg.AMQP.URL != "" {
		publisher, closeQueue, err := queue.Dial(cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			logger.Fatalf("failed to connect to rabbitmq: %v", err)
		}
		defer closeQueue()
		observers.Subscribe(publisher)
		logger.Printf("publishing booking events to exchange %q", cfg.AMQP.Exchange)
	}

	// Run the no-show sweep in the background
	sweeper := scheduler.NewNoShowTicker(controller, cfg.Booking.SweepInterval, logger)
	go sweeper.Run(ctx)

	// Initialize router
	router := api.NewRouter(&cfg.Server, controller, appStore, &webpushOptions, cacheStore)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start the server in a goroutine
	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	// Setup signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	// Block until a signal is received.
	<-stop
	logger.Println("Shutdown signal received, stopping services...")
	cancel()

	// Create a deadline to wait for.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}

// seed upserts the configured rooms and accounts. New rooms start enabled
// and available; existing rooms keep their lifecycle state.
func seed(ctx context.Context, s store.Store, cfg config.SeedConfig) error {
	rooms := make([]model.Room, 0, len(cfg.Rooms))
	for _, r := range cfg.Rooms {
		rooms = append(rooms, model.Room{
			ID:          uuid.NewString(),
			Number:      r.Number,
			Building:    r.Building,
			Capacity:    r.Capacity,
			AdminStatus: model.AdminEnabled,
			State:       model.RoomAvailable,
		})
	}
	if err := s.SeedRooms(ctx, rooms); err != nil {
		return err
	}

	accounts := make([]model.Account, 0, len(cfg.Accounts))
	for _, a := range cfg.Accounts {
		accounts = append(accounts, model.Account{
			ID:         a.ID,
			Name:       a.Name,
			Category:   booking.NormalizeCategory(a.Category),
			HourlyRate: a.HourlyRate,
		})
	}
	return s.SeedAccounts(ctx, accounts)
}

// rateTable converts the configured rates; an empty table keeps the defaults.
func rateTable(raw map[string]int64) map[model.AccountCategory]int64 {
	if len(raw) == 0 {
		return nil
	}
	rates := make(map[model.AccountCategory]int64, len(raw))
	for name, rate := range raw {
		rates[booking.NormalizeCategory(name)] = rate
	}
	return rates
}
