package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/m04kA/SMC-ReservationService/internal/api"
	cancelReservationHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/cancel_reservation"
	createReservationHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/create_reservation"
	getBookingRulesHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/get_booking_rules"
	getBranchReservationsHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/get_branch_reservations"
	getBranchesHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/get_branches"
	getCooldownStatusHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/get_cooldown_status"
	getReservationHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/get_reservation"
	getTimeSlotsHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/get_time_slots"
	getUserReservationsHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/get_user_reservations"
	updateReservationHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/update_reservation"
	"github.com/m04kA/SMC-ReservationService/internal/config"
	"github.com/m04kA/SMC-ReservationService/internal/infra/storage/memory"
	reservationRepo "github.com/m04kA/SMC-ReservationService/internal/infra/storage/reservation"
	userRepo "github.com/m04kA/SMC-ReservationService/internal/infra/storage/user"
	"github.com/m04kA/SMC-ReservationService/internal/policy/availability"
	"github.com/m04kA/SMC-ReservationService/internal/policy/cooldown"
	configService "github.com/m04kA/SMC-ReservationService/internal/service/config"
	reservationsService "github.com/m04kA/SMC-ReservationService/internal/service/reservations"
	usersService "github.com/m04kA/SMC-ReservationService/internal/service/users"
	cancelReservationUC "github.com/m04kA/SMC-ReservationService/internal/usecase/cancel_reservation"
	createReservationUC "github.com/m04kA/SMC-ReservationService/internal/usecase/create_reservation"
	getTimeSlotsUC "github.com/m04kA/SMC-ReservationService/internal/usecase/get_time_slots"
	updateReservationUC "github.com/m04kA/SMC-ReservationService/internal/usecase/update_reservation"
	"github.com/m04kA/SMC-ReservationService/pkg/dbmetrics"
	"github.com/m04kA/SMC-ReservationService/pkg/logger"
	"github.com/m04kA/SMC-ReservationService/pkg/metrics"
	"github.com/m04kA/SMC-ReservationService/pkg/txmanager"
)

// reservationStore объединяет требования всех потребителей к репозиторию бронирований,
// чтобы postgres и memory драйверы подключались одинаково
type reservationStore interface {
	createReservationUC.ReservationRepository
	cancelReservationUC.ReservationRepository
	updateReservationUC.ReservationRepository
	getTimeSlotsUC.ReservationRepository
	reservationsService.ReservationRepository
}

type userStore interface {
	createReservationUC.UserRepository
	cancelReservationUC.UserRepository
	usersService.UserRepository
}

type txManager interface {
	createReservationUC.TransactionManager
	cancelReservationUC.TransactionManager
	updateReservationUC.TransactionManager
}

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-ReservationService...")
	log.Info("Configuration loaded from config.toml (storage=%s)", cfg.Storage.Driver)

	// Правила бронирования (уже проверены в config.Load)
	bookingRules, err := cfg.BookingRules()
	if err != nil {
		log.Fatal("Invalid booking rules: %v", err)
	}
	branches, err := cfg.BranchCatalog()
	if err != nil {
		log.Fatal("Invalid branches: %v", err)
	}
	penaltyRules := cfg.PenaltyRules()

	log.Info("Booking window %s..%s, %d slots, capacity %d, max party %d",
		bookingRules.Window.Start.Format("2006-01-02"), bookingRules.Window.End.Format("2006-01-02"),
		bookingRules.Slots.Len(), bookingRules.SlotCapacity, bookingRules.MaxPartySize)

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Инициализируем хранилище
	var (
		reservationRepository reservationStore
		userRepository        userStore
		txMgr                 txManager
	)

	switch cfg.Storage.Driver {
	case config.DriverMemory:
		var opts []memory.Option
		if cfg.Storage.AutoCreateUsers {
			opts = append(opts, memory.WithAutoCreateUsers())
		}
		store := memory.NewStore(opts...)

		reservationRepository = memory.NewReservationRepository(store)
		userRepository = memory.NewUserRepository(store)
		txMgr = store
		log.Warn("Using in-memory storage, data is lost on restart")

	default:
		db, err := sql.Open("postgres", cfg.Database.DSN())
		if err != nil {
			log.Fatal("Failed to connect to database: %v", err)
		}
		defer db.Close()

		// Настраиваем connection pool
		db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetimeDuration())

		// Проверяем соединение
		if err := db.Ping(); err != nil {
			log.Fatal("Failed to ping database: %v", err)
		}
		log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
			cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

		// С nil metrics обёртка работает как обычный *sql.DB
		var wrappedDB *dbmetrics.DB
		if cfg.Metrics.Enabled {
			wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, stopMetricsCh)
			log.Info("Database metrics collection started")
		} else {
			wrappedDB = dbmetrics.Wrap(db, nil)
		}

		var userOpts []userRepo.Option
		if cfg.Storage.AutoCreateUsers {
			userOpts = append(userOpts, userRepo.WithAutoCreate())
		}

		reservationRepository = reservationRepo.NewRepository(wrappedDB)
		userRepository = userRepo.NewRepository(wrappedDB, userOpts...)
		txMgr = txmanager.NewTransactionManager(wrappedDB, txmanager.WithMaxRetries(cfg.Database.TxMaxRetries))
	}

	// Политики допуска и штрафов
	policy := availability.NewPolicy(bookingRules)
	tracker := cooldown.NewTracker(penaltyRules)

	// Инициализируем сервисы
	reservationSvc := reservationsService.NewService(reservationRepository, branches, log)
	userSvc := usersService.NewService(userRepository, tracker, log)
	configSvc := configService.NewService(bookingRules, penaltyRules, branches, log)

	// Инициализируем use cases
	createReservationUseCase := createReservationUC.NewUseCase(
		reservationRepository,
		userRepository,
		txMgr,
		policy,
		tracker,
		branches,
		metricsCollector,
		log,
	)
	cancelReservationUseCase := cancelReservationUC.NewUseCase(
		reservationRepository,
		userRepository,
		txMgr,
		tracker,
		metricsCollector,
		log,
	)
	updateReservationUseCase := updateReservationUC.NewUseCase(
		reservationRepository,
		txMgr,
		policy,
		branches,
		log,
	)
	getTimeSlotsUseCase := getTimeSlotsUC.NewUseCase(
		reservationRepository,
		policy,
		branches,
		log,
	)

	// Инициализируем handlers и роутер
	handlers := &api.Handlers{
		CreateReservation:     createReservationHandler.NewHandler(createReservationUseCase, log),
		CancelReservation:     cancelReservationHandler.NewHandler(cancelReservationUseCase, log),
		UpdateReservation:     updateReservationHandler.NewHandler(updateReservationUseCase, log),
		GetReservation:        getReservationHandler.NewHandler(reservationSvc, log),
		GetUserReservations:   getUserReservationsHandler.NewHandler(reservationSvc, log),
		GetBranchReservations: getBranchReservationsHandler.NewHandler(reservationSvc, log),
		GetTimeSlots:          getTimeSlotsHandler.NewHandler(getTimeSlotsUseCase, log),
		GetCooldownStatus:     getCooldownStatusHandler.NewHandler(userSvc, log),
		GetBranches:           getBranchesHandler.NewHandler(configSvc),
		GetBookingRules:       getBookingRulesHandler.NewHandler(configSvc),
	}

	var routerOpts []api.Option
	if cfg.Metrics.Enabled {
		routerOpts = append(routerOpts, api.WithMetrics(metricsCollector, cfg.Metrics.Path))
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}
	r := api.NewRouter(handlers, log, routerOpts...)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Останавливаем сбор метрик connection pool
	close(stopMetricsCh)

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}
