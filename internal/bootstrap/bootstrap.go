package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/stephanofer/atlas/internal/auth"
	"github.com/stephanofer/atlas/internal/config"
	"github.com/stephanofer/atlas/internal/core/domain"
	"github.com/stephanofer/atlas/internal/core/ports"
	"github.com/stephanofer/atlas/internal/core/usecase"
	"github.com/stephanofer/atlas/internal/infrastructure/queue/nats"
	"github.com/stephanofer/atlas/internal/infrastructure/repository/postgres"
	"github.com/stephanofer/atlas/internal/infrastructure/resilience"
	"github.com/stephanofer/atlas/internal/infrastructure/storage/localfs"
)

// App wires the whole dependency graph once for both binaries. The API
// process uses everything; the notifier only needs Queue and
// Notifications.
type App struct {
	Config config.Config

	Queue   ports.NotificationQueue
	Storage *localfs.Storage

	Documents     *usecase.DocumentUseCase
	Activity      *usecase.ActivityUseCase
	Derivations   *usecase.DeriveUseCase
	Registrar     *usecase.RegisterUseCase
	UserAdmin     *usecase.UserAdminUseCase
	AreaAdmin     *usecase.AreaAdminUseCase
	Dashboard     *usecase.DashboardUseCase
	Notifications *usecase.NotificationUseCase

	Sessions *auth.SessionManager

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	companies := postgres.NewCompanyRepository(db)
	users := postgres.NewUserRepository(db)
	areas := postgres.NewAreaRepository(db)
	documents := postgres.NewDocumentRepository(db)
	history := postgres.NewHistoryRepository(db)
	notifications := postgres.NewNotificationRepository(db)

	storage, err := localfs.New(cfg.StoragePath, cfg.StorageBaseURL, []byte(cfg.StorageSignSecret))
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, queueOptions())
	if err != nil {
		return nil, fmt.Errorf("init notification queue: %w", err)
	}

	credentials := auth.NewCredentialStore(db)
	sessions, err := auth.NewSessionManager(cfg.JWTSecret, sessionTTL(cfg), users, credentials)
	if err != nil {
		queue.Close()
		_ = db.Close()
		return nil, fmt.Errorf("init session manager: %w", err)
	}

	deriveStatus, err := domain.ParseDocumentStatus(cfg.DeriveStatus)
	if err != nil {
		queue.Close()
		_ = db.Close()
		return nil, fmt.Errorf("parse derive status: %w", err)
	}

	return &App{
		Config:  cfg,
		Queue:   queue,
		Storage: storage,

		Documents:     usecase.NewDocumentUseCase(documents, history, areas, users, storage),
		Activity:      usecase.NewActivityUseCase(documents, history),
		Derivations:   usecase.NewDeriveUseCase(documents, areas, users, queue, logger, deriveStatus),
		Registrar:     usecase.NewRegisterUseCase(companies, users, credentials, logger),
		UserAdmin:     usecase.NewUserAdminUseCase(users, areas, credentials, logger),
		AreaAdmin:     usecase.NewAreaAdminUseCase(areas, users),
		Dashboard:     usecase.NewDashboardUseCase(documents, users, history),
		Notifications: usecase.NewNotificationUseCase(notifications, logger),

		Sessions: sessions,

		closeFn: func() {
			sessions.Close()
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

// queueOptions routes every publish through the shared retry and
// circuit-breaker executor, so a flapping broker degrades to dropped
// notifications instead of slow requests.
func queueOptions() nats.Options {
	return nats.Options{
		ResilienceExecutor: resilience.NewExecutor(resilience.DefaultConfig()),
	}
}

func sessionTTL(cfg config.Config) (ttl time.Duration) {
	hours := cfg.SessionTTLHours
	if hours <= 0 {
		hours = 12
	}
	return time.Duration(hours) * time.Hour
}
