package app

import (
	"context"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/google/uuid"

	"bulkops/internal/adapters"
	"bulkops/internal/ports"
)

type Service struct {
	Store       ports.StorePort
	Gate        ports.PermissionPort
	Sources     ports.RowSourceOpener
	Notifier    ports.NotifierPort
	Scratch     ports.ScratchPort
	DefaultRole string
	NewRunID    func() string
}

// Config selects the adapters behind a Service.
type Config struct {
	StoreDriver     string
	StorePath       string
	StoreSeed       string
	PermissionsMode string
	PolicyPath      string
	NotifyMode      string
	NotifyDir       string
	SMTP            adapters.SMTPConfig
	DefaultRole     string
	ScratchDir      string
}

// NewService wires the adapters named by cfg. The returned close func
// releases the store and must be called once the service is no longer used.
func NewService(ctx context.Context, cfg Config) (Service, func() error, error) {
	store, closeStore, err := buildStore(ctx, cfg)
	if err != nil {
		return Service{}, nil, err
	}
	gate, err := buildGate(cfg)
	if err != nil {
		_ = closeStore()
		return Service{}, nil, err
	}
	notifier, err := buildNotifier(cfg)
	if err != nil {
		_ = closeStore()
		return Service{}, nil, err
	}
	return Service{
		Store:       store,
		Gate:        gate,
		Sources:     adapters.NewFileRowSourceOpener(),
		Notifier:    notifier,
		Scratch:     adapters.NewScratchFiles(cfg.ScratchDir),
		DefaultRole: cfg.DefaultRole,
		NewRunID:    uuid.NewString,
	}, closeStore, nil
}

func buildStore(ctx context.Context, cfg Config) (ports.StorePort, func() error, error) {
	switch driver := strings.ToLower(strings.TrimSpace(cfg.StoreDriver)); driver {
	case "", "sqlite":
		path := strings.TrimSpace(cfg.StorePath)
		if path == "" {
			return nil, nil, invalidRequest("store path is required for the sqlite driver")
		}
		db, err := adapters.OpenSQLite(ctx, path)
		if err != nil {
			return nil, nil, err
		}
		if err := adapters.RunMigrations(db); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		store := adapters.NewSQLiteStore(db)
		if err := seedStore(ctx, store, cfg.StoreSeed); err != nil {
			_ = store.Close()
			return nil, nil, err
		}
		return store, store.Close, nil
	case "memory":
		store := adapters.NewMemoryStore()
		if err := seedStore(ctx, store, cfg.StoreSeed); err != nil {
			return nil, nil, err
		}
		return store, func() error { return nil }, nil
	default:
		return nil, nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("unsupported store driver: " + driver)
	}
}

func seedStore(ctx context.Context, store adapters.SeedableStore, path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	seed, err := adapters.LoadStoreSeed(path)
	if err != nil {
		return err
	}
	return adapters.ApplyStoreSeed(ctx, store, seed)
}

func buildGate(cfg Config) (ports.PermissionPort, error) {
	switch mode := strings.ToLower(strings.TrimSpace(cfg.PermissionsMode)); mode {
	case "", "admin":
		return adapters.NewAdminGate(), nil
	case "casbin":
		gate, err := adapters.NewCasbinGate(strings.TrimSpace(cfg.PolicyPath))
		if err != nil {
			return nil, err
		}
		return gate, nil
	default:
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("unsupported permissions mode: " + mode)
	}
}

func buildNotifier(cfg Config) (ports.NotifierPort, error) {
	switch mode := strings.ToLower(strings.TrimSpace(cfg.NotifyMode)); mode {
	case "", "log":
		return adapters.NewLogNotifier(), nil
	case "file":
		dir := strings.TrimSpace(cfg.NotifyDir)
		if dir == "" {
			return nil, invalidRequest("notify dir is required for file notifications")
		}
		return adapters.NewFileNotifier(dir), nil
	case "smtp":
		if strings.TrimSpace(cfg.SMTP.Host) == "" || strings.TrimSpace(cfg.SMTP.From) == "" {
			return nil, invalidRequest("smtp host and from address are required for smtp notifications")
		}
		return adapters.NewSMTPNotifier(cfg.SMTP), nil
	default:
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("unsupported notify mode: " + mode)
	}
}

func (s Service) runID() string {
	if s.NewRunID == nil {
		return uuid.NewString()
	}
	return s.NewRunID()
}
