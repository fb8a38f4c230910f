package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/andy/workcal/internal/assistant"
	"github.com/andy/workcal/internal/config"
	"github.com/andy/workcal/internal/crypto"
	"github.com/andy/workcal/internal/db"
	applog "github.com/andy/workcal/internal/log"
	"github.com/andy/workcal/internal/repository"
	"github.com/andy/workcal/internal/service"
)

// App is the dependency injection container for all application components
type App struct {
	Config *config.Config
	DB     *db.DB
	Logger *applog.Logger

	// Storage
	Store repository.KVStore
	Repo  *repository.Repo

	// Services
	ClientService    service.ClientService
	EventService     service.EventService
	ReportService    service.ReportService
	StatementService service.StatementService
	BackupService    service.BackupService
	ExportService    service.CalendarExportService

	// Assistant
	Responder assistant.Responder
	Chat      *assistant.Conversation

	configPath string
	logFile    *os.File
}

// Options control how the container is built
type Options struct {
	// ConfigPath overrides ~/.config/workcal/config.yaml
	ConfigPath string

	// LogToFile sends logs to the configured log file instead of stderr,
	// so the TUI owns the terminal
	LogToFile bool
}

// New creates a new App instance, initializing all dependencies
// It handles:
// 1. Loading config
// 2. Getting encryption key from keyring
// 3. Opening database
// 4. Running migrations
// 5. Loading the repository from the key-value store
// 6. Creating services and the assistant
func New(ctx context.Context, opts Options) (*App, error) {
	path := opts.ConfigPath
	if path == "" {
		path = config.DefaultConfigPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts.ConfigPath = path
	return NewWithConfig(ctx, cfg, opts)
}

// NewWithConfig creates an App backed by the encrypted database
func NewWithConfig(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	// Ensure all necessary directories exist
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to create directories: %w", err)
	}

	logger, logFile, err := newLogger(cfg, opts)
	if err != nil {
		return nil, err
	}

	password, err := encryptionKey()
	if err != nil {
		closeQuietly(logFile)
		return nil, err
	}

	database, err := db.Open(cfg.Database.Path, password)
	if err != nil {
		closeQuietly(logFile)
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := database.RunMigrations(); err != nil {
		database.Close()
		closeQuietly(logFile)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	a, err := build(ctx, cfg, repository.NewSQLiteKV(database), logger)
	if err != nil {
		database.Close()
		closeQuietly(logFile)
		return nil, err
	}
	a.DB = database
	a.logFile = logFile
	a.configPath = opts.ConfigPath

	logger.Info("database ready", "path", database.Path())
	return a, nil
}

// NewEphemeral creates an App over an in-memory store. Nothing is written to disk.
func NewEphemeral(ctx context.Context, cfg *config.Config, logger *applog.Logger) (*App, error) {
	if logger == nil {
		logger = applog.Discard()
	}
	return build(ctx, cfg, repository.NewMemoryKV(), logger)
}

func build(ctx context.Context, cfg *config.Config, store repository.KVStore, logger *applog.Logger) (*App, error) {
	repo, err := repository.Open(ctx, store, logger.WithComponent(applog.ComponentRepository))
	if err != nil {
		return nil, fmt.Errorf("failed to load data: %w", err)
	}

	responder := assistant.New(ctx, assistant.Options{
		APIKey:   cfg.AssistantAPIKey(),
		Model:    cfg.Assistant.Model,
		Endpoint: cfg.Assistant.Endpoint,
	}, logger.WithComponent(applog.ComponentAssistant))

	snapshot := func() assistant.Snapshot {
		clients, events := repo.Snapshot()
		return assistant.BuildSnapshot(clients, events, time.Now())
	}

	return &App{
		Config:           cfg,
		Logger:           logger,
		Store:            store,
		Repo:             repo,
		ClientService:    service.NewClientService(repo),
		EventService:     service.NewEventService(repo),
		ReportService:    service.NewReportService(repo),
		StatementService: service.NewStatementService(repo, cfg.Billing.TaxRate, cfg.Billing.Currency),
		BackupService:    service.NewBackupService(repo),
		ExportService:    service.NewCalendarExportService(repo),
		Responder:        responder,
		Chat:             assistant.NewConversation(responder, snapshot, logger.WithComponent(applog.ComponentAssistant)),
	}, nil
}

// Close cleanly shuts down the application
func (a *App) Close() error {
	var errs []error
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	if a.logFile != nil {
		errs = append(errs, a.logFile.Close())
	}
	return errors.Join(errs...)
}

// SaveConfig saves the current configuration to the file it was loaded from
func (a *App) SaveConfig() error {
	path := a.configPath
	if path == "" {
		path = config.DefaultConfigPath()
	}
	return a.Config.Save(path)
}

func newLogger(cfg *config.Config, opts Options) (*applog.Logger, *os.File, error) {
	level, err := applog.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, nil, err
	}

	var out io.Writer = os.Stderr
	var file *os.File
	if opts.LogToFile && cfg.Log.Path != "" {
		file, err = applog.OpenFile(cfg.Log.Path)
		if err != nil {
			return nil, nil, err
		}
		out = file
	}

	return applog.New(applog.Config{Level: level, Component: applog.ComponentApp, Output: out}), file, nil
}

// encryptionKey reads the database key, prompting for a new one on first run
func encryptionKey() (string, error) {
	keyring := crypto.NewKeyring()

	password, err := keyring.GetKey()
	if err == nil {
		return password, nil
	}

	// No key exists, prompt user to set one
	if !term.IsTerminal(int(syscall.Stdin)) {
		return "", fmt.Errorf("no database key: set %s or run interactively: %w", crypto.EnvVar, err)
	}
	fmt.Println("Setting up database encryption for the first time...")
	password, err = promptForPassword()
	if err != nil {
		return "", fmt.Errorf("failed to set password: %w", err)
	}

	if err := keyring.SetKey(password); err != nil {
		return "", fmt.Errorf("failed to store encryption key: %w", err)
	}
	return password, nil
}

// promptForPassword prompts user for a new database password (first run)
func promptForPassword() (string, error) {
	fmt.Println()
	fmt.Println("Your clients and sessions will be encrypted with a password.")
	fmt.Println("This password will be stored securely in your system keyring.")
	fmt.Println()
	fmt.Print("Enter a password for database encryption: ")

	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	if len(password) == 0 {
		return "", fmt.Errorf("password cannot be empty")
	}

	fmt.Print("Confirm password: ")
	confirm, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read confirmation: %w", err)
	}

	if string(password) != string(confirm) {
		return "", fmt.Errorf("passwords do not match")
	}

	fmt.Println()
	fmt.Println("✓ Database encryption configured successfully")
	fmt.Println()

	return string(password), nil
}

func closeQuietly(f *os.File) {
	if f != nil {
		_ = f.Close()
	}
}
