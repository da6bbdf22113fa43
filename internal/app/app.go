package app

import (
	"fmt"
	"log"
	"os"

	"github.com/dori/tminus/internal/alarm"
	"github.com/dori/tminus/internal/config"
	"github.com/dori/tminus/internal/controller"
	"github.com/dori/tminus/internal/countdown"
	"github.com/dori/tminus/internal/db"
	"github.com/dori/tminus/internal/notify"
	"github.com/dori/tminus/internal/store"
	"github.com/gofrs/flock"
	"github.com/spf13/afero"
)

// App holds the application state and dependencies
type App struct {
	Config     *config.Config
	DB         *db.DB
	Store      *store.Store
	Engine     *countdown.Engine
	Controller *controller.Controller
	Notifier   *notify.Notifier
	Alarm      *alarm.Alarm
	lockFile   *flock.Flock
}

// Options selects which parts of the app are started
type Options struct {
	// Exclusive takes the single-instance lock (TUI and watch)
	Exclusive bool
	// Sound opens the audio device for the alarm
	Sound bool
}

// New creates a new application instance
func New(cfg *config.Config, opts Options) (*App, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	// Ensure data directory exists
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	notifier := notify.NewNotifier()
	notifier.SetEnabled(cfg.Notify)

	app := &App{
		Config:   cfg,
		Notifier: notifier,
		Alarm:    alarm.New(alarm.DefaultDuration),
	}

	if opts.Exclusive {
		if err := app.acquireLock(); err != nil {
			return nil, err
		}
	}

	// The completion history always lives in SQLite
	database, err := db.Open(cfg.DBPath())
	if err != nil {
		app.releaseLock()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	app.DB = database

	var backend store.Backend = database
	if cfg.Backend == config.BackendFile {
		backend = store.NewFileBackend(afero.NewOsFs(), cfg.DataDir)
	}
	app.Store = store.Open(backend, store.DefaultSlot)

	if opts.Sound && cfg.Alarm {
		if err := app.Alarm.Initialize(); err != nil {
			log.Printf("app: no audio device, alarm is silent: %v", err)
		}
	}

	app.Engine = countdown.NewEngine(countdown.Options{Interval: cfg.TickInterval})
	app.Controller = controller.New(controller.Deps{
		Store:     app.Store,
		Engine:    app.Engine,
		History:   app.DB,
		Announcer: app.Notifier,
		Alarm:     app.Alarm,
	})

	return app, nil
}

// acquireLock acquires an exclusive file lock to prevent multiple instances
func (a *App) acquireLock() error {
	a.lockFile = flock.New(a.Config.LockPath())

	locked, err := a.lockFile.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}

	if !locked {
		return fmt.Errorf("another instance of tminus is already running")
	}

	return nil
}

// releaseLock releases the file lock
func (a *App) releaseLock() {
	if a.lockFile != nil {
		a.lockFile.Unlock()
	}
}

// Close cleans up application resources
func (a *App) Close() error {
	var errs []error

	if a.Engine != nil {
		a.Engine.Close()
	}
	if a.Alarm != nil {
		a.Alarm.Close()
	}

	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	a.releaseLock()

	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}
