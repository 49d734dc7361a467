package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/five82/comicvault/internal/comics"
	"github.com/five82/comicvault/internal/config"
	"github.com/five82/comicvault/internal/job"
	"github.com/five82/comicvault/internal/logging"
	"github.com/five82/comicvault/internal/prefs"
	"github.com/five82/comicvault/internal/state"
	"github.com/five82/comicvault/internal/ui"
)

// Options configure the comicvault application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/comicvault/prefs.toml
	// APIURL overrides api_url from the config file.
	APIURL string
	// Resume polls the journal's last job on start when it can still finish.
	Resume bool
}

// Env is the loaded configuration and the services built from it.
type Env struct {
	Config  config.Config
	Logger  *slog.Logger
	Client  *comics.Client
	Session string
}

// Setup loads the config and builds the logger and the backend client.
func Setup(opts Options) (*Env, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if api := strings.TrimSpace(opts.APIURL); api != "" {
		cfg.APIURL = api
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}
	session := uuid.NewString()
	logger = logger.With("session", session)

	client, err := comics.NewClient(cfg.APIURL,
		comics.WithTimeout(cfg.RequestTimeout),
		comics.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("init api client: %w", err)
	}

	return &Env{Config: cfg, Logger: logger, Client: client, Session: session}, nil
}

// Run boots the comicvault TUI until the user quits or the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	env, err := Setup(opts)
	if err != nil {
		return err
	}
	env.Logger.Info("starting", "api_url", env.Client.BaseURL())

	userPrefs, _ := prefs.Load(opts.PrefsPath)

	journal, release := OpenJournal(env)
	defer release()

	resume := ""
	if opts.Resume {
		resume = resumableBlob(env)
	}

	uiOpts := ui.Options{
		Context:   ctx,
		Gateway:   env.Client,
		Config:    env.Config,
		Logger:    env.Logger,
		ThemeName: userPrefs.Theme,
		PrefsPath: opts.PrefsPath,
		LastQuery: userPrefs.LastQuery,
		Observer:  journal,
		Resume:    resume,
	}
	if resume != "" {
		env.Logger.Info("resuming job", "blob", resume)
	}
	return ui.Run(uiOpts)
}

// OpenJournal takes the job journal and returns an observer that records
// every tracker transition, plus the function that releases it. When another
// process holds the journal, jobs run unrecorded.
func OpenJournal(env *Env) (job.Observer, func()) {
	logger := env.Logger.With("component", "journal")
	store, err := state.Open(env.Config.JournalPath)
	if err != nil {
		logger.Warn("journal unavailable", "error", err)
		return nil, func() {}
	}
	if err := store.Acquire(); err != nil {
		if errors.Is(err, state.ErrLocked) {
			logger.Warn("journal held by another process; not recording jobs", "path", store.Path())
		} else {
			logger.Warn("journal unavailable", "path", store.Path(), "error", err)
		}
		return nil, func() {}
	}

	observer := func(st job.State, j job.Job) {
		if err := store.Update(st, j); err != nil {
			logger.Warn("journal update failed", "state", st.String(), "error", err)
		}
	}
	release := func() {
		if err := store.Release(); err != nil {
			logger.Warn("journal release failed", "error", err)
		}
	}
	return observer, release
}

// LastJob returns the journal's record of the most recent job.
func LastJob(env *Env) (state.Snapshot, bool, error) {
	return state.Last(env.Config.JournalPath)
}

func resumableBlob(env *Env) string {
	snap, ok, err := LastJob(env)
	if err != nil {
		env.Logger.Warn("read journal failed", "error", err)
		return ""
	}
	if !ok || !snap.Resumable() {
		return ""
	}
	return snap.BlobReference
}
