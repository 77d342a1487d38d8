package main

import (
	"context"
	"os"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"

	"github.com/fremen-fi/audioshell/internal/config"
	"github.com/fremen-fi/audioshell/internal/instance"
	"github.com/fremen-fi/audioshell/internal/launcher"
	"github.com/fremen-fi/audioshell/internal/logging"
	"github.com/fremen-fi/audioshell/internal/worker"
)

const appID = "fi.fremen.audioshell"

func runGUI(ctx context.Context, cc *commandContext) error {
	cfg, err := cc.ensureConfig()
	if err != nil {
		return err
	}

	dir, err := config.Dir()
	if err != nil {
		return err
	}
	lock, err := instance.Acquire(dir)
	if err != nil {
		return err
	}
	defer lock.Release()

	logger, closer, err := cc.newLogger(os.Stderr)
	if err != nil {
		return err
	}
	defer closer.Close()
	logger.Debug().Str("lock", lock.Path()).Msg("single-instance lock held")

	store, err := cc.openHistory()
	if err != nil {
		logger.Warn().Err(err).Msg("history unavailable")
	}
	if store != nil {
		defer store.Close()
	}

	// A missing worker is not fatal here: the window still opens and the
	// launch failure is reported in the output box on submit.
	workerCmd, err := worker.Resolve(cfg.Worker)
	if err != nil {
		logger.Error().Err(err).Msg("worker not found")
		workerCmd = worker.Configured(cfg.Worker)
	}
	l, err := cc.newLauncher(workerCmd, logger, store)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(logging.WithContext(ctx, logger))
	defer cancel()

	a := app.NewWithID(appID)
	a.Settings().SetTheme(shellTheme{})

	w := a.NewWindow(cfg.Window.Title)
	w.Resize(fyne.NewSize(cfg.Window.Width, cfg.Window.Height))

	s := newShell(ctx, a, w, cfg, cc.configPath, l, store)
	s.build()

	go watchConfig(ctx, cc.configPath, s, l)

	w.SetOnClosed(func() {
		if run, ok := l.Active(); ok && l.Cancel() {
			logger.Warn().Str("run_id", run.ID).Str("operation", run.Request.Operation.String()).Msg("window closed while an operation was running")
		}
		cancel()
	})
	logger.Info().Str("version", version).Str("config", cc.configPath).Msg("audioshell started")
	w.ShowAndRun()
	return nil
}

// watchConfig applies edits of the config file to later runs.
func watchConfig(ctx context.Context, path string, s *shell, l *launcher.Launcher) {
	logger := logging.FromContext(ctx)
	err := config.Watch(ctx, path, func(cfg *config.Config, err error) {
		if err != nil {
			logger.Warn().Err(err).Msg("config reload failed")
			return
		}
		cmd, err := worker.Resolve(cfg.Worker)
		if err != nil {
			logger.Warn().Err(err).Msg("config reload: worker not found, keeping previous worker")
		} else {
			l.SetWorker(cmd, newExecutor(cfg))
		}
		s.setConfig(cfg)
		logger.Info().Str("worker", cmd.String()).Msg("config reloaded")
	})
	if err != nil {
		logger.Warn().Err(err).Msg("config watch stopped")
	}
}
