package app

import (
	"context"

	fyneapp "fyne.io/fyne/v2/app"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"meertime/tpaclassifier/classifier"
	"meertime/tpaclassifier/internal/logging"
)

const fyneAppID = "meertime.tpaclassifier"

// Run loads the datasets named by cfg and starts the dashboard. It returns
// when the main window closes.
func Run(cfg classifier.Config) error {
	cfg.ApplyDefaults()
	sink := &logSink{}
	logger, err := logging.New(cfg.Logging, logging.WriterCore(sink, zapcore.InfoLevel))
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	svc, err := classifier.NewService(cfg, logger)
	if err != nil {
		logger.Error("startup failed", zap.Error(err))
		return err
	}
	defer svc.Close()

	a := fyneapp.NewWithID(fyneAppID)
	u := buildUI(a, svc)
	sink.attach(u.appendLog)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	watcher, err := NewLogWatcher(cfg.Log.Path, u.refreshHistories, logger)
	if err != nil {
		logger.Warn("classification log watcher unavailable", zap.Error(err))
	} else if err := watcher.Start(ctx); err != nil {
		logger.Warn("classification log watcher unavailable", zap.Error(err))
		watcher.Stop()
	} else {
		defer watcher.Stop()
	}

	u.w.ShowAndRun()
	return nil
}
