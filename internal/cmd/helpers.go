package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Iron-Ham/rudder/internal/config"
	"github.com/Iron-Ham/rudder/internal/estimate"
	"github.com/Iron-Ham/rudder/internal/ledger"
	"github.com/Iron-Ham/rudder/internal/logging"
)

// workspace bundles what most commands need: the loaded configuration and
// the directory its data paths resolve against.
type workspace struct {
	BaseDir string
	Config  *config.Config
}

func loadWorkspace() (*workspace, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current directory: %w", err)
	}
	return &workspace{BaseDir: cwd, Config: config.Get()}, nil
}

func (w *workspace) ledger() *ledger.Ledger {
	return ledger.New(w.Config.Paths.LedgerPath(w.BaseDir))
}

func (w *workspace) snapshots() *estimate.SnapshotStore {
	return estimate.NewSnapshotStore(w.Config.Paths.SnapshotPath(w.BaseDir))
}

// logDir returns the directory log files are written to and read from.
func (w *workspace) logDir() string {
	return filepath.Join(w.Config.Paths.ResolveDataDir(w.BaseDir), "logs")
}

// logger builds the configured logger, rotating per the logging config so
// the shared log file cannot grow without bound. Logging failures fall
// back to the nop logger rather than failing the command. Callers own
// Close.
func (w *workspace) logger() *logging.Logger {
	if !w.Config.Logging.Enabled {
		return logging.NopLogger()
	}

	rotation := logging.RotationConfig{
		MaxSizeMB:  w.Config.Logging.MaxSizeMB,
		MaxBackups: w.Config.Logging.MaxBackups,
	}
	log, err := logging.NewLoggerWithRotation(w.logDir(), w.Config.Logging.Level, rotation)
	if err != nil {
		return logging.NopLogger()
	}
	return log
}

// loadEntries reads the ledger, printing a note when corrupt lines were
// skipped. A missing ledger is an empty history, not an error.
func (w *workspace) loadEntries() ([]ledger.Entry, error) {
	result, err := w.ledger().Load()
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger: %w", err)
	}
	if result.SkippedCount > 0 {
		fmt.Fprintf(os.Stderr, "note: skipped %d corrupt ledger line(s)\n", result.SkippedCount)
	}
	return result.Entries, nil
}
