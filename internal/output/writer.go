// Package output persists finished utterances to disk.
package output

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/rbright/hark/internal/capture"
)

// Writer saves utterance WAV files into a target directory.
type Writer struct {
	dir    string
	logger *slog.Logger
}

// NewWriter resolves the target directory and creates it on first use.
// An empty dir uses $XDG_STATE_HOME/hark/utterances.
func NewWriter(dir string, logger *slog.Logger) (*Writer, error) {
	if strings.TrimSpace(dir) == "" {
		stateDir, err := resolveStateDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(stateDir, "hark", "utterances")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create utterance dir: %w", err)
	}
	return &Writer{dir: dir, logger: logger}, nil
}

// NewDebugWriter targets the debug dump directory under the state dir.
func NewDebugWriter(logger *slog.Logger) (*Writer, error) {
	stateDir, err := resolveStateDir()
	if err != nil {
		return nil, err
	}
	dir := filepath.Join(stateDir, "hark", "debug")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create debug dir: %w", err)
	}
	return &Writer{dir: dir, logger: logger}, nil
}

// Dir returns the resolved target directory.
func (w *Writer) Dir() string {
	return w.dir
}

// Save writes one utterance as a timestamped WAV file and returns its path.
func (w *Writer) Save(u capture.Utterance) (string, error) {
	name := fmt.Sprintf("%s-%s.wav", u.StartedAt.Format("20060102-150405.000"), u.ID.String())
	path := filepath.Join(w.dir, name)

	if err := os.WriteFile(path, u.WAV, 0o600); err != nil {
		return "", fmt.Errorf("write utterance %q: %w", path, err)
	}

	if w.logger != nil {
		w.logger.Info("utterance saved",
			"path", path,
			"bytes", len(u.WAV),
			"duration_ms", u.Duration.Milliseconds(),
		)
	}
	return path, nil
}

// resolveStateDir returns XDG_STATE_HOME with the ~/.local/state fallback.
func resolveStateDir() (string, error) {
	if xdg := strings.TrimSpace(os.Getenv("XDG_STATE_HOME")); xdg != "" {
		return xdg, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory for state: %w", err)
	}
	return filepath.Join(home, ".local", "state"), nil
}
