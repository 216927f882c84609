package files

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"descstats/internal/config"
)

// Manager provides file management operations
type Manager struct {
	paths  *config.Paths
	logger *slog.Logger
}

// NewManager creates a new file manager instance
func NewManager(paths *config.Paths, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{paths: paths, logger: logger}
}

// ResetDirectory removes a directory with everything below it and
// recreates it empty.
func (m *Manager) ResetDirectory(path string) error {
	fullPath := m.resolvePath(path)

	m.logger.Info("Resetting directory",
		slog.String("path", path),
		slog.String("full_path", fullPath))

	if err := os.RemoveAll(fullPath); err != nil {
		return fmt.Errorf("failed to remove directory: %w", err)
	}
	return os.MkdirAll(fullPath, 0755)
}

// WriteFileAtomic writes data to a temp file in the target directory and
// renames it to path.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("failed to set file mode: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to move file into place: %w", err)
	}
	return nil
}

// resolvePath resolves a path relative to the appropriate base directory:
// "output/", "figures/" and "logs/" prefixes map to the configured
// directories, anything else is relative to the data directory.
func (m *Manager) resolvePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}

	slashed := filepath.ToSlash(path)
	switch {
	case strings.HasPrefix(slashed, "output/"):
		return filepath.Join(m.paths.OutputDir, strings.TrimPrefix(slashed, "output/"))
	case strings.HasPrefix(slashed, "figures/"):
		return filepath.Join(m.paths.FiguresDir, strings.TrimPrefix(slashed, "figures/"))
	case strings.HasPrefix(slashed, "logs/"):
		return m.paths.GetLogPath(strings.TrimPrefix(slashed, "logs/"))
	default:
		return filepath.Join(m.paths.DataDir, path)
	}
}
