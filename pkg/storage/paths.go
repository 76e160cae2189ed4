// Package storage owns the on-disk layout for generated reports and log files.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"workshop-backend/pkg/config"
	"workshop-backend/pkg/errutil"
)

var Module = fx.Module("storage",
	fx.Provide(NewPaths, NewSweeper),
	fx.Invoke(RegisterSweeper),
)

const dirPerm = 0o755

// Paths resolves report and log locations. Directory creation is idempotent.
type Paths struct {
	Base    string
	Reports string
	Logs    string
}

// NewPaths resolves the configured roots and makes sure they exist.
func NewPaths(cfg *config.Config) (*Paths, error) {
	p := &Paths{}

	var err error
	if p.Base, err = filepath.Abs(cfg.Storage.BasePath); err != nil {
		return nil, fmt.Errorf("resolve base path: %w", err)
	}
	if p.Reports, err = filepath.Abs(cfg.Storage.ReportPath); err != nil {
		return nil, fmt.Errorf("resolve report path: %w", err)
	}
	if p.Logs, err = filepath.Abs(cfg.Storage.LogPath); err != nil {
		return nil, fmt.Errorf("resolve log path: %w", err)
	}

	if err := p.EnsureBaseDirectories(); err != nil {
		return nil, err
	}

	return p, nil
}

// EnsureBaseDirectories creates the base, reports and logs directories when missing.
func (p *Paths) EnsureBaseDirectories() error {
	for _, dir := range []string{p.Base, p.Reports, p.Logs} {
		if dir == "" {
			continue
		}
		if _, err := os.Stat(dir); err == nil {
			continue
		}
		if err := os.MkdirAll(dir, dirPerm); err != nil {
			return errutil.Filesystem("failed to create storage directory "+dir, err)
		}
		zap.L().Info("[Storage] created directory", zap.String("path", dir))
	}
	return nil
}

// ResolveReportPath returns <reports>/<YYYY>/<MM>/<fileName> for the calendar month of at,
// creating the partition directory.
func (p *Paths) ResolveReportPath(fileName string, at time.Time) (string, error) {
	name := filepath.Base(fileName)
	if name == "." || name == string(filepath.Separator) || name == "" {
		return "", errutil.Filesystem(fmt.Sprintf("invalid report file name %q", fileName), nil)
	}

	dir := p.ReportPartition(at)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return "", errutil.Filesystem("failed to create report directory "+dir, err)
	}

	return filepath.Join(dir, name), nil
}

// ReportPartition is the year/month directory a report generated at `at` lands in.
func (p *Paths) ReportPartition(at time.Time) string {
	return filepath.Join(p.Reports, strconv.Itoa(at.Year()), fmt.Sprintf("%02d", int(at.Month())))
}

// LogFile returns the path of a log file under the logs root.
func (p *Paths) LogFile(name string) string {
	return filepath.Join(p.Logs, filepath.Base(name))
}

// Exists reports whether path names an existing regular file.
func Exists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
