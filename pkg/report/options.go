package report

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/user/nessus2xlsx/pkg/config"
	"github.com/user/nessus2xlsx/pkg/logger"
)

// WriteError reports a workbook that could not be created, reopened or
// saved.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Options controls workbook layout.
type Options struct {
	SheetName      string
	MaxColumnWidth int
	// Colors maps a severity level to the RGB hex fill of its rows.
	// Severities without an entry are left unfilled.
	Colors map[int]string
	Log    *logrus.Logger
}

func DefaultOptions() Options {
	return OptionsFromConfig(config.Default())
}

func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		SheetName:      cfg.SheetName,
		MaxColumnWidth: cfg.MaxColumnWidth,
		Colors:         cfg.Colors,
	}
}

func (o Options) sheet() string {
	if o.SheetName == "" {
		return config.DefaultSheetName
	}
	return o.SheetName
}

func (o Options) maxWidth() int {
	if o.MaxColumnWidth < 1 {
		return config.DefaultMaxColumnWidth
	}
	return o.MaxColumnWidth
}

func (o Options) log() *logrus.Logger {
	if o.Log == nil {
		return logger.Discard()
	}
	return o.Log
}
