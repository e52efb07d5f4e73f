// Package internal provides the main application initialization and runtime
// logic.
package internal

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/openphysio/physiolog/internal/dicom"
	"github.com/openphysio/physiolog/internal/export"
	"github.com/openphysio/physiolog/internal/models"
	"github.com/openphysio/physiolog/internal/physio"
	"github.com/openphysio/physiolog/internal/plot"
	"github.com/openphysio/physiolog/internal/source"
)

// Run decodes one recording with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	if app.input == "" {
		return fmt.Errorf("input path is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Decoding physio recording",
		slog.String("input", app.input),
		slog.String("log_level", cfg.App.LogLevel.String()))

	svc := physio.NewService(source.OSFileSystem{}, dicom.NewReader(), logger)

	res, err := svc.Read(ctx, app.input)
	if err != nil {
		return fmt.Errorf("decode %s: %w", app.input, err)
	}

	active := make([]string, 0, len(res.Traces))
	for _, name := range models.TraceOrder {
		if _, ok := res.Traces[name]; ok {
			active = append(active, name)
		}
	}
	logger.Info("Decoded physio recording",
		slog.String("uuid", res.UUID),
		slog.Int("samples", len(res.ACQ)),
		slog.Any("active_traces", active))

	if app.plotPath != "" {
		actual := len(res.ACQ) - models.SamplePadding // unpadded scan length
		if err := plot.Render(res, actual, cfg.Plot.Window, app.plotPath); err != nil {
			return err
		}
		logger.Info("Wrote trace plot", slog.String("path", app.plotPath))
	}

	if app.edfPath != "" {
		if err := export.EDF(res, cfg.Export.RecordSamples, time.Now().UTC(), app.edfPath); err != nil {
			return err
		}
		logger.Info("Wrote EDF export", slog.String("path", app.edfPath))
	}

	return nil
}
