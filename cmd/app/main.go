package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/openphysio/physiolog/internal"
	pkgconfig "github.com/openphysio/physiolog/pkg/config"
)

func run(ctx context.Context, cmd *cli.Command) error {
	input := cmd.Args().First()
	if input == "" {
		return fmt.Errorf("missing input: pass a physio DICOM file or the basename of the log files (path without suffix and extension)")
	}

	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadIfPresent(cmd.String("config"), cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
		internal.WithInput(input),
	}
	if p := cmd.String("plot"); p != "" {
		opts = append(opts, internal.WithPlotOutput(p))
	}
	if p := cmd.String("edf"); p != "" {
		opts = append(opts, internal.WithEDFOutput(p))
	}

	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:      "physiolog",
		Usage:     "Decode scanner-synchronized physiological log recordings (ECG/RESP/PULS/EXT) into per-tick traces",
		ArgsUsage: "<dicom file | logfile basename>",
		Action:    run,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "plot",
				Aliases: []string{"p"},
				Usage:   "Render the decoded traces to this image file",
			},
			&cli.StringFlag{
				Name:  "edf",
				Usage: "Export the decoded traces to this EDF file",
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
