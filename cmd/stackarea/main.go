package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/janekbaraniewski/stackarea/internal/appupdate"
	"github.com/janekbaraniewski/stackarea/internal/config"
	"github.com/janekbaraniewski/stackarea/internal/core"
	"github.com/janekbaraniewski/stackarea/internal/logging"
	"github.com/janekbaraniewski/stackarea/internal/source"
	"github.com/janekbaraniewski/stackarea/internal/term"
	"github.com/janekbaraniewski/stackarea/internal/version"
	"github.com/janekbaraniewski/stackarea/internal/widget"
)

// rootOptions are the flags shared by every command.
type rootOptions struct {
	configPath string
	logFile    string
	width      float64
	height     float64
	theme      string
	watch      bool
	lenient    bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCommand().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:          "stackarea [file]",
		Short:        "stackarea draws interactive stacked-area charts of time series in the terminal.",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDashboard(cmd.Context(), opts, args[0])
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "settings file (default "+config.ConfigPath()+")")
	flags.StringVar(&opts.logFile, "log-file", "", "append debug logs to this file")
	flags.BoolVar(&opts.lenient, "lenient", false, "skip the series/snapshot alignment check")
	flags.BoolVarP(&opts.watch, "watch", "w", false, "reload the chart when the file changes")

	root.Flags().Float64Var(&opts.width, "width", 0, "chart width in chart units")
	root.Flags().Float64Var(&opts.height, "height", 0, "chart height in chart units")
	root.Flags().StringVar(&opts.theme, "theme", "", "theme name")

	root.AddCommand(
		newExportCommand(opts),
		newServeCommand(opts),
		newDemoCommand(opts),
		newVersionCommand(),
	)
	return root
}

func newVersionCommand() *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "stackarea", version.String())
			if !check {
				return nil
			}

			result, err := appupdate.Check(cmd.Context(), appupdate.CheckOptions{CurrentVersion: version.Version})
			if err != nil {
				return fmt.Errorf("checking for updates: %w", err)
			}
			switch {
			case result.CurrentVersion == "":
				fmt.Fprintln(out, "development build, update check skipped")
			case result.UpdateAvailable:
				fmt.Fprintf(out, "%s is available: %s\n", result.LatestVersion, result.UpgradeHint)
			default:
				fmt.Fprintln(out, "up to date")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&check, "check", false, "look up the latest release on GitHub")
	return cmd
}

func (o *rootOptions) settingsPath() (string, error) {
	if o.configPath == "" {
		return config.ConfigPath(), nil
	}
	return config.ExpandPath(o.configPath)
}

// loadSettings reads the settings file and applies flag overrides on top.
func (o *rootOptions) loadSettings() (config.Config, error) {
	path, err := o.settingsPath()
	if err != nil {
		return config.DefaultConfig(), err
	}
	cfg, err := config.LoadFrom(path)
	if err != nil {
		return cfg, err
	}

	if o.width > 0 {
		cfg.Chart.Width = o.width
	}
	if o.height > 0 {
		cfg.Chart.Height = o.height
	}
	if o.theme != "" {
		cfg.Theme = o.theme
	}
	cfg.Watch = cfg.Watch || o.watch
	cfg.Chart.Lenient = cfg.Chart.Lenient || o.lenient
	return cfg, nil
}

// setupLogging wires logrus for a command. The dashboard owns the terminal,
// so STACKAREA_DEBUG without --log-file logs next to the settings instead of
// to stderr.
func (o *rootOptions) setupLogging(interactive bool) (io.Closer, error) {
	path := o.logFile
	if path != "" {
		expanded, err := config.ExpandPath(path)
		if err != nil {
			return nil, err
		}
		path = expanded
	} else if interactive && logging.Enabled("") {
		path = filepath.Join(config.ConfigDir(), "stackarea.log")
	}
	return logging.Setup(path)
}

func widgetConfig(cfg config.Config) widget.Config {
	return widget.Config{
		Width:  cfg.Chart.Width,
		Height: cfg.Chart.Height,
		Margin: cfg.Chart.Margin,
	}
}

func cellSize(cfg config.Config) term.CellSize {
	return term.CellSize{W: cfg.Chart.Cell.Width, H: cfg.Chart.Cell.Height}
}

// loadDocument reads a chart document, checking that snapshots line up with
// the samples unless lenient is set.
func loadDocument(ctx context.Context, path string, lenient bool) (source.Document, error) {
	doc, err := source.Load(ctx, path)
	if err != nil {
		return source.Document{}, err
	}
	if !lenient {
		if err := validate(doc); err != nil {
			return source.Document{}, fmt.Errorf("%s: %w", path, err)
		}
	}
	log.WithFields(log.Fields{
		"path":      path,
		"metrics":   len(doc.Metrics),
		"snapshots": len(doc.Snapshots),
	}).Debug("document loaded")
	return doc, nil
}

func validate(doc source.Document) error {
	return core.ValidateAlignment(doc.CoreSeries(), doc.CoreSnapshots())
}
