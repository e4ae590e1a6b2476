package main

import (
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/janekbaraniewski/stackarea/internal/config"
	"github.com/janekbaraniewski/stackarea/internal/export"
	"github.com/janekbaraniewski/stackarea/internal/source"
)

func exportOptions(cfg config.Config, title string) export.Options {
	opts := export.DefaultOptions()
	opts.Title = cfg.Serve.Title
	if title != "" {
		opts.Title = title
	}
	opts.RefreshSeconds = cfg.Serve.RefreshSeconds
	return opts
}

func newExportCommand(root *rootOptions) *cobra.Command {
	var (
		output string
		title  string
	)

	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Render the chart as a standalone HTML page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			closer, err := root.setupLogging(false)
			if err != nil {
				return err
			}
			defer closer.Close()

			cfg, err := root.loadSettings()
			if err != nil {
				return fmt.Errorf("loading settings: %w", err)
			}
			path, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			doc, err := loadDocument(cmd.Context(), path, cfg.Chart.Lenient)
			if err != nil {
				return err
			}

			opts := exportOptions(cfg, title)
			// Exported pages do not refresh.
			opts.RefreshSeconds = 0
			if output == "" || output == "-" {
				return export.HTML(cmd.OutOrStdout(), doc, opts)
			}
			return writeHTML(output, doc, opts)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the page to this file instead of stdout")
	cmd.Flags().StringVar(&title, "title", "", "page title")
	return cmd
}

func writeHTML(output string, doc source.Document, opts export.Options) (err error) {
	output, err = config.ExpandPath(output)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("creating %s: %w", output, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return export.HTML(f, doc, opts)
}

func newServeCommand(root *rootOptions) *cobra.Command {
	var (
		addr    string
		title   string
		refresh int
	)

	cmd := &cobra.Command{
		Use:   "serve <file>",
		Short: "Serve the chart over HTTP",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			closer, err := root.setupLogging(false)
			if err != nil {
				return err
			}
			defer closer.Close()

			cfg, err := root.loadSettings()
			if err != nil {
				return fmt.Errorf("loading settings: %w", err)
			}
			if addr != "" {
				cfg.Serve.Addr = addr
			}
			if refresh > 0 {
				cfg.Serve.RefreshSeconds = refresh
			}

			path, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			doc, err := loadDocument(ctx, path, cfg.Chart.Lenient)
			if err != nil {
				return err
			}

			srv := export.NewServer(doc, exportOptions(cfg, title))
			if cfg.Watch {
				lenient := cfg.Chart.Lenient
				watcher := source.NewWatcher(path, source.DefaultDebounce)
				err := watcher.Start(ctx, func(next source.Document, err error) {
					if err == nil && !lenient {
						err = validate(next)
					}
					if err != nil {
						log.WithError(err).WithField("path", path).Warn("reload failed")
						return
					}
					srv.SetDocument(next)
				})
				if err != nil {
					return err
				}
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "serving %s on http://%s\n", filepath.Base(path), cfg.Serve.Addr)
			return srv.ListenAndServe(ctx, cfg.Serve.Addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address")
	cmd.Flags().StringVar(&title, "title", "", "page title")
	cmd.Flags().IntVar(&refresh, "refresh", 0, "reload the page every N seconds")
	return cmd
}

func newDemoCommand(root *rootOptions) *cobra.Command {
	var (
		days int
		seed int64
	)

	cmd := &cobra.Command{
		Use:   "demo <output>",
		Short: "Write a generated issue history to a .json, .yaml or .db file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			closer, err := root.setupLogging(false)
			if err != nil {
				return err
			}
			defer closer.Close()

			path, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			if seed == 0 {
				seed = time.Now().UnixNano()
			}
			doc := source.Demo(time.Now(), days, rand.New(rand.NewSource(seed)))
			if err := source.Save(cmd.Context(), path, doc); err != nil {
				return err
			}
			return reportDemo(cmd.OutOrStdout(), path, doc)
		},
	}

	cmd.Flags().IntVar(&days, "days", 90, "number of daily samples")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 picks one)")
	return cmd
}

func reportDemo(w io.Writer, path string, doc source.Document) error {
	samples := 0
	for _, s := range doc.Series {
		samples += len(s)
	}
	_, err := fmt.Fprintf(w, "wrote %s samples across %d metrics to %s\n",
		humanize.Comma(int64(samples)), len(doc.Metrics), path)
	return err
}
