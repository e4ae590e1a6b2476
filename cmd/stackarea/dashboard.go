package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"

	"github.com/janekbaraniewski/stackarea/internal/config"
	"github.com/janekbaraniewski/stackarea/internal/source"
	"github.com/janekbaraniewski/stackarea/internal/term"
	"github.com/janekbaraniewski/stackarea/internal/tui"
)

func runDashboard(ctx context.Context, opts *rootOptions, arg string) error {
	closer, err := opts.setupLogging(true)
	if err != nil {
		return err
	}
	defer closer.Close()

	cfg, err := opts.loadSettings()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}
	settingsPath, err := opts.settingsPath()
	if err != nil {
		return err
	}

	if err := term.LoadThemes(config.ConfigDir()); err != nil {
		log.WithError(err).Warn("some themes could not be loaded")
	}
	if !term.SetThemeByName(cfg.Theme) {
		log.WithField("theme", cfg.Theme).Warn("unknown theme, using default")
	}

	path, err := config.ExpandPath(arg)
	if err != nil {
		return err
	}
	doc, err := loadDocument(ctx, path, cfg.Chart.Lenient)
	if err != nil {
		return err
	}

	model := tui.NewModel(doc.Apply(widgetConfig(cfg)), cellSize(cfg), path)
	model.SetOnThemeChange(func(name string) error {
		return config.SaveThemeTo(settingsPath, name)
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseAllMotion(), tea.WithContext(ctx))

	if cfg.Watch {
		base := widgetConfig(cfg)
		lenient := cfg.Chart.Lenient
		watcher := source.NewWatcher(path, source.DefaultDebounce)
		err := watcher.Start(ctx, func(next source.Document, err error) {
			if err == nil && !lenient {
				err = validate(next)
			}
			if err != nil {
				program.Send(tui.DocumentMsg{Err: err})
				return
			}
			program.Send(tui.DocumentMsg{Config: next.Apply(base), Source: path})
		})
		if err != nil {
			return err
		}
	}

	if _, err := program.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
