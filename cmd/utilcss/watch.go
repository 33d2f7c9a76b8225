package main

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/yacobolo/utilcss"
	"github.com/yacobolo/utilcss/internal/logger"
	"github.com/yacobolo/utilcss/internal/scan"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Regenerate CSS whenever sources or presets change",
	Long: `Run generate, then watch the directories of every scanned file and preset
file. Source changes regenerate the stylesheet; preset changes reload the
configuration first. A preset that fails to load keeps the previous one.`,
	PreRunE: func(cmd *cobra.Command, _ []string) error {
		return loadConfig(cmd)
	},
	RunE: runWatch,
}

func init() {
	addGenerateFlags(watchCmd)
	watchCmd.Flags().Duration("debounce", 100*time.Millisecond, "Wait this long for more changes before regenerating")
}

func runWatch(cmd *cobra.Command, _ []string) error {
	cfg := buildGenerateConfig()
	log, err := buildLogger()
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	debounce, _ := cmd.Flags().GetDuration("debounce")

	gen, err := newGenerator(cfg, log)
	if err != nil {
		return err
	}
	defer gen.Subscribe(utilcss.EventConfigChanged, func(e utilcss.Event) {
		log.WithFields(map[string]any{"version": e.Version}).Info("presets reloaded")
	})()
	defer gen.Subscribe(utilcss.EventGenerated, func(e utilcss.Event) {
		log.WithFields(map[string]any{"tokens": e.Tokens, "matched": e.Matched}).Info("stylesheet generated")
	})()

	ctx := cmd.Context()
	rebuild := func(reload bool) {
		if reload {
			uc, err := cfg.userConfig()
			if err == nil {
				err = gen.SetConfig(uc, utilcss.UserConfig{})
			}
			if err != nil {
				log.Error(err, "reloading presets, keeping previous config")
			}
		}
		rep, err := generateOnce(ctx, gen, cfg, log)
		if err != nil {
			log.Error(err, "generate failed")
			return
		}
		if err := writeReport(cfg, rep); err != nil {
			log.Error(err, "writing report")
		}
	}
	rebuild(false)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	dirs, err := watchDirs(cfg)
	if err != nil {
		return err
	}
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
	}
	log.WithFields(map[string]any{"dirs": len(dirs)}).Info("watching for changes")

	w := &watchLoop{
		events:   watcher.Events,
		errors:   watcher.Errors,
		debounce: debounce,
		classify: cfg.classify,
		rebuild:  rebuild,
		log:      log,
	}
	return w.run(ctx)
}

// watchDirs lists the directories holding scanned sources and preset files.
func watchDirs(cfg generateConfig) ([]string, error) {
	files, _, err := scan.New(scan.Options{Root: ".", Exclude: cfg.Exclude}).ExpandGlobs(cfg.Content)
	if err != nil {
		return nil, err
	}
	files = append(files, cfg.Presets...)

	var dirs []string
	for _, f := range files {
		dir := filepath.Dir(f)
		if !slices.Contains(dirs, dir) {
			dirs = append(dirs, dir)
		}
	}
	slices.Sort(dirs)
	return dirs, nil
}

// changeKind is how a changed file affects the output
type changeKind int

const (
	changeNone changeKind = iota
	changeSource
	changePreset
)

// classify maps a changed path to what must be redone. The output file is
// ignored so writing it does not retrigger a build.
func (c generateConfig) classify(path string) changeKind {
	clean := filepath.Clean(path)
	if c.Output != "-" && clean == filepath.Clean(c.Output) {
		return changeNone
	}
	for _, p := range c.Presets {
		if clean == filepath.Clean(p) {
			return changePreset
		}
	}
	slashed := filepath.ToSlash(clean)
	for _, pattern := range c.Exclude {
		if ok, _ := doublestar.Match(filepath.ToSlash(pattern), slashed); ok {
			return changeNone
		}
	}
	for _, pattern := range c.Content {
		if ok, _ := doublestar.Match(filepath.ToSlash(filepath.Clean(pattern)), slashed); ok {
			return changeSource
		}
	}
	return changeNone
}

// watchLoop debounces file events into rebuilds.
type watchLoop struct {
	events   <-chan fsnotify.Event
	errors   <-chan error
	debounce time.Duration
	classify func(path string) changeKind
	rebuild  func(reload bool)
	log      *logger.Logger
}

func (w *watchLoop) run(ctx context.Context) error {
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	pending, reload := false, false

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case ev, ok := <-w.events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
				continue
			}
			kind := w.classify(ev.Name)
			if kind == changeNone {
				continue
			}
			w.log.WithFields(map[string]any{"file": ev.Name}).Debug("change detected")
			if kind == changePreset {
				reload = true
			}
			pending = true
			timer.Reset(w.debounce)

		case err, ok := <-w.errors:
			if !ok {
				return nil
			}
			w.log.Error(err, "watcher error")

		case <-timer.C:
			if !pending {
				continue
			}
			w.rebuild(reload)
			pending, reload = false, false
		}
	}
}
