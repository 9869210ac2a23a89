package main

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/young626-jang/ltv-flask/internal/service"
	"github.com/young626-jang/ltv-flask/internal/textsrc"
)

func newWatchCmd(c *cli) *cobra.Command {
	var (
		persist  bool
		debounce time.Duration
	)
	cmd := &cobra.Command{
		Use:   "watch DIR",
		Short: "Analyse register documents as they land in a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, done, err := c.service(ctx, persist)
			if err != nil {
				return err
			}
			defer done()

			w, err := newDirWatcher(args[0], debounce)
			if err != nil {
				return err
			}
			defer w.Close()

			c.logger.Info("watching for documents", "dir", args[0])
			return w.Run(ctx, func(path string) {
				in, err := service.ReadInput(path)
				if err != nil {
					c.logger.Warn("read failed", "file", path, "error", err)
					return
				}
				a, err := svc.Analyze(ctx, in)
				if err != nil {
					c.logger.Error("analysis failed", "file", path, "error", err)
					return
				}
				if err := c.print(cmd.OutOrStdout(), a); err != nil {
					c.logger.Error("print failed", "file", path, "error", err)
				}
			})
		},
	}
	cmd.Flags().BoolVar(&persist, "persist", true, "record results in the configured graph, history and cache")
	cmd.Flags().DurationVar(&debounce, "debounce", 500*time.Millisecond, "quiet period before a changed file is analysed")
	return cmd
}

// dirWatcher reports documents created or rewritten in one directory, once
// per burst of writes.
type dirWatcher struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration
	pending  map[string]time.Time
}

func newDirWatcher(dir string, debounce time.Duration) (*dirWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	return &dirWatcher{
		watcher:  w,
		debounce: debounce,
		pending:  make(map[string]time.Time),
	}, nil
}

// Run calls handle for every settled document until ctx is done.
func (d *dirWatcher) Run(ctx context.Context, handle func(path string)) error {
	tick := time.NewTicker(d.debounce / 4)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-d.watcher.Events:
			if !ok {
				return nil
			}
			if (ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write)) && textsrc.Accepts(ev.Name) {
				d.pending[ev.Name] = time.Now()
			}
		case err, ok := <-d.watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch: %w", err)
		case now := <-tick.C:
			for _, path := range d.settled(now) {
				handle(path)
			}
		}
	}
}

func (d *dirWatcher) settled(now time.Time) []string {
	var due []string
	for path, last := range d.pending {
		if now.Sub(last) >= d.debounce {
			due = append(due, path)
			delete(d.pending, path)
		}
	}
	sort.Strings(due)
	return due
}

func (d *dirWatcher) Close() error {
	return d.watcher.Close()
}
