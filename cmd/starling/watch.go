package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fsnotify/fsnotify"
)

// runWatch checks files once, then re-checks each file whenever it is
// written or re-created, until interrupted.
func runWatch(files []string) int {
	fe, err := frontendFromFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w, err := fsnotify.NewWatcher()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	defer w.Close()

	if err := fe.watchFiles(ctx, w, files, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

// watchFiles runs the watch loop until ctx is done or w is closed.
// Directories are watched rather than files so that editors which
// replace a file on save keep being followed.
func (fe *frontend) watchFiles(ctx context.Context, w *fsnotify.Watcher, files []string, out, errOut io.Writer) error {
	watched := make(map[string]string) // absolute path to name as given
	dirs := make(map[string]bool)
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return err
		}
		watched[abs] = f

		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := w.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		dirs[dir] = true
	}

	for _, r := range fe.checkAll(files, len(files)) {
		fe.report(out, errOut, r, true)
	}
	fe.log.Info("watching", "files", len(files), "dirs", len(dirs))

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			abs, err := filepath.Abs(ev.Name)
			if err != nil {
				continue
			}
			name, ok := watched[abs]
			if !ok {
				continue
			}
			fe.log.Debug("file changed", "file", name, "op", ev.Op.String())
			fe.report(out, errOut, fe.parseFile(name), true)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			fe.log.Warn("watch error", "error", err)
		}
	}
}
