/*
DESCRIPTION
  vars.go reads engine variables from a file and watches the file so that
  changes are applied to a running engine.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package main

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"

	"github.com/ausocean/utils/logging"
)

// parseVars parses lines of the form Name=Value. Blank lines and lines
// starting with # are ignored.
func parseVars(r io.Reader) (map[string]string, error) {
	vars := make(map[string]string)
	sc := bufio.NewScanner(r)
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		k, v, ok := strings.Cut(line, "=")
		if !ok {
			return nil, errors.Errorf("line %d: missing '=': %q", n, line)
		}
		vars[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return vars, sc.Err()
}

func readVars(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	vars, err := parseVars(f)
	return vars, errors.Wrap(err, path)
}

// varsWatcher delivers the variables of a watched file on C.
type varsWatcher struct {
	C <-chan map[string]string

	w    *fsnotify.Watcher
	done chan struct{}
}

// Close stops the watch. C is closed once the watch goroutine has returned.
func (v *varsWatcher) Close() error {
	close(v.done)
	return v.w.Close()
}

// watchVars sends the variables in path on the returned watcher's channel
// whenever the file is written or replaced. The directory is watched since
// editors commonly replace files by rename.
func watchVars(path string, l logging.Logger) (*varsWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "could not create watcher")
	}
	err = w.Add(filepath.Dir(path))
	if err != nil {
		w.Close()
		return nil, errors.Wrap(err, "could not watch config directory")
	}

	c := make(chan map[string]string, 1)
	done := make(chan struct{})
	go forwardVars(path, w.Events, w.Errors, c, done, l)
	return &varsWatcher{C: c, w: w, done: done}, nil
}

// forwardVars reads path on each write or create event for it and sends the
// variables on c until done is closed or the event channels close. c is
// closed on return.
func forwardVars(path string, events <-chan fsnotify.Event, errs <-chan error, c chan<- map[string]string, done <-chan struct{}, l logging.Logger) {
	defer close(c)
	for {
		select {
		case <-done:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != filepath.Clean(path) || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
				continue
			}
			vars, err := readVars(path)
			if err != nil {
				l.Warning(pkg+"could not read changed config", "error", err)
				continue
			}
			l.Debug(pkg+"config changed", "path", path)
			select {
			case c <- vars:
			case <-done:
				return
			}
		case err, ok := <-errs:
			if !ok {
				return
			}
			l.Warning(pkg+"config watch error", "error", err)
		}
	}
}
