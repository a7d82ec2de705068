// watch.go: Change notification for INI files
//
// Writers replace files by rename, which swaps the inode, so the parent
// directory is watched and events are filtered by name. Bursts of events
// are debounced and each settled state is diffed against the previous
// snapshot.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package inistore

import (
	"context"
	"path/filepath"
	"time"

	"github.com/agilira/go-errors"
	"github.com/agilira/go-timecache"
	"github.com/fsnotify/fsnotify"
)

// ChangeKind classifies one entry-level difference.
type ChangeKind int

const (
	ChangeAdded ChangeKind = iota
	ChangeRemoved
	ChangeModified
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeAdded:
		return "added"
	case ChangeRemoved:
		return "removed"
	case ChangeModified:
		return "modified"
	default:
		return "unknown"
	}
}

// Change describes one entry that differs between two snapshots.
type Change struct {
	Kind     ChangeKind `json:"kind"`
	Section  string     `json:"section"`
	Key      string     `json:"key"`
	OldValue string     `json:"old_value,omitempty"`
	NewValue string     `json:"new_value,omitempty"`
}

// ChangeEvent is delivered to Watch callbacks.
type ChangeEvent struct {
	Path    string    `json:"path"`
	Time    time.Time `json:"time"`
	Changes []Change  `json:"changes"`
	// Deleted is set when the file no longer exists.
	Deleted bool `json:"deleted"`
}

// diffSnapshots lists entry changes from prev to next: removals and
// modifications in prev order, then additions in next order.
func diffSnapshots(prev, next *Snapshot) []Change {
	var changes []Change
	for _, sec := range prev.Sections {
		for _, e := range sec.Entries {
			v, ok := next.Lookup(sec.Name, e.Key)
			switch {
			case !ok:
				changes = append(changes, Change{Kind: ChangeRemoved, Section: sec.Name, Key: e.Key, OldValue: e.Value})
			case v != e.Value:
				changes = append(changes, Change{Kind: ChangeModified, Section: sec.Name, Key: e.Key, OldValue: e.Value, NewValue: v})
			}
		}
	}
	for _, sec := range next.Sections {
		for _, e := range sec.Entries {
			if _, ok := prev.Lookup(sec.Name, e.Key); !ok {
				changes = append(changes, Change{Kind: ChangeAdded, Section: sec.Name, Key: e.Key, NewValue: e.Value})
			}
		}
	}
	return changes
}

// currentSnapshot reads path for Watch. A missing file is an empty
// snapshot with exists=false.
func (s *Store) currentSnapshot(path string) (*Snapshot, bool, error) {
	doc, exists, err := s.load(path, true)
	if err != nil {
		return nil, false, err
	}
	return snapshotOf(path, doc), exists, nil
}

// Watch calls fn every time the entries of path change, until ctx is
// cancelled. Edits that leave every entry the same (comments, spacing) do
// not produce events. The file need not exist when Watch starts, but its
// directory must.
func (s *Store) Watch(ctx context.Context, path string, fn func(ChangeEvent)) error {
	if err := s.checkPath(path); err != nil {
		return err
	}

	target, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrap(err, ErrCodeInvalidPath, "failed to resolve path").
			WithContext("path", path)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, ErrCodeWatchError, "failed to create file watcher")
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return errors.Wrap(err, ErrCodeWatchError, "failed to watch directory").
			WithContext("path", path)
	}

	prev, _, err := s.currentSnapshot(path)
	if err != nil {
		return err
	}

	var (
		debounce *time.Timer
		settled  <-chan time.Time
	)
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if debounce == nil {
				debounce = time.NewTimer(s.config.WatchDebounce)
			} else {
				debounce.Reset(s.config.WatchDebounce)
			}
			settled = debounce.C

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return errors.Wrap(err, ErrCodeWatchError, "file watcher failed").
				WithContext("path", path)

		case <-settled:
			settled = nil
			next, exists, err := s.currentSnapshot(path)
			if err != nil {
				// The file may be mid-replacement by a foreign writer; the
				// next event retries.
				continue
			}
			changes := diffSnapshots(prev, next)
			prev = next
			if len(changes) == 0 && exists {
				continue
			}
			s.audit.LogFileWatch(EventFileChanged, path)
			fn(ChangeEvent{
				Path:    path,
				Time:    timecache.CachedTime(),
				Changes: changes,
				Deleted: !exists,
			})
		}
	}
}
