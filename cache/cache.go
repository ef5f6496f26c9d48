// Package cache implements the parse cache of spec §4.3 (C3): an
// in-memory name → parsed-file map built by concurrently scanning a set
// of search paths, kept fresh by modification-time checks on lookup and
// by an optional live filesystem watch.
//
// Grounded on the teacher's own use of golang.org/x/sync/errgroup for
// bounded concurrent work (interp/interp.go's Runner.Run pattern of
// fanning out independent units of work and joining on the first error),
// generalized here from "one goroutine per subshell" to "one goroutine
// per search path".
package cache

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"

	"github.com/grindhollow/cheatscript/fileutil"
	"github.com/grindhollow/cheatscript/syntax"
)

// Entry is one cached parsed script file together with the path it was
// loaded from, mirroring the original's ScriptFile (filename + line
// table).
type Entry struct {
	Path string
	File *syntax.File
}

// AliasWarner is re-exported so callers don't need to import syntax just
// to build a Cache.
type AliasWarner = syntax.AliasWarner

// Cache is the concurrency-safe name → Entry map described in spec §4.3.
// The zero value is not usable; construct with New.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*Entry

	searchPaths []string
	probe       *fileutil.MTimeProbe
	probeMu     sync.Mutex
	warn        AliasWarner

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// New builds a Cache over the given search paths. On a name collision
// between paths, whichever scan stores the name last wins; ReloadCache
// scans the paths concurrently, so which one that is is not defined.
// warn receives deprecated-alias notices raised while parsing cached
// files.
func New(searchPaths []string, warn AliasWarner) *Cache {
	return &Cache{
		entries:     make(map[string]*Entry),
		searchPaths: searchPaths,
		probe:       fileutil.NewMTimeProbe(),
		warn:        warn,
	}
}

// ReloadCache clears the cache and rescans every search path concurrently,
// joining all scans before returning. A file that fails to parse is
// skipped without an error. Any other failure (an unreadable file, a
// cancelled ctx) ends that scan, cancels the other scans through the
// errgroup's context, and is the error returned. This keeps the original's
// "fire every path, wait for all" shape (ScriptInterpreter::ReloadCache/
// WaitForCacheLoaded collapsed into one synchronous call).
func (c *Cache) ReloadCache(ctx context.Context) error {
	c.mu.Lock()
	c.entries = make(map[string]*Entry)
	c.mu.Unlock()

	g, ctx := errgroup.WithContext(ctx)
	for _, path := range c.searchPaths {
		path := path
		g.Go(func() error {
			return fileutil.Walk(path, func(file string) error {
				select {
				case <-ctx.Done():
					return ctx.Err()
				default:
				}
				return c.addToCache(file)
			})
		})
	}
	return g.Wait()
}

// Add parses path and stores it under its stripped name, the exported
// single-file counterpart to ReloadCache's bulk directory scan — used
// when a caller writes a new ".cheat" file itself (e.g. "/savelast") and
// wants it to be invocable by name immediately, without waiting for the
// next full rescan or a Watch event to notice it.
func (c *Cache) Add(path string) error {
	return c.addToCache(path)
}

// addToCache parses one file and stores it, deleting it instead if it is
// the reserved "last.cheat" name (spec §4.3's "folded into the scanned
// search paths, then deleted on sight").
func (c *Cache) addToCache(path string) error {
	if fileutil.IsLastScript(path) {
		return os.Remove(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("cache: reading %s: %w", path, err)
	}

	p := syntax.NewParser(c.warn)
	file, err := p.Parse(decode(data), path)
	if err != nil {
		// A malformed script is skipped, not fatal to the whole scan,
		// matching ParseFile's "if (ParseFile(...)) cache[...] = ..."
		// guard in the original.
		return nil
	}

	c.probeMu.Lock()
	c.probe.Probe(path, statMTime)
	c.probeMu.Unlock()

	name := fileutil.StripName(path)
	c.mu.Lock()
	c.entries[name] = &Entry{Path: path, File: file}
	c.mu.Unlock()
	return nil
}

// decode strips a UTF-8 BOM if present; script files are plain text.
func decode(data []byte) string {
	s := string(data)
	return strings.TrimPrefix(s, "﻿")
}

func statMTime(path string) (time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}

// GetCachedScript returns the cached entry for name, reparsing it first if
// its mtime has advanced since it was cached, and evicting it if the file
// has gone missing (spec §4.3).
func (c *Cache) GetCachedScript(name string) (*Entry, bool) {
	c.mu.RLock()
	entry, ok := c.entries[name]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	c.probeMu.Lock()
	result := c.probe.Probe(entry.Path, statMTime)
	c.probeMu.Unlock()

	switch result {
	case fileutil.Missing:
		c.mu.Lock()
		delete(c.entries, name)
		c.mu.Unlock()
		return nil, false
	case fileutil.Changed:
		if err := c.addToCache(entry.Path); err != nil {
			return entry, true
		}
		c.mu.RLock()
		defer c.mu.RUnlock()
		return c.entries[name], true
	default:
		return entry, true
	}
}

// Watch starts an fsnotify watch over every search path until ctx is done
// or Close is called. A ".cheat" file that is written or created is
// re-added to the cache on its own; one that is removed or renamed has its
// entry deleted and its mtime record forgotten. This is additive to
// GetCachedScript's own lazy mtime check: Watch exists so long-lived hosts
// pick up new or deleted files without anyone calling GetCachedScript for
// a name that didn't exist yet.
func (c *Cache) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("cache: starting watcher: %w", err)
	}
	for _, path := range c.searchPaths {
		if err := w.Add(path); err != nil {
			continue
		}
	}
	c.watcher = w
	c.done = make(chan struct{})

	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case <-c.done:
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if !fileutil.IsScriptFile(ev.Name) {
					continue
				}
				switch {
				case ev.Has(fsnotify.Write), ev.Has(fsnotify.Create):
					_ = c.addToCache(ev.Name)
				case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
					name := fileutil.StripName(ev.Name)
					c.mu.Lock()
					delete(c.entries, name)
					c.mu.Unlock()
					c.probeMu.Lock()
					c.probe.Forget(ev.Name)
					c.probeMu.Unlock()
				}
			case <-w.Errors:
				continue
			}
		}
	}()
	return nil
}

// Close stops a running Watch. It is a no-op if Watch was never called.
func (c *Cache) Close() {
	if c.done != nil {
		close(c.done)
		c.done = nil
	}
}
