// Package reload watches the configuration file and the shader directory and
// reports changes over a channel, so they can be applied on the render thread.
package reload

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

type Kind int

const (
	ConfigChanged Kind = iota
	ShadersChanged
)

func (k Kind) String() string {
	switch k {
	case ConfigChanged:
		return "config"
	case ShadersChanged:
		return "shaders"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

type Change struct {
	Kind Kind
	Path string
}

// ShaderExts are the file extensions treated as shader sources.
var ShaderExts = []string{".comp", ".glsl"}

type Watcher struct {
	watcher    *fsnotify.Watcher
	configPath string
	shaderDir  string
	debounce   time.Duration
	log        *zap.Logger

	changes chan Change

	mu      sync.Mutex
	pending map[Kind]pendingChange

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

type pendingChange struct {
	path string
	at   time.Time
}

// NewWatcher watches configPath and every shader in shaderDir. Either may be
// empty to skip it. Editors save files by rename, so the parent directory of
// the config file is watched rather than the file itself.
func NewWatcher(configPath, shaderDir string, debounce time.Duration, log *zap.Logger) (*Watcher, error) {
	if log == nil {
		log = zap.NewNop()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		watcher:  fw,
		debounce: debounce,
		log:      log,
		changes:  make(chan Change, 8),
		pending:  make(map[Kind]pendingChange),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}

	if configPath != "" {
		w.configPath = filepath.Clean(configPath)
		if err := fw.Add(filepath.Dir(w.configPath)); err != nil {
			fw.Close()
			return nil, fmt.Errorf("watch %s: %w", configPath, err)
		}
	}
	if shaderDir != "" {
		w.shaderDir = filepath.Clean(shaderDir)
		if err := fw.Add(w.shaderDir); err != nil {
			fw.Close()
			return nil, fmt.Errorf("watch %s: %w", shaderDir, err)
		}
	}
	return w, nil
}

// Changes delivers debounced changes. It is closed after Stop.
func (w *Watcher) Changes() <-chan Change {
	return w.changes
}

func (w *Watcher) Start(ctx context.Context) {
	go w.run(ctx)
}

// Stop ends the watch loop and waits for it.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		<-w.doneCh
		if err := w.watcher.Close(); err != nil {
			w.log.Error("close watcher", zap.Error(err))
		}
	})
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)
	defer close(w.changes)

	tick := w.debounce / 2
	if tick <= 0 {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if kind, ok := w.classify(event); ok {
				w.log.Debug("file changed", zap.Stringer("kind", kind), zap.String("path", event.Name))
				w.mu.Lock()
				w.pending[kind] = pendingChange{path: event.Name, at: time.Now()}
				w.mu.Unlock()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", zap.Error(err))
		case now := <-ticker.C:
			for _, c := range w.due(now) {
				select {
				case w.changes <- c:
				case <-ctx.Done():
					return
				case <-w.stopCh:
					return
				}
			}
		}
	}
}

// due removes and returns the changes that have been quiet for the debounce
// interval.
func (w *Watcher) due(now time.Time) []Change {
	w.mu.Lock()
	defer w.mu.Unlock()

	var out []Change
	for _, kind := range []Kind{ConfigChanged, ShadersChanged} {
		p, ok := w.pending[kind]
		if !ok || now.Sub(p.at) < w.debounce {
			continue
		}
		delete(w.pending, kind)
		out = append(out, Change{Kind: kind, Path: p.path})
	}
	return out
}

func (w *Watcher) classify(event fsnotify.Event) (Kind, bool) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return 0, false
	}
	name := filepath.Clean(event.Name)
	if w.configPath != "" && name == w.configPath {
		return ConfigChanged, true
	}
	if w.shaderDir != "" && filepath.Dir(name) == w.shaderDir {
		ext := strings.ToLower(filepath.Ext(name))
		for _, e := range ShaderExts {
			if ext == e {
				return ShadersChanged, true
			}
		}
	}
	return 0, false
}
