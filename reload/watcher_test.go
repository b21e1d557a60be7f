package reload

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	w := &Watcher{
		configPath: filepath.Clean("/etc/clouds/clouds.yaml"),
		shaderDir:  filepath.Clean("/srv/shader"),
	}

	tests := []struct {
		name  string
		event fsnotify.Event
		kind  Kind
		ok    bool
	}{
		{"config write", fsnotify.Event{Name: "/etc/clouds/clouds.yaml", Op: fsnotify.Write}, ConfigChanged, true},
		{"config create", fsnotify.Event{Name: "/etc/clouds/clouds.yaml", Op: fsnotify.Create}, ConfigChanged, true},
		{"config chmod", fsnotify.Event{Name: "/etc/clouds/clouds.yaml", Op: fsnotify.Chmod}, 0, false},
		{"sibling of config", fsnotify.Event{Name: "/etc/clouds/other.yaml", Op: fsnotify.Write}, 0, false},
		{"shader write", fsnotify.Event{Name: "/srv/shader/RayMarch.comp", Op: fsnotify.Write}, ShadersChanged, true},
		{"shader rename", fsnotify.Event{Name: "/srv/shader/common.GLSL", Op: fsnotify.Rename}, ShadersChanged, true},
		{"editor swap file", fsnotify.Event{Name: "/srv/shader/.RayMarch.comp.swp", Op: fsnotify.Write}, 0, false},
		{"shader remove", fsnotify.Event{Name: "/srv/shader/worley.comp", Op: fsnotify.Remove}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, ok := w.classify(tt.event)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.kind, kind)
			}
		})
	}
}

func TestDueDebounces(t *testing.T) {
	w := &Watcher{debounce: 100 * time.Millisecond, pending: make(map[Kind]pendingChange)}
	start := time.Now()
	w.pending[ShadersChanged] = pendingChange{path: "a.comp", at: start}
	w.pending[ConfigChanged] = pendingChange{path: "c.yaml", at: start.Add(80 * time.Millisecond)}

	assert.Empty(t, w.due(start.Add(50*time.Millisecond)))
	assert.Equal(t, []Change{{Kind: ShadersChanged, Path: "a.comp"}}, w.due(start.Add(120*time.Millisecond)))
	assert.Equal(t, []Change{{Kind: ConfigChanged, Path: "c.yaml"}}, w.due(start.Add(200*time.Millisecond)))
	assert.Empty(t, w.due(start.Add(time.Second)))
}

func TestWatcherReportsChanges(t *testing.T) {
	dir := t.TempDir()
	shaderDir := filepath.Join(dir, "shader")
	require.NoError(t, os.Mkdir(shaderDir, 0o755))
	configPath := filepath.Join(dir, "clouds.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("{}\n"), 0o644))

	w, err := NewWatcher(configPath, shaderDir, 20*time.Millisecond, nil)
	require.NoError(t, err)
	w.Start(context.Background())
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(shaderDir, "worley.comp"), []byte("void main() {}"), 0o644))
	select {
	case c := <-w.Changes():
		assert.Equal(t, ShadersChanged, c.Kind)
		assert.Equal(t, "worley.comp", filepath.Base(c.Path))
	case <-time.After(5 * time.Second):
		t.Fatal("no shader change reported")
	}

	require.NoError(t, os.WriteFile(configPath, []byte("cloud: {}\n"), 0o644))
	select {
	case c := <-w.Changes():
		assert.Equal(t, ConfigChanged, c.Kind)
	case <-time.After(5 * time.Second):
		t.Fatal("no config change reported")
	}
}

func TestStopClosesChanges(t *testing.T) {
	w, err := NewWatcher("", t.TempDir(), 10*time.Millisecond, nil)
	require.NoError(t, err)
	w.Start(context.Background())
	w.Stop()
	w.Stop()

	_, ok := <-w.Changes()
	assert.False(t, ok)
}

func TestNewWatcherMissingDir(t *testing.T) {
	_, err := NewWatcher("", filepath.Join(t.TempDir(), "nope"), time.Millisecond, nil)
	assert.Error(t, err)
}
