package game

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/corvid-works/scrapyard/systems"
)

//go:embed barriers.yaml
var defaultLayoutYAML []byte

// barrierFile is the on-disk barrier layout format.
type barrierFile struct {
	Barriers []systems.Barrier `yaml:"barriers"`
}

// LoadBarriers reads a barrier layout from path, or the embedded default
// layout when path is empty. Malformed entries are skipped with a warning;
// one bad entry must not take down the rest of the layout.
func LoadBarriers(path string) ([]systems.Barrier, error) {
	data := defaultLayoutYAML
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading barrier layout: %w", err)
		}
		data = b
	}

	var file barrierFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing barrier layout: %w", err)
	}

	barriers := file.Barriers[:0]
	for _, b := range file.Barriers {
		if err := b.Validate(); err != nil {
			slog.Warn("ignoring invalid barrier", "error", err)
			continue
		}
		barriers = append(barriers, b)
	}
	return barriers, nil
}

// LayoutWatcher reloads the barrier layout when its file changes. Parsed
// layouts are delivered over Layouts; the tick loop consumes them, so the
// simulation itself stays single-threaded.
type LayoutWatcher struct {
	watcher *fsnotify.Watcher
	path    string

	Layouts chan []systems.Barrier

	closeCh chan struct{}
	once    sync.Once
}

// WatchBarriers starts watching the layout file's directory. Watching the
// directory instead of the file survives editors that replace on save.
func WatchBarriers(path string) (*LayoutWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		_ = w.Close()
		return nil, err
	}

	lw := &LayoutWatcher{
		watcher: w,
		path:    path,
		Layouts: make(chan []systems.Barrier, 1),
		closeCh: make(chan struct{}),
	}
	go lw.run()
	return lw, nil
}

// Close stops the watcher.
func (lw *LayoutWatcher) Close() error {
	var err error
	lw.once.Do(func() {
		close(lw.closeCh)
		err = lw.watcher.Close()
	})
	return err
}

func (lw *LayoutWatcher) run() {
	var last time.Time
	for {
		select {
		case event, ok := <-lw.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if filepath.Clean(event.Name) != filepath.Clean(lw.path) {
				continue
			}
			// Editors fire bursts of events per save.
			now := time.Now()
			if now.Sub(last) < 100*time.Millisecond {
				continue
			}
			last = now

			barriers, err := LoadBarriers(lw.path)
			if err != nil {
				slog.Warn("barrier reload failed, keeping previous layout", "error", err)
				continue
			}
			select {
			case lw.Layouts <- barriers:
			default:
				// Tick loop has not consumed the previous reload yet.
			}
		case err, ok := <-lw.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("barrier watcher error", "error", err)
		case <-lw.closeCh:
			return
		}
	}
}
