package library

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/fsnotify/fsnotify"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"podlocalsync/internal/models"
)

// Scan lists the regular files directly inside root whose extension is one of
// exts, sorted by name. Extensions are matched case-insensitively. Names that
// are not valid UTF-8 are skipped since feed.toml cannot store them.
func Scan(root string, exts []string) ([]string, error) {
	allowed := extensionSet(exts)

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() || !utf8.ValidString(entry.Name()) {
			continue
		}
		if _, ok := allowed[strings.ToLower(filepath.Ext(entry.Name()))]; ok {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Unused drops the candidates that already back an episode of feed.
func Unused(candidates []string, feed *models.Feed) []string {
	if feed == nil {
		return candidates
	}
	used := feed.UsedAudio()
	return lo.Filter(candidates, func(name string, _ int) bool {
		_, taken := used[name]
		return !taken
	})
}

// Library watches the workspace and keeps a sorted listing of the media files
// with an allowed extension.
type Library struct {
	root      string
	allowed   map[string]struct{}
	watcher   *fsnotify.Watcher
	logger    *logrus.Logger
	onRefresh func([]string)

	mu    sync.RWMutex
	files []string

	refreshMu    sync.Mutex
	refreshTimer *time.Timer
	refreshDelay time.Duration

	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
	closeErr  error
}

// NewLibrary scans root once and starts watching it. onRefresh, when non-nil,
// receives every new listing, including the initial one.
func NewLibrary(root string, allowed []string, debounce time.Duration, onRefresh func([]string), logger *logrus.Logger) (*Library, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = logrus.StandardLogger()
	}

	lib := &Library{
		root:         root,
		allowed:      extensionSet(allowed),
		watcher:      watcher,
		logger:       logger,
		onRefresh:    onRefresh,
		refreshDelay: debounce,
		done:         make(chan struct{}),
	}

	if err := watcher.Add(root); err != nil {
		watcher.Close()
		return nil, err
	}

	if err := lib.refresh(); err != nil {
		watcher.Close()
		return nil, err
	}

	lib.wg.Add(1)
	go lib.run()

	return lib, nil
}

// Close stops the watcher and cleans up resources.
func (l *Library) Close() error {
	l.closeOnce.Do(func() {
		close(l.done)

		l.refreshMu.Lock()
		if l.refreshTimer != nil {
			l.refreshTimer.Stop()
			l.refreshTimer = nil
		}
		l.refreshMu.Unlock()

		l.closeErr = l.watcher.Close()
		l.wg.Wait()
	})
	return l.closeErr
}

// Files returns a snapshot of the current listing.
func (l *Library) Files() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make([]string, len(l.files))
	copy(result, l.files)
	return result
}

func (l *Library) run() {
	defer l.wg.Done()

	for {
		select {
		case event, ok := <-l.watcher.Events:
			if !ok {
				return
			}
			l.handleEvent(event)
		case err, ok := <-l.watcher.Errors:
			if !ok {
				return
			}
			l.logger.Warnf("watcher error: %v", err)
		case <-l.done:
			return
		}
	}
}

func (l *Library) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	if l.isAllowed(event.Name) {
		l.scheduleRefresh()
	}
}

func (l *Library) refresh() error {
	files, err := Scan(l.root, lo.Keys(l.allowed))
	if err != nil {
		return err
	}

	l.mu.Lock()
	l.files = files
	l.mu.Unlock()

	l.logger.Debugf("workspace refreshed with %d media files", len(files))
	if l.onRefresh != nil {
		l.onRefresh(files)
	}
	return nil
}

func (l *Library) scheduleRefresh() {
	select {
	case <-l.done:
		return
	default:
	}

	l.refreshMu.Lock()
	defer l.refreshMu.Unlock()

	if l.refreshTimer != nil {
		l.refreshTimer.Stop()
	}

	var timer *time.Timer
	timer = time.AfterFunc(l.refreshDelay, func() {
		if err := l.refresh(); err != nil {
			l.logger.Warnf("refresh error: %v", err)
		}

		l.refreshMu.Lock()
		if l.refreshTimer == timer {
			l.refreshTimer = nil
		}
		l.refreshMu.Unlock()
	})

	l.refreshTimer = timer
}

func (l *Library) isAllowed(path string) bool {
	_, ok := l.allowed[strings.ToLower(filepath.Ext(path))]
	return ok
}

func extensionSet(exts []string) map[string]struct{} {
	set := make(map[string]struct{}, len(exts))
	for _, ext := range exts {
		set[strings.ToLower(ext)] = struct{}{}
	}
	return set
}
