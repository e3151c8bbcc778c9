// Package watch はディレクトリを監視し、変更されたファイルを再分類して 1 行 1 JSON で書き出します。
package watch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/phyten/sigloc/internal/engine"
	applog "github.com/phyten/sigloc/internal/log"
	"github.com/phyten/sigloc/internal/model"
)

// DefaultDebounce is the quiet period before a changed file is re-classified.
const DefaultDebounce = 100 * time.Millisecond

const (
	OpClassified = "classified"
	OpRemoved    = "removed"
	OpError      = "error"
)

// Event は ndjson の 1 行です。
type Event struct {
	Op      string        `json:"op"`
	File    string        `json:"file"`
	Lang    string        `json:"lang,omitempty"`
	Counts  *model.Counts `json:"counts,omitempty"`
	Indices []int         `json:"indices,omitempty"`
	Error   string        `json:"error,omitempty"`
	Time    time.Time     `json:"time"`
}

type Options struct {
	Debounce time.Duration
	Logger   *slog.Logger
	// Now は Event.Time に使います。nil なら time.Now。
	Now func() time.Time
}

// Watcher は Engine.RepoDir 配下を再帰的に監視します。
type Watcher struct {
	eng      *engine.Engine
	root     string
	fsw      *fsnotify.Watcher
	log      *slog.Logger
	now      func() time.Time
	debounce time.Duration

	outMu sync.Mutex
	enc   *json.Encoder
	ctx   context.Context
}

func New(eng *engine.Engine, out io.Writer, opts Options) (*Watcher, error) {
	root, err := filepath.Abs(eng.Options().RepoDir)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	w := &Watcher{
		eng:      eng,
		root:     root,
		fsw:      fsw,
		log:      opts.Logger,
		now:      opts.Now,
		debounce: opts.Debounce,
		enc:      json.NewEncoder(out),
	}
	if w.log == nil {
		w.log = applog.Discard()
	}
	if w.now == nil {
		w.now = time.Now
	}
	if w.debounce <= 0 {
		w.debounce = DefaultDebounce
	}
	w.enc.SetEscapeHTML(false)
	if err := w.addTree(root); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// addTree は dir とその配下のディレクトリを監視対象にします（隠しディレクトリは除く）。
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			// 走査中に消えたディレクトリは無視
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != w.root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(p); err != nil {
			return fmt.Errorf("failed to watch %s: %w", p, err)
		}
		return nil
	})
}

// Run は ctx がキャンセルされるまでイベントを処理します。終了時は保留中の変更を分類してから戻ります。
func (w *Watcher) Run(ctx context.Context) error {
	w.ctx = ctx
	deb := newDebouncer(w.debounce, w.classify)
	defer w.fsw.Close()
	defer deb.stop()

	w.log.Info("watching", "root", w.root, "debounce", w.debounce)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(ev, deb)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", "err", err)
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event, deb *debouncer) {
	rel, ok := w.relative(ev.Name)
	if !ok {
		return
	}
	switch {
	case ev.Has(fsnotify.Create):
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := w.addTree(ev.Name); err != nil {
				w.log.Warn("failed to watch new directory", "dir", ev.Name, "err", err)
			}
			return
		}
		if w.eng.Matches(rel) {
			deb.add(rel)
		}
	case ev.Has(fsnotify.Write):
		if w.eng.Matches(rel) {
			deb.add(rel)
		}
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		deb.cancel(rel)
		if w.eng.Matches(rel) {
			w.emit(Event{Op: OpRemoved, File: rel})
		}
	default:
		w.log.Debug("ignoring event", "op", ev.Op.String(), applog.FileKey, rel)
	}
}

func (w *Watcher) relative(name string) (string, bool) {
	rel, err := filepath.Rel(w.root, name)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// classify は debounce 後に呼ばれます。言語不明やバイナリのファイルは黙って捨てます。
func (w *Watcher) classify(rel string) {
	ctx := w.ctx
	if ctx == nil || ctx.Err() != nil {
		ctx = context.Background()
	}
	fr, err := w.eng.ClassifyFile(ctx, rel)
	switch {
	case err == nil:
		counts := fr.Counts
		w.emit(Event{Op: OpClassified, File: rel, Lang: fr.Lang, Counts: &counts, Indices: fr.Indices})
	case engine.IsSkipped(err):
		w.log.Debug("skipped", applog.FileKey, rel)
	default:
		w.emit(Event{Op: OpError, File: rel, Error: err.Error()})
	}
}

func (w *Watcher) emit(ev Event) {
	ev.Time = w.now()
	w.outMu.Lock()
	defer w.outMu.Unlock()
	if err := w.enc.Encode(ev); err != nil {
		w.log.Warn("failed to write event", applog.FileKey, ev.File, "err", err)
	}
}
