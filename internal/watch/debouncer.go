package watch

import (
	"sync"
	"time"
)

// debouncer はパスごとにタイマーを持ち、window の間に新しい変更が来なければ
// onFlush を呼びます。エディタの連続保存で同じファイルを何度も分類しないためのものです。
type debouncer struct {
	mu      sync.Mutex
	window  time.Duration
	timers  map[string]*time.Timer
	onFlush func(path string)
	stopped bool
}

func newDebouncer(window time.Duration, onFlush func(path string)) *debouncer {
	return &debouncer{
		window:  window,
		timers:  make(map[string]*time.Timer),
		onFlush: onFlush,
	}
}

// add は path のタイマーを張り直します。
func (d *debouncer) add(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if t, ok := d.timers[path]; ok {
		t.Stop()
	}
	d.timers[path] = time.AfterFunc(d.window, func() { d.flush(path) })
}

// cancel drops a pending path without flushing it.
func (d *debouncer) cancel(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t, ok := d.timers[path]; ok {
		t.Stop()
		delete(d.timers, path)
	}
}

func (d *debouncer) flush(path string) {
	d.mu.Lock()
	if _, ok := d.timers[path]; !ok {
		d.mu.Unlock()
		return
	}
	delete(d.timers, path)
	d.mu.Unlock()

	// ロックの外で呼ぶ
	d.onFlush(path)
}

// stop は保留中のタイマーをすべて止め、待っていたパスを即座に flush します。
func (d *debouncer) stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	pending := make([]string, 0, len(d.timers))
	for path, t := range d.timers {
		// 発火済みでも flush はマップに無いパスを無視するので、ここで必ず拾う
		t.Stop()
		pending = append(pending, path)
		delete(d.timers, path)
	}
	d.mu.Unlock()

	for _, path := range pending {
		d.onFlush(path)
	}
}

func (d *debouncer) pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.timers)
}
