package progress

import (
	"fmt"
	"io"
	"math"
	"os"
	"sync"
	"time"

	"golang.org/x/term"
)

// Observer は進捗スナップショットを受け取ります。
type Observer interface {
	Publish(Snapshot)
	Done(Snapshot)
}

// NoopObserver は何もしません。
type NoopObserver struct{}

func (NoopObserver) Publish(Snapshot) {}
func (NoopObserver) Done(Snapshot)    {}

// ObserverFunc adapts a function; Done is ignored.
type ObserverFunc func(Snapshot)

func (f ObserverFunc) Publish(s Snapshot) { f(s) }
func (ObserverFunc) Done(Snapshot)        {}

type multiObserver []Observer

// NewMultiObserver fans out to every non-nil observer.
func NewMultiObserver(obs ...Observer) Observer {
	out := make(multiObserver, 0, len(obs))
	for _, ob := range obs {
		if ob != nil {
			out = append(out, ob)
		}
	}
	if len(out) == 0 {
		return NoopObserver{}
	}
	return out
}

func (m multiObserver) Publish(s Snapshot) {
	for _, ob := range m {
		ob.Publish(s)
	}
}

func (m multiObserver) Done(s Snapshot) {
	for _, ob := range m {
		ob.Done(s)
	}
}

// ShouldShowProgress は --progress / --no-progress と端末判定から表示可否を決めます。
func ShouldShowProgress(force, no bool) bool {
	if no {
		return false
	}
	if force {
		return true
	}
	return isTTY(os.Stdout) && isTTY(os.Stderr)
}

type ttyObserver struct {
	mu sync.Mutex
	w  io.Writer
}

type lineObserver struct {
	mu sync.Mutex
	w  io.Writer
}

// NewTTYObserver は同じ行を書き換えて表示します。
func NewTTYObserver(w io.Writer) Observer {
	if w == nil {
		w = os.Stderr
	}
	return &ttyObserver{w: w}
}

// NewLineObserver は 1 スナップショットにつき 1 行の key=value を出力します。
func NewLineObserver(w io.Writer) Observer {
	if w == nil {
		w = os.Stderr
	}
	return &lineObserver{w: w}
}

// NewAutoObserver は端末なら TTY 表示、それ以外は行表示を選びます。
func NewAutoObserver(w io.Writer) Observer {
	if w == nil {
		w = os.Stderr
	}
	if f, ok := w.(*os.File); ok && isTTY(f) {
		return NewTTYObserver(w)
	}
	return NewLineObserver(w)
}

func (o *ttyObserver) Publish(s Snapshot) {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, _ = fmt.Fprintf(o.w, "\r\033[K%s", renderTTY(s))
}

func (o *ttyObserver) Done(Snapshot) {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, _ = fmt.Fprint(o.w, "\r\033[K")
}

func (o *lineObserver) Publish(s Snapshot) {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, _ = fmt.Fprintln(o.w, renderLine(s))
}

func (o *lineObserver) Done(s Snapshot) {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, _ = fmt.Fprintln(o.w, renderLine(s))
}

func renderTTY(s Snapshot) string {
	rate := "--/s"
	eta := "--:--:--"
	if !s.Warmup {
		if s.RateEMA > 0 {
			rate = fmt.Sprintf("%.1f/s", s.RateEMA)
		}
		if s.ETA > 0 {
			eta = formatETA(s.ETA)
		}
	}
	return fmt.Sprintf("[%s] %3d%% %d/%d files %d lines %s ETA %s", s.Stage, percent(s.Done, s.Total), s.Done, s.Total, s.Lines, rate, eta)
}

func renderLine(s Snapshot) string {
	eta := -1.0
	if s.ETA > 0 {
		eta = s.ETA.Seconds()
	}
	return fmt.Sprintf("progress stage=%s total=%d done=%d lines=%d rate=%.3f eta=%g warmup=%t elapsed_ms=%d",
		s.Stage, s.Total, s.Done, s.Lines, s.RateEMA, eta, s.Warmup, s.Elapsed.Milliseconds())
}

func formatETA(d time.Duration) string {
	total := int(math.Round(d.Seconds()))
	if total < 0 {
		total = 0
	}
	h := total / 3600
	if h > 99 {
		h = 99
	}
	return fmt.Sprintf("%02d:%02d:%02d", h, (total%3600)/60, total%60)
}

func percent(a, b int) int {
	if b <= 0 {
		if a <= 0 {
			return 0
		}
		return 100
	}
	p := a * 100 / b
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}

func isTTY(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd()))
}
