package progress

import (
	"math"
	"sort"
	"sync"
	"time"
)

// Stage は走査の段階です。
type Stage string

const (
	StageList     Stage = "list"
	StageClassify Stage = "classify"
)

// Snapshot は進捗の瞬間値です。
type Snapshot struct {
	Stage     Stage         `json:"stage"`
	Total     int           `json:"total"`
	Done      int           `json:"done"`
	Remaining int           `json:"remaining"`
	Lines     int           `json:"lines"`
	RateEMA   float64       `json:"rate_per_sec"`
	RateP50   float64       `json:"rate_p50"`
	ETA       time.Duration `json:"eta"`
	Warmup    bool          `json:"warmup"`
	StartedAt time.Time     `json:"started_at"`
	Elapsed   time.Duration `json:"elapsed"`
}

// Config は推定器のパラメータです。ゼロ値の項目は既定値になります。
type Config struct {
	Alpha          float64
	WindowSize     int
	WarmupSamples  int
	NotifyInterval time.Duration
}

// DefaultConfig は既定のパラメータを返します。
func DefaultConfig() Config {
	return Config{
		Alpha:          0.2,
		WindowSize:     64,
		WarmupSamples:  16,
		NotifyInterval: 200 * time.Millisecond,
	}
}

const maxETASeconds = 99*3600 + 59*60 + 59

// Estimator tracks completed files and derives a rate and ETA. Safe for
// concurrent use.
type Estimator struct {
	mu         sync.Mutex
	cfg        Config
	now        func() time.Time
	start      time.Time
	lastUpdate time.Time
	lastNotify time.Time
	stage      Stage
	total      int
	done       int
	lines      int
	ema        float64
	samples    []float64
	next       int
}

// NewEstimator は total 件を処理する推定器を作ります。
func NewEstimator(total int, cfg Config) *Estimator {
	base := DefaultConfig()
	if cfg.Alpha > 0 && cfg.Alpha <= 1 {
		base.Alpha = cfg.Alpha
	}
	if cfg.WindowSize > 0 {
		base.WindowSize = cfg.WindowSize
	}
	if cfg.WarmupSamples > 0 {
		base.WarmupSamples = cfg.WarmupSamples
	}
	if cfg.NotifyInterval > 0 {
		base.NotifyInterval = cfg.NotifyInterval
	}
	if base.WarmupSamples > base.WindowSize {
		base.WarmupSamples = base.WindowSize
	}
	e := &Estimator{cfg: base, now: time.Now, stage: StageList, total: total}
	e.start = e.now()
	e.lastUpdate = e.start
	return e
}

// SetStage switches stage and resets the rate window.
func (e *Estimator) SetStage(stage Stage, total int) Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stage = stage
	e.total = total
	e.done = 0
	e.ema = 0
	e.samples = e.samples[:0]
	e.next = 0
	e.lastUpdate = e.now()
	e.lastNotify = e.lastUpdate
	return e.snapshotLocked(e.lastUpdate)
}

// Advance records delta finished files holding lines lines. notify is true when
// observers should be refreshed.
func (e *Estimator) Advance(delta, lines int) (snap Snapshot, notify bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	now := e.now()
	if delta > 0 {
		dt := now.Sub(e.lastUpdate).Seconds()
		if dt <= 0 {
			dt = 1e-6
		}
		instant := float64(delta) / dt
		if math.IsNaN(instant) || math.IsInf(instant, 0) {
			instant = 0
		}
		if e.ema == 0 {
			e.ema = instant
		} else {
			e.ema = e.cfg.Alpha*instant + (1-e.cfg.Alpha)*e.ema
		}
		e.addSample(instant)
		e.done += delta
		e.lastUpdate = now
	}
	e.lines += lines
	snap = e.snapshotLocked(now)
	notify = now.Sub(e.lastNotify) >= e.cfg.NotifyInterval || snap.Remaining == 0
	if notify {
		e.lastNotify = now
	}
	return snap, notify
}

// Snapshot returns the current state without advancing.
func (e *Estimator) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked(e.now())
}

func (e *Estimator) addSample(v float64) {
	if len(e.samples) < e.cfg.WindowSize {
		e.samples = append(e.samples, v)
		return
	}
	e.samples[e.next] = v
	e.next = (e.next + 1) % len(e.samples)
}

func (e *Estimator) median() float64 {
	if len(e.samples) == 0 {
		return 0
	}
	cp := append([]float64(nil), e.samples...)
	sort.Float64s(cp)
	mid := len(cp) / 2
	if len(cp)%2 == 1 {
		return cp[mid]
	}
	return (cp[mid-1] + cp[mid]) / 2
}

func (e *Estimator) snapshotLocked(now time.Time) Snapshot {
	remain := e.total - e.done
	if remain < 0 {
		remain = 0
	}
	p50 := e.median()
	if p50 <= 0 {
		p50 = e.ema
	}
	warm := len(e.samples) >= e.cfg.WarmupSamples
	var eta time.Duration
	if warm && remain > 0 && p50 > 0 {
		secs := math.Min(float64(remain)/p50, maxETASeconds)
		eta = time.Duration(secs * float64(time.Second))
	}
	return Snapshot{
		Stage:     e.stage,
		Total:     e.total,
		Done:      e.done,
		Remaining: remain,
		Lines:     e.lines,
		RateEMA:   e.ema,
		RateP50:   p50,
		ETA:       eta,
		Warmup:    !warm,
		StartedAt: e.start,
		Elapsed:   now.Sub(e.start),
	}
}
