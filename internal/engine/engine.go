package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/phyten/sigloc/internal/cache"
	"github.com/phyten/sigloc/internal/detect"
	"github.com/phyten/sigloc/internal/execx"
	"github.com/phyten/sigloc/internal/gitremote"
	"github.com/phyten/sigloc/internal/lang"
	"github.com/phyten/sigloc/internal/link"
	applog "github.com/phyten/sigloc/internal/log"
	"github.com/phyten/sigloc/internal/model"
	"github.com/phyten/sigloc/internal/progress"
	"github.com/phyten/sigloc/internal/scan"
)

// Engine は Options を保持し、ディレクトリ全体や個別ファイルを分類します。
// 複数 goroutine から同時に使えます。
type Engine struct {
	opts Options
	log  *slog.Logger
}

// New は未設定の依存（Registry, Detector, Runner, Logger）を既定値で埋めます。
func New(opts Options) (*Engine, error) {
	if opts.Jobs <= 0 {
		opts.Jobs = runtime.NumCPU()
	}
	if strings.TrimSpace(opts.RepoDir) == "" {
		opts.RepoDir = "."
	}
	policy, err := scan.ParsePolicy(string(opts.Policy))
	if err != nil {
		return nil, err
	}
	opts.Policy = policy
	if opts.Registry == nil {
		opts.Registry = lang.Default()
	}
	if opts.Detector == nil {
		opts.Detector = detect.Default()
	}
	if opts.Runner == nil {
		opts.Runner = execx.DefaultRunner()
	}
	if opts.Logger == nil {
		opts.Logger = applog.Discard()
	}
	if opts.Language != "" {
		l := lang.Parse(opts.Language)
		if !opts.Registry.Supports(l) {
			return nil, &lang.UnsupportedLanguageError{Name: opts.Language}
		}
		opts.Language = string(l)
	}
	if opts.PathRegexCompiled == nil && len(opts.PathRegex) > 0 {
		rx, err := compilePathRegex(opts.PathRegex)
		if err != nil {
			return nil, fmt.Errorf("invalid --path-regex: %w", err)
		}
		opts.PathRegexCompiled = rx
	}
	return &Engine{opts: opts, log: opts.Logger}, nil
}

// Options returns the effective options.
func (e *Engine) Options() Options { return e.opts }

// Run は指定されたオプションに従ってツリーを走査し、ファイルごとの行分類と集計を返します。
//
// 個々のファイルの失敗は Result.Errors に集約され、Run 自体はエラーになりません。
// ファイル一覧の取得失敗とコンテキストのキャンセルのみがエラーとして返ります。
func Run(ctx context.Context, opts Options) (*Result, error) {
	e, err := New(opts)
	if err != nil {
		return nil, err
	}
	return e.Run(ctx)
}

// fileOutcome は 1 ファイルの処理結果です。res と err のどちらかだけが意味を持ちます。
type fileOutcome struct {
	res     FileResult
	skipped bool
	err     *ItemError
}

// Run walks the tree once.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	o := e.opts

	files, err := e.listFiles(ctx)
	if err != nil {
		return nil, err
	}
	e.log.Debug("listed files", "repo", o.RepoDir, "count", len(files))

	obs := o.ProgressObserver
	if obs == nil && o.Progress {
		obs = progress.NewAutoObserver(os.Stderr)
	}
	var est *progress.Estimator
	if obs != nil {
		est = progress.NewEstimator(len(files), progress.DefaultConfig())
		obs.Publish(est.SetStage(progress.StageClassify, len(files)))
	}

	outcomes := make([]fileOutcome, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.Jobs)
	var pubMu sync.Mutex
	for i, rel := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i] = e.processOne(gctx, rel)
			if est != nil {
				snap, notify := est.Advance(1, outcomes[i].res.Lines)
				if notify {
					pubMu.Lock()
					obs.Publish(snap)
					pubMu.Unlock()
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if est != nil {
		obs.Done(est.Snapshot())
	}

	var linker func(FileResult) string
	if o.WithLinks {
		linker = e.blobLinker(ctx)
	}

	res := &Result{Policy: o.Policy, HasIndices: o.WithIndices, HasLinks: linker != nil, Files: []FileResult{}}
	byLang := make(map[string]*LangSummary)
	for _, out := range outcomes {
		switch {
		case out.err != nil:
			res.Errors = append(res.Errors, *out.err)
		case out.skipped:
			res.Skipped++
		default:
			if linker != nil {
				out.res.URL = linker(out.res)
			}
			res.Files = append(res.Files, out.res)
			res.Totals.Merge(out.res.Counts)
			s := byLang[out.res.Lang]
			if s == nil {
				s = &LangSummary{Lang: out.res.Lang}
				byLang[out.res.Lang] = s
			}
			s.Files++
			s.Counts.Merge(out.res.Counts)
		}
	}
	sort.SliceStable(res.Files, func(i, j int) bool { return res.Files[i].File < res.Files[j].File })
	res.Languages = make([]LangSummary, 0, len(byLang))
	for _, s := range byLang {
		res.Languages = append(res.Languages, *s)
	}
	sort.Slice(res.Languages, func(i, j int) bool {
		if res.Languages[i].Code == res.Languages[j].Code {
			return res.Languages[i].Lang < res.Languages[j].Lang
		}
		return res.Languages[i].Code > res.Languages[j].Code
	})
	sort.Slice(res.Errors, func(i, j int) bool {
		if res.Errors[i].File == res.Errors[j].File {
			return res.Errors[i].Stage < res.Errors[j].Stage
		}
		return res.Errors[i].File < res.Errors[j].File
	})
	res.FileCount = len(res.Files)
	res.ErrorCount = len(res.Errors)
	res.ElapsedMS = msSince(start)
	e.log.Info("scan finished", "files", res.FileCount, "skipped", res.Skipped, "errors", res.ErrorCount, applog.DurationKey, res.ElapsedMS)
	return res, nil
}

func (e *Engine) processOne(ctx context.Context, rel string) fileOutcome {
	res, err := e.ClassifyFile(ctx, rel)
	if err == nil {
		return fileOutcome{res: res}
	}
	if errors.Is(err, errSkipped) {
		return fileOutcome{skipped: true}
	}
	stage := "read"
	var se *sizeError
	if errors.As(err, &se) {
		stage = "size"
	}
	e.log.Debug("file failed", applog.FileKey, rel, "stage", stage, "err", err)
	ie := newItemError(rel, stage, err)
	return fileOutcome{err: &ie}
}

// ClassifyFile は repo 相対パスの 1 ファイルを分類します。
// 言語不明・言語フィルタ対象外・バイナリのファイルは errSkipped を返します。
func (e *Engine) ClassifyFile(ctx context.Context, rel string) (FileResult, error) {
	if err := ctx.Err(); err != nil {
		return FileResult{}, err
	}
	o := e.opts
	data, err := readSource(filepath.Join(o.RepoDir, filepath.FromSlash(rel)), o.MaxFileBytes)
	if err != nil {
		return FileResult{}, err
	}

	l := lang.Language(o.Language)
	if l == "" {
		l = o.Detector.Detect(rel, data)
	}
	if l == "" || !detect.MatchesLang(l, o.DetectLangs) {
		return FileResult{}, errSkipped
	}
	rule, err := o.Registry.RulesFor(l)
	if err != nil {
		// 検出表にはあるが Registry から外された言語
		return FileResult{}, errSkipped
	}

	records := e.classify(rule, l, data)
	fr := FileResult{File: rel, Lang: string(l), Counts: model.CountRecords(records)}
	indices := scan.Indices(records)
	if len(indices) > 0 {
		fr.firstLine = indices[0] + 1
	}
	if o.WithIndices {
		fr.Indices = indices
	}
	return fr, nil
}

// blobLinker はリモートと HEAD を一度だけ解決し、ファイルごとの URL を作る関数を返します。
// リモートが無い、コミットが無いといった場合はリンク無しで続けます。
func (e *Engine) blobLinker(ctx context.Context) func(FileResult) string {
	info, err := gitremote.Detect(ctx, e.opts.Runner, e.opts.RepoDir)
	if err != nil {
		e.log.Warn("links disabled", "reason", "remote", "err", err)
		return nil
	}
	ref, err := gitremote.Head(ctx, e.opts.Runner, e.opts.RepoDir)
	if err != nil {
		e.log.Warn("links disabled", "reason", "head", "err", err)
		return nil
	}
	e.log.Debug("linking files", "web", info.WebURL(), "ref", ref)
	return func(fr FileResult) string {
		return link.Blob(info, ref, fr.File, fr.firstLine)
	}
}

func (e *Engine) classify(rule *lang.Rule, l lang.Language, data []byte) []model.LineRecord {
	c := e.opts.Cache
	key := cache.NewKey(string(l), string(e.opts.Policy), rule.Fingerprint(), data)
	if records, ok, err := c.Get(key); err == nil && ok {
		return records
	} else if err != nil {
		e.log.Debug("cache get failed", applog.LangKey, l, "err", err)
	}
	records := scan.Classify(rule, string(data), e.opts.Policy)
	if err := c.Put(key, string(l), records); err != nil {
		e.log.Debug("cache put failed", applog.LangKey, l, "err", err)
	}
	return records
}

func newItemError(file, stage string, err error) ItemError {
	msg := strings.TrimSpace(err.Error())
	if msg == "" {
		msg = "unknown error"
	}
	return ItemError{File: file, Stage: stage, Message: msg}
}

// IsSkipped reports whether ClassifyFile declined the file (unknown language,
// filtered out, binary or vanished) rather than failing.
func IsSkipped(err error) bool { return errors.Is(err, errSkipped) }

func msSince(t time.Time) int64 { return time.Since(t).Milliseconds() }
