package engine

import (
	"log/slog"
	"regexp"

	"github.com/phyten/sigloc/internal/cache"
	"github.com/phyten/sigloc/internal/detect"
	"github.com/phyten/sigloc/internal/execx"
	"github.com/phyten/sigloc/internal/lang"
	"github.com/phyten/sigloc/internal/model"
	"github.com/phyten/sigloc/internal/progress"
	"github.com/phyten/sigloc/internal/scan"
)

// FileResult は 1 ファイル分の分類結果です。
type FileResult struct {
	File string `json:"file"`
	Lang string `json:"lang"`
	model.Counts
	Indices []int `json:"indices,omitempty"`
	// URL はホスティング先での閲覧リンク（WithLinks 指定時のみ）
	URL string `json:"url,omitempty"`

	// 最初の意味のある行（1 始まり、無ければ 0）
	firstLine int
}

// LangSummary は言語ごとの合計です。
type LangSummary struct {
	Lang  string `json:"lang"`
	Files int    `json:"files"`
	model.Counts
}

// ItemError は 1 ファイルの処理に失敗した際の情報を表す
type ItemError struct {
	File    string `json:"file"`
	Stage   string `json:"stage"`
	Message string `json:"message"`
}

// Options は実行オプション
type Options struct {
	RepoDir           string
	Paths             []string
	Excludes          []string
	PathRegex         []string
	PathRegexCompiled []*regexp.Regexp
	ExcludeTypical    bool
	DetectLangs       []string
	// Language が空でなければ検出を行わず、全ファイルをこの言語として扱う
	Language     string
	Policy       scan.Policy
	Jobs         int
	MaxFileBytes int
	NoGit        bool
	WithIndices  bool
	// WithLinks はリモートと HEAD から各ファイルの URL を作ります
	WithLinks bool
	Progress  bool

	ProgressObserver progress.Observer `json:"-"`
	Registry         *lang.Registry    `json:"-"`
	Detector         *detect.Detector  `json:"-"`
	Cache            *cache.Cache      `json:"-"`
	Runner           execx.Runner      `json:"-"`
	Logger           *slog.Logger      `json:"-"`
}

// Result は出力
type Result struct {
	Files      []FileResult  `json:"files"`
	Languages  []LangSummary `json:"languages"`
	Totals     model.Counts  `json:"totals"`
	FileCount  int           `json:"file_count"`
	Skipped    int           `json:"skipped"`
	Policy     scan.Policy   `json:"policy"`
	HasIndices bool          `json:"has_indices"`
	HasLinks   bool          `json:"has_links"`
	ElapsedMS  int64         `json:"elapsed_ms"`
	Errors     []ItemError   `json:"errors,omitempty"`
	ErrorCount int           `json:"error_count"`
}
