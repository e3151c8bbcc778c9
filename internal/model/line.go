package model

// LineKind は 1 行の分類結果です。
type LineKind string

const (
	LineBlank   LineKind = "blank"
	LineComment LineKind = "comment"
	LineCode    LineKind = "code"
)

// LineRecord は物理行 1 行分の分類です。Index は 0 始まりで、先頭の空行も数えます。
type LineRecord struct {
	Index int      `json:"index" msgpack:"i"`
	Kind  LineKind `json:"kind" msgpack:"k"`
}

// HasCode は行にコードとなる文字が 1 つ以上あるかを返します。
func (r LineRecord) HasCode() bool { return r.Kind == LineCode }

// Counts は行種別ごとの件数です。
type Counts struct {
	Lines   int `json:"lines"`
	Code    int `json:"code"`
	Comment int `json:"comment"`
	Blank   int `json:"blank"`
}

// Add は 1 行分を加算します。
func (c *Counts) Add(kind LineKind) {
	c.Lines++
	switch kind {
	case LineCode:
		c.Code++
	case LineComment:
		c.Comment++
	default:
		c.Blank++
	}
}

// Merge は別の集計を加算します。
func (c *Counts) Merge(o Counts) {
	c.Lines += o.Lines
	c.Code += o.Code
	c.Comment += o.Comment
	c.Blank += o.Blank
}

// Ratio は全行に対するコード行の割合（0..1）です。
func (c Counts) Ratio() float64 {
	if c.Lines == 0 {
		return 0
	}
	return float64(c.Code) / float64(c.Lines)
}

// CountRecords は LineRecord 列を集計します。
func CountRecords(records []LineRecord) Counts {
	var c Counts
	for _, r := range records {
		c.Add(r.Kind)
	}
	return c
}
