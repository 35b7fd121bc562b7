package fixtures

import (
	"fmt"

	"github.com/flanksource/clicky"
	"github.com/flanksource/clicky/api"
	"github.com/samber/lo"
)

// Marker is the delimiter that opens and closes a cached response body.
const Marker = `"""`

// Block is one embedded fixture: a quoted URL line followed by a
// triple-quoted cached response body. The raw lines keep their original
// endings so an untouched document renders byte-identical.
type Block struct {
	URL  string `json:"url" pretty:"label=URL,style=text-blue-600"`
	Line int    `json:"line" pretty:"label=Line,style=text-gray-500"`

	URLLine string `json:"-" pretty:"-"`
	Open    string `json:"-" pretty:"-"`
	Data    string `json:"-" pretty:"-"`
	Close   string `json:"-" pretty:"-"`
}

func (b Block) Pretty() api.Text {
	return clicky.Text(b.URL).Append(fmt.Sprintf(" (line %d)", b.Line), "text-gray-500")
}

// Segment is either a verbatim line or a fixture block.
type Segment struct {
	Literal string
	Block   *Block
}

// Document is a fully scanned fixture file: an ordered list of segments
// that renders back to the original bytes until a block's Data is replaced.
type Document struct {
	Path     string
	Segments []Segment
}

// Blocks returns the fixture blocks in file order.
func (d *Document) Blocks() []*Block {
	return lo.FilterMap(d.Segments, func(s Segment, _ int) (*Block, bool) {
		return s.Block, s.Block != nil
	})
}

// Bytes renders the document, blocks carrying whatever Data they hold now.
func (d *Document) Bytes() []byte {
	var out []byte
	for _, seg := range d.Segments {
		if seg.Block != nil {
			out = append(out, seg.Block.URLLine...)
			out = append(out, seg.Block.Open...)
			out = append(out, seg.Block.Data...)
			out = append(out, seg.Block.Close...)
			continue
		}
		out = append(out, seg.Literal...)
	}
	return out
}

// Block refresh statuses
const (
	StatusRefreshed = "refreshed" // fetched a body that differs from the cached one
	StatusUnchanged = "unchanged" // fetched a body identical to the cached one
	StatusPreserved = "preserved" // endpoint returned 404, old data kept
)

// BlockResult records what happened to a single fixture block
type BlockResult struct {
	URL    string `json:"url" pretty:"label=URL,style=text-cyan-600"`
	Line   int    `json:"line" pretty:"label=Line,style=text-gray-500"`
	Status string `json:"status" pretty:"label=Status,color:refreshed=green:preserved=yellow:unchanged=gray"`
}

func (r BlockResult) Pretty() api.Text {
	style := "text-gray-500"
	if r.Status == StatusRefreshed {
		style = "text-green-600"
	} else if r.Status == StatusPreserved {
		style = "text-yellow-600"
	}
	return clicky.Text(r.URL).Append(" "+r.Status, style)
}

// FileResult is the per-file outcome of a refresh pass
type FileResult struct {
	Path    string        `json:"path" pretty:"label=File,style=text-blue-600"`
	Blocks  []BlockResult `json:"blocks" pretty:"blocks,tree"`
	Written bool          `json:"written" pretty:"label=Written"`
}

// Changed reports whether any block would rewrite the file
func (f FileResult) Changed() bool {
	return lo.SomeBy(f.Blocks, func(b BlockResult) bool {
		return b.Status == StatusRefreshed
	})
}

// RefreshResults aggregates a whole run for display
type RefreshResults struct {
	Summary ResultSummary `json:"summary" pretty:"summary,struct"`
	Files   []FileResult  `json:"files" pretty:"files,tree"`
}

// ResultSummary provides summary statistics
type ResultSummary struct {
	Files     int `json:"files"`
	Blocks    int `json:"blocks"`
	Refreshed int `json:"refreshed"`
	Preserved int `json:"preserved"`
	Unchanged int `json:"unchanged"`
}

// Summarize recomputes the summary from the per-file results
func (r *RefreshResults) Summarize() {
	summary := ResultSummary{Files: len(r.Files)}
	for _, file := range r.Files {
		summary.Blocks += len(file.Blocks)
		counts := lo.CountValuesBy(file.Blocks, func(b BlockResult) string { return b.Status })
		summary.Refreshed += counts[StatusRefreshed]
		summary.Preserved += counts[StatusPreserved]
		summary.Unchanged += counts[StatusUnchanged]
	}
	r.Summary = summary
}
