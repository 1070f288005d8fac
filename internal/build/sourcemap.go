package build

import (
	"path/filepath"
	"sort"

	codaerrors "github.com/conneroisu/coda/internal/errors"
)

// SourceSpan is the inclusive range of aggregate lines holding one source.
type SourceSpan struct {
	File  string
	Start int
	End   int
}

// SourceMap resolves aggregate line numbers to the source they came from.
type SourceMap struct {
	aggregate string
	spans     []SourceSpan
}

func newSourceMap(aggregate string, spans []SourceSpan) *SourceMap {
	return &SourceMap{
		aggregate: aggregate,
		spans:     append([]SourceSpan(nil), spans...),
	}
}

// Spans returns a copy of the recorded spans in aggregate order.
func (m *SourceMap) Spans() []SourceSpan {
	return append([]SourceSpan(nil), m.spans...)
}

// Resolve maps an aggregate line to a source file and line. Header and
// separator lines do not resolve.
func (m *SourceMap) Resolve(line int) (string, int, bool) {
	i := sort.Search(len(m.spans), func(i int) bool { return m.spans[i].End >= line })
	if i == len(m.spans) || line < m.spans[i].Start {
		return "", 0, false
	}
	span := m.spans[i]
	return span.File, line - span.Start + 1, true
}

// Remap rewrites, in place, diagnostics that point into the aggregate unit
// so they name the original source file and line.
func (m *SourceMap) Remap(diags []*codaerrors.Diagnostic) {
	for _, d := range diags {
		if d.File == "" || !m.refersToAggregate(d.File) {
			continue
		}
		if file, line, ok := m.Resolve(d.Line); ok {
			d.File = file
			d.Line = line
		}
	}
}

// refersToAggregate accepts the exact path or, since compilers may print the
// file relative to a different directory, a matching base name.
func (m *SourceMap) refersToAggregate(path string) bool {
	if filepath.Clean(path) == filepath.Clean(m.aggregate) {
		return true
	}
	return filepath.Base(path) == filepath.Base(m.aggregate)
}
