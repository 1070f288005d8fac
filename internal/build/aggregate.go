// Package build implements the unity-build engine: source aggregation, compiler
// invocation and the orchestrator that composes them.
package build

import (
	"bufio"
	"bytes"
	"fmt"
	"os"

	codaerrors "github.com/conneroisu/coda/internal/errors"
)

// Aggregator concatenates ordered source files into a single unit file.
type Aggregator struct {
	path  string
	spans []SourceSpan
}

// NewAggregator creates an aggregator writing to path. The parent directory
// must already exist.
func NewAggregator(path string) *Aggregator {
	return &Aggregator{path: path}
}

// Path returns the aggregate file location.
func (a *Aggregator) Path() string {
	return a.path
}

// SourceMap maps lines of the last unit written back to its sources.
func (a *Aggregator) SourceMap() *SourceMap {
	return newSourceMap(a.path, a.spans)
}

// Aggregate writes, for each source in order, a header line naming the file,
// its verbatim content and a blank-line separator. It stops at the first
// unreadable source; whatever was already written stays on disk.
func (a *Aggregator) Aggregate(sourceFiles []string) (err error) {
	a.spans = a.spans[:0]

	f, err := os.Create(a.path)
	if err != nil {
		return codaerrors.NewIOError(codaerrors.CodeAggregateCreate,
			"cannot create aggregate unit", err).WithFile(a.path)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = codaerrors.NewIOError(codaerrors.CodeAggregateCreate,
				"cannot finish aggregate unit", cerr).WithFile(a.path)
		}
	}()

	w := bufio.NewWriter(f)
	line := 1
	for _, src := range sourceFiles {
		content, readErr := os.ReadFile(src)
		if readErr != nil {
			// Flush so the partial unit reflects every file read so far.
			_ = w.Flush()
			return codaerrors.NewIOError(codaerrors.CodeSourceUnreadable,
				"cannot read source file", readErr).WithFile(src)
		}

		if _, err := fmt.Fprintf(w, "// File: %s\n%s\n\n", src, content); err != nil {
			return codaerrors.NewIOError(codaerrors.CodeAggregateCreate,
				"cannot write aggregate unit", err).WithFile(a.path)
		}

		// Header on line, content from line+1, then the newline and blank separator.
		n := bytes.Count(content, []byte{'\n'})
		a.spans = append(a.spans, SourceSpan{File: src, Start: line + 1, End: line + 1 + n})
		line += n + 3
	}

	if err := w.Flush(); err != nil {
		return codaerrors.NewIOError(codaerrors.CodeAggregateCreate,
			"cannot write aggregate unit", err).WithFile(a.path)
	}
	return nil
}
