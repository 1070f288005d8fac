package errors

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrorSeverity represents the severity of a compiler diagnostic.
type ErrorSeverity int

const (
	ErrorSeverityInfo ErrorSeverity = iota
	ErrorSeverityWarning
	ErrorSeverityError
	ErrorSeverityFatal
)

// String returns the string representation of the severity
func (s ErrorSeverity) String() string {
	switch s {
	case ErrorSeverityInfo:
		return "note"
	case ErrorSeverityWarning:
		return "warning"
	case ErrorSeverityError:
		return "error"
	case ErrorSeverityFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

func parseSeverity(s string) ErrorSeverity {
	switch strings.ToLower(s) {
	case "note", "remark":
		return ErrorSeverityInfo
	case "warning":
		return ErrorSeverityWarning
	case "fatal error":
		return ErrorSeverityFatal
	default:
		return ErrorSeverityError
	}
}

// DiagnosticKind distinguishes compiler diagnostics from linker failures.
type DiagnosticKind int

const (
	DiagnosticKindUnknown DiagnosticKind = iota
	DiagnosticKindCompile
	DiagnosticKindLink
)

// Diagnostic is one structured line of compiler or linker output.
type Diagnostic struct {
	Kind     DiagnosticKind `json:"kind"`
	Severity ErrorSeverity  `json:"severity"`
	File     string         `json:"file,omitempty"`
	Line     int            `json:"line,omitempty"`
	Column   int            `json:"column,omitempty"`
	Message  string         `json:"message"`
	Raw      string         `json:"raw"`
}

// Location renders file:line:col, dropping the parts that are unknown.
func (d *Diagnostic) Location() string {
	if d.File == "" {
		return ""
	}
	loc := d.File
	if d.Line > 0 {
		loc += ":" + strconv.Itoa(d.Line)
		if d.Column > 0 {
			loc += ":" + strconv.Itoa(d.Column)
		}
	}
	return loc
}

// String formats the diagnostic the way gcc and clang print it.
func (d *Diagnostic) String() string {
	if loc := d.Location(); loc != "" {
		return fmt.Sprintf("%s: %s: %s", loc, d.Severity, d.Message)
	}
	return fmt.Sprintf("%s: %s", d.Severity, d.Message)
}

type diagnosticPattern struct {
	regex       *regexp.Regexp
	kind        DiagnosticKind
	parseFields func(matches []string) *Diagnostic
}

// DiagnosticParser extracts diagnostics from gcc/clang style output.
type DiagnosticParser struct {
	patterns []diagnosticPattern
}

// NewDiagnosticParser creates a parser for gcc and clang output.
func NewDiagnosticParser() *DiagnosticParser {
	return &DiagnosticParser{patterns: buildDiagnosticPatterns()}
}

// Parse returns the diagnostics found in output, in order. Lines that are
// not diagnostics (source excerpts, caret markers, summaries) are skipped.
func (p *DiagnosticParser) Parse(output string) []*Diagnostic {
	var diags []*Diagnostic

	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		for _, pattern := range p.patterns {
			matches := pattern.regex.FindStringSubmatch(line)
			if matches == nil {
				continue
			}
			d := pattern.parseFields(matches)
			d.Kind = pattern.kind
			d.Raw = line
			diags = append(diags, d)
			break
		}
	}

	return diags
}

// CountBySeverity tallies diagnostics at or above min.
func CountBySeverity(diags []*Diagnostic, min ErrorSeverity) int {
	n := 0
	for _, d := range diags {
		if d.Severity >= min {
			n++
		}
	}
	return n
}

func buildDiagnosticPatterns() []diagnosticPattern {
	return []diagnosticPattern{
		{
			regex: regexp.MustCompile(`^(.+?):(\d+):(\d+): (fatal error|error|warning|note|remark): (.+)$`),
			kind:  DiagnosticKindCompile,
			parseFields: func(m []string) *Diagnostic {
				line, _ := strconv.Atoi(m[2])
				col, _ := strconv.Atoi(m[3])
				return &Diagnostic{
					Severity: parseSeverity(m[4]),
					File:     m[1],
					Line:     line,
					Column:   col,
					Message:  m[5],
				}
			},
		},
		{
			regex: regexp.MustCompile(`^(.+?):(\d+): (fatal error|error|warning|note): (.+)$`),
			kind:  DiagnosticKindCompile,
			parseFields: func(m []string) *Diagnostic {
				line, _ := strconv.Atoi(m[2])
				return &Diagnostic{
					Severity: parseSeverity(m[3]),
					File:     m[1],
					Line:     line,
					Message:  m[4],
				}
			},
		},
		{
			// GNU ld: "/usr/bin/ld: temp_coda.o: in function `main':" is context;
			// the undefined reference line carries the message.
			regex: regexp.MustCompile("^(?:.*ld(?:\\.\\w+)?: )?(.+?):(?:\\(.+?\\)|(\\d+)): (undefined reference to .+)$"),
			kind:  DiagnosticKindLink,
			parseFields: func(m []string) *Diagnostic {
				line, _ := strconv.Atoi(m[2])
				return &Diagnostic{
					Severity: ErrorSeverityError,
					File:     m[1],
					Line:     line,
					Message:  m[3],
				}
			},
		},
		{
			regex: regexp.MustCompile(`^(?:collect2|clang|gcc|cc)(?:-[\d.]+)?: (fatal error|error): (.+)$`),
			kind:  DiagnosticKindLink,
			parseFields: func(m []string) *Diagnostic {
				return &Diagnostic{Severity: parseSeverity(m[1]), Message: m[2]}
			},
		},
		{
			regex: regexp.MustCompile(`^(?:.*/)?ld(?:\.\w+)?: (?:error: )?(cannot find .+|.*undefined symbol.*)$`),
			kind:  DiagnosticKindLink,
			parseFields: func(m []string) *Diagnostic {
				return &Diagnostic{Severity: ErrorSeverityError, Message: m[1]}
			},
		},
	}
}
