// Package report renders a completed latency run. It is a pure function of
// the two matrices and the core list; nothing here touches measurement.
package report

import (
	"fmt"
	"io"
	"strings"

	"c2clat/matrix"
)

// Format selects the output representation.
type Format string

const (
	Text     Format = "text"
	Markdown Format = "markdown"
	Plot     Format = "plot"
	JSON     Format = "json"
)

// Formats lists the accepted canonical names.
var Formats = []Format{Text, Markdown, Plot, JSON}

// ParseFormat maps a user supplied name (and a few aliases) to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "plain":
		return Text, nil
	case "markdown", "md":
		return Markdown, nil
	case "plot", "gnuplot":
		return Plot, nil
	case "json":
		return JSON, nil
	}
	return "", fmt.Errorf("report: unknown format %q (want text, markdown, plot or json)", s)
}

// section is one titled matrix of the report.
type section struct {
	title string
	m     *matrix.Matrix
}

func sections(r *matrix.Result) []section {
	return []section{{"min", r.Min}, {"avg", r.Avg}}
}

// Render writes r to w in format f.
func Render(w io.Writer, f Format, r *matrix.Result) error {
	if r == nil || r.Min == nil || r.Avg == nil {
		return fmt.Errorf("report: nothing to render")
	}
	if r.Min.Len() != len(r.Cores) || r.Avg.Len() != len(r.Cores) {
		return fmt.Errorf("report: %d cores but %d-row min and %d-row avg matrices", len(r.Cores), r.Min.Len(), r.Avg.Len())
	}

	switch f {
	case Text:
		return renderTables(w, r, false)
	case Markdown:
		return renderTables(w, r, true)
	case Plot:
		return renderPlot(w, r)
	case JSON:
		return renderJSON(w, r)
	}
	return fmt.Errorf("report: unknown format %q", f)
}
