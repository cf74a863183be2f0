package report

import (
	"io"

	"c2clat/matrix"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// plainStyle is a borderless, right aligned grid close to what a terminal
// user expects from a latency matrix.
var plainStyle = func() table.Style {
	s := table.StyleDefault
	s.Name = "c2clat"
	s.Options.DrawBorder = false
	s.Options.SeparateColumns = false
	s.Options.SeparateHeader = false
	s.Options.SeparateRows = false
	s.Format.Header = text.FormatDefault
	return s
}()

// newGrid lays out one matrix with "CPU" in the corner, core ids along the
// top and down the left.
func newGrid(cores []int, m *matrix.Matrix) table.Writer {
	t := table.NewWriter()
	t.SetStyle(plainStyle)

	header := make(table.Row, 0, len(cores)+1)
	header = append(header, "CPU")
	for _, c := range cores {
		header = append(header, c)
	}
	t.AppendHeader(header)

	for i, c := range cores {
		row := make(table.Row, 0, len(cores)+1)
		row = append(row, c)
		for j := range cores {
			row = append(row, m.At(i, j))
		}
		t.AppendRow(row)
	}

	cfg := make([]table.ColumnConfig, len(cores)+1)
	for i := range cfg {
		cfg[i] = table.ColumnConfig{Number: i + 1, Align: text.AlignRight, AlignHeader: text.AlignRight}
	}
	t.SetColumnConfigs(cfg)
	return t
}

// renderTables writes the min then avg grid, each under a "[title (ns)]"
// heading. Markdown adds a level-4 heading marker and pipe tables.
func renderTables(w io.Writer, r *matrix.Result, md bool) error {
	for _, s := range sections(r) {
		t := newGrid(r.Cores, s.m)

		var out string
		if md {
			out = "\n#### [" + s.title + " (ns)]\n\n" + t.RenderMarkdown() + "\n"
		} else {
			out = "\n[" + s.title + " (ns)]\n" + t.Render() + "\n"
		}
		if _, err := io.WriteString(w, out); err != nil {
			return err
		}
	}
	return nil
}
