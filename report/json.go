package report

import (
	"io"

	"c2clat/matrix"

	"github.com/sugawarayuuta/sonnet"
)

// Document is the JSON shape of a run.
type Document struct {
	Cores []int     `json:"cores"`
	Min   [][]int64 `json:"min_ns"`
	Avg   [][]int64 `json:"avg_ns"`
}

// NewDocument flattens a result into its JSON shape.
func NewDocument(r *matrix.Result) Document {
	return Document{
		Cores: append([]int(nil), r.Cores...),
		Min:   r.Min.Rows(),
		Avg:   r.Avg.Rows(),
	}
}

func renderJSON(w io.Writer, r *matrix.Result) error {
	b, err := sonnet.Marshal(NewDocument(r))
	if err != nil {
		return err
	}
	b = append(b, '\n')
	_, err = w.Write(b)
	return err
}
