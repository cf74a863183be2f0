package report

import (
	"bufio"
	"fmt"
	"io"

	"c2clat/matrix"
)

// Pipe the output into `gnuplot -p` to get two stacked heat maps.
const plotPreamble = `reset
unset key
set auto noextend
set autoscale fix
set multiplot layout 2,1
set palette defined (0 'white', 1 'orange')
`

const plotCommand = `plot '$data' matrix rowheaders columnheaders using 2:1:3 with image, ` +
	`'' matrix rowheaders columnheaders using 2:1:( sprintf("%g",$3) ) with labels`

func renderPlot(w io.Writer, r *matrix.Result) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(plotPreamble)

	for _, s := range sections(r) {
		fmt.Fprintf(bw, "set title \"Inter-core one-way data latency between CPU cores [%s]\"\n", s.title)
		bw.WriteString("set x2label \"CPU\"\nset ylabel \"CPU\"\nset cblabel \"Latency (ns)\"\n")
		bw.WriteString("$data << EOD\n")

		bw.WriteString(" CPU")
		for _, c := range r.Cores {
			fmt.Fprintf(bw, "%5d", c)
		}
		bw.WriteByte('\n')
		for i, c := range r.Cores {
			fmt.Fprintf(bw, "%4d", c)
			for j := range r.Cores {
				fmt.Fprintf(bw, "%5d", s.m.At(i, j))
			}
			bw.WriteByte('\n')
		}

		bw.WriteString("EOD\n")
		bw.WriteString(plotCommand + "\n\n")
	}

	bw.WriteString("unset multiplot\n")
	return bw.Flush()
}
