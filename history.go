package main

import (
	"errors"
	"io"

	"c2clat/config"
	"c2clat/constants"
	"c2clat/debug"
	"c2clat/report"
	"c2clat/store"
	"c2clat/utils"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var errNoDatabase = errors.New("no history database configured (use --db or C2CLAT_DATABASE)")

func openHistory(cfg *config.Config) (*store.Store, error) {
	if cfg.Database == "" {
		return nil, errNoDatabase
	}
	return store.Open(cfg.Database)
}

func newRunsCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, config.LoadView)
			if err != nil {
				return err
			}
			s, err := openHistory(cfg)
			if err != nil {
				return err
			}
			defer s.Close()

			runs, err := s.List(limit)
			if err != nil {
				return err
			}
			return writeRuns(cmd.OutOrStdout(), runs)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", constants.DefaultListLimit, "maximum runs to list (0 for all)")
	return cmd
}

func writeRuns(w io.Writer, runs []store.Summary) error {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Recorded", "Host", "Fingerprint", "Cores", "Samples", "Repetitions"})
	for _, r := range runs {
		t.AppendRow(table.Row{
			r.ID,
			r.CreatedAt.Format("2006-01-02 15:04:05"),
			r.Host,
			r.Fingerprint,
			r.Cores,
			r.Samples,
			r.Repetitions,
		})
	}
	_, err := io.WriteString(w, t.Render()+"\n")
	return err
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Render a recorded run (any unique id prefix)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, config.LoadView)
			if err != nil {
				return err
			}
			s, err := openHistory(cfg)
			if err != nil {
				return err
			}
			defer s.Close()

			run, err := s.Load(args[0])
			if err != nil {
				return err
			}
			debug.DropVerbose("RUN", run.ID+" on "+run.Host+"/"+run.Arch+", "+
				utils.Itoa(run.Params.Samples)+" samples x "+utils.Itoa(run.Params.Repetitions)+
				", cache line "+utils.Itoa(run.LineSize)+"B")
			return report.Render(cmd.OutOrStdout(), cfg.OutputFormat(), run.Result)
		},
	}
}
