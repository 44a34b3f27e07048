package main

import (
	"bufio"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/TuftsBCB/searchio/config"
	"github.com/TuftsBCB/searchio/hhr"
)

func newHitsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hits FILE...",
		Short: "Print the hits of hhr reports as tab separated values",
		Long: `Print the hits of hhr reports as tab separated values.

There is one line for every alignment, with the query, the hit identifier,
probability (in [0, 1]), E-value, score and the aligned ranges of the query
and the template. Files are read in parallel, but are printed in the order
given. Files ending in .gz are decompressed.`,
		Example: "  hhrq hits --max-evalue 1e-3 2uvo.hhr allx.hhr.gz",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reports, err := a.parseAll(args)
			if err != nil {
				return err
			}
			w := bufio.NewWriter(cmd.OutOrStdout())
			if err := writeHitsHeader(w); err != nil {
				return err
			}
			for _, r := range reports {
				for _, qr := range r.results {
					if err := writeHits(w, a.cfg, qr); err != nil {
						return err
					}
				}
			}
			return w.Flush()
		},
	}

	flags := cmd.Flags()
	flags.Int("workers", 4, "number of reports parsed at the same time")
	flags.Float64("max-evalue", 0, "leave out hits with a larger E-value (0 keeps all)")
	flags.Float64("min-prob", 0, "leave out hits with a smaller probability, in [0, 1]")
	return cmd
}

func writeHitsHeader(w io.Writer) error {
	_, err := fmt.Fprintln(w,
		"query\thit\tprob\tevalue\tscore\tquery_range\ttemplate_range")
	return err
}

// writeHits writes a line for every HSP of qr that passes the filters in
// cfg.
func writeHits(w io.Writer, cfg config.Config, qr *hhr.QueryResult) error {
	for _, hit := range qr.Hits {
		for _, hsp := range hit.HSPs {
			if !keep(cfg, hsp) {
				continue
			}
			_, err := fmt.Fprintf(w, "%s\t%s\t%.4f\t%g\t%g\t%d-%d\t%d-%d\n",
				qr.ID, hit.ID, hsp.Prob, hsp.EValue, hsp.Score,
				hsp.QueryStart, hsp.QueryEnd, hsp.HitStart, hsp.HitEnd)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func keep(cfg config.Config, hsp hhr.HSP) bool {
	if cfg.MaxEValue > 0 && hsp.EValue > cfg.MaxEValue {
		return false
	}
	return hsp.Prob >= cfg.MinProb
}
