package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/TuftsBCB/searchio/fasta"
)

func newAlnCmd(a *app) *cobra.Command {
	var columns int
	cmd := &cobra.Command{
		Use:   "aln FILE...",
		Short: "Print the alignments of hhr reports as aligned FASTA",
		Long: `Print the alignments of hhr reports as aligned FASTA.

Every alignment is printed as a pair of sequences: the query, named
'QUERY:START-END', followed by the hit, named 'HIT:START-END', where HIT is
the unique hit identifier (e.g., '1wga_2').`,
		Example: "  hhrq aln --columns 0 2uvo.hhr",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reports, err := a.parseAll(args)
			if err != nil {
				return err
			}

			w := fasta.NewAlignedWriter(cmd.OutOrStdout())
			w.Columns = columns
			for _, r := range reports {
				for _, qr := range r.results {
					for _, hit := range qr.Hits {
						for _, hsp := range hit.HSPs {
							pair := hsp.Sequences()
							pair[0].Name = fmt.Sprintf("%s:%d-%d",
								qr.ID, hsp.QueryStart, hsp.QueryEnd)
							pair[1].Name = fmt.Sprintf("%s:%d-%d",
								hit.ID, hsp.HitStart, hsp.HitEnd)

							w.Reset()
							for _, s := range pair {
								if err := w.Write(s); err != nil {
									return err
								}
							}
						}
					}
				}
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVar(&columns, "columns", 60,
		"wrap sequences at this many columns (0 doesn't wrap)")
	return cmd
}
