package main

import (
	"bufio"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/TuftsBCB/searchio/logger"
	"github.com/TuftsBCB/searchio/store"
)

func newLoadCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load FILE...",
		Short: "Load hhr reports into a SQLite store",
		Long: `Load hhr reports into a SQLite store.

Every query result is given a new UUID, which is printed along with the
query and the file it came from. Use 'hhrq show' to print the hits of a
stored query result.`,
		Example: "  hhrq load --db results.db *.hhr",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reports, err := a.parseAll(args)
			if err != nil {
				return err
			}

			s, err := store.Open(a.cfg.DB, logger.L())
			if err != nil {
				return err
			}
			defer s.Close()

			w := bufio.NewWriter(cmd.OutOrStdout())
			for _, r := range reports {
				for _, qr := range r.results {
					id, err := s.Put(cmd.Context(), qr)
					if err != nil {
						return fmt.Errorf("Error loading '%s': %w", r.file, err)
					}
					if _, err := fmt.Fprintf(w, "%s\t%s\t%s\n",
						id, qr.ID, r.file); err != nil {
						return err
					}
				}
			}
			logger.Info("Loaded reports",
				zap.String("db", a.cfg.DB),
				zap.Int("files", len(reports)))
			return w.Flush()
		},
	}
	cmd.Flags().Int("workers", 4, "number of reports parsed at the same time")
	addDBFlag(cmd)
	return cmd
}

func newQueriesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queries",
		Short: "List the query results in a SQLite store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := store.Open(a.cfg.DB, logger.L())
			if err != nil {
				return err
			}
			defer s.Close()

			entries, err := s.Queries(cmd.Context())
			if err != nil {
				return err
			}
			w := bufio.NewWriter(cmd.OutOrStdout())
			for _, e := range entries {
				_, err := fmt.Fprintf(w, "%s\t%s\t%d\n", e.ID, e.Query, e.NumHits)
				if err != nil {
					return err
				}
			}
			return w.Flush()
		},
	}
	addDBFlag(cmd)
	return cmd
}

func newShowCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show ID...",
		Short: "Print the hits of stored query results",
		Long: `Print the hits of stored query results, in the same format as
'hhrq hits' (and with the same filters).`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]uuid.UUID, len(args))
			for i, arg := range args {
				id, err := uuid.Parse(arg)
				if err != nil {
					return fmt.Errorf("'%s' is not a query result id: %w",
						arg, err)
				}
				ids[i] = id
			}

			s, err := store.Open(a.cfg.DB, logger.L())
			if err != nil {
				return err
			}
			defer s.Close()

			w := bufio.NewWriter(cmd.OutOrStdout())
			if err := writeHitsHeader(w); err != nil {
				return err
			}
			for _, id := range ids {
				qr, err := s.Get(cmd.Context(), id)
				if err != nil {
					return err
				}
				if err := writeHits(w, a.cfg, qr); err != nil {
					return err
				}
			}
			return w.Flush()
		},
	}
	flags := cmd.Flags()
	flags.Float64("max-evalue", 0, "leave out hits with a larger E-value (0 keeps all)")
	flags.Float64("min-prob", 0, "leave out hits with a smaller probability, in [0, 1]")
	addDBFlag(cmd)
	return cmd
}

func addDBFlag(cmd *cobra.Command) {
	cmd.Flags().String("db", "hhrq.db", "path to the SQLite store")
}
