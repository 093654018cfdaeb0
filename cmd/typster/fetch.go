package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"typster/internal/source"
	"typster/internal/trace"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <@namespace/name:version>...",
	Short: "Prepare packages in the local cache",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		jobs, err := cmd.Flags().GetInt("jobs")
		if err != nil {
			return err
		}
		s, err := loadSettings(cmd)
		if err != nil {
			return err
		}

		specs := make([]source.PackageSpec, len(args))
		for i, arg := range args {
			if specs[i], err = source.ParsePackageSpec(arg); err != nil {
				return err
			}
		}

		storage := s.storage(cmd)
		span := trace.Begin(trace.FromContext(cmd.Context()), trace.ScopeDriver, "fetch", 0)
		span.WithExtra("packages", strconv.Itoa(len(specs)))
		dirs := make([]string, len(specs))
		g, ctx := errgroup.WithContext(trace.WithSpan(cmd.Context(), span))
		if jobs > 0 {
			g.SetLimit(jobs)
		}
		for i, spec := range specs {
			g.Go(func() error {
				dir, err := storage.PrepareContext(ctx, spec)
				if err != nil {
					return err
				}
				dirs[i] = dir
				return nil
			})
		}
		err = g.Wait()
		if err != nil {
			span.End(err.Error())
			return err
		}
		span.End("")

		width := 0
		for _, spec := range specs {
			width = max(width, len(spec.String()))
		}
		for i, spec := range specs {
			name := spec.String()
			fmt.Fprintf(cmd.OutOrStdout(), "%s%s  %s\n", name, strings.Repeat(" ", width-len(name)), dirs[i])
		}
		return nil
	},
}

func init() {
	fetchCmd.Flags().Int("jobs", 4, "maximum parallel downloads (0 = unlimited)")
}
