package main

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"milelog/internal/api"
	"milelog/internal/engine"
	"milelog/internal/records"
	"milelog/internal/textutil"
)

func newRebuildCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "rebuild",
		Short: "Reassign vehicle identities across the whole log",
		Long: "Rebuild splits each class with a residual group into its two vehicles by\n" +
			"distance from the class trend, assigns single-vehicle classes to that\n" +
			"vehicle and leaves other records untouched.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEngine(cmd, func(runCtx context.Context, eng *engine.Engine) error {
				report, err := eng.Rebuild(runCtx, engine.RebuildOptions{DryRun: dryRun})
				if err != nil {
					return ctx.degrade(cmd, err)
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, api.FromRebuildReport(report))
				}
				renderRebuildReport(cmd, report)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report assignments without writing them")
	return cmd
}

func renderRebuildReport(cmd *cobra.Command, report engine.RebuildReport) {
	out := cmd.OutOrStdout()
	rows := make([][]string, 0, len(report.Classes))
	for _, c := range report.Classes {
		rows = append(rows, []string{
			textutil.Title(string(c.Class)),
			c.Method,
			strconv.Itoa(c.Records),
			strconv.Itoa(c.Changed),
			formatAssigned(c.Assigned),
			c.Reason,
		})
	}
	if len(rows) > 0 {
		fmt.Fprintln(out, renderTable(out,
			[]string{"Class", "Method", "Records", "Changed", "Assigned", "Note"},
			rows,
			[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight},
		))
	}
	prefix := "Rebuild"
	if report.DryRun {
		prefix = "Dry run"
	}
	fmt.Fprintf(out, "%s: %d of %d records changed\n", prefix, report.Changed, report.Records)
}

func formatAssigned(assigned map[records.Identity]int) string {
	if len(assigned) == 0 {
		return ""
	}
	ids := slices.Sorted(maps.Keys(assigned))
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, fmt.Sprintf("%s=%d", id, assigned[id]))
	}
	return strings.Join(parts, " ")
}

func newPredictCommand(ctx *commandContext) *cobra.Command {
	var date string
	var class string
	cmd := &cobra.Command{
		Use:   "predict <mileage>",
		Short: "Suggest which vehicle produced a reading",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mileage, err := parseMileageArg(args[0])
			if err != nil {
				return err
			}
			at, err := parseDateFlag("date", date, records.CivilDate(time.Now()))
			if err != nil {
				return err
			}
			classFilter, err := parseClassFlag(class)
			if err != nil {
				return err
			}
			return ctx.withEngine(cmd, func(runCtx context.Context, eng *engine.Engine) error {
				prediction, err := eng.PredictIdentity(runCtx, mileage, at, classFilter)
				if err != nil {
					return ctx.degrade(cmd, err)
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, api.FromPrediction(prediction))
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Predicted vehicle: %s (%d of %d neighbours)\n",
					prediction.Identity, prediction.Votes[prediction.Identity], prediction.K)
				rows := make([][]string, 0, len(prediction.Neighbors))
				for _, n := range prediction.Neighbors {
					rows = append(rows, []string{
						n.Record.Date(),
						strconv.FormatInt(n.Record.Mileage, 10),
						string(n.Record.Identity),
						strconv.FormatFloat(n.Distance, 'f', 1, 64),
					})
				}
				fmt.Fprintln(out, renderTable(out,
					[]string{"Date", "Mileage", "Vehicle", "Distance"},
					rows,
					[]columnAlignment{alignLeft, alignRight, alignLeft, alignRight},
				))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Reading date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&class, "class", "", "Only compare against this class")
	return cmd
}

func newTrendCommand(ctx *commandContext) *cobra.Command {
	var sel selectionFlags
	cmd := &cobra.Command{
		Use:   "trend",
		Short: "Fit the mileage trend and show residuals",
		RunE: func(cmd *cobra.Command, args []string) error {
			selection, err := sel.selection()
			if err != nil {
				return err
			}
			return ctx.withEngine(cmd, func(runCtx context.Context, eng *engine.Engine) error {
				report, err := eng.TrendFor(runCtx, selection)
				if err != nil {
					return ctx.degrade(cmd, err)
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, api.FromTrendReport(report))
				}
				out := cmd.OutOrStdout()
				rows := make([][]string, 0, len(report.Points))
				for _, p := range report.Points {
					rows = append(rows, []string{
						p.Record.Date(),
						strconv.FormatInt(p.Record.Mileage, 10),
						string(p.Record.Identity),
						formatMileage(p.Fitted),
						formatSigned(p.Residual),
					})
				}
				fmt.Fprintln(out, renderTable(out,
					[]string{"Date", "Mileage", "Vehicle", "Trend", "Residual"},
					rows,
					[]columnAlignment{alignLeft, alignRight, alignLeft, alignRight, alignRight},
				))
				fmt.Fprintf(out, "Degree %d trend over %s\n", report.Degree, report.Selection)
				return nil
			})
		},
	}
	sel.bind(cmd)
	return cmd
}

func newExtrapolateCommand(ctx *commandContext) *cobra.Command {
	var sel selectionFlags
	var until string
	cmd := &cobra.Command{
		Use:   "extrapolate",
		Short: "Project mileage month by month",
		RunE: func(cmd *cobra.Command, args []string) error {
			selection, err := sel.selection()
			if err != nil {
				return err
			}
			now := time.Now().UTC()
			target, err := parseDateFlag("until", until, time.Date(now.Year()+1, 1, 1, 0, 0, 0, 0, time.UTC))
			if err != nil {
				return err
			}
			return ctx.withEngine(cmd, func(runCtx context.Context, eng *engine.Engine) error {
				projection, err := eng.ExtrapolateFor(runCtx, selection, target)
				if err != nil {
					return ctx.degrade(cmd, err)
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, api.FromProjection(selection.String(), projection))
				}
				out := cmd.OutOrStdout()
				rows := make([][]string, 0, len(projection.Samples))
				for _, s := range projection.Samples {
					rows = append(rows, []string{
						s.At.Format(records.DateLayout),
						formatMileage(s.Mileage),
						yesNo(s.Projected),
					})
				}
				fmt.Fprintln(out, renderTable(out,
					[]string{"Date", "Mileage", "Projected"},
					rows,
					[]columnAlignment{alignLeft, alignRight},
				))
				if final, ok := projection.Final(); ok {
					fmt.Fprintf(out, "Expected at %s: %s\n", final.At.Format(records.DateLayout), formatMileage(final.Mileage))
				}
				return nil
			})
		},
	}
	sel.bind(cmd)
	cmd.Flags().StringVar(&until, "until", "", "Projection target (YYYY-MM-DD, default 1 January next year)")
	return cmd
}
