package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"milelog/internal/api"
	"milelog/internal/engine"
	"milelog/internal/faults"
	"milelog/internal/ingest"
	"milelog/internal/ocr"
	"milelog/internal/records"
	"milelog/internal/recordstore"
	"milelog/internal/textutil"
)

func newRecordsCommand(ctx *commandContext) *cobra.Command {
	recordsCmd := &cobra.Command{
		Use:   "records",
		Short: "Inspect and edit the odometer log",
	}

	recordsCmd.AddCommand(newRecordsListCommand(ctx))
	recordsCmd.AddCommand(newRecordsAddCommand(ctx))
	recordsCmd.AddCommand(newRecordsConfirmCommand(ctx))
	recordsCmd.AddCommand(newRecordsImportCommand(ctx))

	return recordsCmd
}

func newRecordsListCommand(ctx *commandContext) *cobra.Command {
	var sel selectionFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored readings",
		RunE: func(cmd *cobra.Command, args []string) error {
			selection, err := sel.selection()
			if err != nil {
				return err
			}
			return ctx.withEngine(cmd, func(runCtx context.Context, eng *engine.Engine) error {
				items, err := eng.LoadSelection(runCtx, selection)
				if err != nil {
					return ctx.degrade(cmd, err)
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, api.FromRecords(items))
				}
				out := cmd.OutOrStdout()
				if len(items) == 0 {
					fmt.Fprintln(out, "No records stored")
					return nil
				}
				fmt.Fprintln(out, renderRecords(out, items))
				fmt.Fprintf(out, "%d records (%s)\n", len(items), selection)
				return nil
			})
		},
	}
	sel.bind(cmd)
	return cmd
}

func renderRecords(out io.Writer, items []records.Record) string {
	rows := make([][]string, 0, len(items))
	for _, r := range items {
		rows = append(rows, []string{
			r.Date(),
			r.Clock(),
			strconv.FormatInt(r.Mileage, 10),
			textutil.Title(string(r.Class)),
			string(r.Identity),
			r.SourceID,
			r.Notes,
		})
	}
	return renderTable(out,
		[]string{"Date", "Time", "Mileage", "Class", "Vehicle", "Source", "Notes"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight},
	)
}

func newRecordsAddCommand(ctx *commandContext) *cobra.Command {
	var req api.AppendRecordRequest
	var mileage int64

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Append a reading, merging notes into an existing duplicate",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("mileage") {
				req.Mileage = &mileage
			}
			record, err := api.ToRecord(req)
			if err != nil {
				return err
			}
			return ctx.withEngine(cmd, func(runCtx context.Context, eng *engine.Engine) error {
				stored, outcome, err := eng.AppendOrMergeRecord(runCtx, record)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, api.AppendRecordResponse{Outcome: outcome.String(), Record: api.FromRecord(stored)})
				}
				verb := "Added"
				if outcome == recordstore.Merged {
					verb = "Merged notes into"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s record %s %d %s\n", verb, stored.Date(), stored.Mileage, stored.Class)
				if outcome == recordstore.Merged && stored.Notes != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "Notes: %s\n", strings.ReplaceAll(stored.Notes, "\n", "; "))
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&req.Date, "date", "", "Observation date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&req.Time, "time", "", "Observation time (HH:MM:SS)")
	cmd.Flags().Int64Var(&mileage, "mileage", 0, "Odometer reading")
	cmd.Flags().StringVar(&req.Class, "class", "unknown", "Vehicle class (personal, cargo or unknown)")
	cmd.Flags().StringVar(&req.Identity, "vehicle", "", "Vehicle, when known")
	cmd.Flags().StringVar(&req.SourceID, "source", "", "Image or input the reading came from")
	cmd.Flags().StringVar(&req.Notes, "notes", "", "Free-text notes")
	_ = cmd.MarkFlagRequired("date")
	_ = cmd.MarkFlagRequired("mileage")
	return cmd
}

func newRecordsConfirmCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "confirm <date> <mileage> <class> <vehicle>",
		Short: "Set the vehicle of a stored reading",
		Long:  "Set the vehicle of the reading identified by date, mileage and class. Use \"unknown\" to clear it.",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := parseDateFlag("date", args[0], time.Time{})
			if err != nil {
				return err
			}
			if date.IsZero() {
				return faults.Wrap(faults.ErrValidation, "cli", "date", "date is required", nil)
			}
			mileage, err := parseMileageArg(args[1])
			if err != nil {
				return err
			}
			key := records.Key{Date: date.Format(records.DateLayout), Mileage: mileage, Class: records.ParseClass(args[2])}
			return ctx.withEngine(cmd, func(runCtx context.Context, eng *engine.Engine) error {
				record, err := eng.ConfirmIdentity(runCtx, key, args[3])
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, api.FromRecord(record))
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Record %s %d %s is now %s\n", record.Date(), record.Mileage, record.Class, record.Identity)
				return nil
			})
		},
	}
}

func newRecordsImportCommand(ctx *commandContext) *cobra.Command {
	var class string
	var notes string
	var dryRun bool
	var suggest bool
	var acceptFirst bool
	var errorsDir string

	cmd := &cobra.Command{
		Use:   "import <image-or-directory>...",
		Short: "Read odometer photos and store the readings",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			classOverride, err := parseClassFlag(class)
			if err != nil {
				return err
			}
			sources, err := collectSources(args, classOverride, notes)
			if err != nil {
				return err
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !ocr.Available() {
				return ctx.degrade(cmd, faults.Wrap(faults.ErrUnavailable, "ocr", "import",
					"built without tesseract support; rebuild with -tags tesseract", nil))
			}
			reader, err := ocr.NewReader(ocr.Options{Language: cfg.Ingest.OCRLanguage, Digits: cfg.Ingest.MileageDigits})
			if err != nil {
				return ctx.degrade(cmd, err)
			}
			defer reader.Close()

			return ctx.withEngine(cmd, func(runCtx context.Context, eng *engine.Engine) error {
				pipeline := eng.Pipeline(reader)
				if acceptFirst {
					pipeline.AcceptFirst = true
				}
				report, err := eng.Ingest(runCtx, pipeline, sources, engine.IngestOptions{
					DryRun:   dryRun,
					Suggest:  suggest,
					ErrorDir: errorsDir,
				})
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, api.FromIngestReport(report))
				}
				renderIngestReport(cmd, report, dryRun)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&class, "class", "", "Vehicle class of every image (overrides the classifier)")
	cmd.Flags().StringVar(&notes, "notes", "", "Notes attached to every stored reading")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Read images without storing anything")
	cmd.Flags().BoolVar(&suggest, "suggest", false, "Predict a vehicle for each reading")
	cmd.Flags().BoolVar(&acceptFirst, "accept-first", false, "Keep the first candidate when a photo yields several readings")
	cmd.Flags().StringVar(&errorsDir, "errors-dir", "", "Copy unreadable and multi-read photos under this directory (default ingest.error_dir)")
	return cmd
}

func collectSources(args []string, class records.Class, notes string) ([]ingest.Source, error) {
	var sources []ingest.Source
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("inspect %q: %w", arg, err)
		}
		paths := []string{arg}
		if info.IsDir() {
			paths, err = ingest.Discover(arg)
			if err != nil {
				return nil, err
			}
		}
		for _, path := range paths {
			sources = append(sources, ingest.Source{Path: filepath.Clean(path), Class: class, Notes: notes})
		}
	}
	return sources, nil
}

func renderIngestReport(cmd *cobra.Command, report engine.IngestReport, dryRun bool) {
	out := cmd.OutOrStdout()
	if len(report.Items) == 0 {
		fmt.Fprintln(out, "No images found")
		return
	}
	rows := make([][]string, 0, len(report.Items))
	for _, item := range report.Items {
		reading := item.Reading
		row := []string{filepath.Base(reading.Source.Path), string(reading.Status), "", "", "", ""}
		if reading.Stored() {
			row[2] = reading.Record.Date()
			row[3] = strconv.FormatInt(reading.Record.Mileage, 10)
			row[4] = string(reading.Record.Class)
			row[5] = string(item.Suggested)
		}
		if reading.Err != nil {
			row[5] = reading.Err.Error()
		}
		rows = append(rows, row)
	}
	fmt.Fprintln(out, renderTable(out,
		[]string{"Source", "Status", "Date", "Mileage", "Class", "Suggested / Error"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight},
	))
	if dryRun {
		fmt.Fprintf(out, "Dry run: %d readable, nothing stored\n", report.ByStatus[ingest.StatusOK])
		return
	}
	fmt.Fprintf(out, "Stored %d new, merged %d\n", report.Inserted, report.Merged)
	copied, errorDir := 0, ""
	for _, item := range report.Items {
		if item.CopiedTo != "" {
			copied++
			errorDir = filepath.Dir(filepath.Dir(item.CopiedTo))
		}
	}
	if copied > 0 {
		fmt.Fprintf(out, "Copied %d rejected photos to %s\n", copied, errorDir)
	}
}
