package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"milelog/internal/fleet"
	"milelog/internal/textutil"
)

func newFleetCommand(ctx *commandContext) *cobra.Command {
	fleetCmd := &cobra.Command{
		Use:   "fleet",
		Short: "Show the vehicle registry",
	}
	fleetCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List registered vehicles",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			reg, err := fleet.FromConfig(cfg)
			if err != nil {
				return err
			}
			vehicles := reg.Vehicles()
			if ctx.jsonOutput() {
				return writeJSON(cmd, vehicles)
			}
			out := cmd.OutOrStdout()
			rows := make([][]string, 0, len(vehicles))
			for _, v := range vehicles {
				rows = append(rows, []string{
					string(v.Name),
					v.Model,
					textutil.Title(string(v.Class)),
					optionalInt(v.Year),
					v.Registration,
					optionalInt(v.MaxLoadKg),
					optionalInt(v.Seats),
				})
			}
			fmt.Fprintln(out, renderTable(out,
				[]string{"Vehicle", "Model", "Class", "Year", "Registration", "Max load kg", "Seats"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignRight, alignRight},
			))
			for _, v := range vehicles {
				if labels, ok := reg.ResidualLabels(v.Class); ok && labels.Lower == v.Name {
					fmt.Fprintf(out, "%s: lower residual group %s, upper %s\n", v.Class, labels.Lower, labels.Upper)
				}
			}
			return nil
		},
	})
	return fleetCmd
}

func optionalInt(value int) string {
	if value == 0 {
		return ""
	}
	return strconv.Itoa(value)
}
