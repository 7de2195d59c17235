package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"milelog/internal/config"
	"milelog/internal/engine"
)

func newStoreCommand(ctx *commandContext) *cobra.Command {
	storeCmd := &cobra.Command{
		Use:   "store",
		Short: "Record store maintenance",
	}
	storeCmd.AddCommand(&cobra.Command{
		Use:   "backup <destination>",
		Short: "Copy the record store under its shared lock",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dest, err := config.ExpandPath(args[0])
			if err != nil {
				return fmt.Errorf("resolve destination: %w", err)
			}
			return ctx.withEngine(cmd, func(runCtx context.Context, eng *engine.Engine) error {
				if err := eng.Store().Backup(runCtx, dest); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Backed up %s store %s to %s\n", eng.Store().Backend(), eng.Store().Path(), dest)
				return nil
			})
		},
	})
	return storeCmd
}
