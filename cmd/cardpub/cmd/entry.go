package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

func NewRemoveCmd(c *Context) *cobra.Command {
	return &cobra.Command{
		Use:   "rm PATH",
		Short: "Delete a remote file or directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := c.Factory()
			if err != nil {
				return err
			}
			ctx, cancel := c.opContext()
			defer cancel()
			if err := cli.DeleteEntry(ctx, args[0]); err != nil {
				return fmt.Errorf("delete entry failed, err:%w", err)
			}
			logutil.GetLogger(ctx).Info("delete entry succ", zap.String("path", args[0]))
			return nil
		},
	}
}

func NewMoveCmd(c *Context) *cobra.Command {
	return &cobra.Command{
		Use:   "mv SRC DST",
		Short: "Move a remote entry, an existing destination is overwritten",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := c.Factory()
			if err != nil {
				return err
			}
			ctx, cancel := c.opContext()
			defer cancel()
			if err := cli.MoveEntry(ctx, args[0], args[1]); err != nil {
				return fmt.Errorf("move entry failed, err:%w", err)
			}
			logutil.GetLogger(ctx).Info("move entry succ", zap.String("src", args[0]), zap.String("dst", args[1]))
			return nil
		},
	}
}

func NewMkdirCmd(c *Context) *cobra.Command {
	var parents bool
	subc := &cobra.Command{
		Use:   "mkdir PATH",
		Short: "Create a remote directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := c.Factory()
			if err != nil {
				return err
			}
			ctx, cancel := c.opContext()
			defer cancel()
			mkdir := cli.CreateDirectory
			if parents {
				mkdir = cli.CreateDirectoryAll
			}
			if err := mkdir(ctx, args[0]); err != nil {
				return fmt.Errorf("create directory failed, err:%w", err)
			}
			return nil
		},
	}
	subc.Flags().BoolVarP(&parents, "parents", "p", false, "create missing parent directories")
	return subc
}

func init() {
	register(NewRemoveCmd)
	register(NewMoveCmd)
	register(NewMkdirCmd)
}
