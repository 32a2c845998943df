package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/xxxsen/cardpub/utils"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

type getArgs struct {
	output string
}

func NewGetCmd(c *Context) *cobra.Command {
	args := &getArgs{}
	subc := &cobra.Command{
		Use:   "get PATH",
		Short: "Download a remote file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, params []string) error {
			return onRunGet(c, params[0], args)
		},
	}
	subc.Flags().StringVarP(&args.output, "output", "o", "", "save to local file, print to stdout if empty")
	return subc
}

func onRunGet(c *Context, file string, args *getArgs) error {
	cli, err := c.Factory()
	if err != nil {
		return err
	}
	ctx, cancel := c.opContext()
	defer cancel()
	start := time.Now()
	payload, err := cli.GetFile(ctx, file)
	if err != nil {
		return fmt.Errorf("get file failed, err:%w", err)
	}
	if len(args.output) == 0 {
		_, err := os.Stdout.Write(payload.Bytes())
		return err
	}
	sum, err := utils.WriteFileAtomic(args.output, payload.Bytes())
	if err != nil {
		return fmt.Errorf("save file failed, err:%w", err)
	}
	logutil.GetLogger(ctx).Info("get file succ", zap.String("remote", file), zap.String("local", args.output),
		zap.String("checksum", sum),
		zap.String("kind", payload.Kind().String()), zap.String("size", humanize.IBytes(uint64(payload.Len()))),
		zap.Duration("cost", time.Since(start)))
	return nil
}

func init() {
	register(NewGetCmd)
}
