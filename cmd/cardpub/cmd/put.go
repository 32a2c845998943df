package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

func NewPutCmd(c *Context) *cobra.Command {
	subc := &cobra.Command{
		Use:   "put LOCAL REMOTE",
		Short: "Upload a local file, the remote parent directory is created when missing",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return onRunPut(c, args[0], args[1])
		},
	}
	return subc
}

func onRunPut(c *Context, local string, remote string) error {
	data, err := os.ReadFile(local)
	if err != nil {
		return fmt.Errorf("read local file failed, err:%w", err)
	}
	cli, err := c.Factory()
	if err != nil {
		return err
	}
	ctx, cancel := c.opContext()
	defer cancel()
	start := time.Now()
	rs, err := cli.UploadFile(ctx, remote, data)
	if err != nil {
		return fmt.Errorf("upload file failed, err:%w", err)
	}
	logutil.GetLogger(ctx).Info("upload file succ", zap.String("remote", remote), zap.Int("status", rs.StatusCode),
		zap.String("size", humanize.IBytes(uint64(len(data)))), zap.Duration("cost", time.Since(start)))
	return nil
}

func init() {
	register(NewPutCmd)
}
