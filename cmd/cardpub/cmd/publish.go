package cmd

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/xxxsen/cardpub/publish"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

type publishArgs struct {
	dir    string
	remote string
	thread int
	force  bool
}

func NewPublishCmd(c *Context) *cobra.Command {
	args := &publishArgs{}
	ctx := context.Background()
	subc := &cobra.Command{
		Use:   "publish",
		Short: "Upload every image under a local directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return onRunPublish(ctx, c, args)
		},
	}
	subc.Flags().StringVarP(&args.dir, "dir", "d", "", "local directory")
	subc.Flags().StringVarP(&args.remote, "remote", "r", "/", "remote root directory")
	subc.Flags().IntVarP(&args.thread, "thread", "t", 0, "worker count, use config if 0")
	subc.Flags().BoolVarP(&args.force, "force", "f", false, "upload even if remote file looks unchanged")
	return subc
}

func onRunPublish(ctx context.Context, c *Context, args *publishArgs) error {
	if len(args.dir) == 0 {
		return fmt.Errorf("no local dir found")
	}
	items, err := publish.CollectDir(args.dir, args.remote)
	if err != nil {
		return err
	}
	opts, err := buildPublishOptions(&c.Config.Publish)
	if err != nil {
		return err
	}
	if args.thread > 0 {
		opts = append(opts, publish.WithThread(args.thread))
	}
	if args.force {
		opts = append(opts, publish.WithSkipUnchanged(false))
	}
	p, err := publish.New(c.Factory, opts...)
	if err != nil {
		return err
	}
	rp, err := p.Publish(ctx, items)
	if rp != nil {
		for _, item := range rp.Items {
			if item.Status == publish.StatusFailed {
				fmt.Printf("FAILED\t%s\t%s\n", item.Remote, item.Err)
			}
		}
		logutil.GetLogger(ctx).Info("publish summary", zap.Int("total", rp.Total), zap.Int("uploaded", rp.Uploaded),
			zap.Int("skipped", rp.Skipped), zap.Int("filtered", rp.Filtered), zap.Int("failed", rp.Failed),
			zap.String("bytes", humanize.IBytes(uint64(rp.Bytes))), zap.Duration("cost", rp.Cost))
	}
	return err
}

func init() {
	register(NewPublishCmd)
}
