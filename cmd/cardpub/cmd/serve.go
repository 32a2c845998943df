package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"github.com/xxxsen/cardpub/auth"
	"github.com/xxxsen/cardpub/davserver"
	"github.com/xxxsen/cardpub/server"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

func NewServeCmd(c *Context) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the http api in front of the webdav server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			sc := c.Config.Server
			opts, err := buildPublishOptions(&c.Config.Publish)
			if err != nil {
				return err
			}
			svr, err := server.New(sc.Bind,
				server.WithUser(sc.UserInfo),
				server.WithClientFactory(c.Factory),
				server.WithPublishOption(opts...),
				server.WithUploadLimit(sc.UploadLimit),
			)
			if err != nil {
				return err
			}
			logutil.GetLogger(context.Background()).Info("init server succ, start it...", zap.String("bind", sc.Bind),
				zap.String("webdav", c.Config.Webdav.Server))
			return svr.Run()
		},
	}
}

func NewDevDavCmd(c *Context) *cobra.Command {
	return &cobra.Command{
		Use:   "devdav",
		Short: "Run a local digest protected webdav server for development",
		RunE: func(cmd *cobra.Command, _ []string) error {
			dc := c.Config.DevDav
			authOpts := []auth.Option{
				auth.WithRealm(dc.Realm),
				auth.WithLegacy(dc.Legacy),
			}
			if dc.NonceTTL > 0 {
				authOpts = append(authOpts, auth.WithNonceTTL(time.Duration(dc.NonceTTL)*time.Second))
			}
			svr, err := davserver.New(
				davserver.WithRoot(dc.Root),
				davserver.WithPrefix(dc.Prefix),
				davserver.WithUser(dc.UserInfo),
				davserver.WithAuthOption(authOpts...),
			)
			if err != nil {
				return err
			}
			return svr.Run(dc.Bind)
		},
	}
}

func init() {
	register(NewServeCmd)
	register(NewDevDavCmd)
}
