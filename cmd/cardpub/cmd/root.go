package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/xxxsen/cardpub/config"
	"github.com/xxxsen/cardpub/davclient"
	"github.com/xxxsen/common/logger"
)

const (
	defaultConfigFileEnv = "CARDPUB_CONFIG"
	defaultConfigFile    = "/etc/cardpub/config.json"
)

var cmds []CreateFunc

type Context struct {
	Config  *config.Config
	Factory davclient.Factory
}

type CreateFunc func(ctx *Context) *cobra.Command

func register(cr CreateFunc) {
	cmds = append(cmds, cr)
}

func initContext(ctx *Context, cfgs []string, verbose bool) error {
	var c *config.Config
	var err error
	for _, cfg := range cfgs {
		if len(cfg) == 0 {
			continue
		}
		c, err = config.Parse(cfg)
		if err == nil {
			break
		}
	}
	if c == nil {
		return fmt.Errorf("no valid config file found, last err:%w", err)
	}
	if verbose {
		c.Webdav.Verbose = true
		c.LogInfo.Level = "debug"
	}
	ctx.Config = c
	li := c.LogInfo
	logger.Init(li.File, li.Level, int(li.FileCount), int(li.FileSize), int(li.KeepDays), li.Console)
	opts := []davclient.Option{
		davclient.WithAuth(c.Webdav.User, c.Webdav.Password),
		davclient.WithVerbose(c.Webdav.Verbose),
	}
	if len(c.Webdav.UserAgent) != 0 {
		opts = append(opts, davclient.WithUserAgent(c.Webdav.UserAgent))
	}
	ctx.Factory = davclient.NewFactory(c.Webdav.Server, opts...)
	return nil
}

// opContext bounds one client operation by the configured timeout.
func (c *Context) opContext() (context.Context, context.CancelFunc) {
	if c.Config.Webdav.Timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), time.Duration(c.Config.Webdav.Timeout)*time.Second)
}

func NewRoot() *cobra.Command {
	var configFile string
	var verbose bool
	ctx := &Context{}
	var rootCmd = &cobra.Command{
		Use:           "cardpub",
		Short:         "Publish product card images to a digest protected WebDAV server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	for _, cr := range cmds {
		rootCmd.AddCommand(cr(ctx))
	}
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfgs := []string{configFile}
		if len(configFile) == 0 {
			envConfigFile, _ := os.LookupEnv(defaultConfigFileEnv)
			cfgs = []string{envConfigFile, defaultConfigFile}
		}
		return initContext(ctx, cfgs, verbose)
	}
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every digest/webdav protocol step")
	return rootCmd
}
