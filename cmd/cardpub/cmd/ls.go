package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func NewListCmd(c *Context) *cobra.Command {
	subc := &cobra.Command{
		Use:   "ls PATH",
		Short: "List a remote directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return onRunList(c, args[0])
		},
	}
	return subc
}

func onRunList(c *Context, dir string) error {
	cli, err := c.Factory()
	if err != nil {
		return err
	}
	ctx, cancel := c.opContext()
	defer cancel()
	rs, err := cli.ListDirectory(ctx, dir)
	if err != nil {
		return fmt.Errorf("list directory failed, err:%w", err)
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, item := range rs.Folders {
		fmt.Fprintf(w, "DIR\t-\t-\t%s/\n", item.Name)
	}
	for _, item := range rs.Files {
		fmt.Fprintf(w, "FILE\t%s\t%s\t%s\n", item.SizeFormatted, item.LastModified, item.Name)
	}
	return w.Flush()
}

func init() {
	register(NewListCmd)
}
