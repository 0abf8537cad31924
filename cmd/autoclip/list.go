package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/autoclip/internal/config"
	"go.klb.dev/autoclip/internal/plugin"
)

func newListCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Load the plugin directory and show what it provides",
		Long: `Loads every plugin in the plugin directory the way the watcher would and
prints the registered plugins in dispatch order, followed by any library that
was rejected and why.`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(cmd *cobra.Command, _ []string) error { return runList(cmd, v) },
	}

	addPluginFlags(cmd)
	addLoggingFlags(cmd)
	addConfigFlag(cmd)

	return cmd
}

func runList(cmd *cobra.Command, v *viper.Viper) error {
	setupLogging(v)

	cfg, err := config.Resolve(v)
	if err != nil {
		return err
	}

	coll := plugin.NewCollection()
	defer coll.Close()

	res, err := newLoader(coll, cfg).LoadDir(cfg.PluginDir)
	if err != nil {
		return err
	}
	printPlugins(cmd.OutOrStdout(), cfg.PluginDir, coll.Instances(), res.Failed)
	return nil
}

func printPlugins(out io.Writer, dir string, instances []*plugin.Instance, failed []error) {
	if len(instances) == 0 {
		fmt.Fprintf(out, "No plugins in %s.\n", dir)
	} else {
		tw := tabwriter.NewWriter(out, 1, 0, 2, ' ', 0)
		_, _ = fmt.Fprintf(tw, "NAME\tBACKEND\tPATH\n")
		_, _ = fmt.Fprintf(tw, "----\t-------\t----\n")
		for _, in := range instances {
			_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", in.Name(), in.Backend(), in.Path())
		}
		_ = tw.Flush()
	}

	if len(failed) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Rejected:")
		for _, err := range failed {
			fmt.Fprintf(out, "  %v\n", err)
		}
	}
}
