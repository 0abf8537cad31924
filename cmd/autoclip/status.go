package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/autoclip/internal/control"
	"go.klb.dev/autoclip/internal/ipc"
)

func newStatusCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the running daemon's plugins and counters",
		Long: `Asks the autoclip daemon running for this user, over its control socket,
which plugins it has loaded and how many clipboard changes it has handled.

The same data is served as JSON at GET /v1/status on the socket.`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(cmd *cobra.Command, _ []string) error { return runStatus(cmd, v) },
	}

	f := cmd.Flags()
	f.Bool("json", false, "output raw JSON")
	addConfigFlag(cmd)

	return cmd
}

func runStatus(cmd *cobra.Command, v *viper.Viper) error {
	if !ipc.IsRunning() {
		return fmt.Errorf("no autoclip daemon is listening on %s", ipc.SocketPath())
	}

	c, err := control.Dial(ipc.Dial)
	if err != nil {
		return err
	}
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	resp, err := c.Status(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if v.GetBool("json") {
		enc, _ := json.MarshalIndent(resp, "", "  ")
		fmt.Fprintln(out, string(enc))
		return nil
	}

	printStatus(out, resp, time.Now())
	return nil
}

func printStatus(out io.Writer, resp *control.StatusResponse, now time.Time) {
	w := tabwriter.NewWriter(out, 1, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Version:\t%s\n", resp.Version)
	fmt.Fprintf(w, "PID:\t%d\n", resp.PID)
	fmt.Fprintf(w, "Started:\t%s (%s)\n", resp.StartedAt.UTC().Format(time.RFC3339), fmtAge(resp.StartedAt, now))
	fmt.Fprintf(w, "Interval:\t%s\n", resp.PollingInterval)
	fmt.Fprintf(w, "Plugin dir:\t%s\n", resp.PluginDir)
	fmt.Fprintf(w, "Changes:\t%d seen, %d rewritten, %d ignored\n", resp.Stats.Changes, resp.Stats.Rewrites, resp.Stats.Ignored)
	if resp.Stats.ReadErrors > 0 {
		fmt.Fprintf(w, "Read errors:\t%d\n", resp.Stats.ReadErrors)
	}
	if !resp.Stats.LastRewriteAt.IsZero() {
		fmt.Fprintf(w, "Last rewrite:\t%s\n", fmtAge(resp.Stats.LastRewriteAt, now))
	}
	fmt.Fprintln(w)
	_ = w.Flush()

	if len(resp.Plugins) == 0 {
		fmt.Fprintln(out, "No plugins loaded.")
		return
	}

	tw := tabwriter.NewWriter(out, 1, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(tw, "#\tNAME\tBACKEND\tPATH\n")
	_, _ = fmt.Fprintf(tw, "-\t----\t-------\t----\n")
	for i, p := range resp.Plugins {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i+1, p.Name, p.Backend, p.Path)
	}
	_ = tw.Flush()
}

func fmtAge(t, now time.Time) string {
	age := now.Sub(t).Round(time.Second)
	if age < time.Minute {
		return fmt.Sprintf("%ds ago", int(age.Seconds()))
	}
	if age < time.Hour {
		return fmt.Sprintf("%dm ago", int(age.Minutes()))
	}
	return t.Format("15:04:05")
}
