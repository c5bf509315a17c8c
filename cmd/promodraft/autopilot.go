package main

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"promodraft/internal/autopilot"
)

var autopilotOnce bool

var autopilotCmd = &cobra.Command{
	Use:   "autopilot",
	Short: "Draft a post every AUTOPILOT_INTERVAL_SEC until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), llmRequired)
		if err != nil {
			return err
		}
		defer a.Close()

		opts := autopilot.Options{
			Interval: time.Duration(a.cfg.AutopilotIntervalSec) * time.Second,
			Reload:   a.cfg.AutopilotReload,
		}
		if provider := strings.TrimSpace(a.cfg.AutopilotPublish); provider != "" {
			opts.Publish = func(ctx context.Context, draftID string) error {
				_, err := a.publish(cmd, draftID, provider)
				return err
			}
		}
		if a.cfg.AutopilotExport {
			opts.ExportDir = filepath.Join(a.cfg.OutputDir, "autopilot")
		}

		svc := autopilot.NewService(a.svc, opts, a.log)
		if autopilotOnce {
			res, err := svc.RunCycle(cmd.Context())
			if err != nil {
				return err
			}
			a.log.Sugar().Infof("autopilot cycle done draft=%s item=%s", res.Draft.ID, res.Draft.Item.Name)
			return nil
		}
		return svc.Run(cmd.Context())
	},
}

func init() {
	autopilotCmd.Flags().BoolVar(&autopilotOnce, "once", false, "run a single cycle and exit")
	rootCmd.AddCommand(autopilotCmd)
}
