package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/example/commit-swipe/internal/replay"
)

func replayCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "replay <script.yaml>",
		Short: "Drive the deck from a scripted sequence of drags and buttons",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			script, err := replay.Load(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, opts, func(a *app) error {
				viewer := a.fallback()
				if a.cfg.LocationLat != nil && a.cfg.LocationLng != nil {
					viewer.Lat, viewer.Lng = *a.cfg.LocationLat, *a.cfg.LocationLng
				}
				r := replay.NewRunner(replay.Deps{
					Source:        a.client,
					Submitter:     a.client,
					Journal:       a.journal,
					Viewer:        &viewer,
					UserID:        a.userID,
					Logger:        a.log,
					SettleDelay:   a.cfg.SettleDelay,
					ViewportWidth: a.cfg.ViewportWidth,
				})
				res, err := r.Run(cmd.Context(), script)
				if err != nil {
					return err
				}
				out, err := yaml.Marshal(res)
				if err != nil {
					return fmt.Errorf("encode result: %w", err)
				}
				_, err = cmd.OutOrStdout().Write(out)
				return err
			})
		},
	}
}

func decisionsCmd(opts *rootOptions) *cobra.Command {
	var limit int
	c := &cobra.Command{
		Use:   "decisions",
		Short: "List recent swipe decisions from the decision log",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(a *app) error {
				ds, err := a.decisions.Recent(cmd.Context(), limit)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), ds)
			})
		},
	}
	c.Flags().IntVar(&limit, "limit", 20, "maximum number of decisions")
	return c
}
