package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kaan069/yolsepetigoAcenta/internal/geo"
	"github.com/kaan069/yolsepetigoAcenta/internal/locationshare"
)

type shareLocationOptions struct {
	token    string
	lat      float64
	lon      float64
	accuracy float64
}

func newShareLocationCmd(g *globalOptions) *cobra.Command {
	opts := &shareLocationOptions{}

	cmd := &cobra.Command{
		Use:   "share-location",
		Short: "Send one location fix for a share link",
		Long: `Send one location fix over the location-share socket and wait for the
server to confirm it. There is no automatic retry; run the command again to
retry.

Examples:
  acenta share-location --token c81e728d9d4c2f63 --lat 41.0082 --lon 28.9784`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runShareLocation(cmd, g, opts)
		},
	}

	cmd.Flags().StringVar(&opts.token, "token", "", "Share token from the link (required)")
	cmd.Flags().Float64Var(&opts.lat, "lat", 0, "Latitude in decimal degrees (required)")
	cmd.Flags().Float64Var(&opts.lon, "lon", 0, "Longitude in decimal degrees (required)")
	cmd.Flags().Float64Var(&opts.accuracy, "accuracy", 0, "Reported accuracy in meters")
	cmd.MarkFlagRequired("token")
	cmd.MarkFlagRequired("lat")
	cmd.MarkFlagRequired("lon")

	return cmd
}

func runShareLocation(cmd *cobra.Command, g *globalOptions, opts *shareLocationOptions) error {
	if err := geo.ValidateCoordinates(opts.lat, opts.lon); err != nil {
		return fmt.Errorf("%w: %v", errInvalidFlag, err)
	}

	cfg, logger, err := g.setup()
	if err != nil {
		return err
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	locator := geo.StaticLocator{Position: geo.Position{
		Latitude:       opts.lat,
		Longitude:      opts.lon,
		AccuracyMeters: opts.accuracy,
	}}
	sharer := locationshare.New(cfg.LocationShare, locator, logger, nil)

	pos, err := sharer.Share(ctx, strings.TrimSpace(opts.token))
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), locationshare.UserMessage(err))
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Konum gonderildi (%.6f, %.6f)\n", pos.Latitude, pos.Longitude)
	return nil
}
