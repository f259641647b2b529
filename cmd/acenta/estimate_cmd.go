package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kaan069/yolsepetigoAcenta/internal/api"
	"github.com/kaan069/yolsepetigoAcenta/internal/geo"
	"github.com/kaan069/yolsepetigoAcenta/internal/model"
)

type estimateOptions struct {
	service    string
	vehicle    string
	pickupLat  float64
	pickupLon  float64
	dropoffLat float64
	dropoffLon float64
	km         float64
	output     string
}

func newEstimateCmd(g *globalOptions) *cobra.Command {
	opts := &estimateOptions{}

	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Ask for a price estimate",
		Long: `Ask the partner API for a price estimate.

When a dropoff is given and --km is not, the distance is the great-circle
distance between pickup and dropoff.

Examples:
  acenta estimate --service towTruck --vehicle car \
    --pickup-lat 41.0082 --pickup-lon 28.9784 \
    --dropoff-lat 40.9923 --dropoff-lon 29.0244
  acenta estimate --service roadAssistance --pickup-lat 39.92 --pickup-lon 32.85`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runEstimate(cmd, g, opts)
		},
	}

	cmd.Flags().StringVar(&opts.service, "service", string(model.ServiceTowTruck), "Service type (towTruck, crane, roadAssistance, homeToHomeMoving, cityToCity)")
	cmd.Flags().StringVar(&opts.vehicle, "vehicle", "", "Vehicle type for tow-truck pricing")
	cmd.Flags().Float64Var(&opts.pickupLat, "pickup-lat", 0, "Pickup latitude (required)")
	cmd.Flags().Float64Var(&opts.pickupLon, "pickup-lon", 0, "Pickup longitude (required)")
	cmd.Flags().Float64Var(&opts.dropoffLat, "dropoff-lat", 0, "Dropoff latitude")
	cmd.Flags().Float64Var(&opts.dropoffLon, "dropoff-lon", 0, "Dropoff longitude")
	cmd.Flags().Float64Var(&opts.km, "km", 0, "Route distance in km (computed from coordinates when unset)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", outputTable, "Output format (table, json)")
	cmd.MarkFlagRequired("pickup-lat")
	cmd.MarkFlagRequired("pickup-lon")
	cmd.MarkFlagsRequiredTogether("dropoff-lat", "dropoff-lon")

	return cmd
}

func runEstimate(cmd *cobra.Command, g *globalOptions, opts *estimateOptions) error {
	if err := validOutput(opts.output); err != nil {
		return err
	}

	payload := estimatePayload(opts,
		cmd.Flags().Changed("dropoff-lat"),
		cmd.Flags().Changed("km"),
	)
	if err := payload.Validate(); err != nil {
		return err
	}
	if payload.ServiceType.NeedsDropoff() && payload.EstimatedKm == nil {
		return fmt.Errorf("%w: %s needs --dropoff-lat/--dropoff-lon or --km", errInvalidFlag, payload.ServiceType)
	}

	cfg, logger, err := g.setup()
	if err != nil {
		return err
	}
	client, err := g.newAPIClient(cfg, logger, nil)
	if err != nil {
		return err
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	resp, err := client.EstimatePrice(ctx, payload)
	if err != nil {
		return err
	}

	if opts.output == outputJSON {
		return printJSON(cmd.OutOrStdout(), resp)
	}

	out := cmd.OutOrStdout()
	if resp.EstimatedPrice == nil {
		// Some services are priced by the operator after inspection.
		fmt.Fprintf(out, "%s: %s\n", resp.ServiceType.Label(), resp.Message)
		return nil
	}
	fmt.Fprintf(out, "%s: %s %s\n", resp.ServiceType.Label(), *resp.EstimatedPrice, resp.Currency)
	if b := resp.Breakdown; b != nil {
		fmt.Fprintf(out, "  base %s, commission %s, tax %s, total %s\n", b.BasePrice, b.Commission, b.Tax, b.Total)
	}
	return nil
}

// estimatePayload builds the request from flags. The distance is derived
// from the coordinates unless --km was given.
func estimatePayload(opts *estimateOptions, hasDropoff, hasKm bool) api.PricingEstimatePayload {
	p := api.PricingEstimatePayload{
		ServiceType:     model.ServiceType(strings.TrimSpace(opts.service)),
		VehicleType:     model.VehicleType(strings.TrimSpace(opts.vehicle)),
		PickupLatitude:  opts.pickupLat,
		PickupLongitude: opts.pickupLon,
	}

	if hasDropoff {
		lat, lon := opts.dropoffLat, opts.dropoffLon
		p.DropoffLatitude = &lat
		p.DropoffLongitude = &lon
	}

	switch {
	case hasKm:
		km := opts.km
		p.EstimatedKm = &km
	case hasDropoff:
		km := math.Round(geo.DistanceKm(opts.pickupLat, opts.pickupLon, opts.dropoffLat, opts.dropoffLon)*10) / 10
		p.EstimatedKm = &km
	}

	return p
}
