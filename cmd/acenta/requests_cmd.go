package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kaan069/yolsepetigoAcenta/internal/api"
	"github.com/kaan069/yolsepetigoAcenta/internal/model"
)

const (
	outputTable = "table"
	outputJSON  = "json"
)

func newRequestsCmd(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "requests",
		Short: "Manage the company's insurance requests",
		Long: `List, inspect and cancel insurance requests over the partner API.

The partner API key is read from --api-key-file, the config file or the
ACENTA_API_KEY environment variable.`,
	}

	cmd.AddCommand(
		newRequestsListCmd(g),
		newRequestsGetCmd(g),
		newRequestsCancelCmd(g),
	)

	return cmd
}

type requestsListOptions struct {
	status   string
	page     int
	pageSize int
	all      bool
	output   string
}

func newRequestsListCmd(g *globalOptions) *cobra.Command {
	opts := &requestsListOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List requests",
		Long: `List requests, optionally filtered by status.

Examples:
  acenta requests list
  acenta requests list --status pending --page 2 --page-size 50
  acenta requests list --all --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRequestsList(cmd, g, opts)
		},
	}

	cmd.Flags().StringVar(&opts.status, "status", "", "Filter by status (pending, awaiting_approval, awaiting_payment, in_progress, completed, cancelled)")
	cmd.Flags().IntVar(&opts.page, "page", 0, "Page number (server default when 0)")
	cmd.Flags().IntVar(&opts.pageSize, "page-size", 0, "Page size (server default when 0)")
	cmd.Flags().BoolVar(&opts.all, "all", false, "Fetch every page")
	cmd.Flags().StringVarP(&opts.output, "output", "o", outputTable, "Output format (table, json)")

	return cmd
}

func runRequestsList(cmd *cobra.Command, g *globalOptions, opts *requestsListOptions) error {
	if err := validOutput(opts.output); err != nil {
		return err
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

	listOpts := api.ListOptions{
		Status:   model.RequestStatus(strings.TrimSpace(opts.status)),
		Page:     opts.page,
		PageSize: opts.pageSize,
	}

	var rows []api.InsuranceRequestSummary
	if opts.all {
		rows, err = client.ListAllInsuranceRequests(ctx, listOpts)
		if err != nil {
			return err
		}
	} else {
		resp, err := client.ListInsuranceRequests(ctx, listOpts)
		if err != nil {
			return err
		}
		rows = resp.Results
		logger.Debug("listed requests", "count", resp.Count, "page", resp.Page)
	}

	if opts.output == outputJSON {
		if rows == nil {
			rows = []api.InsuranceRequestSummary{}
		}
		return printJSON(cmd.OutOrStdout(), rows)
	}
	return printSummaries(cmd.OutOrStdout(), rows)
}

func printSummaries(w io.Writer, rows []api.InsuranceRequestSummary) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No requests found.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tSERVICE\tINSURED\tPOLICY\tCREATED")
	for _, r := range rows {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			r.RequestID, r.Status.Label(), r.ServiceType.Label(), r.InsuredName, r.PolicyNumber, r.CreatedAt)
	}
	return tw.Flush()
}

type requestsGetOptions struct {
	output string
}

func newRequestsGetCmd(g *globalOptions) *cobra.Command {
	opts := &requestsGetOptions{}

	cmd := &cobra.Command{
		Use:   "get <request-id>",
		Short: "Show one request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRequestsGet(cmd, g, opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", outputTable, "Output format (table, json)")

	return cmd
}

func runRequestsGet(cmd *cobra.Command, g *globalOptions, opts *requestsGetOptions, arg string) error {
	if err := validOutput(opts.output); err != nil {
		return err
	}
	id, err := parseRequestID(arg)
	if err != nil {
		return err
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

	detail, err := client.GetInsuranceRequest(ctx, id)
	if err != nil {
		return err
	}

	if opts.output == outputJSON {
		return printJSON(cmd.OutOrStdout(), detail)
	}
	return printDetail(cmd.OutOrStdout(), detail)
}

func printDetail(w io.Writer, d *api.InsuranceRequestDetail) error {
	driverName, driverPhone := "-", "-"
	if d.Driver != nil {
		driverName = derefOr(d.Driver.Name, "-")
		driverPhone = derefOr(d.Driver.Phone, "-")
	}
	price := "-"
	if d.Pricing != nil && d.Pricing.EstimatedPrice != nil {
		price = *d.Pricing.EstimatedPrice + " " + d.Pricing.Currency
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Request:\t%d\n", d.RequestID)
	fmt.Fprintf(tw, "Status:\t%s\n", d.Status.Label())
	fmt.Fprintf(tw, "Service:\t%s\n", d.ServiceType.Label())
	fmt.Fprintf(tw, "Insured:\t%s (%s)\n", d.InsuredName, d.InsuredPhone)
	fmt.Fprintf(tw, "Plate:\t%s\n", derefOr(d.InsuredPlate, "-"))
	fmt.Fprintf(tw, "Policy:\t%s\n", d.PolicyNumber)
	fmt.Fprintf(tw, "Driver:\t%s (%s)\n", driverName, driverPhone)
	fmt.Fprintf(tw, "Price:\t%s\n", price)
	fmt.Fprintf(tw, "Created:\t%s\n", d.Timeline.CreatedAt)
	fmt.Fprintf(tw, "Accepted:\t%s\n", derefOr(d.Timeline.AcceptedAt, "-"))
	fmt.Fprintf(tw, "Completed:\t%s\n", derefOr(d.Timeline.CompletedAt, "-"))
	fmt.Fprintf(tw, "Tracking:\t%s\n", d.TrackingURL)
	return tw.Flush()
}

type requestsCancelOptions struct {
	yes bool
}

func newRequestsCancelCmd(g *globalOptions) *cobra.Command {
	opts := &requestsCancelOptions{}

	cmd := &cobra.Command{
		Use:   "cancel <request-id>",
		Short: "Cancel a request",
		Long: `Cancel a request. Cancellation is not retried on failure.

Examples:
  acenta requests cancel 501
  acenta requests cancel 501 --yes`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRequestsCancel(cmd, g, opts, args[0])
		},
	}

	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}

func runRequestsCancel(cmd *cobra.Command, g *globalOptions, opts *requestsCancelOptions, arg string) error {
	id, err := parseRequestID(arg)
	if err != nil {
		return err
	}

	ok, err := confirm(cmd, fmt.Sprintf("Cancel request %d?", id), opts.yes)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
		return nil
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

	resp, err := client.CancelInsuranceRequest(ctx, id)
	if err != nil {
		return err
	}

	msg := resp.Message
	if msg == "" {
		msg = "cancelled"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Request %d: %s (%s)\n", resp.RequestID, resp.Status.Label(), msg)
	return nil
}

func validOutput(format string) error {
	switch format {
	case outputTable, outputJSON:
		return nil
	default:
		return fmt.Errorf("%w: --output %q (want table or json)", errInvalidFlag, format)
	}
}
