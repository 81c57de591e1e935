package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"strings"

	httpadapter "soundtik/contexts/campaign-promotion/campaign-service/adapters/http"
	campaignhttp "soundtik/contexts/campaign-promotion/campaign-service/transport/http"

	"github.com/spf13/cobra"
)

// backend is the slice of bootstrap.CLIApp the commands use.
type backend interface {
	PendingCampaigns(ctx context.Context, adminID string, limit int) (campaignhttp.ListCampaignsResponse, error)
	ApproveCampaign(ctx context.Context, adminID string, campaignID string, notes string) (campaignhttp.GetCampaignResponse, error)
	RejectCampaign(ctx context.Context, adminID string, campaignID string, notes string) (campaignhttp.GetCampaignResponse, error)
	ShowCampaign(ctx context.Context, campaignID string) (campaignhttp.GetCampaignResponse, error)
	CampaignMetrics(ctx context.Context, campaignID string) (campaignhttp.GetMetricsResponse, error)
	Close() error
}

type openBackendFunc func(ctx context.Context) (backend, error)

func newRootCmd(open openBackendFunc) *cobra.Command {
	var adminID string

	rootCmd := &cobra.Command{
		Use:           "soundtikctl",
		Short:         "Operate SoundTik campaigns",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&adminID, "admin-id", "", "Operator id recorded on review decisions (or SOUNDTIK_ADMIN_ID)")

	resolveAdmin := func() (string, error) {
		id := strings.TrimSpace(adminID)
		if id == "" {
			id = strings.TrimSpace(os.Getenv("SOUNDTIK_ADMIN_ID"))
		}
		if id == "" {
			return "", errors.New("--admin-id is required")
		}
		return id, nil
	}

	rootCmd.AddCommand(
		newReviewCmd(open, resolveAdmin),
		newCampaignCmd(open),
		newEstimateCmd(),
	)
	return rootCmd
}

func newReviewCmd(open openBackendFunc, resolveAdmin func() (string, error)) *cobra.Command {
	reviewCmd := &cobra.Command{
		Use:   "review",
		Short: "Review campaigns awaiting approval",
	}

	var limit int
	pendingCmd := &cobra.Command{
		Use:   "pending",
		Short: "List campaigns awaiting review, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			admin, err := resolveAdmin()
			if err != nil {
				return err
			}
			return withBackend(cmd, open, func(b backend) (any, error) {
				return b.PendingCampaigns(cmd.Context(), admin, limit)
			})
		},
	}
	pendingCmd.Flags().IntVar(&limit, "limit", 50, "Maximum campaigns to list")

	var approveNotes string
	approveCmd := &cobra.Command{
		Use:   "approve <campaign-id>",
		Short: "Approve a pending campaign and start it now",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			admin, err := resolveAdmin()
			if err != nil {
				return err
			}
			return withBackend(cmd, open, func(b backend) (any, error) {
				return b.ApproveCampaign(cmd.Context(), admin, args[0], approveNotes)
			})
		},
	}
	approveCmd.Flags().StringVar(&approveNotes, "notes", "", "Optional notes for the artist")

	var rejectNotes string
	rejectCmd := &cobra.Command{
		Use:   "reject <campaign-id>",
		Short: "Reject a pending campaign",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			admin, err := resolveAdmin()
			if err != nil {
				return err
			}
			return withBackend(cmd, open, func(b backend) (any, error) {
				return b.RejectCampaign(cmd.Context(), admin, args[0], rejectNotes)
			})
		},
	}
	rejectCmd.Flags().StringVar(&rejectNotes, "notes", "", "Reason shown to the artist")
	_ = rejectCmd.MarkFlagRequired("notes")

	reviewCmd.AddCommand(pendingCmd, approveCmd, rejectCmd)
	return reviewCmd
}

func newCampaignCmd(open openBackendFunc) *cobra.Command {
	campaignCmd := &cobra.Command{
		Use:   "campaign",
		Short: "Inspect campaigns",
	}
	showCmd := &cobra.Command{
		Use:   "show <campaign-id>",
		Short: "Print a campaign",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd, open, func(b backend) (any, error) {
				return b.ShowCampaign(cmd.Context(), args[0])
			})
		},
	}
	metricsCmd := &cobra.Command{
		Use:   "metrics <campaign-id>",
		Short: "Print the metrics summary of a campaign",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd, open, func(b backend) (any, error) {
				return b.CampaignMetrics(cmd.Context(), args[0])
			})
		},
	}
	campaignCmd.AddCommand(showCmd, metricsCmd)
	return campaignCmd
}

// newEstimateCmd needs no store, so it does not open a backend.
func newEstimateCmd() *cobra.Command {
	var budget float64
	var duration int
	estimateCmd := &cobra.Command{
		Use:   "estimate",
		Short: "Estimate reach for a budget and duration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			estimate, err := httpadapter.Handler{}.EstimateReachHandler(budget, duration)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), estimate)
		},
	}
	estimateCmd.Flags().Float64Var(&budget, "budget", 200, "Budget in USD")
	estimateCmd.Flags().IntVar(&duration, "duration", 30, "Duration in days")
	return estimateCmd
}

func withBackend(cmd *cobra.Command, open openBackendFunc, fn func(b backend) (any, error)) error {
	b, err := open(cmd.Context())
	if err != nil {
		return err
	}
	defer b.Close()

	out, err := fn(b)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), out)
}

func printJSON(w io.Writer, payload any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}
