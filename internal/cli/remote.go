package cli

import (
	"errors"
	"net/http"
	"time"

	"ecoledger/internal/gateway/handler/dto"
	"ecoledger/internal/gateway/handler/rpc"

	"github.com/spf13/cobra"
)

func (o *rootOptions) client() *rpc.Client {
	return rpc.NewClient(&http.Client{Timeout: 15 * time.Second}, o.server)
}

func newScanCmd(opts *rootOptions) *cobra.Command {
	var (
		userID   string
		category string
		quantity int
	)

	cmd := &cobra.Command{
		Use:     "scan",
		Short:   "Record a recycling scan",
		Example: `  ecoctl scan --user user001 --category plastic --quantity 5`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req := dto.ScanRequest{UserID: userID, Category: category}
			if cmd.Flags().Changed("quantity") {
				req.Quantity = &quantity
			}
			res, err := opts.client().RecordScan(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "user id")
	cmd.Flags().StringVar(&category, "category", "", "recyclable category")
	cmd.Flags().IntVar(&quantity, "quantity", 1, "number of items")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("category")

	return cmd
}

func newSummaryCmd(opts *rootOptions) *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show a user's CO2 summary",
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := opts.client().GetSummary(cmd.Context(), userID)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "user id")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func newNearestCmd(opts *rootOptions) *cobra.Command {
	var (
		lat, lon float64
		limit    int
	)

	cmd := &cobra.Command{
		Use:     "nearest",
		Short:   "Find the recycling centers closest to a point",
		Example: `  ecoctl nearest --lat 31.22 --lon 75.64 --limit 3`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("lat") || !cmd.Flags().Changed("lon") {
				return errors.New("--lat and --lon are required")
			}
			req := dto.NearestRequest{Latitude: &lat, Longitude: &lon}
			if cmd.Flags().Changed("limit") {
				req.Limit = &limit
			}
			res, err := opts.client().FindNearest(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}

	cmd.Flags().Float64Var(&lat, "lat", 0, "latitude in degrees")
	cmd.Flags().Float64Var(&lon, "lon", 0, "longitude in degrees")
	cmd.Flags().IntVar(&limit, "limit", 5, "maximum number of centers")

	return cmd
}
