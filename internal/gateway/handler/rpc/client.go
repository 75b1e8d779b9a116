package rpc

import (
	"context"
	"strings"

	"ecoledger/internal/gateway/handler/dto"

	"connectrpc.com/connect"
)

// Client calls the gateway's connect procedures.
type Client struct {
	recordScan  *connect.Client[dto.ScanRequest, dto.ScanResponse]
	getSummary  *connect.Client[dto.SummaryRequest, dto.SummaryResponse]
	findNearest *connect.Client[dto.NearestRequest, dto.NearestResponse]
}

func NewClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{CodecOption()}, opts...)
	return &Client{
		recordScan:  connect.NewClient[dto.ScanRequest, dto.ScanResponse](httpClient, baseURL+CarbonServiceRecordScanProcedure, opts...),
		getSummary:  connect.NewClient[dto.SummaryRequest, dto.SummaryResponse](httpClient, baseURL+CarbonServiceGetSummaryProcedure, opts...),
		findNearest: connect.NewClient[dto.NearestRequest, dto.NearestResponse](httpClient, baseURL+LocationServiceFindNearestProcedure, opts...),
	}
}

func (c *Client) RecordScan(ctx context.Context, req dto.ScanRequest) (dto.ScanResponse, error) {
	res, err := c.recordScan.CallUnary(ctx, connect.NewRequest(&req))
	if err != nil {
		return dto.ScanResponse{}, err
	}
	return *res.Msg, nil
}

func (c *Client) GetSummary(ctx context.Context, userID string) (dto.SummaryResponse, error) {
	res, err := c.getSummary.CallUnary(ctx, connect.NewRequest(&dto.SummaryRequest{UserID: userID}))
	if err != nil {
		return dto.SummaryResponse{}, err
	}
	return *res.Msg, nil
}

func (c *Client) FindNearest(ctx context.Context, req dto.NearestRequest) (dto.NearestResponse, error) {
	res, err := c.findNearest.CallUnary(ctx, connect.NewRequest(&req))
	if err != nil {
		return dto.NearestResponse{}, err
	}
	return *res.Msg, nil
}
