package postgres

import (
	"context"
	"fmt"

	"adbudget/internal/core/port"
)

// SpendStats aggregates spend records in a period, optionally filtered by
// brand and campaign.
func (s *Store) SpendStats(ctx context.Context, req port.StatsReq) (*port.StatsResp, error) {
	args := []any{req.From, req.To}
	where := ""
	if req.BrandID != nil {
		args = append(args, *req.BrandID)
		where += fmt.Sprintf(" AND brand_id = $%d", len(args))
	}
	if req.CampaignID != nil {
		args = append(args, *req.CampaignID)
		where += fmt.Sprintf(" AND campaign_id = $%d", len(args))
	}
	query := `SELECT COALESCE(count(*), 0), COALESCE(sum(amount), 0)
	FROM spend_records WHERE ts >= $1 AND ts <= $2` + where

	var resp port.StatsResp
	if err := s.pool.QueryRow(ctx, query, args...).Scan(&resp.Records, &resp.Total); err != nil {
		return nil, err
	}
	return &resp, nil
}
