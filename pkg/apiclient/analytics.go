package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"givelife/pkg/domain"
)

func (c *Client) HospitalStats(ctx context.Context, token, hospitalID string) (domain.HospitalStats, error) {
	var stats domain.HospitalStats
	if err := c.do(ctx, http.MethodGet, pathf("/api/analytics/hospital/%s/stats", hospitalID), token, nil, nil, &stats); err != nil {
		return domain.HospitalStats{}, err
	}
	return stats, nil
}

func (c *Client) MonthlyReports(ctx context.Context, token, hospitalID string, year int) ([]domain.MonthlyReport, error) {
	var reports []domain.MonthlyReport
	query := url.Values{"year": {strconv.Itoa(year)}}
	if err := c.do(ctx, http.MethodGet, pathf("/api/analytics/hospital/%s/monthly", hospitalID), token, query, nil, &reports); err != nil {
		return nil, err
	}
	return reports, nil
}

func (c *Client) HospitalActivity(ctx context.Context, token, hospitalID string) ([]domain.Activity, error) {
	var items []domain.Activity
	if err := c.do(ctx, http.MethodGet, pathf("/api/analytics/hospital/%s/activity", hospitalID), token, nil, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}
