package apiclient

import (
	"context"
	"net/http"

	"givelife/pkg/domain"
)

func (c *Client) Hospitals(ctx context.Context, token string) ([]domain.Hospital, error) {
	var hospitals []domain.Hospital
	if err := c.do(ctx, http.MethodGet, "/api/admin/hospitals", token, nil, nil, &hospitals); err != nil {
		return nil, err
	}
	return hospitals, nil
}

func (c *Client) CreateHospital(ctx context.Context, token string, reg domain.HospitalRegistration) (domain.Hospital, error) {
	var created domain.Hospital
	if err := c.do(ctx, http.MethodPost, "/api/admin/hospitals", token, nil, reg, &created); err != nil {
		return domain.Hospital{}, err
	}
	return created, nil
}

func (c *Client) AdminActivity(ctx context.Context, token string) ([]domain.Activity, error) {
	var items []domain.Activity
	if err := c.do(ctx, http.MethodGet, "/api/admin/activity", token, nil, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}
