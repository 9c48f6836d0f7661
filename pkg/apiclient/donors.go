package apiclient

import (
	"context"
	"net/http"

	"givelife/pkg/domain"
)

func (c *Client) Donors(ctx context.Context, token string) ([]domain.Donor, error) {
	var donors []domain.Donor
	if err := c.do(ctx, http.MethodGet, "/api/donors", token, nil, nil, &donors); err != nil {
		return nil, err
	}
	return donors, nil
}

func (c *Client) DonorDonations(ctx context.Context, token, donorID string) ([]domain.Donation, error) {
	var donations []domain.Donation
	if err := c.do(ctx, http.MethodGet, pathf("/api/donations/donor/%s", donorID), token, nil, nil, &donations); err != nil {
		return nil, err
	}
	return donations, nil
}

func (c *Client) HospitalRequests(ctx context.Context, token, hospitalID string) ([]domain.BloodRequest, error) {
	var requests []domain.BloodRequest
	if err := c.do(ctx, http.MethodGet, pathf("/api/requests/hospital/%s", hospitalID), token, nil, nil, &requests); err != nil {
		return nil, err
	}
	return requests, nil
}

func (c *Client) CreateRequest(ctx context.Context, token string, req NewBloodRequest) (domain.BloodRequest, error) {
	var created domain.BloodRequest
	if err := c.do(ctx, http.MethodPost, "/api/requests", token, nil, req, &created); err != nil {
		return domain.BloodRequest{}, err
	}
	return created, nil
}
