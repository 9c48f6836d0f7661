package apiclient

import (
	"context"
	"net/http"

	"givelife/pkg/domain"
)

func (c *Client) HospitalInventory(ctx context.Context, token, hospitalID string) ([]domain.InventoryRow, error) {
	var rows []domain.InventoryRow
	if err := c.do(ctx, http.MethodGet, pathf("/api/inventory/hospital/%s", hospitalID), token, nil, nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *Client) UpdateInventory(ctx context.Context, token, hospitalID string, upd InventoryUpdate) (domain.InventoryRow, error) {
	var row domain.InventoryRow
	if err := c.do(ctx, http.MethodPut, pathf("/api/inventory/hospital/%s", hospitalID), token, nil, upd, &row); err != nil {
		return domain.InventoryRow{}, err
	}
	return row, nil
}

// TokenInventory binds a bearer token to the hospital directory and stock
// reads, for use as an inventory.Source.
type TokenInventory struct {
	client *Client
	token  string
}

func (c *Client) InventorySource(token string) TokenInventory {
	return TokenInventory{client: c, token: token}
}

func (t TokenInventory) Hospitals(ctx context.Context) ([]domain.Hospital, error) {
	return t.client.Hospitals(ctx, t.token)
}

func (t TokenInventory) HospitalInventory(ctx context.Context, hospitalID string) ([]domain.InventoryRow, error) {
	return t.client.HospitalInventory(ctx, t.token, hospitalID)
}
