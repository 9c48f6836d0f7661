package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"givelife/pkg/domain"
)

// authResponse is the data of every /auth endpoint: {user, token?}.
type authResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

// signedInUser returns the user of a response that must identify one.
func (r authResponse) signedInUser(method, path string) (domain.User, error) {
	if r.User.ID == "" {
		return domain.User{}, &APIError{
			Status:  http.StatusBadGateway,
			Message: fmt.Sprintf("%s %s: response carried no user", method, path),
		}
	}
	return r.User, nil
}

func (c *Client) Login(ctx context.Context, creds domain.Credentials) (domain.User, string, error) {
	var resp authResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", "", nil, creds, &resp); err != nil {
		return domain.User{}, "", err
	}
	user, err := resp.signedInUser(http.MethodPost, "/auth/login")
	if err != nil {
		return domain.User{}, "", err
	}
	return user, resp.Token, nil
}

func (c *Client) RegisterDonor(ctx context.Context, reg domain.DonorRegistration) (domain.User, error) {
	var resp authResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register/donor", "", nil, reg, &resp); err != nil {
		return domain.User{}, err
	}
	return resp.User, nil
}

func (c *Client) RegisterHospital(ctx context.Context, reg domain.HospitalRegistration) (domain.User, error) {
	var resp authResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register/hospital", "", nil, reg, &resp); err != nil {
		return domain.User{}, err
	}
	return resp.User, nil
}

// RegisterStaff creates an admin, rbc or ministry account; the API signs the
// new account in immediately.
func (c *Client) RegisterStaff(ctx context.Context, role domain.UserRole, reg domain.StaffRegistration) (domain.User, string, error) {
	var resp authResponse
	path := pathf("/auth/register/%s", string(role))
	if err := c.do(ctx, http.MethodPost, path, "", nil, reg, &resp); err != nil {
		return domain.User{}, "", err
	}
	user, err := resp.signedInUser(http.MethodPost, path)
	if err != nil {
		return domain.User{}, "", err
	}
	return user, resp.Token, nil
}

func (c *Client) Profile(ctx context.Context, token string) (domain.User, error) {
	var resp authResponse
	if err := c.do(ctx, http.MethodGet, "/auth/profile", token, nil, nil, &resp); err != nil {
		return domain.User{}, err
	}
	return resp.signedInUser(http.MethodGet, "/auth/profile")
}

func (c *Client) UpdateProfile(ctx context.Context, token string, upd domain.ProfileUpdate) (domain.User, error) {
	var resp authResponse
	if err := c.do(ctx, http.MethodPut, "/auth/profile", token, nil, upd, &resp); err != nil {
		return domain.User{}, err
	}
	return resp.signedInUser(http.MethodPut, "/auth/profile")
}
