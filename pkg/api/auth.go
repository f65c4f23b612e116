package api

import (
	"context"
	"net/http"

	"gasbot/pkg/models"
)

// AuthResponse covers the token-issuing endpoints. The backend has been
// seen returning tokens under accessToken/refreshToken, access/refresh,
// and nested under tokens, so all spellings are accepted.
type AuthResponse struct {
	AccessToken  string `json:"accessToken"`
	Access       string `json:"access"`
	RefreshToken string `json:"refreshToken"`
	Refresh      string `json:"refresh"`
	Tokens       *struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
	} `json:"tokens"`
	User     *models.User     `json:"user"`
	TempUser *models.TempUser `json:"tempUser"`
}

func (r *AuthResponse) AccessTokenValue() string {
	switch {
	case r.AccessToken != "":
		return r.AccessToken
	case r.Access != "":
		return r.Access
	case r.Tokens != nil:
		return r.Tokens.Access
	}
	return ""
}

func (r *AuthResponse) RefreshTokenValue() string {
	switch {
	case r.RefreshToken != "":
		return r.RefreshToken
	case r.Refresh != "":
		return r.Refresh
	case r.Tokens != nil:
		return r.Tokens.Refresh
	}
	return ""
}

type RegisterPayload struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

func (c *Client) Login(ctx context.Context, identifier, password string) (*AuthResponse, error) {
	var resp AuthResponse
	body := map[string]string{"identifier": identifier, "password": password}
	if err := c.do(ctx, http.MethodPost, epLogin, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Register(ctx context.Context, payload RegisterPayload) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.do(ctx, http.MethodPost, epRegister, payload, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) VerifyOTP(ctx context.Context, tempUserID, code string) (*AuthResponse, error) {
	var resp AuthResponse
	body := map[string]string{"temp_user_id": tempUserID, "otp_code": code}
	if err := c.do(ctx, http.MethodPost, epVerifyOTP, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, epLogout, nil, nil)
}

func (c *Client) Profile(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodGet, epProfile, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) DeleteAccount(ctx context.Context, password string) error {
	return c.do(ctx, http.MethodDelete, epDeleteAccount, map[string]string{"password": password}, nil)
}

func (c *Client) ForgotPassword(ctx context.Context, identifier string) error {
	return c.do(ctx, http.MethodPost, epForgotPassword, map[string]string{"identifier": identifier}, nil)
}

func (c *Client) ResetPassword(ctx context.Context, token, newPassword string) error {
	body := map[string]string{"token": token, "new_password": newPassword}
	return c.do(ctx, http.MethodPost, epResetPassword, body, nil)
}
