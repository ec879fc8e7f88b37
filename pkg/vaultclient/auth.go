package vaultclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/cuemby/rotator-helper/pkg/rotatorerr"
)

// Prelogin fetches the KDF parameters for an account.
func (c *Client) Prelogin(ctx context.Context, email string) (KdfInfo, error) {
	var info KdfInfo
	err := c.doJSON(ctx, http.MethodPost, "/api/accounts/prelogin", map[string]string{"email": email}, &info)
	if err != nil {
		return KdfInfo{}, fmt.Errorf("prelogin: %w", err)
	}
	return info, nil
}

// LoginPassword performs the OAuth2 password grant and stores the
// resulting bearer token on the client.
func (c *Client) LoginPassword(ctx context.Context, email, masterPasswordHash string) error {
	form := formEncode(map[string]string{
		"grant_type":        "password",
		"username":          email,
		"password":          masterPasswordHash,
		"scope":             "api offline_access",
		"client_id":         "web",
		"device_type":       "2",
		"device_identifier": "rotator-helper",
		"device_name":       "rotator-helper",
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/identity/connect/token", strings.NewReader(form))
	if err != nil {
		return rotatorerr.New(rotatorerr.Transport, "vaultclient.LoginPassword: build request", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return rotatorerr.New(rotatorerr.Transport, "vaultclient.LoginPassword", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return rotatorerr.New(rotatorerr.Transport, "vaultclient.LoginPassword: read body", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return rotatorerr.New(rotatorerr.Auth, "vaultclient.LoginPassword",
			fmt.Errorf("status %d: %s", resp.StatusCode, string(body)))
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return rotatorerr.New(rotatorerr.Auth, "vaultclient.LoginPassword: decode token response", err)
	}
	if tokenResp.AccessToken == "" {
		return rotatorerr.New(rotatorerr.Auth, "vaultclient.LoginPassword", fmt.Errorf("no access_token in login response"))
	}

	c.setToken(tokenResp.AccessToken)
	return nil
}
