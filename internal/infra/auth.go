// README: Token verification against the external auth service.
package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Identity holds the verified principal data used by downstream middleware.
type Identity struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"` // "rider" or "captain"
}

// TokenVerifier verifies an opaque bearer token and returns the principal it
// was issued for. Credential storage and token issuance live in the auth
// service; this process only ever sees tokens.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*Identity, error)
}

// authServiceVerifier is the production implementation backed by the auth
// service's verification endpoint.
type authServiceVerifier struct {
	baseURL string
	client  *http.Client
}

// NewAuthServiceVerifier creates a TokenVerifier that POSTs tokens to
// {baseURL}/tokens/verify and expects the identity back as JSON.
func NewAuthServiceVerifier(baseURL string) TokenVerifier {
	return &authServiceVerifier{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 3 * time.Second},
	}
}

func (v *authServiceVerifier) VerifyToken(ctx context.Context, token string) (*Identity, error) {
	body, _ := json.Marshal(map[string]string{"token": token})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.baseURL+"/tokens/verify", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("auth service rejected token: status %d", resp.StatusCode)
	}

	var id Identity
	if err := json.NewDecoder(resp.Body).Decode(&id); err != nil {
		return nil, fmt.Errorf("auth service response: %w", err)
	}
	if id.ID == "" {
		return nil, fmt.Errorf("auth service returned empty principal")
	}
	return &id, nil
}
