package auth

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/loopline-dev/loopline/pkg/api"
	"github.com/loopline-dev/loopline/pkg/token"
)

// ErrNoTokenInResponse is returned when a login or registration response
// carried no access token in any recognized shape.
var ErrNoTokenInResponse = errors.New("auth: response carried no access token")

// normalizeCredentials folds the backend's response shapes into one
// canonical Credentials value. Deployments have answered with the user at
// the top level, nested under "user", nested under "data.user", or only
// embedded in the token payload; all variance is absorbed here so the rest
// of the client sees exactly one shape.
func normalizeCredentials(raw json.RawMessage) (*api.Credentials, error) {
	var shape struct {
		AccessToken string          `json:"access_token"`
		TokenType   string          `json:"token_type"`
		User        json.RawMessage `json:"user"`
		Data        *struct {
			User json.RawMessage `json:"user"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &shape); err != nil {
		return nil, fmt.Errorf("auth: decode response: %w", err)
	}
	if shape.AccessToken == "" {
		return nil, ErrNoTokenInResponse
	}

	creds := &api.Credentials{Token: shape.AccessToken}

	userRaw := shape.User
	if len(userRaw) == 0 && shape.Data != nil {
		userRaw = shape.Data.User
	}
	if len(userRaw) == 0 {
		// Some responses omit the nested profile; fall back to the user
		// embedded in the token payload, then to the response itself being
		// the user object.
		if p, err := token.Decode(shape.AccessToken); err == nil && len(p.User) > 0 {
			userRaw = p.User
		} else {
			userRaw = raw
		}
	}

	var user api.User
	if err := json.Unmarshal(userRaw, &user); err != nil {
		return nil, fmt.Errorf("auth: decode user: %w", err)
	}
	if user.ID != "" || user.Email != "" {
		creds.User = &user
	}
	return creds, nil
}
