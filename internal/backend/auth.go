package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/proplex/proplex-admin/internal/model"
)

// LoginResult is what the backend returns for a successful sign-in.
type LoginResult struct {
	Token   string
	User    model.User
	Modules []string
}

type loginResponse struct {
	Token       string            `json:"token"`
	AccessToken string            `json:"access_token"`
	User        map[string]any    `json:"user"`
	Owner       map[string]any    `json:"owner"`
	Modules     []json.RawMessage `json:"modules"`
}

// Login exchanges credentials for a bearer token. It does not need a session.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var resp loginResponse
	err := c.do(ctx, http.MethodPost, EndpointLogin, nil,
		JSON(map[string]string{"email": email, "password": password}), &resp, false)
	if err != nil {
		return nil, err
	}

	token := resp.Token
	if token == "" {
		token = resp.AccessToken
	}
	if token == "" {
		return nil, fmt.Errorf("login response carried no token")
	}

	user := resp.User
	if user == nil {
		user = resp.Owner
	}
	return &LoginResult{
		Token:   token,
		User:    UserFromMap(user),
		Modules: moduleNames(resp.Modules),
	}, nil
}

// Logout tells the backend the token is no longer used.
func (c *Client) Logout(ctx context.Context) error {
	return c.Post(ctx, EndpointLogout, nil, nil)
}

// Modules lists the dashboard modules available to the current token.
func (c *Client) Modules(ctx context.Context) ([]string, error) {
	var raw []json.RawMessage
	if err := c.Get(ctx, EndpointModules, nil, &raw); err != nil {
		return nil, err
	}
	return moduleNames(raw), nil
}

// UserFromMap builds a User from a loosely typed backend record.
func UserFromMap(m map[string]any) model.User {
	return model.User{
		ID:    scalarString(m["id"]),
		Name:  scalarString(m["name"]),
		Email: scalarString(m["email"]),
		Phone: scalarString(m["phone"]),
		Image: scalarString(m["image"]),
	}
}

// moduleNames accepts modules as plain strings or as objects keyed by
// slug, key or name.
func moduleNames(raw []json.RawMessage) []string {
	names := make([]string, 0, len(raw))
	for _, r := range raw {
		var s string
		if err := json.Unmarshal(r, &s); err == nil {
			if s != "" {
				names = append(names, s)
			}
			continue
		}
		var obj map[string]any
		if err := json.Unmarshal(r, &obj); err != nil {
			continue
		}
		for _, key := range []string{"slug", "key", "name"} {
			if v := scalarString(obj[key]); v != "" {
				names = append(names, v)
				break
			}
		}
	}
	return names
}

func scalarString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}
