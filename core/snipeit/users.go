package snipeit

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// FindUserByEmail looks up a user by exact email address, ignoring case.
func (c *Client) FindUserByEmail(ctx context.Context, email string) (User, bool, error) {
	email = strings.TrimSpace(email)
	op := "find user " + email
	query := url.Values{
		"email":   {email},
		"limit":   {"10"},
		"offset":  {"0"},
		"sort":    {"created_at"},
		"order":   {"desc"},
		"deleted": {"false"},
	}

	var res listResponse[User]
	found, err := c.get(ctx, op, "/users", query, &res)
	if err != nil || !found {
		return User{}, false, err
	}
	for _, u := range res.Rows {
		if strings.EqualFold(strings.TrimSpace(u.Email), email) {
			return u, true, nil
		}
	}
	return User{}, false, nil
}

// CreateUser creates a user and returns the stored record.
func (c *Client) CreateUser(ctx context.Context, req UserRequest) (User, error) {
	var u User
	if err := c.mutate(ctx, "create user "+req.Email, http.MethodPost, "/users", req, &u); err != nil {
		return User{}, err
	}
	if u.ID == 0 {
		return User{}, fmt.Errorf("create user %s: response carried no id", req.Email)
	}
	return u, nil
}
