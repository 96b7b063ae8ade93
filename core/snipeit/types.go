package snipeit

import (
	"encoding/json"
	"fmt"
	"html"
	"sort"
	"strings"
)

// Model is a Snipe-IT asset model.
type Model struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// User is a Snipe-IT user.
type User struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Assignee is the entity an asset is currently checked out to.
type Assignee struct {
	ID   int    `json:"id"`
	Type string `json:"type"`
}

// Asset is a Snipe-IT hardware record.
type Asset struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	AssetTag string `json:"asset_tag"`
	Serial   string `json:"serial"`
	Notes    string `json:"notes"`
	// AssignedTo is nil while the asset is checked in.
	AssignedTo *Assignee `json:"assigned_to"`
}

// normalize undoes the HTML escaping Snipe-IT applies to text fields in responses.
func (a *Asset) normalize() {
	a.Name = html.UnescapeString(a.Name)
	a.AssetTag = html.UnescapeString(a.AssetTag)
	a.Notes = html.UnescapeString(a.Notes)
}

// AssetRequest is the create/update payload for hardware.
// Assignment is never part of this payload.
type AssetRequest struct {
	Archived   bool   `json:"archived"`
	SupplierID int    `json:"supplier_id"`
	AssetTag   string `json:"asset_tag"`
	StatusID   int    `json:"status_id"`
	ModelID    int    `json:"model_id"`
	Name       string `json:"name"`
	Serial     string `json:"serial"`
	Notes      string `json:"notes"`
}

// ModelRequest is the create payload for models.
type ModelRequest struct {
	Name           string `json:"name"`
	Notes          string `json:"notes"`
	CategoryID     int    `json:"category_id"`
	ManufacturerID int    `json:"manufacturer_id"`
}

// UserRequest is the create payload for users.
type UserRequest struct {
	FirstName            string `json:"first_name"`
	LastName             string `json:"last_name"`
	Username             string `json:"username"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
	Email                string `json:"email"`
	Activated            bool   `json:"activated"`
}

// CheckinRequest is the payload for returning an asset.
type CheckinRequest struct {
	StatusID int    `json:"status_id"`
	Note     string `json:"note"`
}

// CheckoutRequest is the payload for assigning an asset to a user.
type CheckoutRequest struct {
	CheckoutToType string `json:"checkout_to_type"`
	AssignedUser   int    `json:"assigned_user"`
	StatusID       int    `json:"status_id"`
	Note           string `json:"note"`
}

// ReferenceKind names a Snipe-IT collection holding configuration references.
type ReferenceKind string

const (
	RefManufacturer ReferenceKind = "manufacturers"
	RefSupplier     ReferenceKind = "suppliers"
	RefStatusLabel  ReferenceKind = "statuslabels"
	RefCategory     ReferenceKind = "categories"
)

// listResponse is the shape of search endpoints.
type listResponse[T any] struct {
	Total    int             `json:"total"`
	Rows     []T             `json:"rows"`
	Status   string          `json:"status"`
	Messages json.RawMessage `json:"messages"`
}

// envelope is the shape of mutation endpoints.
type envelope struct {
	Status   string          `json:"status"`
	Messages json.RawMessage `json:"messages"`
	Payload  json.RawMessage `json:"payload"`
}

// flattenMessages turns the messages field into a flat list.
// Snipe-IT sends a string, a list, or an object mapping field names to
// one or more validation messages.
func flattenMessages(raw json.RawMessage) []string {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return []string{s}
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err == nil {
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var out []string
		for _, k := range keys {
			for _, m := range flattenMessages(fields[k]) {
				out = append(out, fmt.Sprintf("%s: %s", k, m))
			}
		}
		return out
	}

	return []string{strings.TrimSpace(string(raw))}
}
