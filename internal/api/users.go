package api

import (
	"context"
	"encoding/json"

	"github.com/Yassi1511/pfemedical-go/internal/domain"
)

// UsersClient covers the authenticated profile endpoints shared by every
// role.
type UsersClient struct {
	c  *Client
	ts TokenSource
}

func NewUsersClient(c *Client, ts TokenSource) *UsersClient {
	return &UsersClient{c: c, ts: ts}
}

// Profil is the role-agnostic profile projection. Role-specific fields stay
// in Extra so the profile form can round-trip them without the client
// having to know every backend field.
type Profil struct {
	ID     string          `json:"id"`
	Role   domain.Role     `json:"role"`
	Nom    string          `json:"nom"`
	Prenom string          `json:"prenom"`
	Email  string          `json:"email"`
	Numero string          `json:"numero"`
	Extra  json.RawMessage `json:"-"`
}

func (u *UsersClient) Get(ctx context.Context) (*Profil, error) {
	var raw json.RawMessage
	if err := u.c.get(ctx, "/users/profile", "/users/profile", nil, u.ts.Token(), &raw); err != nil {
		return nil, err
	}
	var wire struct {
		ID     string `json:"_id"`
		Role   string `json:"role"`
		Nom    string `json:"nom"`
		Prenom string `json:"prenom"`
		Email  string `json:"email"`
		Numero string `json:"numero"`
	}
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, err
	}
	return &Profil{
		ID:     wire.ID,
		Role:   domain.Role(wire.Role),
		Nom:    wire.Nom,
		Prenom: wire.Prenom,
		Email:  wire.Email,
		Numero: wire.Numero,
		Extra:  raw,
	}, nil
}

func (u *UsersClient) Update(ctx context.Context, update domain.ProfilUpdate) error {
	return u.c.put(ctx, "/users/profile", "/users/profile", u.ts.Token(), update, nil)
}

// Delete removes the account. Callers must have confirmed with the user
// first; this method sends the request unconditionally.
func (u *UsersClient) Delete(ctx context.Context) error {
	return u.c.delete(ctx, "/users/profile", "/users/profile", u.ts.Token(), nil)
}
