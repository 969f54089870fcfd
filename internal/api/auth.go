package api

import (
	"context"
)

// AuthClient covers the unauthenticated account endpoints.
type AuthClient struct {
	c *Client
}

func NewAuthClient(c *Client) *AuthClient {
	return &AuthClient{c: c}
}

// AuthResponse is what a successful login returns; the caller is expected
// to initialize the session with it.
type AuthResponse struct {
	Token string `json:"token"`
	Role  string `json:"role"`
	ID    string `json:"_id"`
}

type LoginRequest struct {
	Email      string `json:"email" validate:"required,email"`
	MotDePasse string `json:"motDePasse" validate:"required"`
}

func (a *AuthClient) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if err := checkPayload(req); err != nil {
		return nil, err
	}
	var res AuthResponse
	if err := a.c.post(ctx, "/users/login", "/users/login", "", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// RegisterRequest is role-discriminated: the backend picks the fields it
// needs for the declared role and ignores the rest.
type RegisterRequest struct {
	Role       string `json:"role" validate:"required,oneof=medecin secretaire patient"`
	Nom        string `json:"nom" validate:"required"`
	Prenom     string `json:"prenom" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Numero     string `json:"numero" validate:"required"`
	MotDePasse string `json:"motDePasse" validate:"required,min=8"`

	// medecin
	Specialite     string `json:"specialite,omitempty"`
	NumeroLicence  string `json:"numeroLicence,omitempty"`
	AdresseCabinet string `json:"adresseCabinet,omitempty"`

	// secretaire
	Bureau       string `json:"bureau,omitempty"`
	DateEmbauche string `json:"dateEmbauche,omitempty"`

	// patient
	DateNaissance string `json:"dateNaissance,omitempty"`
	Adresse       string `json:"adresse,omitempty"`
	Sexe          string `json:"sexe,omitempty"`
	GroupeSanguin string `json:"groupeSanguin,omitempty"`
}

func (a *AuthClient) Register(ctx context.Context, req RegisterRequest) error {
	if err := checkPayload(req); err != nil {
		return err
	}
	return a.c.post(ctx, "/users/register", "/users/register", "", req, nil)
}

func (a *AuthClient) ForgotPassword(ctx context.Context, email string) error {
	body := struct {
		Email string `json:"email"`
	}{Email: email}
	return a.c.post(ctx, "/users/forget-password", "/users/forget-password", "", body, nil)
}
