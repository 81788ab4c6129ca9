package types

import "time"

// AuthType identifies how credentials were obtained
type AuthType string

const (
	AuthTypeOAuth AuthType = "oauth"
)

// Credentials holds runtime authentication state
type Credentials struct {
	AccessToken  string
	RefreshToken string
	ExpiryDate   time.Time
	Scopes       []string
	Type         AuthType
}

// StoredCredentials is the serialized form kept in credential storage
type StoredCredentials struct {
	Profile      string   `json:"profile"`
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"refreshToken"`
	ExpiryDate   string   `json:"expiryDate"`
	Scopes       []string `json:"scopes"`
	Type         AuthType `json:"type"`
}
