package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/dl-alexandre/dsync/internal/types"
	"github.com/dl-alexandre/dsync/internal/utils"
	"github.com/zalando/go-keyring"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const (
	serviceName        = "dsync"
	tokenRefreshBuffer = 5 * time.Minute
)

// Manager handles authentication operations
type Manager struct {
	configDir      string
	useKeyring     bool
	storage        StorageBackend
	oauthConfig    *oauth2.Config
	storageWarning string
}

// NewManager creates an auth manager, preferring the system keyring and
// falling back to encrypted file storage when the keyring is unavailable.
func NewManager(configDir string) *Manager {
	mgr := &Manager{configDir: configDir}

	if checkKeyringAvailable() {
		mgr.storage = NewKeyringStorage(serviceName)
		mgr.useKeyring = true
		return mgr
	}

	storage, err := NewEncryptedFileStorage(configDir)
	if err != nil {
		mgr.storageWarning = fmt.Sprintf("WARNING: credential storage setup failed: %v", err)
		return mgr
	}
	mgr.storage = storage
	mgr.storageWarning = "INFO: System keyring not available. Using encrypted file storage."
	return mgr
}

// checkKeyringAvailable tests if the system keyring is available
func checkKeyringAvailable() bool {
	testKey := "dsync-test"
	if err := keyring.Set(serviceName, testKey, "test"); err != nil {
		return false
	}
	_ = keyring.Delete(serviceName, testKey)
	return true
}

// SetOAuthConfig sets the OAuth2 configuration
func (m *Manager) SetOAuthConfig(clientID, clientSecret string, scopes []string) {
	m.oauthConfig = &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Scopes:       scopes,
		Endpoint:     google.Endpoint,
		RedirectURL:  "http://localhost:8085/callback",
	}
}

// GetOAuthConfig returns the current OAuth2 configuration
func (m *Manager) GetOAuthConfig() *oauth2.Config {
	return m.oauthConfig
}

// LoadCredentials loads stored credentials for a profile
func (m *Manager) LoadCredentials(profile string) (*types.Credentials, error) {
	if m.storage == nil {
		return nil, fmt.Errorf("no credential storage available")
	}
	data, err := m.storage.Load(profile)
	if err != nil {
		return nil, err
	}

	var stored types.StoredCredentials
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("failed to parse credentials: %w", err)
	}
	expiryDate, err := time.Parse(time.RFC3339, stored.ExpiryDate)
	if err != nil {
		return nil, fmt.Errorf("invalid expiry date: %w", err)
	}

	return &types.Credentials{
		AccessToken:  stored.AccessToken,
		RefreshToken: stored.RefreshToken,
		ExpiryDate:   expiryDate,
		Scopes:       stored.Scopes,
		Type:         stored.Type,
	}, nil
}

// SaveCredentials saves credentials for a profile
func (m *Manager) SaveCredentials(profile string, creds *types.Credentials) error {
	if m.storage == nil {
		return fmt.Errorf("no credential storage available")
	}
	stored := types.StoredCredentials{
		Profile:      profile,
		AccessToken:  creds.AccessToken,
		RefreshToken: creds.RefreshToken,
		ExpiryDate:   creds.ExpiryDate.Format(time.RFC3339),
		Scopes:       creds.Scopes,
		Type:         creds.Type,
	}

	data, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}
	return m.storage.Save(profile, data)
}

// DeleteCredentials removes credentials for a profile
func (m *Manager) DeleteCredentials(profile string) error {
	if m.storage == nil {
		return fmt.Errorf("no credential storage available")
	}
	return m.storage.Delete(profile)
}

// NeedsRefresh checks if credentials need refreshing
func (m *Manager) NeedsRefresh(creds *types.Credentials) bool {
	return time.Now().Add(tokenRefreshBuffer).After(creds.ExpiryDate)
}

// RefreshCredentials refreshes OAuth2 tokens
func (m *Manager) RefreshCredentials(ctx context.Context, creds *types.Credentials) (*types.Credentials, error) {
	if m.oauthConfig == nil {
		return nil, fmt.Errorf("OAuth config not set")
	}

	token := &oauth2.Token{
		AccessToken:  creds.AccessToken,
		RefreshToken: creds.RefreshToken,
		Expiry:       creds.ExpiryDate,
	}

	newToken, err := m.oauthConfig.TokenSource(ctx, token).Token()
	if err != nil {
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}

	return &types.Credentials{
		AccessToken:  newToken.AccessToken,
		RefreshToken: newToken.RefreshToken,
		ExpiryDate:   newToken.Expiry,
		Scopes:       creds.Scopes,
		Type:         types.AuthTypeOAuth,
	}, nil
}

// GetValidCredentials returns valid credentials, refreshing if necessary
func (m *Manager) GetValidCredentials(ctx context.Context, profile string) (*types.Credentials, error) {
	creds, err := m.LoadCredentials(profile)
	if err != nil {
		return nil, utils.NewAppError(utils.NewCLIError(utils.ErrCodeAuthRequired,
			"No credentials found. Run 'dsync auth login' first.").Build())
	}

	if m.NeedsRefresh(creds) {
		newCreds, err := m.RefreshCredentials(ctx, creds)
		if err != nil {
			return nil, utils.NewAppError(utils.NewCLIError(utils.ErrCodeAuthExpired,
				"Token refresh failed. Run 'dsync auth login' to re-authenticate.").Build())
		}
		if err := m.SaveCredentials(profile, newCreds); err != nil {
			return nil, fmt.Errorf("failed to save refreshed credentials: %w", err)
		}
		return newCreds, nil
	}

	return creds, nil
}

// GetHTTPClient returns an authenticated HTTP client
func (m *Manager) GetHTTPClient(ctx context.Context, creds *types.Credentials) *http.Client {
	token := &oauth2.Token{
		AccessToken:  creds.AccessToken,
		RefreshToken: creds.RefreshToken,
		Expiry:       creds.ExpiryDate,
	}
	if m.oauthConfig == nil {
		return oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))
	}
	return m.oauthConfig.Client(ctx, token)
}

// GetDriveService builds a Drive API service from credentials
func (m *Manager) GetDriveService(ctx context.Context, creds *types.Credentials) (*drive.Service, error) {
	client := m.GetHTTPClient(ctx, creds)
	return drive.NewService(ctx, option.WithHTTPClient(client))
}

// ConfigDir returns the configuration directory
func (m *Manager) ConfigDir() string {
	return m.configDir
}

// GetStorageBackend returns the name of the storage backend being used
func (m *Manager) GetStorageBackend() string {
	if m.storage == nil {
		return "none"
	}
	return m.storage.Name()
}

// GetStorageWarning returns any warning message about the storage backend
func (m *Manager) GetStorageWarning() string {
	return m.storageWarning
}
