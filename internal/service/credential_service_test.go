package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vuthanhlam/quizbank/internal/crypto"
	"github.com/vuthanhlam/quizbank/internal/model"
	"gorm.io/gorm"
)

type fakeAIConfigRepo struct {
	configs []*model.AIConfig
}

func (r *fakeAIConfigRepo) Create(cfg *model.AIConfig) error {
	cfg.ID = uint(len(r.configs) + 1)
	r.configs = append(r.configs, cfg)
	return nil
}

func (r *fakeAIConfigRepo) FindDefault(userID uint) (*model.AIConfig, error) {
	var latest *model.AIConfig
	for _, cfg := range r.configs {
		if cfg.UserID != userID {
			continue
		}
		if cfg.IsDefault {
			return cfg, nil
		}
		latest = cfg
	}
	if latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return latest, nil
}

func (r *fakeAIConfigRepo) FindByProvider(userID uint, provider string) (*model.AIConfig, error) {
	for _, cfg := range r.configs {
		if cfg.UserID == userID && cfg.Provider == provider {
			return cfg, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func credentialFixture(t *testing.T) (CredentialService, *fakeAIConfigRepo, *crypto.Cipher) {
	t.Helper()
	cipher, err := crypto.NewCipher("unit-test-secret")
	require.NoError(t, err)
	repo := &fakeAIConfigRepo{}
	return NewCredentialService(repo, cipher), repo, cipher
}

func TestCredentialStoreAndResolve(t *testing.T) {
	svc, repo, _ := credentialFixture(t)

	stored, err := svc.Store(1, "openai", "sk-plain", "https://gw.example.com/v1", "gpt-4o", true)
	require.NoError(t, err)
	assert.NotEqual(t, "sk-plain", stored.APIKeyEncrypted, "the key must never be stored in the clear")

	name, creds, err := svc.Resolve(1, "")
	require.NoError(t, err)
	assert.Equal(t, "openai", name)
	assert.Equal(t, "sk-plain", creds.APIKey)
	assert.Equal(t, "https://gw.example.com/v1", creds.Endpoint)
	assert.Equal(t, "gpt-4o", creds.Model)
	assert.Len(t, repo.configs, 1)
}

func TestCredentialResolveProviderOverride(t *testing.T) {
	svc, _, _ := credentialFixture(t)

	_, err := svc.Store(1, "openai", "sk-openai", "", "", true)
	require.NoError(t, err)
	_, err = svc.Store(1, "deepseek", "sk-deepseek", "", "", false)
	require.NoError(t, err)

	name, creds, err := svc.Resolve(1, "deepseek")
	require.NoError(t, err)
	assert.Equal(t, "deepseek", name)
	assert.Equal(t, "sk-deepseek", creds.APIKey)
}

func TestCredentialResolveMissing(t *testing.T) {
	svc, _, _ := credentialFixture(t)

	_, _, err := svc.Resolve(7, "")
	require.Error(t, err)
	assert.Equal(t, CodeNoDataSource, ErrorCode(err))

	// Another user's credentials are invisible.
	_, err = svc.Store(1, "openai", "sk-plain", "", "", true)
	require.NoError(t, err)
	_, _, err = svc.Resolve(7, "openai")
	require.Error(t, err)
	assert.Equal(t, CodeNoDataSource, ErrorCode(err))
}

func TestCredentialResolveUndecryptable(t *testing.T) {
	svc, repo, _ := credentialFixture(t)

	// A row encrypted under a different key, as after a secret rotation.
	other, err := crypto.NewCipher("old-secret")
	require.NoError(t, err)
	sealed, err := other.Encrypt("sk-old")
	require.NoError(t, err)
	repo.configs = append(repo.configs, &model.AIConfig{
		ID:              1,
		UserID:          1,
		Provider:        "openai",
		APIKeyEncrypted: sealed,
		IsDefault:       true,
	})

	_, _, err = svc.Resolve(1, "")
	require.Error(t, err)
	assert.Equal(t, CodeConfigDecryptionFailed, ErrorCode(err))
}
