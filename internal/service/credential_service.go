package service

import (
	"errors"

	"github.com/rs/zerolog/log"
	"github.com/vuthanhlam/quizbank/internal/crypto"
	"github.com/vuthanhlam/quizbank/internal/model"
	"github.com/vuthanhlam/quizbank/internal/provider"
	"github.com/vuthanhlam/quizbank/internal/repository"
	"gorm.io/gorm"
)

// CredentialService resolves and decrypts a user's provider credentials.
// A missing credential set (NO_DATA_SOURCE) is distinguishable from a
// present-but-undecryptable one (CONFIG_DECRYPTION_FAILED).
type CredentialService interface {
	// Resolve returns the provider name and decrypted credentials for the
	// user. providerOverride, when non-empty, selects a named credential
	// set instead of the default.
	Resolve(userID uint, providerOverride string) (string, provider.Credentials, error)
	Store(userID uint, providerName, apiKey, endpoint, modelName string, isDefault bool) (*model.AIConfig, error)
}

type credentialService struct {
	repo   repository.AIConfigRepository
	cipher *crypto.Cipher
}

func NewCredentialService(repo repository.AIConfigRepository, cipher *crypto.Cipher) CredentialService {
	return &credentialService{repo: repo, cipher: cipher}
}

func (s *credentialService) Resolve(userID uint, providerOverride string) (string, provider.Credentials, error) {
	var cfg *model.AIConfig
	var err error
	if providerOverride != "" {
		cfg, err = s.repo.FindByProvider(userID, providerOverride)
	} else {
		cfg, err = s.repo.FindDefault(userID)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", provider.Credentials{}, NewError(CodeNoDataSource, "no AI provider credentials configured")
		}
		return "", provider.Credentials{}, WrapError(CodeNoDataSource, "failed to load provider credentials", err)
	}

	apiKey, err := s.cipher.Decrypt(cfg.APIKeyEncrypted)
	if err != nil {
		log.Error().Err(err).Uint("userID", userID).Str("provider", cfg.Provider).Msg("Failed to decrypt stored API key")
		return "", provider.Credentials{}, WrapError(CodeConfigDecryptionFailed, "stored credentials could not be decrypted", err)
	}

	return cfg.Provider, provider.Credentials{
		APIKey:   apiKey,
		Endpoint: cfg.Endpoint,
		Model:    cfg.Model,
	}, nil
}

func (s *credentialService) Store(userID uint, providerName, apiKey, endpoint, modelName string, isDefault bool) (*model.AIConfig, error) {
	encrypted, err := s.cipher.Encrypt(apiKey)
	if err != nil {
		return nil, WrapError(CodeGenerationFailed, "failed to encrypt API key", err)
	}
	cfg := &model.AIConfig{
		UserID:          userID,
		Provider:        providerName,
		APIKeyEncrypted: encrypted,
		Endpoint:        endpoint,
		Model:           modelName,
		IsDefault:       isDefault,
	}
	if err := s.repo.Create(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
