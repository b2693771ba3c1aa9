package aws

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

type secretsAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// SecretsClient reads storefront settings kept in Secrets Manager.
// Values are cached for the life of the process.
type SecretsClient struct {
	client secretsAPI
	cache  map[string]map[string]string
	mu     sync.RWMutex
}

func NewSecretsClient(cfg sdkaws.Config) *SecretsClient {
	return &SecretsClient{
		client: secretsmanager.NewFromConfig(cfg),
		cache:  make(map[string]map[string]string),
	}
}

// GetSettings fetches secret name and decodes it as a flat JSON object of
// environment-style keys, e.g. {"API_BASE_URL": "...", "REDIS_URL": "..."}.
func (s *SecretsClient) GetSettings(ctx context.Context, name string) (map[string]string, error) {
	s.mu.RLock()
	if v, ok := s.cache[name]; ok {
		s.mu.RUnlock()
		return v, nil
	}
	s.mu.RUnlock()

	out, err := s.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{SecretId: &name})
	if err != nil {
		return nil, fmt.Errorf("failed to get secret %s: %w", name, err)
	}
	if out.SecretString == nil {
		return nil, fmt.Errorf("secret %s has no string value", name)
	}

	var settings map[string]string
	if err := json.Unmarshal([]byte(*out.SecretString), &settings); err != nil {
		return nil, fmt.Errorf("secret %s is not a JSON object of strings: %w", name, err)
	}

	s.mu.Lock()
	s.cache[name] = settings
	s.mu.Unlock()

	return settings, nil
}
