// Package app assembles the components shared by the API server and the
// terminal client from configuration.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/gforma/lead-assistant/internal/config"
	"github.com/gforma/lead-assistant/internal/directory"
	"github.com/gforma/lead-assistant/internal/inference"
	"github.com/gforma/lead-assistant/internal/llm"
	"github.com/gforma/lead-assistant/internal/paramstore"
	"github.com/gforma/lead-assistant/pkg/logger"
)

// ResolveAPIKey returns the credential for the configured provider, reading
// it from SSM Parameter Store when LLM_API_KEY_PARAM is set.
func ResolveAPIKey(ctx context.Context, cfg *config.Config, getter paramstore.Getter) (string, error) {
	if cfg.LLMAPIKeyParam == "" {
		return cfg.ProviderAPIKey(), nil
	}
	if getter == nil {
		client, err := paramstore.NewFromEnvironment(ctx, cfg.AWSRegion)
		if err != nil {
			return "", err
		}
		getter = client
	}
	return paramstore.ResolveAPIKey(ctx, getter, cfg.LLMAPIKeyParam)
}

// NewGateway builds the inference gateway. A missing or unusable credential
// is logged and yields a gateway without a backend, which serves fallbacks.
func NewGateway(ctx context.Context, cfg *config.Config, log *logger.Logger) *inference.Gateway {
	opts := []inference.Option{
		inference.WithModel(cfg.LLMModel),
		inference.WithTimeout(cfg.InferenceTimeout),
		inference.WithLogger(log),
	}

	apiKey, err := ResolveAPIKey(ctx, cfg, nil)
	if err != nil {
		log.Warn("failed to resolve LLM credential, inference disabled", zap.Error(err))
		return inference.NewGateway(nil, opts...)
	}

	client, err := llm.NewClient(ctx, llm.Provider(cfg.LLMProvider), apiKey)
	if err != nil {
		log.Warn("LLM client unavailable, inference disabled",
			zap.String("provider", cfg.LLMProvider),
			zap.Error(err),
		)
		return inference.NewGateway(nil, opts...)
	}

	log.Info("inference backend configured",
		zap.String("provider", client.Name()),
		zap.String("model", cfg.LLMModel),
	)
	return inference.NewGateway(client, opts...)
}

// LoadDirectory returns the catalog from TEACHER_CATALOG_PATH, or the built-in
// catalog when no path is configured.
func LoadDirectory(cfg *config.Config) (*directory.Directory, error) {
	if cfg.TeacherCatalogPath == "" {
		return directory.Default(), nil
	}
	d, err := directory.LoadFile(cfg.TeacherCatalogPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load teacher catalog: %w", err)
	}
	return d, nil
}
