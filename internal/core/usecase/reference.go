package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mzheleznov/rxpilot/internal/core/domain"
	"github.com/mzheleznov/rxpilot/internal/core/ports"
)

// DrugReferenceUseCase serves drug lookups from the external directory with a
// read-through cache. Cache trouble degrades to a direct lookup, never an
// error.
type DrugReferenceUseCase struct {
	directory ports.DrugDirectory
	cache     ports.ReferenceCache
	cacheTTL  time.Duration
	logger    *slog.Logger
}

func NewDrugReferenceUseCase(
	directory ports.DrugDirectory,
	cache ports.ReferenceCache,
	cacheTTL time.Duration,
	logger *slog.Logger,
) *DrugReferenceUseCase {
	if cacheTTL <= 0 {
		cacheTTL = 15 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DrugReferenceUseCase{
		directory: directory,
		cache:     cache,
		cacheTTL:  cacheTTL,
		logger:    logger,
	}
}

func (uc *DrugReferenceUseCase) SearchDrugs(ctx context.Context, name string) ([]domain.DrugConcept, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "search drugs", fmt.Errorf("query is required"))
	}

	cacheKey := "rxnorm:search:" + strings.ToLower(name)
	var cached []domain.DrugConcept
	if uc.cacheRead(ctx, cacheKey, &cached) {
		return cached, nil
	}

	concepts, err := uc.directory.SearchDrugs(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("search drugs: %w", err)
	}

	uc.cacheWrite(ctx, cacheKey, concepts)
	return concepts, nil
}

func (uc *DrugReferenceUseCase) GetDrugProperties(ctx context.Context, rxcui string) (*domain.DrugProperties, error) {
	rxcui = strings.TrimSpace(rxcui)
	if rxcui == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "drug properties", fmt.Errorf("rxcui is required"))
	}

	cacheKey := "rxnorm:properties:" + rxcui
	var cached domain.DrugProperties
	if uc.cacheRead(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	properties, err := uc.directory.GetDrugProperties(ctx, rxcui)
	if err != nil {
		return nil, err
	}

	uc.cacheWrite(ctx, cacheKey, properties)
	return properties, nil
}

func (uc *DrugReferenceUseCase) cacheRead(ctx context.Context, key string, out any) bool {
	if uc.cache == nil {
		return false
	}
	payload, ok, err := uc.cache.Get(ctx, key)
	if err != nil {
		uc.logger.Warn("reference_cache_read_failed", "key", key, "error", err)
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(payload, out); err != nil {
		uc.logger.Warn("reference_cache_decode_failed", "key", key, "error", err)
		return false
	}
	return true
}

func (uc *DrugReferenceUseCase) cacheWrite(ctx context.Context, key string, value any) {
	if uc.cache == nil {
		return
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := uc.cache.Set(ctx, key, payload, uc.cacheTTL); err != nil {
		uc.logger.Warn("reference_cache_write_failed", "key", key, "error", err)
	}
}
