package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/scrcorp/taskmanager-server/internal/domain"
	"github.com/scrcorp/taskmanager-server/internal/reliability/circuitbreaker"
)

// CacheStore is the subset of the redis client the template cache needs.
type CacheStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// CachedChecklistRepository decorates a ChecklistRepository with a redis
// read-through cache for template lookups. Templates change rarely and are
// read on every assignment creation, so both the by-id and the active-combo
// lookups are cached; every mutation invalidates the affected keys.
//
// Cache trouble never fails a request: a tripped breaker or a redis error
// just falls through to the database.
type CachedChecklistRepository struct {
	inner   domain.ChecklistRepository
	cache   CacheStore
	breaker *circuitbreaker.CircuitBreaker
	ttl     time.Duration
	logger  *slog.Logger
}

// NewCachedChecklistRepository wraps inner with cached template reads.
func NewCachedChecklistRepository(inner domain.ChecklistRepository, cache CacheStore, ttl time.Duration, logger *slog.Logger) *CachedChecklistRepository {
	if logger == nil {
		logger = slog.Default()
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedChecklistRepository{
		inner:   inner,
		cache:   cache,
		breaker: circuitbreaker.NewCircuitBreaker(5, 2, 30*time.Second),
		ttl:     ttl,
		logger:  logger,
	}
}

func templateKey(orgID, id uuid.UUID) string {
	return fmt.Sprintf("tmpl:%s:%s", orgID, id)
}

func comboKey(orgID, brandID, shiftID, positionID uuid.UUID) string {
	return fmt.Sprintf("tmpl-combo:%s:%s:%s:%s", orgID, brandID, shiftID, positionID)
}

func (r *CachedChecklistRepository) cacheGet(ctx context.Context, key string) *domain.ChecklistTemplate {
	if r.cache == nil || !r.breaker.AllowRequest() {
		return nil
	}
	raw, err := r.cache.Get(ctx, key)
	if err != nil {
		r.breaker.RecordFailure()
		return nil
	}
	r.breaker.RecordSuccess()
	var t domain.ChecklistTemplate
	if err := json.Unmarshal([]byte(raw), &t); err != nil {
		r.logger.Warn("discarding malformed cached template", slog.String("key", key))
		return nil
	}
	return &t
}

func (r *CachedChecklistRepository) cacheSet(ctx context.Context, key string, t *domain.ChecklistTemplate) {
	if r.cache == nil || !r.breaker.AllowRequest() {
		return
	}
	raw, err := json.Marshal(t)
	if err != nil {
		return
	}
	if err := r.cache.Set(ctx, key, string(raw), r.ttl); err != nil {
		r.breaker.RecordFailure()
		return
	}
	r.breaker.RecordSuccess()
}

func (r *CachedChecklistRepository) invalidate(ctx context.Context, keys ...string) {
	if r.cache == nil || !r.breaker.AllowRequest() {
		return
	}
	for _, key := range keys {
		if err := r.cache.Delete(ctx, key); err != nil {
			r.breaker.RecordFailure()
			r.logger.Warn("cache invalidation failed", slog.String("key", key), slog.String("error", err.Error()))
			return
		}
	}
	r.breaker.RecordSuccess()
}

// invalidateTemplate drops both keys under which a template may be cached.
// The template is loaded first because the combo key needs its coordinates;
// a load failure just skips invalidation of the combo key.
func (r *CachedChecklistRepository) invalidateTemplate(ctx context.Context, orgID, id uuid.UUID) {
	keys := []string{templateKey(orgID, id)}
	if t, err := r.inner.GetTemplate(ctx, orgID, id); err == nil {
		keys = append(keys, comboKey(orgID, t.BrandID, t.ShiftID, t.PositionID))
	}
	r.invalidate(ctx, keys...)
}

// CreateTemplate passes through: misses are never cached, so a fresh
// template cannot be shadowed by a stale entry.
func (r *CachedChecklistRepository) CreateTemplate(ctx context.Context, template *domain.ChecklistTemplate) error {
	return r.inner.CreateTemplate(ctx, template)
}

func (r *CachedChecklistRepository) GetTemplate(ctx context.Context, orgID, id uuid.UUID) (*domain.ChecklistTemplate, error) {
	key := templateKey(orgID, id)
	if t := r.cacheGet(ctx, key); t != nil {
		return t, nil
	}
	t, err := r.inner.GetTemplate(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	r.cacheSet(ctx, key, t)
	return t, nil
}

func (r *CachedChecklistRepository) ActiveTemplateForCombo(ctx context.Context, orgID, brandID, shiftID, positionID uuid.UUID) (*domain.ChecklistTemplate, error) {
	key := comboKey(orgID, brandID, shiftID, positionID)
	if t := r.cacheGet(ctx, key); t != nil {
		return t, nil
	}
	t, err := r.inner.ActiveTemplateForCombo(ctx, orgID, brandID, shiftID, positionID)
	if err != nil {
		return nil, err
	}
	r.cacheSet(ctx, key, t)
	return t, nil
}

func (r *CachedChecklistRepository) ListTemplates(ctx context.Context, orgID uuid.UUID, brandID *uuid.UUID) ([]*domain.ChecklistTemplate, error) {
	return r.inner.ListTemplates(ctx, orgID, brandID)
}

func (r *CachedChecklistRepository) UpdateTemplate(ctx context.Context, orgID uuid.UUID, template *domain.ChecklistTemplate) error {
	if err := r.inner.UpdateTemplate(ctx, orgID, template); err != nil {
		return err
	}
	r.invalidate(ctx,
		templateKey(orgID, template.ID),
		comboKey(orgID, template.BrandID, template.ShiftID, template.PositionID),
	)
	return nil
}

func (r *CachedChecklistRepository) DeactivateTemplate(ctx context.Context, orgID, id uuid.UUID) error {
	if err := r.inner.DeactivateTemplate(ctx, orgID, id); err != nil {
		return err
	}
	r.invalidateTemplate(ctx, orgID, id)
	return nil
}

func (r *CachedChecklistRepository) AddItem(ctx context.Context, orgID uuid.UUID, item *domain.ChecklistTemplateItem) error {
	if err := r.inner.AddItem(ctx, orgID, item); err != nil {
		return err
	}
	r.invalidateTemplate(ctx, orgID, item.TemplateID)
	return nil
}

func (r *CachedChecklistRepository) UpdateItem(ctx context.Context, orgID uuid.UUID, item *domain.ChecklistTemplateItem) error {
	if err := r.inner.UpdateItem(ctx, orgID, item); err != nil {
		return err
	}
	r.invalidateTemplate(ctx, orgID, item.TemplateID)
	return nil
}

func (r *CachedChecklistRepository) ReorderItems(ctx context.Context, orgID, templateID uuid.UUID, orderedItemIDs []uuid.UUID) error {
	if err := r.inner.ReorderItems(ctx, orgID, templateID, orderedItemIDs); err != nil {
		return err
	}
	r.invalidateTemplate(ctx, orgID, templateID)
	return nil
}
