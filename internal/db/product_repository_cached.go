package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ms-lab/commerce-go/internal/cache"
	"github.com/ms-lab/commerce-go/internal/models"
)

// CachedProductRepository wraps ProductRepository with a Redis cache-aside
// layer for reads. Writes go straight to the database and invalidate the
// affected keys. Cache failures are logged, never surfaced.
type CachedProductRepository struct {
	repo  *ProductRepository
	cache *cache.RedisCache
	log   *zap.SugaredLogger
}

func NewCachedProductRepository(repo *ProductRepository, cache *cache.RedisCache, log *zap.SugaredLogger) *CachedProductRepository {
	return &CachedProductRepository{repo: repo, cache: cache, log: log}
}

func productKey(id int) string {
	return fmt.Sprintf("product:%d", id)
}

func allProductsKey() string {
	return "products:all"
}

func (r *CachedProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := r.cache.Get(ctx, allProductsKey(), &products); err == nil {
		return products, nil
	}

	products, err := r.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	if err := r.cache.Set(ctx, allProductsKey(), products); err != nil {
		r.log.Warnw("failed to cache products", "error", err)
	}

	return products, nil
}

func (r *CachedProductRepository) GetByID(ctx context.Context, id int) (*models.Product, error) {
	var product models.Product
	err := r.cache.Get(ctx, productKey(id), &product)
	if err == nil {
		return &product, nil
	}
	if !errors.Is(err, redis.Nil) {
		r.log.Warnw("cache read failed", "product_id", id, "error", err)
	}

	p, err := r.repo.GetByID(ctx, id)
	if err != nil || p == nil {
		return p, err
	}

	if err := r.cache.Set(ctx, productKey(id), p); err != nil {
		r.log.Warnw("failed to cache product", "product_id", id, "error", err)
	}

	return p, nil
}

func (r *CachedProductRepository) Create(ctx context.Context, req models.CreateProductRequest) (*models.Product, error) {
	product, err := r.repo.Create(ctx, req)
	if err != nil {
		return nil, err
	}

	r.invalidate(ctx, allProductsKey())
	return product, nil
}

func (r *CachedProductRepository) Update(ctx context.Context, id int, req models.UpdateProductRequest) (*models.Product, error) {
	product, err := r.repo.Update(ctx, id, req)
	if err != nil {
		return nil, err
	}

	r.invalidate(ctx, productKey(id), allProductsKey())
	return product, nil
}

func (r *CachedProductRepository) Delete(ctx context.Context, id int) error {
	if err := r.repo.Delete(ctx, id); err != nil {
		return err
	}

	r.invalidate(ctx, productKey(id), allProductsKey())
	return nil
}

func (r *CachedProductRepository) DecrementStock(ctx context.Context, id, quantity int) error {
	if err := r.repo.DecrementStock(ctx, id, quantity); err != nil {
		return err
	}

	r.invalidate(ctx, productKey(id), allProductsKey())
	return nil
}

// InvalidateProducts drops the cache entries for the given product ids.
// Used by the order.created consumer to keep reads coherent after orders
// placed through the order service.
func (r *CachedProductRepository) InvalidateProducts(ctx context.Context, ids ...int) {
	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, productKey(id))
	}
	keys = append(keys, allProductsKey())
	r.invalidate(ctx, keys...)
}

func (r *CachedProductRepository) invalidate(ctx context.Context, keys ...string) {
	if err := r.cache.Delete(ctx, keys...); err != nil {
		r.log.Warnw("cache invalidation failed", "keys", keys, "error", err)
	}
}
