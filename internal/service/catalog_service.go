package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	"shop-platform/internal/entity"
)

const catalogCacheTTL = 1 * time.Minute

// ProductStore is the catalog persistence seen by the service.
type ProductStore interface {
	GetProducts(ctx context.Context) ([]*entity.Product, error)
	GetProductByID(ctx context.Context, id int) (*entity.Product, error)
	CreateProduct(ctx context.Context, product *entity.Product) (*entity.Product, error)
}

// CatalogQuery narrows and orders the product listing.
type CatalogQuery struct {
	Search   string // case-insensitive substring match on the name
	Category string // exact category match
	Sort     string // "price-asc" or "price-desc"; anything else keeps load order
}

type CatalogService struct {
	productRepo ProductStore
	rdb         *redis.Client
}

func NewCatalogService(productRepo ProductStore, rdb *redis.Client) *CatalogService {
	return &CatalogService{
		productRepo: productRepo,
		rdb:         rdb,
	}
}

// Query lists products matching the filter. The full catalog is read
// through a short-lived redis cache; filtering happens in memory since the
// catalog is small and immutable after load.
func (s *CatalogService) Query(ctx context.Context, q CatalogQuery) ([]*entity.Product, error) {
	products, err := s.allProducts(ctx)
	if err != nil {
		return nil, err
	}

	filtered := make([]*entity.Product, 0, len(products))
	term := strings.ToLower(q.Search)
	for _, p := range products {
		if q.Category != "" && p.Category != q.Category {
			continue
		}
		if term != "" && !strings.Contains(strings.ToLower(p.Name), term) {
			continue
		}
		filtered = append(filtered, p)
	}

	switch q.Sort {
	case "price-asc":
		sort.SliceStable(filtered, func(i, j int) bool { return filtered[i].Price < filtered[j].Price })
	case "price-desc":
		sort.SliceStable(filtered, func(i, j int) bool { return filtered[i].Price > filtered[j].Price })
	}

	return filtered, nil
}

// Categories returns the distinct categories in load order.
func (s *CatalogService) Categories(ctx context.Context) ([]string, error) {
	products, err := s.allProducts(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var categories []string
	for _, p := range products {
		if !seen[p.Category] {
			seen[p.Category] = true
			categories = append(categories, p.Category)
		}
	}
	return categories, nil
}

// GetProduct retrieves one product through a per-product cache entry.
func (s *CatalogService) GetProduct(ctx context.Context, id int) (*entity.Product, error) {
	key := fmt.Sprintf("product:%d", id)
	cached, err := s.rdb.Get(ctx, key).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		logger.Error().Err(err).Msgf("Error getting product %d from cache", id)
		return nil, err
	}

	if cached != "" {
		var product entity.Product
		if err := json.Unmarshal([]byte(cached), &product); err != nil {
			logger.Error().Err(err).Msgf("Error unmarshalling product %d", id)
			return nil, err
		}
		return &product, nil
	}

	product, err := s.productRepo.GetProductByID(ctx, id)
	if err != nil {
		logger.Error().Err(err).Msgf("Error getting product by ID %d", id)
		return nil, err
	}

	data, err := json.Marshal(product)
	if err != nil {
		return nil, err
	}
	if err := s.rdb.Set(ctx, key, data, catalogCacheTTL).Err(); err != nil {
		logger.Error().Err(err).Msgf("Error setting product %d in cache", id)
	}

	return product, nil
}

// Seed upserts the launch catalog. ID uniqueness holds because ids are the
// primary key and seeding is an upsert.
func (s *CatalogService) Seed(ctx context.Context, products []*entity.Product) error {
	for _, product := range products {
		if _, err := s.productRepo.CreateProduct(ctx, product); err != nil {
			return fmt.Errorf("seed product %d: %w", product.ID, err)
		}
	}
	return nil
}

func (s *CatalogService) allProducts(ctx context.Context) ([]*entity.Product, error) {
	cached, err := s.rdb.Get(ctx, "products").Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		logger.Error().Err(err).Msg("Error getting products from cache")
		return nil, err
	}

	if cached != "" {
		var products []*entity.Product
		if err := json.Unmarshal([]byte(cached), &products); err != nil {
			logger.Error().Err(err).Msg("Error unmarshalling cached products")
			return nil, err
		}
		return products, nil
	}

	products, err := s.productRepo.GetProducts(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Error getting products")
		return nil, err
	}

	data, err := json.Marshal(products)
	if err != nil {
		return nil, err
	}
	if err := s.rdb.Set(ctx, "products", data, catalogCacheTTL).Err(); err != nil {
		logger.Error().Err(err).Msg("Error setting products in cache")
	}

	return products, nil
}
