package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shop-platform/internal/entity"
)

// stubProductStore implements ProductStore and counts repository reads so
// cache hits are observable.
type stubProductStore struct {
	products []*entity.Product
	listed   int
}

func (s *stubProductStore) GetProducts(_ context.Context) ([]*entity.Product, error) {
	s.listed++
	return s.products, nil
}

func (s *stubProductStore) GetProductByID(_ context.Context, id int) (*entity.Product, error) {
	for _, p := range s.products {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, errors.New("product not found")
}

func (s *stubProductStore) CreateProduct(_ context.Context, product *entity.Product) (*entity.Product, error) {
	s.products = append(s.products, product)
	return product, nil
}

func catalogFixture() *stubProductStore {
	return &stubProductStore{products: []*entity.Product{
		{ID: 1, Name: "Relogio Smart", Price: 2.01, Category: "Eletronicos"},
		{ID: 2, Name: "Fone Bluetooth", Price: 39.90, Category: "Eletronicos"},
		{ID: 3, Name: "Mini Drone", Price: 129.90, Category: "Brinquedos"},
		{ID: 4, Name: "Cabo USB-C", Price: 9.90, Category: "Acessorios"},
		{ID: 5, Name: "Suporte Celular", Price: 14.90, Category: "Acessorios"},
	}}
}

func TestCatalogQuery_FilterByCategory(t *testing.T) {
	svc := NewCatalogService(catalogFixture(), setupTestRedis(t))

	products, err := svc.Query(context.Background(), CatalogQuery{Category: "Acessorios"})
	require.NoError(t, err)

	require.Len(t, products, 2)
	assert.Equal(t, "Cabo USB-C", products[0].Name)
	assert.Equal(t, "Suporte Celular", products[1].Name)
}

func TestCatalogQuery_SearchIsCaseInsensitiveSubstring(t *testing.T) {
	svc := NewCatalogService(catalogFixture(), setupTestRedis(t))

	products, err := svc.Query(context.Background(), CatalogQuery{Search: "dRoNe"})
	require.NoError(t, err)

	require.Len(t, products, 1)
	assert.Equal(t, 3, products[0].ID)
}

func TestCatalogQuery_SortByPrice(t *testing.T) {
	svc := NewCatalogService(catalogFixture(), setupTestRedis(t))
	ctx := context.Background()

	asc, err := svc.Query(ctx, CatalogQuery{Sort: "price-asc"})
	require.NoError(t, err)
	require.Len(t, asc, 5)
	assert.Equal(t, "Relogio Smart", asc[0].Name)
	assert.Equal(t, "Mini Drone", asc[4].Name)

	desc, err := svc.Query(ctx, CatalogQuery{Sort: "price-desc"})
	require.NoError(t, err)
	assert.Equal(t, "Mini Drone", desc[0].Name)
	assert.Equal(t, "Relogio Smart", desc[4].Name)
}

func TestCatalogQuery_ListingIsCached(t *testing.T) {
	store := catalogFixture()
	svc := NewCatalogService(store, setupTestRedis(t))
	ctx := context.Background()

	_, err := svc.Query(ctx, CatalogQuery{})
	require.NoError(t, err)
	_, err = svc.Query(ctx, CatalogQuery{Category: "Brinquedos"})
	require.NoError(t, err)

	assert.Equal(t, 1, store.listed)
}

func TestCatalogCategories_DistinctInLoadOrder(t *testing.T) {
	svc := NewCatalogService(catalogFixture(), setupTestRedis(t))

	categories, err := svc.Categories(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"Eletronicos", "Brinquedos", "Acessorios"}, categories)
}
