package application

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-commerce-api/internal/domain/entity"
	"github.com/oksasatya/go-commerce-api/internal/domain/repository"
	"github.com/oksasatya/go-commerce-api/pkg/helpers"
)

type fakeProductRepo struct {
	products map[string]*entity.Product
	nextID   int
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: map[string]*entity.Product{}}
}

func (r *fakeProductRepo) Create(_ context.Context, p *entity.Product) error {
	r.nextID++
	p.ID = fmt.Sprintf("p-%d", r.nextID)
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *fakeProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProductRepo) List(_ context.Context, f repository.ProductFilter) ([]entity.Product, int, error) {
	var matched []entity.Product
	for _, p := range r.products {
		if f.CategoryID != "" && p.CategoryID != f.CategoryID {
			continue
		}
		matched = append(matched, *p)
	}
	total := len(matched)
	start := (f.Page - 1) * f.PageSize
	if start >= total {
		return nil, total, nil
	}
	end := start + f.PageSize
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (r *fakeProductRepo) Update(_ context.Context, p *entity.Product) error {
	if _, ok := r.products[p.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *fakeProductRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.products[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.products, id)
	return nil
}

func (r *fakeProductRepo) DecrementStock(_ context.Context, id string, qty int) error {
	p, ok := r.products[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.CountInStock -= qty
	return nil
}

type fakeCategoryRepo struct {
	categories map[string]*entity.Category
	nextID     int
}

func newFakeCategoryRepo() *fakeCategoryRepo {
	return &fakeCategoryRepo{categories: map[string]*entity.Category{}}
}

func (r *fakeCategoryRepo) Create(_ context.Context, c *entity.Category) error {
	for _, e := range r.categories {
		if e.Slug == c.Slug {
			return repository.ErrDuplicate
		}
	}
	r.nextID++
	c.ID = fmt.Sprintf("c-%d", r.nextID)
	cp := *c
	r.categories[c.ID] = &cp
	return nil
}

func (r *fakeCategoryRepo) GetByID(_ context.Context, id string) (*entity.Category, error) {
	c, ok := r.categories[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCategoryRepo) GetBySlug(_ context.Context, slug string) (*entity.Category, error) {
	for _, c := range r.categories {
		if c.Slug == slug {
			cp := *c
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeCategoryRepo) List(_ context.Context) ([]entity.Category, error) {
	var out []entity.Category
	for _, c := range r.categories {
		out = append(out, *c)
	}
	return out, nil
}

func (r *fakeCategoryRepo) ListByParent(_ context.Context, parentID *string) ([]entity.Category, error) {
	var out []entity.Category
	for _, c := range r.categories {
		switch {
		case parentID == nil && c.ParentID == nil:
			out = append(out, *c)
		case parentID != nil && c.ParentID != nil && *c.ParentID == *parentID:
			out = append(out, *c)
		}
	}
	return out, nil
}

func newTestCatalog(products *fakeProductRepo, categories *fakeCategoryRepo) *CatalogService {
	// nil Redis/ES/GCS clients: caching, search indexing and uploads are
	// skipped, everything else behaves normally
	return NewCatalogService(products, categories, nil, nil, "", nil, "", quietLogger())
}

func seedCategory(t *testing.T, repo *fakeCategoryRepo, name string, parentID *string) *entity.Category {
	t.Helper()
	c := &entity.Category{Name: name, Slug: helpers.Slugify(name), ParentID: parentID}
	require.NoError(t, repo.Create(context.Background(), c))
	return c
}

func TestCreateProduct(t *testing.T) {
	products := newFakeProductRepo()
	categories := newFakeCategoryRepo()
	svc := newTestCatalog(products, categories)
	cat := seedCategory(t, categories, "Electronics", nil)

	p, err := svc.CreateProduct(context.Background(), "admin-1", ProductInput{
		Name: "Widget", CategoryID: cat.ID, Price: 9.99, CountInStock: 5,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "admin-1", p.UserID)
	assert.Equal(t, "electronics", p.CategorySlug)
	// missing image falls back to placeholder
	assert.NotEmpty(t, p.ImageURL)
}

func TestCreateProductUnknownCategory(t *testing.T) {
	svc := newTestCatalog(newFakeProductRepo(), newFakeCategoryRepo())

	_, err := svc.CreateProduct(context.Background(), "admin-1", ProductInput{
		Name: "Widget", CategoryID: "c-404",
	})
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestUpdateProductPartial(t *testing.T) {
	products := newFakeProductRepo()
	categories := newFakeCategoryRepo()
	svc := newTestCatalog(products, categories)
	cat := seedCategory(t, categories, "Electronics", nil)

	p, err := svc.CreateProduct(context.Background(), "admin-1", ProductInput{
		Name: "Widget", CategoryID: cat.ID, Price: 9.99, CountInStock: 5,
	})
	require.NoError(t, err)

	updated, err := svc.UpdateProduct(context.Background(), p.ID, ProductInput{Price: 12.50})
	require.NoError(t, err)
	assert.Equal(t, 12.50, updated.Price)
	assert.Equal(t, "Widget", updated.Name)
	assert.Equal(t, 5, updated.CountInStock)
}

func TestDeleteProduct(t *testing.T) {
	products := newFakeProductRepo()
	categories := newFakeCategoryRepo()
	svc := newTestCatalog(products, categories)
	cat := seedCategory(t, categories, "Electronics", nil)

	p, err := svc.CreateProduct(context.Background(), "admin-1", ProductInput{
		Name: "Widget", CategoryID: cat.ID,
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteProduct(context.Background(), p.ID))
	_, err = svc.GetProduct(context.Background(), p.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)

	assert.ErrorIs(t, svc.DeleteProduct(context.Background(), p.ID), ErrProductNotFound)
}

func TestListProductsPagination(t *testing.T) {
	products := newFakeProductRepo()
	categories := newFakeCategoryRepo()
	svc := newTestCatalog(products, categories)
	cat := seedCategory(t, categories, "Electronics", nil)

	for i := 0; i < 25; i++ {
		_, err := svc.CreateProduct(context.Background(), "admin-1", ProductInput{
			Name: fmt.Sprintf("Widget %d", i), CategoryID: cat.ID,
		})
		require.NoError(t, err)
	}

	page, err := svc.ListProducts(context.Background(), "", "", 1)
	require.NoError(t, err)
	assert.Len(t, page.Products, 10)
	assert.Equal(t, 25, page.Total)
	assert.Equal(t, 3, page.Pages)

	last, err := svc.ListProducts(context.Background(), "", "", 3)
	require.NoError(t, err)
	assert.Len(t, last.Products, 5)
}

func TestListProductsUnknownCategory(t *testing.T) {
	svc := newTestCatalog(newFakeProductRepo(), newFakeCategoryRepo())

	_, err := svc.ListProducts(context.Background(), "", "no-such-slug", 1)
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestCreateCategory(t *testing.T) {
	categories := newFakeCategoryRepo()
	svc := newTestCatalog(newFakeProductRepo(), categories)

	c, err := svc.CreateCategory(context.Background(), "Home & Garden", nil)
	require.NoError(t, err)
	assert.Equal(t, "home-garden", c.Slug)
	assert.Nil(t, c.ParentID)

	// same name again collides on the derived slug
	_, err = svc.CreateCategory(context.Background(), "Home & Garden", nil)
	assert.ErrorIs(t, err, ErrCategoryExists)
}

func TestCategoryTree(t *testing.T) {
	categories := newFakeCategoryRepo()
	svc := newTestCatalog(newFakeProductRepo(), categories)

	root := seedCategory(t, categories, "Electronics", nil)
	seedCategory(t, categories, "Phones", &root.ID)
	seedCategory(t, categories, "Laptops", &root.ID)
	seedCategory(t, categories, "Clothing", nil)

	tree, err := svc.CategoryTree(context.Background())
	require.NoError(t, err)
	require.Len(t, tree, 2)

	byName := map[string]CategoryNode{}
	for _, n := range tree {
		byName[n.Name] = n
	}
	assert.Len(t, byName["Electronics"].Subcategories, 2)
	assert.Empty(t, byName["Clothing"].Subcategories)
}
