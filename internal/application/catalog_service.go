package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-commerce-api/internal/domain/entity"
	"github.com/oksasatya/go-commerce-api/internal/domain/repository"
	"github.com/oksasatya/go-commerce-api/pkg/helpers"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrCategoryExists   = errors.New("category with this name/slug already exists")
)

const (
	productPageSize     = 10
	productCachePrefix  = "catalog:products:"
	productCacheTTL     = time.Minute
	placeholderImageURL = "https://placehold.co/600x400?text=No+Image"
)

// CatalogService owns products and categories: listing, search, admin writes
// and image storage.
type CatalogService struct {
	Products   repository.ProductRepository
	Categories repository.CategoryRepository
	Redis      *redis.Client
	ES         *elasticsearch.Client
	ESIndex    string
	GCS        *storage.Client
	GCSBucket  string
	Logger     *logrus.Logger
}

func NewCatalogService(products repository.ProductRepository, categories repository.CategoryRepository,
	rdb *redis.Client, es *elasticsearch.Client, esIndex string,
	gcs *storage.Client, gcsBucket string, logger *logrus.Logger) *CatalogService {
	return &CatalogService{
		Products:   products,
		Categories: categories,
		Redis:      rdb,
		ES:         es,
		ESIndex:    esIndex,
		GCS:        gcs,
		GCSBucket:  gcsBucket,
		Logger:     logger,
	}
}

// ProductPage is one page of a filtered product listing.
type ProductPage struct {
	Products []entity.Product `json:"products"`
	Page     int              `json:"page"`
	Pages    int              `json:"pages"`
	Total    int              `json:"total"`
}

// ListProducts returns a page of products, optionally narrowed by a name
// keyword and a category slug. Pages are served from Redis when fresh.
func (s *CatalogService) ListProducts(ctx context.Context, keyword, categorySlug string, page int) (*ProductPage, error) {
	if page <= 0 {
		page = 1
	}

	var categoryID string
	if categorySlug != "" {
		cat, err := s.Categories.GetBySlug(ctx, categorySlug)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrCategoryNotFound
			}
			return nil, err
		}
		categoryID = cat.ID
	}

	cacheKey := fmt.Sprintf("%s%s:%s:%d", productCachePrefix, keyword, categorySlug, page)
	if s.Redis != nil {
		var cached ProductPage
		if ok, err := helpers.RedisGetJSON(ctx, s.Redis, cacheKey, &cached); err == nil && ok {
			return &cached, nil
		}
	}

	products, total, err := s.Products.List(ctx, repository.ProductFilter{
		Keyword:    keyword,
		CategoryID: categoryID,
		Page:       page,
		PageSize:   productPageSize,
	})
	if err != nil {
		return nil, err
	}
	res := &ProductPage{
		Products: products,
		Page:     page,
		Pages:    (total + productPageSize - 1) / productPageSize,
		Total:    total,
	}

	if s.Redis != nil {
		if err := helpers.RedisSetJSON(ctx, s.Redis, cacheKey, res, productCacheTTL); err != nil {
			s.Logger.WithError(err).WithField("key", cacheKey).Warn("product cache write failed")
		}
	}
	return res, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id string) (*entity.Product, error) {
	p, err := s.Products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return p, nil
}

// ProductInput carries product fields for create/update; on update, zero
// values leave the stored field untouched.
type ProductInput struct {
	Name         string
	Brand        string
	CategoryID   string
	Description  string
	ImageURL     string
	Price        float64
	CountInStock int
}

// CreateProduct stores a new product owned by the creating admin. The
// category must exist; a missing image falls back to a placeholder.
func (s *CatalogService) CreateProduct(ctx context.Context, creatorID string, in ProductInput) (*entity.Product, error) {
	cat, err := s.Categories.GetByID(ctx, in.CategoryID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}

	image := in.ImageURL
	if image == "" {
		image = placeholderImageURL
	}
	p := &entity.Product{
		UserID:       creatorID,
		Name:         in.Name,
		ImageURL:     image,
		Brand:        in.Brand,
		CategoryID:   cat.ID,
		Description:  in.Description,
		Price:        in.Price,
		CountInStock: in.CountInStock,
	}
	if err := s.Products.Create(ctx, p); err != nil {
		return nil, err
	}
	p.CategoryName = cat.Name
	p.CategorySlug = cat.Slug

	s.invalidateListings(ctx)
	s.indexProduct(ctx, p)
	return p, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id string, in ProductInput) (*entity.Product, error) {
	p, err := s.Products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	if in.Name != "" {
		p.Name = in.Name
	}
	if in.Brand != "" {
		p.Brand = in.Brand
	}
	if in.Description != "" {
		p.Description = in.Description
	}
	if in.ImageURL != "" {
		p.ImageURL = in.ImageURL
	}
	if in.Price > 0 {
		p.Price = in.Price
	}
	if in.CountInStock > 0 {
		p.CountInStock = in.CountInStock
	}
	if in.CategoryID != "" {
		cat, err := s.Categories.GetByID(ctx, in.CategoryID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrCategoryNotFound
			}
			return nil, err
		}
		p.CategoryID = cat.ID
		p.CategoryName = cat.Name
		p.CategorySlug = cat.Slug
	}

	if err := s.Products.Update(ctx, p); err != nil {
		return nil, err
	}
	s.invalidateListings(ctx)
	s.indexProduct(ctx, p)
	return p, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.Products.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	s.invalidateListings(ctx)
	s.deleteProductIndex(ctx, id)
	return nil
}

// UploadProductImage stores the image in GCS and points the product at its
// public URL.
func (s *CatalogService) UploadProductImage(ctx context.Context, productID string, r io.Reader, filename, contentType string) (string, error) {
	p, err := s.Products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrProductNotFound
		}
		return "", err
	}
	if s.GCS == nil || s.GCSBucket == "" {
		return "", errors.New("gcs not configured")
	}

	ext := strings.ToLower(filepath.Ext(filename))
	objectPath := filepath.ToSlash(filepath.Join("products", productID, uuid.NewString()+ext))
	url, err := helpers.UploadObject(ctx, s.GCS, s.GCSBucket, objectPath, contentType, r)
	if err != nil {
		return "", err
	}

	p.ImageURL = url
	if err := s.Products.Update(ctx, p); err != nil {
		return "", err
	}
	s.invalidateListings(ctx)
	s.indexProduct(ctx, p)
	return url, nil
}

// SearchProducts performs a multi_match query over name, brand and description.
func (s *CatalogService) SearchProducts(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"name^2", "brand", "description"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(
		s.ES.Search.WithContext(c),
		s.ES.Search.WithIndex(s.ESIndex),
		s.ES.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]entity.Category, error) {
	return s.Categories.List(ctx)
}

// CategoryNode is a top-level category with its direct subcategories.
type CategoryNode struct {
	entity.Category
	Subcategories []entity.Category `json:"subcategories"`
}

// CategoryTree returns top-level categories each with their direct children.
func (s *CatalogService) CategoryTree(ctx context.Context) ([]CategoryNode, error) {
	roots, err := s.Categories.ListByParent(ctx, nil)
	if err != nil {
		return nil, err
	}
	tree := make([]CategoryNode, 0, len(roots))
	for _, root := range roots {
		id := root.ID
		subs, err := s.Categories.ListByParent(ctx, &id)
		if err != nil {
			return nil, err
		}
		if subs == nil {
			subs = []entity.Category{}
		}
		tree = append(tree, CategoryNode{Category: root, Subcategories: subs})
	}
	return tree, nil
}

// CreateCategory derives the slug from the name and rejects duplicates.
func (s *CatalogService) CreateCategory(ctx context.Context, name string, parentID *string) (*entity.Category, error) {
	slug := helpers.Slugify(name)
	if existing, err := s.Categories.GetBySlug(ctx, slug); err == nil && existing != nil {
		return nil, ErrCategoryExists
	}

	c := &entity.Category{Name: name, Slug: slug, ParentID: parentID}
	if err := s.Categories.Create(ctx, c); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrCategoryExists
		}
		return nil, err
	}
	return c, nil
}

func (s *CatalogService) invalidateListings(ctx context.Context) {
	if s.Redis == nil {
		return
	}
	if err := helpers.RedisDelPrefix(ctx, s.Redis, productCachePrefix); err != nil {
		s.Logger.WithError(err).Warn("product cache invalidation failed")
	}
}

func (s *CatalogService) indexProduct(ctx context.Context, p *entity.Product) {
	if s.ES == nil || s.ESIndex == "" {
		return
	}
	doc := map[string]any{
		"id":          p.ID,
		"name":        p.Name,
		"brand":       p.Brand,
		"description": p.Description,
		"price":       p.Price,
		"category":    p.CategorySlug,
		"image_url":   p.ImageURL,
		"updated_at":  p.UpdatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESIndex, DocumentID: p.ID, Body: strings.NewReader(string(b)), Refresh: "false"}

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		s.Logger.WithError(err).WithField("product_id", p.ID).Warn("es index failed")
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		s.Logger.WithField("status", res.Status()).WithField("product_id", p.ID).Warn("es index response error")
	}
}

func (s *CatalogService) deleteProductIndex(ctx context.Context, id string) {
	if s.ES == nil || s.ESIndex == "" {
		return
	}
	req := esapi.DeleteRequest{Index: s.ESIndex, DocumentID: id}

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		s.Logger.WithError(err).WithField("product_id", id).Warn("es delete failed")
		return
	}
	_ = res.Body.Close()
}
