package postgres

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-commerce-api/internal/domain/entity"
	"github.com/oksasatya/go-commerce-api/internal/domain/repository"
)

const productColumns = `
	p.id, p.user_id, p.name, p.image_url, p.brand, p.category_id, p.description,
	p.price, p.count_in_stock, p.rating, p.num_reviews, p.created_at, p.updated_at,
	c.name, c.slug`

type ProductRepository struct {
	pool *pgxpool.Pool
}

func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

func (r *ProductRepository) Create(ctx context.Context, p *entity.Product) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO products (user_id, name, image_url, brand, category_id, description, price, count_in_stock, rating, num_reviews)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`, p.UserID, p.Name, p.ImageURL, p.Brand, p.CategoryID, p.Description, p.Price, p.CountInStock, p.Rating, p.NumReviews)

	return row.Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *ProductRepository) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	p := &entity.Product{}
	row := r.pool.QueryRow(ctx, `
		SELECT `+productColumns+`
		FROM products p
		JOIN categories c ON c.id = p.category_id
		WHERE p.id = $1
	`, id)

	if err := scanProduct(row, p); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

// List returns one page of products plus the total match count.
func (r *ProductRepository) List(ctx context.Context, f repository.ProductFilter) ([]entity.Product, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	if f.Keyword != "" {
		args = append(args, "%"+f.Keyword+"%")
		where += ` AND p.name ILIKE $` + strconv.Itoa(len(args))
	}
	if f.CategoryID != "" {
		args = append(args, f.CategoryID)
		where += ` AND p.category_id = $` + strconv.Itoa(len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM products p`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	pageSize := f.PageSize
	if pageSize <= 0 {
		pageSize = 10
	}
	page := f.Page
	if page <= 0 {
		page = 1
	}
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.pool.Query(ctx, `
		SELECT `+productColumns+`
		FROM products p
		JOIN categories c ON c.id = p.category_id`+where+`
		ORDER BY p.created_at DESC
		LIMIT $`+strconv.Itoa(len(args)-1)+` OFFSET $`+strconv.Itoa(len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []entity.Product
	for rows.Next() {
		var p entity.Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

func (r *ProductRepository) Update(ctx context.Context, p *entity.Product) error {
	p.UpdatedAt = time.Now()

	res, err := r.pool.Exec(ctx, `
		UPDATE products
		SET name = $1, image_url = $2, brand = $3, category_id = $4, description = $5,
		    price = $6, count_in_stock = $7, updated_at = $8
		WHERE id = $9
	`, p.Name, p.ImageURL, p.Brand, p.CategoryID, p.Description, p.Price, p.CountInStock, p.UpdatedAt, p.ID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *ProductRepository) DecrementStock(ctx context.Context, id string, qty int) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE products SET count_in_stock = count_in_stock - $1, updated_at = now()
		WHERE id = $2
	`, qty, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func scanProduct(row pgx.Row, p *entity.Product) error {
	return row.Scan(&p.ID, &p.UserID, &p.Name, &p.ImageURL, &p.Brand, &p.CategoryID, &p.Description,
		&p.Price, &p.CountInStock, &p.Rating, &p.NumReviews, &p.CreatedAt, &p.UpdatedAt,
		&p.CategoryName, &p.CategorySlug)
}


var _ repository.ProductRepository = (*ProductRepository)(nil)
