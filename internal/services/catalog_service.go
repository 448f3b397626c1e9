package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"time"

	"matumizi/internal/cache"
	"matumizi/internal/core"
	"matumizi/internal/log"
	"matumizi/internal/storage"
)

const allSubcategoriesKey = "all"

// CacheOptions sizes the catalog cache.
type CacheOptions struct {
	Size int
	TTL  time.Duration
}

func DefaultCacheOptions() CacheOptions {
	return CacheOptions{Size: 128, TTL: 10 * time.Minute}
}

// CatalogService manages categories and subcategories. Lists are served from
// a cache that every successful write invalidates.
type CatalogService struct {
	exec          *storage.Executor
	categories    *cache.Loader[[]core.Category]
	subcategories *cache.Loader[[]core.Subcategory]
	logger        *log.Logger
}

func NewCatalogService(exec *storage.Executor, opts CacheOptions, logger *log.Logger) *CatalogService {
	if opts.Size <= 0 || opts.TTL <= 0 {
		opts = DefaultCacheOptions()
	}
	if logger == nil {
		logger = log.Nop()
	}
	return &CatalogService{
		exec:          exec,
		categories:    cache.NewLoader(cache.NewLRUCache[[]core.Category](1, opts.TTL)),
		subcategories: cache.NewLoader(cache.NewLRUCache[[]core.Subcategory](opts.Size, opts.TTL)),
		logger:        logger.WithComponent(log.ComponentCatalog),
	}
}

// RegisterCaches hands the catalog caches to m for expiry cleanup.
func (s *CatalogService) RegisterCaches(m *cache.Manager) {
	m.Register("categories", s.categories.Cache())
	m.Register("subcategories", s.subcategories.Cache())
}

// AddCategory creates a category after sanitizing its name.
func (s *CatalogService) AddCategory(ctx context.Context, name string) (core.Category, error) {
	clean, err := core.ValidateName(name)
	if err != nil {
		return core.Category{}, err
	}

	var created core.Category
	err = s.exec.Write(ctx, func(ctx context.Context, q *storage.Queries) error {
		row, err := q.CreateCategory(ctx, clean)
		if err != nil {
			return err
		}
		created = row.ToCore()
		return nil
	})
	if err != nil {
		s.logger.WarnContext(ctx, "Category not added", "name", clean, log.FieldError, err)
		return core.Category{}, fmt.Errorf("add category %q: %w", clean, err)
	}
	s.invalidate()

	s.logger.InfoContext(ctx, "Category added", log.FieldCategoryID, created.ID, "name", created.Name)
	return created, nil
}

// ListCategories returns all categories ordered by id.
func (s *CatalogService) ListCategories(ctx context.Context) ([]core.Category, error) {
	cats, err := s.categories.Load(ctx, "all", func(ctx context.Context) ([]core.Category, error) {
		var out []core.Category
		err := s.exec.Read(ctx, func(ctx context.Context, q *storage.Queries) error {
			rows, err := q.ListCategories(ctx)
			if err != nil {
				return err
			}
			out = make([]core.Category, len(rows))
			for i, r := range rows {
				out[i] = r.ToCore()
			}
			return nil
		})
		return out, err
	})
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return slices.Clone(cats), nil
}

// AddSubcategory creates a subcategory under an existing category.
func (s *CatalogService) AddSubcategory(ctx context.Context, categoryID int64, name string) (core.Subcategory, error) {
	if categoryID <= 0 {
		return core.Subcategory{}, core.ErrMissingCategory
	}
	clean, err := core.ValidateName(name)
	if err != nil {
		return core.Subcategory{}, err
	}

	var created core.Subcategory
	err = s.exec.Write(ctx, func(ctx context.Context, q *storage.Queries) error {
		if _, err := q.GetCategory(ctx, categoryID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w: category %d does not exist", core.ErrInvalidReference, categoryID)
			}
			return err
		}
		row, err := q.CreateSubcategory(ctx, storage.CreateSubcategoryParams{
			Name:       clean,
			CategoryID: categoryID,
		})
		if err != nil {
			return err
		}
		created = row.ToCore()
		return nil
	})
	if err != nil {
		s.logger.WarnContext(ctx, "Subcategory not added",
			log.FieldCategoryID, categoryID, "name", clean, log.FieldError, err)
		return core.Subcategory{}, fmt.Errorf("add subcategory %q: %w", clean, err)
	}
	s.invalidate()

	s.logger.InfoContext(ctx, "Subcategory added",
		log.FieldSubcategoryID, created.ID, log.FieldCategoryID, categoryID, "name", created.Name)
	return created, nil
}

// ListSubcategories returns the subcategories of categoryID, or all of them
// when categoryID is nil, ordered by id.
func (s *CatalogService) ListSubcategories(ctx context.Context, categoryID *int64) ([]core.Subcategory, error) {
	key := allSubcategoriesKey
	if categoryID != nil {
		key = "category:" + strconv.FormatInt(*categoryID, 10)
	}

	subs, err := s.subcategories.Load(ctx, key, func(ctx context.Context) ([]core.Subcategory, error) {
		var out []core.Subcategory
		err := s.exec.Read(ctx, func(ctx context.Context, q *storage.Queries) error {
			var (
				rows []storage.Subcategory
				err  error
			)
			if categoryID == nil {
				rows, err = q.ListSubcategories(ctx)
			} else {
				rows, err = q.ListSubcategoriesByCategory(ctx, *categoryID)
			}
			if err != nil {
				return err
			}
			out = make([]core.Subcategory, len(rows))
			for i, r := range rows {
				out[i] = r.ToCore()
			}
			return nil
		})
		return out, err
	})
	if err != nil {
		return nil, fmt.Errorf("list subcategories: %w", err)
	}
	return slices.Clone(subs), nil
}

func (s *CatalogService) invalidate() {
	s.categories.Invalidate()
	s.subcategories.Invalidate()
}
