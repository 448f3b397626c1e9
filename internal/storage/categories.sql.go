package storage

import (
	"context"
)

const createCategory = `-- name: CreateCategory :one
INSERT INTO categories (name) VALUES (?)
RETURNING id, name
`

func (q *Queries) CreateCategory(ctx context.Context, name string) (Category, error) {
	row := q.db.QueryRowContext(ctx, createCategory, name)
	var i Category
	err := row.Scan(&i.ID, &i.Name)
	return i, err
}

const getCategory = `-- name: GetCategory :one
SELECT id, name FROM categories WHERE id = ?
`

func (q *Queries) GetCategory(ctx context.Context, id int64) (Category, error) {
	row := q.db.QueryRowContext(ctx, getCategory, id)
	var i Category
	err := row.Scan(&i.ID, &i.Name)
	return i, err
}

const listCategories = `-- name: ListCategories :many
SELECT id, name FROM categories ORDER BY id
`

func (q *Queries) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := q.db.QueryContext(ctx, listCategories)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Category
	for rows.Next() {
		var i Category
		if err := rows.Scan(&i.ID, &i.Name); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const createSubcategory = `-- name: CreateSubcategory :one
INSERT INTO subcategories (name, category_id) VALUES (?, ?)
RETURNING id, name, category_id
`

type CreateSubcategoryParams struct {
	Name       string
	CategoryID int64
}

func (q *Queries) CreateSubcategory(ctx context.Context, arg CreateSubcategoryParams) (Subcategory, error) {
	row := q.db.QueryRowContext(ctx, createSubcategory, arg.Name, arg.CategoryID)
	var i Subcategory
	err := row.Scan(&i.ID, &i.Name, &i.CategoryID)
	return i, err
}

const getSubcategory = `-- name: GetSubcategory :one
SELECT id, name, category_id FROM subcategories WHERE id = ?
`

func (q *Queries) GetSubcategory(ctx context.Context, id int64) (Subcategory, error) {
	row := q.db.QueryRowContext(ctx, getSubcategory, id)
	var i Subcategory
	err := row.Scan(&i.ID, &i.Name, &i.CategoryID)
	return i, err
}

const listSubcategories = `-- name: ListSubcategories :many
SELECT id, name, category_id FROM subcategories ORDER BY id
`

func (q *Queries) ListSubcategories(ctx context.Context) ([]Subcategory, error) {
	rows, err := q.db.QueryContext(ctx, listSubcategories)
	if err != nil {
		return nil, err
	}
	return scanSubcategories(rows)
}

const listSubcategoriesByCategory = `-- name: ListSubcategoriesByCategory :many
SELECT id, name, category_id FROM subcategories WHERE category_id = ? ORDER BY id
`

func (q *Queries) ListSubcategoriesByCategory(ctx context.Context, categoryID int64) ([]Subcategory, error) {
	rows, err := q.db.QueryContext(ctx, listSubcategoriesByCategory, categoryID)
	if err != nil {
		return nil, err
	}
	return scanSubcategories(rows)
}
