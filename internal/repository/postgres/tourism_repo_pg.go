package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/tourcat/tourism-api/internal/domain"
)

type TourismRepository struct {
	db *sqlx.DB
}

func NewTourismRepo(db *sqlx.DB) *TourismRepository {
	return &TourismRepository{db: db}
}

const tourismColumns = "id, name, category, address, description, image_url, created_at, updated_at"

func (r *TourismRepository) Create(ctx context.Context, record *domain.TourismRecord) (*domain.TourismRecord, error) {
	const query = `
        INSERT INTO tourism_record (name, category, address, description, image_url)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING ` + tourismColumns + `
    `
	row := r.db.QueryRowxContext(ctx, query, record.Name, record.Category, record.Address, record.Description, record.Image)
	var created domain.TourismRecord
	if err := row.StructScan(&created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *TourismRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.TourismRecord, error) {
	const query = `SELECT ` + tourismColumns + ` FROM tourism_record WHERE id = $1`
	var record domain.TourismRecord
	if err := r.db.GetContext(ctx, &record, query, id); err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *TourismRepository) List(ctx context.Context, filter domain.TourismListFilter) ([]domain.TourismRecord, error) {
	query := `SELECT ` + tourismColumns + ` FROM tourism_record`
	where := make([]string, 0, 2)
	args := make([]any, 0, 2)
	idx := 1

	if search := strings.TrimSpace(filter.Search); search != "" {
		where = append(where, fmt.Sprintf("(name ILIKE $%d OR address ILIKE $%d)", idx, idx))
		args = append(args, "%"+search+"%")
		idx++
	}
	if len(filter.Categories) > 0 {
		where = append(where, fmt.Sprintf("category = ANY($%d)", idx))
		args = append(args, pq.Array(filter.Categories))
		idx++
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", idx)
		args = append(args, filter.Limit)
		idx++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", idx)
		args = append(args, filter.Offset)
	}

	records := make([]domain.TourismRecord, 0)
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *TourismRepository) Update(ctx context.Context, id uuid.UUID, fields domain.TourismFields) (*domain.TourismRecord, error) {
	setParts := []string{"updated_at = NOW()"}
	args := []any{}
	idx := 1

	if fields.Name != nil {
		setParts = append(setParts, fmt.Sprintf("name = $%d", idx))
		args = append(args, *fields.Name)
		idx++
	}
	if fields.Category != nil {
		setParts = append(setParts, fmt.Sprintf("category = $%d", idx))
		args = append(args, *fields.Category)
		idx++
	}
	if fields.Address != nil {
		setParts = append(setParts, fmt.Sprintf("address = $%d", idx))
		args = append(args, *fields.Address)
		idx++
	}
	if fields.Description != nil {
		setParts = append(setParts, fmt.Sprintf("description = $%d", idx))
		args = append(args, *fields.Description)
		idx++
	}
	if fields.Image != nil {
		setParts = append(setParts, fmt.Sprintf("image_url = $%d", idx))
		args = append(args, *fields.Image)
		idx++
	}

	query := fmt.Sprintf(`
        UPDATE tourism_record
        SET %s
        WHERE id = $%d
        RETURNING `+tourismColumns+`
    `, strings.Join(setParts, ", "), idx)
	args = append(args, id)

	row := r.db.QueryRowxContext(ctx, query, args...)
	var updated domain.TourismRecord
	if err := row.StructScan(&updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *TourismRepository) Delete(ctx context.Context, id uuid.UUID) error {
	const query = `DELETE FROM tourism_record WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *TourismRepository) ListImageURLs(ctx context.Context) ([]string, error) {
	const query = `SELECT image_url FROM tourism_record WHERE image_url IS NOT NULL`
	urls := make([]string, 0)
	if err := r.db.SelectContext(ctx, &urls, query); err != nil {
		return nil, err
	}
	return urls, nil
}
