package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tourcat/tourism-api/internal/domain"
)

type AccountRepository struct {
	db *sqlx.DB
}

func NewAccountRepo(db *sqlx.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

const accountColumns = "id, name, username, email, password_hash, created_at"

func (r *AccountRepository) Create(ctx context.Context, account *domain.AdminAccount) (*domain.AdminAccount, error) {
	const query = `
        INSERT INTO admin_account (name, username, email, password_hash)
        VALUES ($1, $2, $3, $4)
        RETURNING ` + accountColumns + `
    `
	row := r.db.QueryRowxContext(ctx, query, account.Name, account.Username, account.Email, account.PasswordHash)
	var created domain.AdminAccount
	if err := row.StructScan(&created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *AccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.AdminAccount, error) {
	const query = `SELECT ` + accountColumns + ` FROM admin_account WHERE id = $1`
	var account domain.AdminAccount
	if err := r.db.GetContext(ctx, &account, query, id); err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *AccountRepository) FindByUsername(ctx context.Context, username string) (*domain.AdminAccount, error) {
	const query = `SELECT ` + accountColumns + ` FROM admin_account WHERE username = $1`
	var account domain.AdminAccount
	if err := r.db.GetContext(ctx, &account, query, username); err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*domain.AdminAccount, error) {
	const query = `SELECT ` + accountColumns + ` FROM admin_account WHERE email = $1`
	var account domain.AdminAccount
	if err := r.db.GetContext(ctx, &account, query, email); err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *AccountRepository) UpsertByEmail(ctx context.Context, email, name string) (*domain.AdminAccount, error) {
	const query = `
        INSERT INTO admin_account (name, username, email, password_hash)
        VALUES ($1, $2, $2, '')
        ON CONFLICT (email) DO UPDATE
        SET name = COALESCE(NULLIF(EXCLUDED.name, ''), admin_account.name)
        RETURNING ` + accountColumns + `
    `
	row := r.db.QueryRowxContext(ctx, query, name, email)
	var account domain.AdminAccount
	if err := row.StructScan(&account); err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *AccountRepository) List(ctx context.Context) ([]domain.AdminAccount, error) {
	const query = `SELECT ` + accountColumns + ` FROM admin_account ORDER BY created_at`
	accounts := make([]domain.AdminAccount, 0)
	if err := r.db.SelectContext(ctx, &accounts, query); err != nil {
		return nil, err
	}
	return accounts, nil
}

func (r *AccountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	const query = `DELETE FROM admin_account WHERE id = $1`
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
