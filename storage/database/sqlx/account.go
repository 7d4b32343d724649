package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/skillspear/skillspear/core/account"
)

type accountRow struct {
	ID        string    `db:"id"`
	Email     string    `db:"email"`
	Name      string    `db:"name"`
	Photo     string    `db:"photo"`
	Role      string    `db:"role"`
	CreatedAt time.Time `db:"created_at"`
}

func (r accountRow) toDomain() account.Account {
	return account.Account{
		ID:        r.ID,
		Email:     r.Email,
		Name:      r.Name,
		Photo:     r.Photo,
		Role:      account.Role(r.Role),
		CreatedAt: r.CreatedAt.UTC(),
	}
}

const accountColumns = "id, email, name, photo, role, created_at"

type AccountRepository struct {
	db *sqlx.DB
}

var _ account.Repository = (*AccountRepository)(nil)

func NewAccountRepository(db *sqlx.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (repo *AccountRepository) CreateAccount(ctx context.Context, acc account.Account) (account.Account, error) {
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO account (id, email, name, photo, role, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		acc.ID, acc.Email, acc.Name, acc.Photo, acc.Role.String(), acc.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "account_email_key") {
			return account.Account{}, account.ErrEmailExists
		}
		return account.Account{}, errors.Wrap(err, "inserting account")
	}
	return acc, nil
}

func (repo *AccountRepository) GetAccountByID(ctx context.Context, id string) (account.Account, error) {
	var row accountRow
	err := repo.db.GetContext(ctx, &row, `SELECT `+accountColumns+` FROM account WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return account.Account{}, account.ErrNotFound
	}
	if err != nil {
		return account.Account{}, errors.Wrap(err, "selecting account by id")
	}
	return row.toDomain(), nil
}

func (repo *AccountRepository) GetAccountByEmail(ctx context.Context, email string) (account.Account, error) {
	var row accountRow
	err := repo.db.GetContext(ctx, &row, `SELECT `+accountColumns+` FROM account WHERE email = $1`, email)
	if err == sql.ErrNoRows {
		return account.Account{}, account.ErrNotFound
	}
	if err != nil {
		return account.Account{}, errors.Wrap(err, "selecting account by email")
	}
	return row.toDomain(), nil
}

func (repo *AccountRepository) QueryAllAccounts(ctx context.Context) ([]account.Account, error) {
	var rows []accountRow
	err := repo.db.SelectContext(ctx, &rows, `SELECT `+accountColumns+` FROM account ORDER BY created_at DESC`)
	if err != nil {
		return nil, errors.Wrap(err, "selecting accounts")
	}
	accs := make([]account.Account, len(rows))
	for i, row := range rows {
		accs[i] = row.toDomain()
	}
	return accs, nil
}

func (repo *AccountRepository) UpdateAccountRole(ctx context.Context, id string, role account.Role) (account.Account, error) {
	var row accountRow
	err := repo.db.GetContext(ctx, &row,
		`UPDATE account SET role = $2 WHERE id = $1 RETURNING `+accountColumns, id, role.String())
	if err == sql.ErrNoRows {
		return account.Account{}, account.ErrNotFound
	}
	if err != nil {
		return account.Account{}, errors.Wrap(err, "updating account role")
	}
	return row.toDomain(), nil
}

func (repo *AccountRepository) UpdateAccountRoleByEmail(ctx context.Context, email string, role account.Role) (account.Account, error) {
	var row accountRow
	err := repo.db.GetContext(ctx, &row,
		`UPDATE account SET role = $2 WHERE email = $1 RETURNING `+accountColumns, email, role.String())
	if err == sql.ErrNoRows {
		return account.Account{}, account.ErrNotFound
	}
	if err != nil {
		return account.Account{}, errors.Wrap(err, "updating account role by email")
	}
	return row.toDomain(), nil
}
