package inmemdb

import (
	"context"
	"sort"

	"github.com/skillspear/skillspear/core/account"
)

type accountRepository struct {
	db *DB
}

var _ account.Repository = (*accountRepository)(nil)

func NewAccountRepository(db *DB) account.Repository {
	return &accountRepository{db: db}
}

func (repo *accountRepository) CreateAccount(_ context.Context, acc account.Account) (account.Account, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, a := range repo.db.accounts {
		if a.Email == acc.Email {
			return account.Account{}, account.ErrEmailExists
		}
	}
	repo.db.accounts[acc.ID] = &acc
	return acc, nil
}

func (repo *accountRepository) GetAccountByID(_ context.Context, id string) (account.Account, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if acc, ok := repo.db.accounts[id]; ok {
		return *acc, nil
	}
	return account.Account{}, account.ErrNotFound
}

func (repo *accountRepository) GetAccountByEmail(_ context.Context, email string) (account.Account, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if acc := repo.db.findByEmail(email); acc != nil {
		return *acc, nil
	}
	return account.Account{}, account.ErrNotFound
}

func (repo *accountRepository) QueryAllAccounts(_ context.Context) ([]account.Account, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	accs := make([]account.Account, 0, len(repo.db.accounts))
	for _, acc := range repo.db.accounts {
		accs = append(accs, *acc)
	}
	sort.Slice(accs, func(i, j int) bool { return accs[i].CreatedAt.After(accs[j].CreatedAt) })
	return accs, nil
}

func (repo *accountRepository) UpdateAccountRole(_ context.Context, id string, role account.Role) (account.Account, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	acc, ok := repo.db.accounts[id]
	if !ok {
		return account.Account{}, account.ErrNotFound
	}
	acc.Role = role
	return *acc, nil
}

func (repo *accountRepository) UpdateAccountRoleByEmail(_ context.Context, email string, role account.Role) (account.Account, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	acc := repo.db.findByEmail(email)
	if acc == nil {
		return account.Account{}, account.ErrNotFound
	}
	acc.Role = role
	return *acc, nil
}

// findByEmail expects the caller to hold the lock.
func (db *DB) findByEmail(email string) *account.Account {
	for _, acc := range db.accounts {
		if acc.Email == email {
			return acc
		}
	}
	return nil
}
