package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/iho/cantina/internal/domain"
	"github.com/iho/cantina/internal/infrastructure/postgres/generated"
	"github.com/iho/cantina/internal/usecase"
)

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	queries *generated.Queries
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(db generated.DBTX) *AccountRepository {
	return &AccountRepository{
		queries: generated.New(db),
	}
}

// Create creates a new account.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	return r.queries.CreateAccount(ctx, createAccountParams(account))
}

// CreateTx creates a new account inside tx.
func (r *AccountRepository) CreateTx(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	pgxTx, err := pgxTxOf(tx)
	if err != nil {
		return err
	}

	return r.queries.WithTx(pgxTx).CreateAccount(ctx, createAccountParams(account))
}

// GetByID retrieves an account by ID.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	row, err := r.queries.GetAccountByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}

		return nil, err
	}

	return rowToAccount(row), nil
}

// UpdateTx writes the account if its version is still expectedVersion.
func (r *AccountRepository) UpdateTx(ctx context.Context, tx usecase.Transaction, account *domain.Account, expectedVersion int64) error {
	pgxTx, err := pgxTxOf(tx)
	if err != nil {
		return err
	}

	affected, err := r.queries.WithTx(pgxTx).UpdateAccountVersioned(ctx, generated.UpdateAccountVersionedParams{
		ID:                 account.ID,
		Version:            expectedVersion,
		BalanceCents:       account.Balance.CentsValue(),
		NegativeLimitCents: account.NegativeLimit.CentsValue(),
		UpdatedAt:          timeToPgTimestamptz(account.UpdatedAt),
	})
	if err != nil {
		return mapError(err)
	}

	if affected == 0 {
		return domain.ErrVersionConflict
	}

	return nil
}

// DeleteTx deletes the account if its version is still expectedVersion.
func (r *AccountRepository) DeleteTx(ctx context.Context, tx usecase.Transaction, id string, expectedVersion int64) error {
	pgxTx, err := pgxTxOf(tx)
	if err != nil {
		return err
	}

	affected, err := r.queries.WithTx(pgxTx).DeleteAccountVersioned(ctx, generated.DeleteAccountVersionedParams{
		ID:      id,
		Version: expectedVersion,
	})
	if err != nil {
		return mapError(err)
	}

	if affected == 0 {
		return domain.ErrVersionConflict
	}

	return nil
}

// List lists accounts ordered by name.
func (r *AccountRepository) List(ctx context.Context, filter domain.AccountFilter) ([]*domain.Account, error) {
	rows, err := r.queries.ListAccounts(ctx, generated.ListAccountsParams{
		Query:         likeEscaper.Replace(filter.Query),
		BalanceFilter: string(filter.Balance),
		RowLimit:      int32(filter.Limit),
		RowOffset:     int32(filter.Offset),
	})
	if err != nil {
		return nil, err
	}

	accounts := make([]*domain.Account, 0, len(rows))
	for _, row := range rows {
		accounts = append(accounts, rowToAccount(row))
	}

	return accounts, nil
}

// likeEscaper makes a search term match literally inside ILIKE.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Statistics aggregates all balances in one query.
func (r *AccountRepository) Statistics(ctx context.Context) (*domain.Statistics, error) {
	row, err := r.queries.AccountStatistics(ctx)
	if err != nil {
		return nil, err
	}

	return &domain.Statistics{
		TotalAccounts:    row.TotalAccounts,
		PositiveAccounts: row.PositiveAccounts,
		NegativeAccounts: row.NegativeAccounts,
		ZeroAccounts:     row.ZeroAccounts,
		TotalBalance:     domain.Cents(row.TotalBalanceCents),
	}, nil
}

func createAccountParams(account *domain.Account) generated.CreateAccountParams {
	return generated.CreateAccountParams{
		ID:                 account.ID,
		FullName:           account.FullName,
		BirthDate:          account.BirthDate,
		Phone:              account.Phone,
		BalanceCents:       account.Balance.CentsValue(),
		NegativeLimitCents: account.NegativeLimit.CentsValue(),
		Version:            account.Version,
		CreatedAt:          timeToPgTimestamptz(account.CreatedAt),
		UpdatedAt:          timeToPgTimestamptz(account.UpdatedAt),
	}
}

func rowToAccount(row generated.Account) *domain.Account {
	return &domain.Account{
		ID:            row.ID,
		FullName:      row.FullName,
		BirthDate:     row.BirthDate,
		Phone:         row.Phone,
		Balance:       domain.Cents(row.BalanceCents),
		NegativeLimit: domain.Cents(row.NegativeLimitCents),
		Version:       row.Version,
		CreatedAt:     row.CreatedAt.Time,
		UpdatedAt:     row.UpdatedAt.Time,
	}
}
