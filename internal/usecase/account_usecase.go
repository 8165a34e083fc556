package usecase

import (
	"context"
	"strings"

	"github.com/iho/cantina/internal/domain"
)

// AccountUseCase handles account registration and lookups.
type AccountUseCase struct {
	txManager    TransactionManager
	accountRepo  AccountRepository
	outboxRepo   OutboxRepository
	idGen        IDGenerator
	clock        Clock
	defaultLimit domain.Money
}

// NewAccountUseCase creates a new AccountUseCase. New accounts start with
// defaultLimit as their negative limit.
func NewAccountUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	defaultLimit domain.Money,
) *AccountUseCase {
	return &AccountUseCase{
		txManager:    txManager,
		accountRepo:  accountRepo,
		outboxRepo:   outboxRepo,
		idGen:        idGen,
		clock:        SystemClock,
		defaultLimit: defaultLimit,
	}
}

// RegisterAccountInput represents input for registering a customer.
type RegisterAccountInput struct {
	FullName  string
	BirthDate string
	Phone     string
	Actor     domain.Actor
}

// RegisterAccount creates a new account with a zero balance.
func (uc *AccountUseCase) RegisterAccount(ctx context.Context, input RegisterAccountInput) (*domain.Account, error) {
	if err := input.Actor.RequireAuthenticated(); err != nil {
		return nil, err
	}

	now := uc.clock.Now()

	fullName, err := domain.ValidateFullName(input.FullName)
	if err != nil {
		return nil, err
	}

	birthDate, err := domain.ValidateBirthDate(input.BirthDate, now)
	if err != nil {
		return nil, err
	}

	phone, err := domain.ValidatePhone(input.Phone)
	if err != nil {
		return nil, err
	}

	if err := domain.ValidateLimit(uc.defaultLimit); err != nil {
		return nil, err
	}

	account := &domain.Account{
		ID:            uc.idGen.Generate(),
		FullName:      fullName,
		BirthDate:     birthDate,
		Phone:         phone,
		Balance:       domain.Zero,
		NegativeLimit: uc.defaultLimit,
		Version:       0,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := uc.accountRepo.CreateTx(ctx, tx, account); err != nil {
		return nil, err
	}

	event := domain.NewAccountEvent(uc.idGen.Generate(), domain.EventTypeAccountCreated, account, input.Actor, now)
	if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return account, nil
}

// GetAccount retrieves an account by ID.
func (uc *AccountUseCase) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return uc.accountRepo.GetByID(ctx, id)
}

// ListAccountsInput represents input for listing accounts.
type ListAccountsInput struct {
	Query   string
	Balance string
	Limit   int
	Offset  int
}

// ListAccounts lists accounts ordered by name, optionally filtered by a
// name substring and the sign of the balance.
func (uc *AccountUseCase) ListAccounts(ctx context.Context, input ListAccountsInput) ([]*domain.Account, error) {
	balance, err := domain.ParseBalanceFilter(input.Balance)
	if err != nil {
		return nil, err
	}

	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)

	return uc.accountRepo.List(ctx, domain.AccountFilter{
		Query:   strings.TrimSpace(input.Query),
		Balance: balance,
		Limit:   limit,
		Offset:  offset,
	})
}

// WithClock overrides the wall clock used for timestamps and birth date checks.
func (uc *AccountUseCase) WithClock(clock Clock) *AccountUseCase {
	uc.clock = clock
	return uc
}
