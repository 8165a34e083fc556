package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/cantina/internal/domain"
)

// LedgerUseCase is the balance engine. It keeps no state between calls;
// concurrent calls on one account are serialized by the store's conditional
// write and retried by the Retrier.
type LedgerUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	entryRepo   EntryRepository
	outboxRepo  OutboxRepository
	idGen       IDGenerator
	retrier     *Retrier
	clock       Clock
	recorder    LedgerRecorder
	logger      zerolog.Logger
}

// LedgerOption customizes a LedgerUseCase.
type LedgerOption func(*LedgerUseCase)

// WithClock overrides the wall clock.
func WithClock(clock Clock) LedgerOption {
	return func(uc *LedgerUseCase) { uc.clock = clock }
}

// WithRecorder attaches a metrics recorder.
func WithRecorder(recorder LedgerRecorder) LedgerOption {
	return func(uc *LedgerUseCase) { uc.recorder = recorder }
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	entryRepo EntryRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	retrier *Retrier,
	logger zerolog.Logger,
	opts ...LedgerOption,
) *LedgerUseCase {
	uc := &LedgerUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		entryRepo:   entryRepo,
		outboxRepo:  outboxRepo,
		idGen:       idGen,
		retrier:     retrier,
		clock:       SystemClock,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

// CreditInput represents input for adding credit to an account.
type CreditInput struct {
	AccountID      string
	Amount         domain.Money
	Actor          domain.Actor
	Description    string
	IdempotencyKey string
}

// DebitInput represents input for recording a purchase.
type DebitInput struct {
	AccountID      string
	Amount         domain.Money
	Actor          domain.Actor
	Description    string
	IdempotencyKey string
}

// SetLimitInput represents input for changing an account's negative limit.
type SetLimitInput struct {
	AccountID string
	NewLimit  domain.Money
	Actor     domain.Actor
}

type entryRequest struct {
	accountID      string
	kind           domain.EntryKind
	amount         domain.Money
	actor          domain.Actor
	description    string
	idempotencyKey string
}

// Credit adds amount to the balance. Only privileged actors may credit.
func (uc *LedgerUseCase) Credit(ctx context.Context, input CreditInput) (*domain.Entry, error) {
	start := time.Now()

	entry, err := uc.credit(ctx, input)
	uc.observe(OperationCredit, input.AccountID, start, err)

	return entry, err
}

func (uc *LedgerUseCase) credit(ctx context.Context, input CreditInput) (*domain.Entry, error) {
	if err := input.Actor.RequirePrivileged(); err != nil {
		return nil, err
	}

	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	return uc.record(ctx, OperationCredit, entryRequest{
		accountID:      input.AccountID,
		kind:           domain.EntryKindCredit,
		amount:         input.Amount,
		actor:          input.Actor,
		description:    describe(input.Description, domain.DefaultCreditDescription),
		idempotencyKey: input.IdempotencyKey,
	})
}

// Debit records a purchase. The balance may not fall below the account's
// negative limit.
func (uc *LedgerUseCase) Debit(ctx context.Context, input DebitInput) (*domain.Entry, error) {
	start := time.Now()

	entry, err := uc.debit(ctx, input)
	uc.observe(OperationDebit, input.AccountID, start, err)

	return entry, err
}

func (uc *LedgerUseCase) debit(ctx context.Context, input DebitInput) (*domain.Entry, error) {
	if err := input.Actor.RequireAuthenticated(); err != nil {
		return nil, err
	}

	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	return uc.record(ctx, OperationDebit, entryRequest{
		accountID:      input.AccountID,
		kind:           domain.EntryKindDebit,
		amount:         input.Amount,
		actor:          input.Actor,
		description:    describe(input.Description, domain.DefaultDebitDescription),
		idempotencyKey: input.IdempotencyKey,
	})
}

func (uc *LedgerUseCase) record(ctx context.Context, operation string, req entryRequest) (*domain.Entry, error) {
	var entry *domain.Entry

	err := uc.retrier.Run(ctx, operation, func(ctx context.Context) error {
		e, err := uc.recordAttempt(ctx, req)
		if err != nil {
			return err
		}
		entry = e
		return nil
	})
	if err != nil {
		return nil, err
	}

	return entry, nil
}

// recordAttempt is one read-compute-commit pass. Every pass starts from a
// fresh read so the limit check always sees committed state.
func (uc *LedgerUseCase) recordAttempt(ctx context.Context, req entryRequest) (*domain.Entry, error) {
	if req.idempotencyKey != "" {
		existing, err := uc.entryRepo.FindByIdempotencyKey(ctx, req.accountID, req.idempotencyKey)
		switch {
		case err == nil:
			if !existing.Matches(req.kind, req.amount) {
				return nil, domain.ErrIdempotencyKeyReused
			}
			return existing, nil
		case !errors.Is(err, domain.ErrEntryNotFound):
			return nil, err
		}
	}

	account, err := uc.accountRepo.GetByID(ctx, req.accountID)
	if err != nil {
		return nil, err
	}

	var newBalance domain.Money
	if req.kind == domain.EntryKindDebit {
		if err := account.ValidateDebit(req.amount); err != nil {
			return nil, err
		}
		newBalance = account.ApplyDebit(req.amount)
	} else {
		newBalance = account.ApplyCredit(req.amount)
	}

	now := uc.clock.Now()
	expectedVersion := account.Version

	next := account.Clone()
	next.Balance = newBalance
	next.Version = expectedVersion + 1
	next.UpdatedAt = now

	entry := &domain.Entry{
		ID:             uc.idGen.Generate(),
		AccountID:      account.ID,
		Kind:           req.kind,
		Amount:         req.amount,
		BalanceAfter:   newBalance,
		Description:    req.description,
		ActorID:        req.actor.ID,
		ActorName:      req.actor.Name,
		IdempotencyKey: req.idempotencyKey,
		OccurredAt:     now,
	}

	err = uc.inTx(ctx, func(tx Transaction) error {
		if err := uc.accountRepo.UpdateTx(ctx, tx, next, expectedVersion); err != nil {
			return err
		}
		if err := uc.entryRepo.CreateTx(ctx, tx, entry); err != nil {
			return err
		}
		return uc.outboxRepo.Create(ctx, tx, domain.NewEntryEvent(uc.idGen.Generate(), entry))
	})
	if err != nil {
		return nil, err
	}

	return entry, nil
}

// SetLimit replaces the account's negative limit. The current balance is
// not checked against the new limit.
func (uc *LedgerUseCase) SetLimit(ctx context.Context, input SetLimitInput) (*domain.Account, error) {
	start := time.Now()

	account, err := uc.setLimit(ctx, input)
	uc.observe(OperationSetLimit, input.AccountID, start, err)

	return account, err
}

func (uc *LedgerUseCase) setLimit(ctx context.Context, input SetLimitInput) (*domain.Account, error) {
	if err := input.Actor.RequirePrivileged(); err != nil {
		return nil, err
	}

	if err := domain.ValidateLimit(input.NewLimit); err != nil {
		return nil, err
	}

	var updated *domain.Account

	err := uc.retrier.Run(ctx, OperationSetLimit, func(ctx context.Context) error {
		account, err := uc.accountRepo.GetByID(ctx, input.AccountID)
		if err != nil {
			return err
		}

		expectedVersion := account.Version
		previous := account.NegativeLimit

		next := account.Clone()
		next.NegativeLimit = input.NewLimit
		next.Version = expectedVersion + 1
		next.UpdatedAt = uc.clock.Now()

		err = uc.inTx(ctx, func(tx Transaction) error {
			if err := uc.accountRepo.UpdateTx(ctx, tx, next, expectedVersion); err != nil {
				return err
			}
			event := domain.NewLimitChangedEvent(uc.idGen.Generate(), next, previous, input.Actor)
			return uc.outboxRepo.Create(ctx, tx, event)
		})
		if err != nil {
			return err
		}

		updated = next
		return nil
	})
	if err != nil {
		return nil, err
	}

	if updated.IsBelowLimit() {
		uc.logger.Info().
			Str("account_id", updated.ID).
			Str("balance", updated.Balance.String()).
			Str("negative_limit", updated.NegativeLimit.String()).
			Msg("limit change left balance below the new limit")
	}

	return updated, nil
}

// Remove deletes the account's entries and then the account.
func (uc *LedgerUseCase) Remove(ctx context.Context, accountID string, actor domain.Actor) error {
	start := time.Now()

	err := uc.remove(ctx, accountID, actor)
	uc.observe(OperationRemove, accountID, start, err)

	return err
}

func (uc *LedgerUseCase) remove(ctx context.Context, accountID string, actor domain.Actor) error {
	if err := actor.RequirePrivileged(); err != nil {
		return err
	}

	return uc.retrier.Run(ctx, OperationRemove, func(ctx context.Context) error {
		account, err := uc.accountRepo.GetByID(ctx, accountID)
		if err != nil {
			return err
		}

		return uc.inTx(ctx, func(tx Transaction) error {
			deleted, err := uc.entryRepo.DeleteByAccountTx(ctx, tx, accountID)
			if err != nil {
				return err
			}

			if err := uc.accountRepo.DeleteTx(ctx, tx, accountID, account.Version); err != nil {
				return err
			}

			event := domain.NewAccountEvent(uc.idGen.Generate(), domain.EventTypeAccountRemoved, account, actor, uc.clock.Now())
			event.Payload["entries_deleted"] = deleted

			return uc.outboxRepo.Create(ctx, tx, event)
		})
	})
}

func (uc *LedgerUseCase) inTx(ctx context.Context, fn func(tx Transaction) error) error {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (uc *LedgerUseCase) observe(operation, accountID string, start time.Time, err error) {
	outcome := Outcome(err)

	if uc.recorder != nil {
		uc.recorder.RecordOperation(operation, outcome, time.Since(start))
	}

	event := uc.logger.Debug()
	if outcome == OutcomeError {
		event = uc.logger.Error()
	}

	event.
		Err(err).
		Str("operation", operation).
		Str("account_id", accountID).
		Str("outcome", outcome).
		Dur("duration", time.Since(start)).
		Msg("ledger operation finished")
}

// Outcome labels for metrics and logs.
const (
	OutcomeSuccess              = "success"
	OutcomeUnauthorized         = "unauthorized"
	OutcomeLimitExceeded        = "limit_exceeded"
	OutcomeConcurrencyExhausted = "concurrency_exhausted"
	OutcomeTimeout              = "timeout"
	OutcomeNotFound             = "not_found"
	OutcomeInvalid              = "invalid"
	OutcomeError                = "error"
)

// Outcome classifies an engine result.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, domain.ErrUnauthorized):
		return OutcomeUnauthorized
	case errors.Is(err, domain.ErrLimitExceeded):
		return OutcomeLimitExceeded
	case errors.Is(err, domain.ErrConcurrencyExhausted):
		return OutcomeConcurrencyExhausted
	case errors.Is(err, domain.ErrTimeout):
		return OutcomeTimeout
	case errors.Is(err, domain.ErrAccountNotFound):
		return OutcomeNotFound
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrAmountTooLarge),
		errors.Is(err, domain.ErrInvalidLimit),
		errors.Is(err, domain.ErrIdempotencyKeyReused):
		return OutcomeInvalid
	default:
		return OutcomeError
	}
}

func describe(description, fallback string) string {
	if d := strings.TrimSpace(description); d != "" {
		return d
	}
	return fallback
}
