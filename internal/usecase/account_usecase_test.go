package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iho/cantina/internal/adapter/repository/memory"
	"github.com/iho/cantina/internal/domain"
	"github.com/iho/cantina/internal/usecase"
	"github.com/iho/cantina/internal/usecase/mocks"
)

func newAccountUseCase(store *memory.Store) *usecase.AccountUseCase {
	return usecase.NewAccountUseCase(
		memory.NewTxManager(store),
		memory.NewAccountRepository(store),
		memory.NewOutboxRepository(store),
		&seqIDs{},
		domain.DefaultNegativeLimit,
	).WithClock(fixedClock{now: time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)})
}

func TestAccountUseCase_RegisterAccount(t *testing.T) {
	tests := []struct {
		name      string
		input     usecase.RegisterAccountInput
		expectErr error
	}{
		{
			name: "valid registration",
			input: usecase.RegisterAccountInput{
				FullName:  " Maria  da Silva ",
				BirthDate: "01022010",
				Phone:     "(11) 98765-4321",
				Actor:     employee,
			},
		},
		{
			name:      "anonymous actor",
			input:     usecase.RegisterAccountInput{FullName: "Maria Silva", BirthDate: "01/02/2010", Phone: "11987654321"},
			expectErr: domain.ErrUnauthorized,
		},
		{
			name:      "single name",
			input:     usecase.RegisterAccountInput{FullName: "Maria", BirthDate: "01/02/2010", Phone: "11987654321", Actor: employee},
			expectErr: domain.ErrInvalidFullName,
		},
		{
			name:      "future birth date",
			input:     usecase.RegisterAccountInput{FullName: "Maria Silva", BirthDate: "16/06/2024", Phone: "11987654321", Actor: employee},
			expectErr: domain.ErrInvalidBirthDate,
		},
		{
			name:      "short phone",
			input:     usecase.RegisterAccountInput{FullName: "Maria Silva", BirthDate: "01/02/2010", Phone: "98765", Actor: employee},
			expectErr: domain.ErrInvalidPhone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.NewStore()
			uc := newAccountUseCase(store)

			account, err := uc.RegisterAccount(context.Background(), tt.input)
			if tt.expectErr != nil {
				require.ErrorIs(t, err, tt.expectErr)
				assert.Empty(t, store.Events())
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "Maria da Silva", account.FullName)
			assert.Equal(t, "01/02/2010", account.BirthDate)
			assert.Equal(t, "11987654321", account.Phone)
			assert.True(t, account.Balance.IsZero())
			assert.Equal(t, "-50.00", account.NegativeLimit.String())

			stored, err := uc.GetAccount(context.Background(), account.ID)
			require.NoError(t, err)
			assert.Equal(t, account.FullName, stored.FullName)

			events := store.Events()
			require.Len(t, events, 1)
			assert.Equal(t, domain.EventTypeAccountCreated, events[0].EventType)
		})
	}
}

func TestAccountUseCase_RegisterAccountRollsBackOnOutboxFailure(t *testing.T) {
	ctrl := gomock.NewController(t)

	txManager := mocks.NewMockTransactionManager(ctrl)
	tx := mocks.NewMockTransaction(ctrl)
	accounts := mocks.NewMockAccountRepository(ctrl)
	outbox := mocks.NewMockOutboxRepository(ctrl)
	ids := mocks.NewMockIDGenerator(ctrl)

	boom := errors.New("outbox unavailable")

	ids.EXPECT().Generate().Return("id").AnyTimes()
	txManager.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	accounts.EXPECT().CreateTx(gomock.Any(), tx, gomock.Any()).Return(nil)
	outbox.EXPECT().Create(gomock.Any(), tx, gomock.Any()).Return(boom)
	tx.EXPECT().Rollback(gomock.Any()).Return(nil)

	uc := usecase.NewAccountUseCase(txManager, accounts, outbox, ids, domain.DefaultNegativeLimit)

	_, err := uc.RegisterAccount(context.Background(), usecase.RegisterAccountInput{
		FullName:  "Maria Silva",
		BirthDate: "01/02/2010",
		Phone:     "11987654321",
		Actor:     employee,
	})
	require.ErrorIs(t, err, boom)
}

func TestAccountUseCase_ListAccounts(t *testing.T) {
	store := memory.NewStore()
	for _, a := range []*domain.Account{
		{ID: "1", FullName: "Carla Souza", Balance: domain.Units(10)},
		{ID: "2", FullName: "ana Lima", Balance: domain.Units(-5)},
		{ID: "3", FullName: "Bruno Souza", Balance: domain.Zero},
		{ID: "4", FullName: "Diego Alves", Balance: domain.Units(-1)},
	} {
		store.PutAccount(a)
	}
	uc := newAccountUseCase(store)
	ctx := context.Background()

	all, err := uc.ListAccounts(ctx, usecase.ListAccountsInput{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, []string{"2", "3", "1", "4"}, []string{all[0].ID, all[1].ID, all[2].ID, all[3].ID})

	souza, err := uc.ListAccounts(ctx, usecase.ListAccountsInput{Query: "SOUZA"})
	require.NoError(t, err)
	assert.Len(t, souza, 2)

	negative, err := uc.ListAccounts(ctx, usecase.ListAccountsInput{Balance: "negative"})
	require.NoError(t, err)
	assert.Len(t, negative, 2)

	page, err := uc.ListAccounts(ctx, usecase.ListAccountsInput{Limit: 2, Offset: 3})
	require.NoError(t, err)
	assert.Len(t, page, 1)

	_, err = uc.ListAccounts(ctx, usecase.ListAccountsInput{Balance: "broke"})
	require.ErrorIs(t, err, domain.ErrInvalidBalanceFilter)
}

func TestAccountUseCase_ListAccountsTrimsQuery(t *testing.T) {
	ctrl := gomock.NewController(t)
	accounts := mocks.NewMockAccountRepository(ctrl)

	accounts.EXPECT().List(gomock.Any(), domain.AccountFilter{
		Query:   "50% souza",
		Balance: domain.BalanceFilterAll,
		Limit:   50,
	}).Return([]*domain.Account{{ID: "1"}}, nil)

	uc := usecase.NewAccountUseCase(nil, accounts, nil, nil, domain.DefaultNegativeLimit)

	got, err := uc.ListAccounts(context.Background(), usecase.ListAccountsInput{Query: "  50% souza \t"})
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestAccountUseCase_ListAccountsMatchesLiterally(t *testing.T) {
	store := memory.NewStore()
	store.PutAccount(&domain.Account{ID: "1", FullName: "Loja 50%_off"})
	store.PutAccount(&domain.Account{ID: "2", FullName: "Loja 50 off"})
	uc := newAccountUseCase(store)

	got, err := uc.ListAccounts(context.Background(), usecase.ListAccountsInput{Query: " 50%_ "})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].ID)
}
