package invoice_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/tesouraria/internal/boleto"
	"github.com/MrJamesThe3rd/tesouraria/internal/discount"
	"github.com/MrJamesThe3rd/tesouraria/internal/invoice"
	"github.com/MrJamesThe3rd/tesouraria/internal/ledger"
	"github.com/MrJamesThe3rd/tesouraria/internal/money"
)

var (
	issuer = invoice.Issuer{BankCode: 1, AgreementCode: 1234567}
	codec  = boleto.NewCodec("17")
)

func pendingInvoice(t *testing.T) *invoice.Invoice {
	t.Helper()

	inv := marchInvoice("0")
	inv.ID = uuid.New()
	inv.SequenceNumber = 42

	b, err := codec.Encode(issuer.AgreementCode, issuer.BankCode, inv.DueDate, inv.BaseAmount, inv.SequenceNumber)
	require.NoError(t, err)

	inv.Boleto = b

	return inv
}

func paidCopy(inv *invoice.Invoice, ref string) *invoice.Invoice {
	cp := *inv
	cp.Status = invoice.StatusPaid
	cp.PaymentReference = ref

	return &cp
}

type mocks struct {
	repo   *invoice.MockRepository
	tx     *invoice.MockTx
	grants *invoice.MockGrantFinder
}

func newService(t *testing.T, now time.Time) (*invoice.Service, mocks) {
	t.Helper()

	ctrl := gomock.NewController(t)
	m := mocks{
		repo:   invoice.NewMockRepository(ctrl),
		tx:     invoice.NewMockTx(ctrl),
		grants: invoice.NewMockGrantFinder(ctrl),
	}

	svc := invoice.NewService(m.repo, m.grants, codec, issuer, time.UTC).
		WithClock(func() time.Time { return now })

	return svc, m
}

func expectPayment(t *testing.T, m mocks, inv *invoice.Invoice, casWon bool, wantAmount string) {
	m.grants.EXPECT().ActiveFor(gomock.Any(), inv.StudentID, inv.Period).Return(nil, nil)
	m.repo.EXPECT().BeginTx(gomock.Any()).Return(m.tx, nil)
	m.tx.EXPECT().
		MarkPaid(gomock.Any(), inv.ID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ uuid.UUID, p invoice.Payment) (bool, error) {
			if wantAmount != "" {
				assert.Equal(t, wantAmount, p.Amount.String())
			}

			return casWon, nil
		})
	m.tx.EXPECT().Rollback().Return(nil).AnyTimes()

	if casWon {
		m.tx.EXPECT().
			AppendCashEntry(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, e *ledger.Entry) error {
				assert.Equal(t, ledger.CategoryRevenue, e.Category)
				assert.Equal(t, ledger.SourceInvoice, e.Source)
				assert.Equal(t, inv.ID, *e.InvoiceID)
				assert.Equal(t, wantAmount, e.Amount.String())

				return nil
			})
		m.tx.EXPECT().Commit().Return(nil)
	}
}

func TestService_ConfirmPayment(t *testing.T) {
	paidAt := time.Date(2025, time.March, 15, 14, 0, 0, 0, time.UTC)

	type testCase struct {
		name      string
		ref       string
		setupMock func(t *testing.T, m mocks, inv *invoice.Invoice)
		wantErr   error
		check     func(t *testing.T, got *invoice.Invoice, err error)
	}

	tests := []testCase{
		{
			name: "PaysLateInvoiceWithAccruedAmount",
			ref:  "REF1",
			setupMock: func(t *testing.T, m mocks, inv *invoice.Invoice) {
				m.repo.EXPECT().GetInvoice(gomock.Any(), inv.ID).Return(inv, nil)
				expectPayment(t, m, inv, true, "1021.68")
			},
			check: func(t *testing.T, got *invoice.Invoice, _ error) {
				assert.Equal(t, invoice.StatusPaid, got.Status)
				assert.Equal(t, "REF1", got.PaymentReference)
				assert.Equal(t, "1021.68", got.PaidAmount.String())
				assert.Equal(t, paidAt, *got.PaidAt)
			},
		},
		{
			name: "ReplayWithSameReference",
			ref:  "REF1",
			setupMock: func(t *testing.T, m mocks, inv *invoice.Invoice) {
				m.repo.EXPECT().GetInvoice(gomock.Any(), inv.ID).Return(paidCopy(inv, "REF1"), nil)
			},
			check: func(t *testing.T, got *invoice.Invoice, _ error) {
				assert.Equal(t, invoice.StatusPaid, got.Status)
			},
		},
		{
			name: "DifferentReferenceConflicts",
			ref:  "REF2",
			setupMock: func(t *testing.T, m mocks, inv *invoice.Invoice) {
				m.repo.EXPECT().GetInvoice(gomock.Any(), inv.ID).Return(paidCopy(inv, "REF1"), nil)
			},
			wantErr: invoice.ErrPaymentReferenceConflict,
			check: func(t *testing.T, _ *invoice.Invoice, err error) {
				var conflict *invoice.PaymentReferenceConflictError
				require.True(t, errors.As(err, &conflict))
				assert.Equal(t, "REF1", conflict.Existing)
				assert.Equal(t, "REF2", conflict.Attempted)
				assert.True(t, invoice.IsConflict(err))
			},
		},
		{
			name: "CancelledInvoice",
			ref:  "REF1",
			setupMock: func(t *testing.T, m mocks, inv *invoice.Invoice) {
				cancelled := *inv
				cancelled.Status = invoice.StatusCancelled
				m.repo.EXPECT().GetInvoice(gomock.Any(), inv.ID).Return(&cancelled, nil)
			},
			wantErr: invoice.ErrInvoiceCancelled,
		},
		{
			name: "UnknownInvoice",
			ref:  "REF1",
			setupMock: func(t *testing.T, m mocks, inv *invoice.Invoice) {
				m.repo.EXPECT().GetInvoice(gomock.Any(), inv.ID).Return(nil, invoice.ErrNotFound)
			},
			wantErr: invoice.ErrNotFound,
		},
		{
			name:    "MissingReference",
			ref:     "",
			wantErr: invoice.ErrInvalidPayment,
		},
		{
			name: "LostRaceToSameReference",
			ref:  "REF1",
			setupMock: func(t *testing.T, m mocks, inv *invoice.Invoice) {
				gomock.InOrder(
					m.repo.EXPECT().GetInvoice(gomock.Any(), inv.ID).Return(inv, nil),
					m.repo.EXPECT().GetInvoice(gomock.Any(), inv.ID).Return(paidCopy(inv, "REF1"), nil),
				)
				expectPayment(t, m, inv, false, "")
			},
			check: func(t *testing.T, got *invoice.Invoice, _ error) {
				assert.Equal(t, "REF1", got.PaymentReference)
			},
		},
		{
			name: "LostRaceToDifferentReference",
			ref:  "REF2",
			setupMock: func(t *testing.T, m mocks, inv *invoice.Invoice) {
				gomock.InOrder(
					m.repo.EXPECT().GetInvoice(gomock.Any(), inv.ID).Return(inv, nil),
					m.repo.EXPECT().GetInvoice(gomock.Any(), inv.ID).Return(paidCopy(inv, "REF1"), nil),
				)
				expectPayment(t, m, inv, false, "")
			},
			wantErr: invoice.ErrPaymentReferenceConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newService(t, paidAt)
			inv := pendingInvoice(t)

			if tt.setupMock != nil {
				tt.setupMock(t, m, inv)
			}

			got, err := svc.ConfirmPayment(context.Background(), invoice.ConfirmParams{
				InvoiceID:        inv.ID,
				PaymentReference: tt.ref,
				PaidAt:           paidAt,
			})

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
			} else {
				require.NoError(t, err)
			}

			if tt.check != nil {
				tt.check(t, got, err)
			}
		})
	}
}

func TestService_ConfirmPayment_GrantAppliesBeforeDueDate(t *testing.T) {
	paidAt := time.Date(2025, time.March, 5, 10, 0, 0, 0, time.UTC)
	svc, m := newService(t, paidAt)
	inv := pendingInvoice(t)
	grant := &discount.Grant{StudentID: "s1", Percent: money.MustPercent("20"), From: inv.Period, To: inv.Period}

	m.repo.EXPECT().GetInvoice(gomock.Any(), inv.ID).Return(inv, nil)
	m.grants.EXPECT().ActiveFor(gomock.Any(), "s1", inv.Period).Return(grant, nil)
	m.repo.EXPECT().BeginTx(gomock.Any()).Return(m.tx, nil)
	m.tx.EXPECT().MarkPaid(gomock.Any(), inv.ID, gomock.Any()).Return(true, nil)
	m.tx.EXPECT().AppendCashEntry(gomock.Any(), gomock.Any()).Return(nil)
	m.tx.EXPECT().Commit().Return(nil)
	m.tx.EXPECT().Rollback().Return(nil)

	got, err := svc.ConfirmPayment(context.Background(), invoice.ConfirmParams{
		InvoiceID: inv.ID, PaymentReference: "PIX-9", PaidAt: paidAt,
	})
	require.NoError(t, err)
	assert.Equal(t, "800.00", got.PaidAmount.String())
}

func TestService_Cancel(t *testing.T) {
	now := time.Date(2025, time.March, 20, 9, 0, 0, 0, time.UTC)

	type testCase struct {
		name      string
		status    invoice.Status
		setupMock func(t *testing.T, m mocks, inv *invoice.Invoice)
		wantErr   error
	}

	tests := []testCase{
		{
			name:   "OverdueInvoice",
			status: invoice.StatusPending,
			setupMock: func(t *testing.T, m mocks, inv *invoice.Invoice) {
				m.repo.EXPECT().CancelPending(gomock.Any(), inv.ID, "transferido", now).Return(true, nil)
			},
		},
		{
			name:    "PaidInvoice",
			status:  invoice.StatusPaid,
			wantErr: invoice.ErrCannotCancelPaidInvoice,
		},
		{
			name:    "AlreadyCancelled",
			status:  invoice.StatusCancelled,
			wantErr: invoice.ErrInvoiceCancelled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newService(t, now)
			inv := pendingInvoice(t)
			inv.Status = tt.status

			m.repo.EXPECT().GetInvoice(gomock.Any(), inv.ID).Return(inv, nil)

			if tt.setupMock != nil {
				tt.setupMock(t, m, inv)
			}

			got, err := svc.Cancel(context.Background(), inv.ID, "transferido")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.True(t, invoice.IsConflict(err))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, invoice.StatusCancelled, got.Status)
			assert.Equal(t, "transferido", got.CancelReason)
		})
	}
}

func TestService_Get(t *testing.T) {
	t.Run("PendingAccruesToday", func(t *testing.T) {
		svc, m := newService(t, time.Date(2025, time.March, 15, 18, 0, 0, 0, time.UTC))
		inv := pendingInvoice(t)

		m.repo.EXPECT().GetInvoice(gomock.Any(), inv.ID).Return(inv, nil)
		m.grants.EXPECT().ActiveFor(gomock.Any(), "s1", inv.Period).Return(nil, nil)

		st, err := svc.Get(context.Background(), inv.ID)
		require.NoError(t, err)
		assert.Equal(t, "1021.68", st.AmountDue.String())
		assert.True(t, st.Overdue)
		assert.Equal(t, invoice.StatusOverdue, st.Status)
	})

	t.Run("PaidOwesNothing", func(t *testing.T) {
		svc, m := newService(t, time.Date(2025, time.March, 15, 18, 0, 0, 0, time.UTC))
		inv := paidCopy(pendingInvoice(t), "REF1")

		m.repo.EXPECT().GetInvoice(gomock.Any(), inv.ID).Return(inv, nil)

		st, err := svc.Get(context.Background(), inv.ID)
		require.NoError(t, err)
		assert.True(t, st.AmountDue.IsZero())
		assert.False(t, st.Overdue)
		assert.Equal(t, invoice.StatusPaid, st.Status)
	})

	t.Run("UsesBillingLocationForToday", func(t *testing.T) {
		saoPaulo := time.FixedZone("BRT", -3*60*60)
		ctrl := gomock.NewController(t)
		repo := invoice.NewMockRepository(ctrl)

		// 01:00 UTC on the 11th is still the 10th in São Paulo.
		svc := invoice.NewService(repo, nil, codec, issuer, saoPaulo).
			WithClock(func() time.Time { return time.Date(2025, time.March, 11, 1, 0, 0, 0, time.UTC) })

		inv := pendingInvoice(t)
		repo.EXPECT().GetInvoice(gomock.Any(), inv.ID).Return(inv, nil)

		st, err := svc.Get(context.Background(), inv.ID)
		require.NoError(t, err)
		assert.Equal(t, "1000.00", st.AmountDue.String())
		assert.False(t, st.Overdue)
	})
}

func TestService_Reissue(t *testing.T) {
	svc, m := newService(t, time.Now())
	inv := pendingInvoice(t)

	m.repo.EXPECT().GetInvoice(gomock.Any(), inv.ID).Return(inv, nil).Times(2)

	first, err := svc.Reissue(context.Background(), inv.ID)
	require.NoError(t, err)

	second, err := svc.Reissue(context.Background(), inv.ID)
	require.NoError(t, err)

	assert.Equal(t, inv.Boleto, first)
	assert.Equal(t, first, second)

	t.Run("IssuerChanged", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := invoice.NewMockRepository(ctrl)
		other := invoice.NewService(repo, nil, codec, invoice.Issuer{BankCode: 1, AgreementCode: 7654321}, time.UTC)

		repo.EXPECT().GetInvoice(gomock.Any(), inv.ID).Return(inv, nil)

		_, err := other.Reissue(context.Background(), inv.ID)
		assert.ErrorIs(t, err, invoice.ErrIssuerChanged)
	})
}
