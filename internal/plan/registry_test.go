package plan_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/tesouraria/internal/money"
	"github.com/MrJamesThe3rd/tesouraria/internal/period"
	"github.com/MrJamesThe3rd/tesouraria/internal/plan"
)

func validTerms() plan.Terms {
	return plan.Terms{
		BaseAmount:           money.MustParse("1000.00"),
		DueDay:               10,
		LateFeePercent:       money.MustPercent("2"),
		DailyInterestPercent: money.MustPercent("0.033"),
		EarlyDiscountPercent: money.MustPercent("5"),
	}
}

func TestRegistry_Upsert(t *testing.T) {
	march := period.MustParse("2025-03")

	type testCase struct {
		name      string
		params    plan.UpsertParams
		setupMock func(m *plan.MockRepository)
		wantErr   error
	}

	withTerms := func(mut func(*plan.Terms)) plan.UpsertParams {
		terms := validTerms()
		mut(&terms)

		return plan.UpsertParams{Scope: plan.ScopeClass, ScopeID: "3A", EffectiveFrom: march, Terms: terms}
	}

	tests := []testCase{
		{
			name:   "Success",
			params: withTerms(func(*plan.Terms) {}),
			setupMock: func(m *plan.MockRepository) {
				m.EXPECT().
					LatestInvoicedPeriod(gomock.Any(), plan.ScopeClass, "3A").
					Return(period.Period{}, false, nil)
				m.EXPECT().
					CreatePlan(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, p *plan.Plan) error {
						p.Version = 1
						return nil
					})
			},
		},
		{
			name:   "AfterLatestInvoicedPeriod",
			params: withTerms(func(*plan.Terms) {}),
			setupMock: func(m *plan.MockRepository) {
				m.EXPECT().
					LatestInvoicedPeriod(gomock.Any(), plan.ScopeClass, "3A").
					Return(period.MustParse("2025-02"), true, nil)
				m.EXPECT().CreatePlan(gomock.Any(), gomock.Any()).Return(nil)
			},
		},
		{
			name:   "PeriodAlreadyInvoiced",
			params: withTerms(func(*plan.Terms) {}),
			setupMock: func(m *plan.MockRepository) {
				m.EXPECT().
					LatestInvoicedPeriod(gomock.Any(), plan.ScopeClass, "3A").
					Return(march, true, nil)
			},
			wantErr: plan.ErrPlanLocked,
		},
		{
			name:   "InvoicedWhileCreating",
			params: withTerms(func(*plan.Terms) {}),
			setupMock: func(m *plan.MockRepository) {
				m.EXPECT().
					LatestInvoicedPeriod(gomock.Any(), plan.ScopeClass, "3A").
					Return(period.Period{}, false, nil)
				m.EXPECT().
					CreatePlan(gomock.Any(), gomock.Any()).
					Return(fmt.Errorf("%w: 3A invoiced through 2025-03", plan.ErrPlanLocked))
			},
			wantErr: plan.ErrPlanLocked,
		},
		{
			name:    "NegativeLateFee",
			params:  withTerms(func(t *plan.Terms) { t.LateFeePercent = money.MustPercent("-1") }),
			wantErr: plan.ErrInvalidPlanParameters,
		},
		{
			name:    "NegativeInterest",
			params:  withTerms(func(t *plan.Terms) { t.DailyInterestPercent = money.MustPercent("-0.01") }),
			wantErr: plan.ErrInvalidPlanParameters,
		},
		{
			name:    "DiscountAboveHundred",
			params:  withTerms(func(t *plan.Terms) { t.EarlyDiscountPercent = money.MustPercent("100.5") }),
			wantErr: plan.ErrInvalidPlanParameters,
		},
		{
			name:    "ZeroBase",
			params:  withTerms(func(t *plan.Terms) { t.BaseAmount = money.Zero() }),
			wantErr: plan.ErrInvalidPlanParameters,
		},
		{
			name:    "DueDayOutOfRange",
			params:  withTerms(func(t *plan.Terms) { t.DueDay = 32 }),
			wantErr: plan.ErrInvalidPlanParameters,
		},
		{
			name:    "UnknownScope",
			params:  plan.UpsertParams{Scope: "school", ScopeID: "x", EffectiveFrom: march, Terms: validTerms()},
			wantErr: plan.ErrInvalidScope,
		},
		{
			name:    "MissingEffectivePeriod",
			params:  plan.UpsertParams{Scope: plan.ScopeStudent, ScopeID: "s1", Terms: validTerms()},
			wantErr: plan.ErrInvalidPlanParameters,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := plan.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			got, err := plan.NewRegistry(repo).Upsert(context.Background(), tt.params)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, got.ID)
			assert.Equal(t, tt.params.EffectiveFrom, got.EffectiveFrom)
			assert.False(t, got.CreatedAt.IsZero())
		})
	}
}

func TestRegistry_Resolve(t *testing.T) {
	march := period.MustParse("2025-03")
	studentPlan := &plan.Plan{ID: uuid.New(), Scope: plan.ScopeStudent, ScopeID: "s1"}
	classPlan := &plan.Plan{ID: uuid.New(), Scope: plan.ScopeClass, ScopeID: "3A"}

	type testCase struct {
		name      string
		setupMock func(m *plan.MockRepository)
		want      *plan.Plan
		wantErr   error
	}

	tests := []testCase{
		{
			name: "StudentPlanWins",
			setupMock: func(m *plan.MockRepository) {
				m.EXPECT().FindEffective(gomock.Any(), plan.ScopeStudent, "s1", march).Return(studentPlan, nil)
			},
			want: studentPlan,
		},
		{
			name: "FallsBackToClass",
			setupMock: func(m *plan.MockRepository) {
				m.EXPECT().FindEffective(gomock.Any(), plan.ScopeStudent, "s1", march).Return(nil, plan.ErrNoPlanForScope)
				m.EXPECT().FindEffective(gomock.Any(), plan.ScopeClass, "3A", march).Return(classPlan, nil)
			},
			want: classPlan,
		},
		{
			name: "NoPlanAnywhere",
			setupMock: func(m *plan.MockRepository) {
				m.EXPECT().FindEffective(gomock.Any(), plan.ScopeStudent, "s1", march).Return(nil, plan.ErrNoPlanForScope)
				m.EXPECT().FindEffective(gomock.Any(), plan.ScopeClass, "3A", march).Return(nil, plan.ErrNoPlanForScope)
			},
			wantErr: plan.ErrNoPlanForScope,
		},
		{
			name: "StoreErrorIsNotMasked",
			setupMock: func(m *plan.MockRepository) {
				m.EXPECT().FindEffective(gomock.Any(), plan.ScopeStudent, "s1", march).Return(nil, errors.New("db down"))
			},
			wantErr: errors.New("db down"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := plan.NewMockRepository(ctrl)
			tt.setupMock(repo)

			got, err := plan.NewRegistry(repo).Resolve(context.Background(), "s1", "3A", march)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr.Error())
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			assert.Same(t, tt.want, got)
		})
	}
}
