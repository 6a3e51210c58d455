package period_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tesouraria/internal/period"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestParse(t *testing.T) {
	p, err := period.Parse("2025-03")
	require.NoError(t, err)
	assert.Equal(t, period.New(2025, time.March), p)
	assert.Equal(t, "2025-03", p.String())

	_, err = period.Parse("2025-13")
	assert.ErrorIs(t, err, period.ErrInvalidPeriod)

	_, err = period.Parse("march")
	assert.ErrorIs(t, err, period.ErrInvalidPeriod)
}

func TestDueDate_ClampsToMonthLength(t *testing.T) {
	tests := []struct {
		period string
		day    int
		want   time.Time
	}{
		{period: "2025-04", day: 10, want: date(2025, 4, 10)},
		{period: "2025-02", day: 31, want: date(2025, 2, 28)},
		{period: "2024-02", day: 30, want: date(2024, 2, 29)},
		{period: "2025-04", day: 31, want: date(2025, 4, 30)},
		{period: "2025-01", day: 31, want: date(2025, 1, 31)},
	}

	for _, tt := range tests {
		t.Run(tt.period, func(t *testing.T) {
			assert.Equal(t, tt.want, period.MustParse(tt.period).DueDate(tt.day))
		})
	}
}

func TestCompareAndNavigation(t *testing.T) {
	dec := period.MustParse("2024-12")
	jan := period.MustParse("2025-01")

	assert.Equal(t, jan, dec.Next())
	assert.Equal(t, dec, jan.Prev())
	assert.True(t, dec.Before(jan))
	assert.True(t, jan.After(dec))
	assert.Equal(t, 0, jan.Compare(period.New(2025, time.January)))
	assert.Equal(t, date(2025, 1, 31), jan.End())
}

func TestDate_UsesLocation(t *testing.T) {
	sp, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)

	// 01:30 UTC on the 11th is still the 10th in São Paulo.
	instant := time.Date(2025, 3, 11, 1, 30, 0, 0, time.UTC)
	assert.Equal(t, date(2025, 3, 10), period.Date(instant, sp))
	assert.Equal(t, date(2025, 3, 11), period.Date(instant, time.UTC))
}

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 5, period.DaysBetween(date(2025, 3, 10), date(2025, 3, 15)))
	assert.Equal(t, -1, period.DaysBetween(date(2025, 3, 10), date(2025, 3, 9)))
	assert.Equal(t, 0, period.DaysBetween(date(2025, 3, 10), date(2025, 3, 10)))
}

func TestParseRange(t *testing.T) {
	r, err := period.ParseRange("2025-04", "", "")
	require.NoError(t, err)
	assert.Equal(t, date(2025, 4, 1), r.From)
	assert.Equal(t, date(2025, 4, 30), r.To)
	assert.Len(t, r.Days(), 30)

	r, err = period.ParseRange("", "2025-04-05", "2025-04-07")
	require.NoError(t, err)
	assert.True(t, r.Contains(time.Date(2025, 4, 7, 23, 0, 0, 0, time.UTC)))
	assert.False(t, r.Contains(date(2025, 4, 8)))
	assert.Equal(t, date(2025, 4, 8), r.EndExclusive())

	_, err = period.ParseRange("", "2025-04-07", "2025-04-05")
	assert.ErrorIs(t, err, period.ErrInvalidPeriod)

	_, err = period.ParseRange("", "", "")
	assert.ErrorIs(t, err, period.ErrInvalidPeriod)
	r, err = period.ParseRange("", "2020-01-01", "2024-12-31")
	require.NoError(t, err)
	assert.Len(t, r.Days(), 1827)

	_, err = period.ParseRange("", "2020-01-01", "2025-01-05")
	assert.ErrorIs(t, err, period.ErrInvalidPeriod)

	_, err = period.ParseRange("", "0001-01-01", "9999-12-31")
	assert.ErrorIs(t, err, period.ErrInvalidPeriod)
}
