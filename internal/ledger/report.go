package ledger

import (
	"slices"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/tesouraria/internal/money"
	"github.com/MrJamesThe3rd/tesouraria/internal/period"
)

// Classifier decides which entries count as operational in the DRE.
type Classifier struct {
	subcategories map[string]struct{}
}

// NewClassifier treats invoice payments, plus manual entries tagged with one
// of the given subcategories, as operational.
func NewClassifier(subcategories []string) Classifier {
	set := make(map[string]struct{}, len(subcategories))
	for _, s := range subcategories {
		if s = normalizeSubcategory(s); s != "" {
			set[s] = struct{}{}
		}
	}

	return Classifier{subcategories: set}
}

func (c Classifier) Operational(e *Entry) bool {
	if e.Source == SourceInvoice {
		return true
	}

	_, ok := c.subcategories[normalizeSubcategory(e.Subcategory)]

	return ok
}

func normalizeSubcategory(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

type DRELine struct {
	Category    Category    `json:"category"`
	Subcategory string      `json:"subcategory"`
	Operational bool        `json:"operational"`
	Entries     int         `json:"entries"`
	Total       money.Money `json:"total"`
}

// DRE is the income statement for a date range.
type DRE struct {
	From                  string      `json:"from"`
	To                    string      `json:"to"`
	OperationalRevenue    money.Money `json:"operational_revenue"`
	OperationalExpense    money.Money `json:"operational_expense"`
	OperationalResult     money.Money `json:"operational_result"`
	NonOperationalRevenue money.Money `json:"non_operational_revenue"`
	NonOperationalExpense money.Money `json:"non_operational_expense"`
	NonOperationalResult  money.Money `json:"non_operational_result"`
	NetResult             money.Money `json:"net_result"`
	Lines                 []DRELine   `json:"lines"`
}

type Balance struct {
	From    string      `json:"from"`
	To      string      `json:"to"`
	Opening money.Money `json:"opening_balance"`
	Revenue money.Money `json:"revenue"`
	Expense money.Money `json:"expense"`
	Saldo   money.Money `json:"saldo"`
	Closing money.Money `json:"closing_balance"`
}

type CashflowDay struct {
	Date    string      `json:"date"`
	Inflow  money.Money `json:"inflow"`
	Outflow money.Money `json:"outflow"`
	Net     money.Money `json:"net"`
	Balance money.Money `json:"balance"`
}

type Cashflow struct {
	From    string        `json:"from"`
	To      string        `json:"to"`
	Opening money.Money   `json:"opening_balance"`
	Days    []CashflowDay `json:"days"`
	Closing money.Money   `json:"closing_balance"`
}

// FoldDRE builds the income statement from the entries inside r. Entries
// outside r are ignored.
func FoldDRE(r period.DateRange, entries []*Entry, c Classifier) DRE {
	d := DRE{
		From:                  r.From.Format(time.DateOnly),
		To:                    r.To.Format(time.DateOnly),
		OperationalRevenue:    money.Zero(),
		OperationalExpense:    money.Zero(),
		NonOperationalRevenue: money.Zero(),
		NonOperationalExpense: money.Zero(),
		Lines:                 []DRELine{},
	}

	type lineKey struct {
		category    Category
		subcategory string
		operational bool
	}

	lines := make(map[lineKey]*DRELine)

	for _, e := range entries {
		if !r.Contains(e.Date) {
			continue
		}

		op := c.Operational(e)

		switch {
		case op && e.Category == CategoryRevenue:
			d.OperationalRevenue = d.OperationalRevenue.Add(e.Amount)
		case op:
			d.OperationalExpense = d.OperationalExpense.Add(e.Amount)
		case e.Category == CategoryRevenue:
			d.NonOperationalRevenue = d.NonOperationalRevenue.Add(e.Amount)
		default:
			d.NonOperationalExpense = d.NonOperationalExpense.Add(e.Amount)
		}

		k := lineKey{category: e.Category, subcategory: normalizeSubcategory(e.Subcategory), operational: op}

		line, ok := lines[k]
		if !ok {
			line = &DRELine{Category: k.category, Subcategory: k.subcategory, Operational: op, Total: money.Zero()}
			lines[k] = line
		}

		line.Entries++
		line.Total = line.Total.Add(e.Amount)
	}

	d.OperationalResult = d.OperationalRevenue.Sub(d.OperationalExpense)
	d.NonOperationalResult = d.NonOperationalRevenue.Sub(d.NonOperationalExpense)
	d.NetResult = d.OperationalResult.Add(d.NonOperationalResult)

	for _, line := range lines {
		d.Lines = append(d.Lines, *line)
	}

	slices.SortFunc(d.Lines, func(a, b DRELine) int {
		if a.Category != b.Category {
			return categoryRank(a.Category) - categoryRank(b.Category)
		}

		if a.Operational != b.Operational {
			if a.Operational {
				return -1
			}

			return 1
		}

		return strings.Compare(a.Subcategory, b.Subcategory)
	})

	return d
}

// revenue lines come first
func categoryRank(c Category) int {
	if c == CategoryRevenue {
		return 0
	}

	return 1
}

// FoldBalance sums the entries inside r on top of the opening balance.
func FoldBalance(r period.DateRange, opening money.Money, entries []*Entry) Balance {
	b := Balance{
		From:    r.From.Format(time.DateOnly),
		To:      r.To.Format(time.DateOnly),
		Opening: opening,
		Revenue: money.Zero(),
		Expense: money.Zero(),
	}

	for _, e := range entries {
		if !r.Contains(e.Date) {
			continue
		}

		if e.Category == CategoryRevenue {
			b.Revenue = b.Revenue.Add(e.Amount)
		} else {
			b.Expense = b.Expense.Add(e.Amount)
		}
	}

	b.Saldo = b.Revenue.Sub(b.Expense)
	b.Closing = opening.Add(b.Saldo)

	return b
}

// FoldCashflow lists every day of r with its movements and running balance.
func FoldCashflow(r period.DateRange, opening money.Money, entries []*Entry) Cashflow {
	byDay := make(map[string]*CashflowDay)
	days := r.Days()

	cf := Cashflow{
		From:    r.From.Format(time.DateOnly),
		To:      r.To.Format(time.DateOnly),
		Opening: opening,
		Days:    make([]CashflowDay, 0, len(days)),
	}

	for _, d := range days {
		key := d.Format(time.DateOnly)
		byDay[key] = &CashflowDay{Date: key, Inflow: money.Zero(), Outflow: money.Zero()}
	}

	for _, e := range entries {
		day, ok := byDay[period.Date(e.Date, nil).Format(time.DateOnly)]
		if !ok {
			continue
		}

		if e.Category == CategoryRevenue {
			day.Inflow = day.Inflow.Add(e.Amount)
		} else {
			day.Outflow = day.Outflow.Add(e.Amount)
		}
	}

	running := opening

	for _, d := range days {
		day := byDay[d.Format(time.DateOnly)]
		day.Net = day.Inflow.Sub(day.Outflow)
		running = running.Add(day.Net)
		day.Balance = running

		cf.Days = append(cf.Days, *day)
	}

	cf.Closing = running

	return cf
}
