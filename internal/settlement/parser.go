package settlement

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/tesouraria/internal/money"
)

var ErrUnknownLayout = errors.New("settlement: no known return file layout")

// Row is one paid boleto reported by the bank.
type Row struct {
	Line        int
	NossoNumero string
	Reference   string
	PaidAt      time.Time
	Amount      money.Money
}

// Parse reads a semicolon-separated return file. Rows without a nosso número
// or a parseable date are skipped (banks pad exports with totals and
// footers); a row that looks like a payment but carries a bad amount fails
// the whole file.
func Parse(r io.Reader) ([]Row, error) {
	utf8r, err := utf8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	reader := csv.NewReader(utf8r)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var (
		records [][]string
		lines   []int
	)

	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}

		line, _ := reader.FieldPos(0)
		records = append(records, rec)
		lines = append(lines, line)
	}

	profile, cols, headerIdx := detectProfile(records)
	if profile == nil {
		return nil, ErrUnknownLayout
	}

	return parseRows(profile, cols, records[headerIdx+1:], lines[headerIdx+1:])
}

type colIndex map[string]int

func detectProfile(records [][]string) (*Profile, colIndex, int) {
	for rowIdx, row := range records {
		cols := make(colIndex)

		for i, cell := range row {
			if name := strings.TrimSpace(cell); name != "" {
				cols[name] = i
			}
		}

		for i := range profiles {
			if matchesProfile(&profiles[i], cols) {
				return &profiles[i], cols, rowIdx
			}
		}
	}

	return nil, nil, 0
}

func matchesProfile(p *Profile, cols colIndex) bool {
	for _, name := range p.requiredCols() {
		if _, ok := cols[name]; !ok {
			return false
		}
	}

	return true
}

// lines holds the physical file line of each record.
func parseRows(p *Profile, cols colIndex, records [][]string, lines []int) ([]Row, error) {
	refIdx, hasRef := cols[p.ReferenceCol]
	if !hasRef {
		refIdx = -1
	}

	var rows []Row

	for i, rec := range records {
		line := lines[i]

		nosso := digitsOnly(cellValue(rec, cols[p.NossoNumeroCol]))
		if nosso == "" {
			continue
		}

		paidAt, ok := parseDate(cellValue(rec, cols[p.DateCol]), p.DateLayouts)
		if !ok {
			continue
		}

		amount, err := parseAmount(cellValue(rec, cols[p.AmountCol]))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		ref := cellValue(rec, refIdx)
		if ref == "" {
			ref = "RET-" + nosso + "-" + paidAt.Format("20060102")
		}

		rows = append(rows, Row{
			Line:        line,
			NossoNumero: nosso,
			Reference:   ref,
			PaidAt:      paidAt,
			Amount:      amount,
		})
	}

	return rows, nil
}

func parseDate(s string, layouts []string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

// parseAmount accepts "1.021,68" and "1021.68".
func parseAmount(s string) (money.Money, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "R$"))
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}

	return money.Parse(s)
}

func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}

		return -1
	}, s)
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}
