// Package boleto encodes and validates FEBRABAN bank-slip payment codes.
//
// Barcode (44 digits):
//
//	bank(3) currency(1) DV(1) due factor(4) amount(10) free field(25)
//
// The free field follows the Banco do Brasil 7-digit agreement layout:
//
//	000000 agreement(7) sequence(10) carteira(2)
//
// The digit line (47 digits) splits the barcode into three fields with a
// modulo-10 check digit each, the general modulo-11 DV, and factor+amount.
package boleto

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/tesouraria/internal/money"
)

const (
	barcodeLen   = 44
	digitLineLen = 47

	currencyReal = '9'

	agreementWidth = 7
	sequenceWidth  = 10
	amountWidth    = 10

	// Factor 9999 is 2025-02-21; the next day restarts at 1000.
	factorMax      = 9999
	factorRestart  = 1000
	factorCycleLen = factorMax - factorRestart + 1
)

var (
	factorEpoch = time.Date(1997, time.October, 7, 0, 0, 0, 0, time.UTC)

	maxAmount = int64(9_999_999_999)
	maxAgree  = int64(9_999_999)
	maxSeq    = int64(9_999_999_999)
)

// Boleto is the payable instrument attached to an invoice.
type Boleto struct {
	DigitLine   string `json:"digit_line"`
	Barcode     string `json:"barcode"`
	NossoNumero string `json:"nosso_numero"`
}

// Decoded is what Decode recovers from a digit line.
type Decoded struct {
	Valid       bool
	Barcode     string
	DueDate     time.Time
	Amount      money.Money
	BankCode    int
	NossoNumero string
}

// Codec holds the issuer-level constants that do not vary per invoice.
type Codec struct {
	// Carteira is the two-digit billing portfolio code.
	Carteira string
	// Reference anchors due-factor decoding across the factor rollover.
	// Zero means time.Now.
	Reference func() time.Time
}

func NewCodec(carteira string) *Codec {
	return &Codec{Carteira: carteira}
}

// Encode builds the instrument. It is a pure function of its inputs.
func (c *Codec) Encode(agreementCode, bankCode int, dueDate time.Time, amount money.Money, sequence int64) (Boleto, error) {
	if bankCode < 0 || bankCode > 999 {
		return Boleto{}, fmt.Errorf("%w: bank code %d", ErrMalformedInput, bankCode)
	}

	if agreementCode < 0 || int64(agreementCode) > maxAgree {
		return Boleto{}, fmt.Errorf("%w: agreement code %d exceeds %d digits", ErrMalformedInput, agreementCode, agreementWidth)
	}

	if sequence < 0 || sequence > maxSeq {
		return Boleto{}, fmt.Errorf("%w: sequence %d exceeds %d digits", ErrMalformedInput, sequence, sequenceWidth)
	}

	carteira := c.carteira()
	if len(carteira) != 2 || !allDigits(carteira) {
		return Boleto{}, fmt.Errorf("%w: carteira %q", ErrMalformedInput, carteira)
	}

	if amount.IsNegative() {
		return Boleto{}, fmt.Errorf("%w: negative amount %s", ErrMalformedInput, amount)
	}

	if amount.Cents > maxAmount {
		return Boleto{}, fmt.Errorf("%w: %s", ErrAmountOverflow, amount)
	}

	factor, err := dueFactor(dueDate)
	if err != nil {
		return Boleto{}, err
	}

	nosso := fmt.Sprintf("%0*d%0*d", agreementWidth, agreementCode, sequenceWidth, sequence)
	free := "000000" + nosso + carteira

	body := fmt.Sprintf("%03d%c%04d%0*d%s", bankCode, currencyReal, factor, amountWidth, amount.Cents, free)
	barcode := body[:4] + string(mod11(body)) + body[4:]

	return Boleto{
		DigitLine:   formatDigitLine(barcodeToLine(barcode)),
		Barcode:     barcode,
		NossoNumero: nosso,
	}, nil
}

// Decode validates a digit line, formatted or bare, and recovers its payload.
// A checksum failure returns Valid=false together with ErrChecksumMismatch.
// Fields 1 to 3 reject any single-digit change. The due factor and amount
// rely on the general DV alone, which misses some changes when it is 1
// (see mod11).
func (c *Codec) Decode(digitLine string) (Decoded, error) {
	line := strings.Map(func(r rune) rune {
		if r == ' ' || r == '.' {
			return -1
		}

		return r
	}, strings.TrimSpace(digitLine))

	if len(line) != digitLineLen || !allDigits(line) {
		return Decoded{}, fmt.Errorf("%w: digit line must have %d digits", ErrMalformedInput, digitLineLen)
	}

	fields := []struct {
		name string
		data string
		dv   byte
	}{
		{"field 1", line[0:9], line[9]},
		{"field 2", line[10:20], line[20]},
		{"field 3", line[21:31], line[31]},
	}

	for _, f := range fields {
		if mod10(f.data) != f.dv {
			return Decoded{}, fmt.Errorf("%w: %s", ErrChecksumMismatch, f.name)
		}
	}

	barcode := line[0:4] + line[32:33] + line[33:47] + line[4:9] + line[10:20] + line[21:31]

	return c.DecodeBarcode(barcode)
}

// DecodeBarcode validates a scanned 44-digit barcode.
func (c *Codec) DecodeBarcode(barcode string) (Decoded, error) {
	if len(barcode) != barcodeLen || !allDigits(barcode) {
		return Decoded{}, fmt.Errorf("%w: barcode must have %d digits", ErrMalformedInput, barcodeLen)
	}

	if mod11(barcode[:4]+barcode[5:]) != barcode[4] {
		return Decoded{}, fmt.Errorf("%w: general check digit", ErrChecksumMismatch)
	}

	bank, _ := strconv.Atoi(barcode[0:3])
	factor, _ := strconv.Atoi(barcode[5:9])
	cents, _ := strconv.ParseInt(barcode[9:19], 10, 64)

	return Decoded{
		Valid:       true,
		Barcode:     barcode,
		DueDate:     c.dateFromFactor(factor),
		Amount:      money.New(cents),
		BankCode:    bank,
		NossoNumero: barcode[25:42],
	}, nil
}

func (c *Codec) carteira() string {
	if c.Carteira == "" {
		return "17"
	}

	return c.Carteira
}

func (c *Codec) reference() time.Time {
	if c.Reference != nil {
		return c.Reference()
	}

	return time.Now()
}

func dueFactor(due time.Time) (int, error) {
	due = time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, time.UTC)

	days := int(due.Sub(factorEpoch).Hours() / 24)
	if days <= 0 {
		return 0, fmt.Errorf("%w: %s is not after %s", ErrDateOutOfRange,
			due.Format(time.DateOnly), factorEpoch.Format(time.DateOnly))
	}

	if days <= factorMax {
		return days, nil
	}

	return (days-factorMax-1)%factorCycleLen + factorRestart, nil
}

// dateFromFactor picks, among the dates sharing this factor, the one closest
// to the codec's reference date.
func (c *Codec) dateFromFactor(factor int) time.Time {
	ref := c.reference()
	best := factorEpoch.AddDate(0, 0, factor)

	if factor < factorRestart {
		return best
	}

	for k := 0; ; k++ {
		candidate := factorEpoch.AddDate(0, 0, factorMax+1+(factor-factorRestart)+k*factorCycleLen)
		if absDays(candidate.Sub(ref)) < absDays(best.Sub(ref)) {
			best = candidate
		}

		if candidate.After(ref) {
			return best
		}
	}
}

func absDays(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}

	return d
}

func barcodeToLine(barcode string) string {
	f1 := barcode[0:4] + barcode[19:24]
	f2 := barcode[24:34]
	f3 := barcode[34:44]

	return f1 + string(mod10(f1)) +
		f2 + string(mod10(f2)) +
		f3 + string(mod10(f3)) +
		barcode[4:5] +
		barcode[5:19]
}

func formatDigitLine(line string) string {
	return line[0:5] + "." + line[5:10] + " " +
		line[10:15] + "." + line[15:21] + " " +
		line[21:26] + "." + line[26:32] + " " +
		line[32:33] + " " +
		line[33:47]
}
