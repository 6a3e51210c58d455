package boleto

// mod10 is the per-field check digit of the digit line: weights 2,1,2,1...
// from the rightmost digit, two-digit products contribute the sum of their
// digits.
func mod10(digits string) byte {
	sum := 0
	weight := 2

	for i := len(digits) - 1; i >= 0; i-- {
		p := int(digits[i]-'0') * weight
		sum += p/10 + p%10

		if weight == 2 {
			weight = 1
		} else {
			weight = 2
		}
	}

	return byte('0' + (10-sum%10)%10)
}

// mod11 is the general barcode check digit: weights 2..9 cycling from the
// rightmost digit. Results 0, 10 and 11 map to 1.
//
// Because remainders 0 and 1 both yield 1, a barcode whose DV is 1 does not
// catch every single-digit substitution. Digits outside the three digit-line
// fields (the due factor and amount) have only this digit to protect them.
func mod11(digits string) byte {
	sum := 0
	weight := 2

	for i := len(digits) - 1; i >= 0; i-- {
		sum += int(digits[i]-'0') * weight

		weight++
		if weight > 9 {
			weight = 2
		}
	}

	dv := 11 - sum%11
	if dv == 0 || dv == 10 || dv == 11 {
		return '1'
	}

	return byte('0' + dv)
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}

	return true
}
