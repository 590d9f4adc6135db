package model

// ValidCurrencies is the fixed set a user may pick as default at signup.
// Matching is exact and case-sensitive.
var ValidCurrencies = []string{"EUR", "USD", "RUB"}

func IsValidCurrency(code string) bool {
	for _, c := range ValidCurrencies {
		if c == code {
			return true
		}
	}
	return false
}
