package utils

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// FormatCurrencyBRL formata um valor monetário no padrão brasileiro.
// Exemplo: 1234.5 -> "R$ 1.234,50"
func FormatCurrencyBRL(amount decimal.Decimal) string {
	fixed := amount.StringFixed(2)

	negative := strings.HasPrefix(fixed, "-")
	fixed = strings.TrimPrefix(fixed, "-")

	parts := strings.Split(fixed, ".")
	integerPart := parts[0]
	decimalPart := parts[1]

	var groups []string
	for i := len(integerPart); i > 0; i -= 3 {
		start := i - 3
		if start < 0 {
			start = 0
		}
		groups = append([]string{integerPart[start:i]}, groups...)
	}

	sign := ""
	if negative {
		sign = "-"
	}
	return fmt.Sprintf("R$ %s%s,%s", sign, strings.Join(groups, "."), decimalPart)
}
