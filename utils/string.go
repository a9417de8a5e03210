package utils

import (
	"fmt"
	"strings"
)

func FormatBoolean(yesno bool, yes string, no string) string {
	if yesno {
		return yes
	}
	return no
}

func FormatMoney(amount float64) string {
	return fmt.Sprintf("%.2f", amount)
}

// JoinInts renders 2, 5, 9 style lists for messages.
func JoinInts(values []int) string {
	parts := Map(values, func(v int) string { return fmt.Sprintf("%d", v) })
	return strings.Join(parts, ", ")
}
