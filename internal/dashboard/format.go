package dashboard

import (
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var usd = message.NewPrinter(language.AmericanEnglish)

// FormatPrice renders an amount as US dollars with grouping: "$1,234.56".
func FormatPrice(v float64) string {
	if v < 0 {
		return "-$" + usd.Sprintf("%.2f", -v)
	}
	return "$" + usd.Sprintf("%.2f", v)
}

// FormatChange renders a signed dollar delta: "+$1.20", "-$0.40".
func FormatChange(v float64) string {
	if v < 0 {
		return FormatPrice(v)
	}
	return "+" + FormatPrice(v)
}

// FormatPercent renders a signed percentage: "+1.50%", "-0.50%".
// Zero is shown as a gain.
func FormatPercent(v float64) string {
	if v < 0 {
		return fmt.Sprintf("-%.2f%%", math.Abs(v))
	}
	return fmt.Sprintf("+%.2f%%", math.Abs(v))
}
