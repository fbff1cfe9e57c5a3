package funcs

import (
	"strings"
	"text/template"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

var TemplateFuncs = template.FuncMap{
	// Time functions
	"now":        time.Now,
	"formatTime": formatTime,

	// String functions
	"uppercase": strings.ToUpper,
	"lowercase": strings.ToLower,

	// Number functions
	"formatInt":    formatInt,
	"formatAmount": formatAmount,
}

func formatTime(format string, t time.Time) string {
	return t.Format(format)
}

func formatInt(i int) string {
	return printer.Sprintf("%d", i)
}

// formatAmount renders a money amount with thousands grouping and two
// decimal places, e.g. NGN 1,234.50. Display only; arithmetic stays on
// decimal.Decimal.
func formatAmount(currency string, amount decimal.Decimal) string {
	return currency + " " + printer.Sprintf("%.2f", amount.InexactFloat64())
}
