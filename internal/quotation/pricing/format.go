package pricing

import (
	"strconv"
	"time"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// NotSet is rendered for percentages that were never entered, so documents
// distinguish "not set" from "set to zero".
const NotSet = "—"

// currencyLocales maps currency codes to the locale used for digit grouping.
// The mapping is fixed so a quotation renders identically on every host.
var currencyLocales = map[string]language.Tag{
	"USD": language.AmericanEnglish,
	"CAD": language.AmericanEnglish,
	"AUD": language.AmericanEnglish,
	"GBP": language.BritishEnglish,
	"EUR": language.German,
	"INR": language.MustParse("en-IN"),
	"JPY": language.Japanese,
	"AED": language.English,
	"SGD": language.English,
}

var currencySymbols = map[string]string{
	"USD": "$",
	"CAD": "C$",
	"AUD": "A$",
	"GBP": "£",
	"EUR": "€",
	"INR": "₹",
	"JPY": "¥",
	"AED": "AED ",
	"SGD": "S$",
}

// FractionDigits reports the number of fraction digits for an ISO 4217 code,
// defaulting to two when the code is unknown.
func FractionDigits(code string) int {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return 2
	}
	scale, _ := currency.Standard.Rounding(unit)
	return scale
}

// FormatAmount renders a monetary amount with the currency's symbol, fraction
// digits and locale-appropriate digit grouping.
func FormatAmount(v float64, code string) string {
	tag, ok := currencyLocales[code]
	if !ok {
		tag = language.English
	}
	symbol, ok := currencySymbols[code]
	if !ok {
		symbol = code + " "
	}
	digits := FractionDigits(code)
	p := message.NewPrinter(tag)
	return symbol + p.Sprint(number.Decimal(v,
		number.MinFractionDigits(digits),
		number.MaxFractionDigits(digits),
	))
}

// FormatPercent renders a percentage, or NotSet for a missing value.
func FormatPercent(p *float64) string {
	if p == nil {
		return NotSet
	}
	return strconv.FormatFloat(*p, 'f', -1, 64) + "%"
}

// FormatDate renders the fixed human-readable long form used on documents.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02 Jan 2006")
}
