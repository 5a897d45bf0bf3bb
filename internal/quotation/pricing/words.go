package pricing

import (
	"math"
	"strings"
)

type currencyUnits struct {
	major, majorPlural string
	minor, minorPlural string
}

var unitNames = map[string]currencyUnits{
	"USD": {"Dollar", "Dollars", "Cent", "Cents"},
	"CAD": {"Dollar", "Dollars", "Cent", "Cents"},
	"AUD": {"Dollar", "Dollars", "Cent", "Cents"},
	"SGD": {"Dollar", "Dollars", "Cent", "Cents"},
	"GBP": {"Pound", "Pounds", "Penny", "Pence"},
	"EUR": {"Euro", "Euros", "Cent", "Cents"},
	"INR": {"Rupee", "Rupees", "Paisa", "Paise"},
	"JPY": {"Yen", "Yen", "Sen", "Sen"},
	"AED": {"Dirham", "Dirhams", "Fils", "Fils"},
}

var onesWords = []string{
	"Zero", "One", "Two", "Three", "Four", "Five", "Six", "Seven", "Eight",
	"Nine", "Ten", "Eleven", "Twelve", "Thirteen", "Fourteen", "Fifteen",
	"Sixteen", "Seventeen", "Eighteen", "Nineteen",
}

var tensWords = []string{
	"", "", "Twenty", "Thirty", "Forty", "Fifty", "Sixty", "Seventy",
	"Eighty", "Ninety",
}

var scaleWords = []string{"", "Thousand", "Million", "Billion", "Trillion"}

// AmountInWords spells out a monetary amount in English, e.g.
// "Two Hundred Twelve Dollars and Forty Cents". Unknown currencies fall back
// to their ISO code as the unit name.
func AmountInWords(v float64, code string) string {
	units, ok := unitNames[code]
	if !ok {
		units = currencyUnits{code, code, "", ""}
	}

	signed := v
	negative := v < 0
	v = math.Abs(v)

	digits := FractionDigits(code)
	pow := math.Pow(10, float64(digits))
	scaled := math.Round(v * pow)
	if math.IsNaN(scaled) || scaled >= math.MaxInt64 {
		// Past int64 precision a spelled form would be garbage; render the
		// digits instead.
		return FormatAmount(signed, code)
	}
	totalMinor := int64(scaled)
	major := totalMinor / int64(pow)
	minor := totalMinor % int64(pow)

	var b strings.Builder
	if negative {
		b.WriteString("Minus ")
	}
	b.WriteString(numberToWords(major))
	b.WriteString(" ")
	if major == 1 {
		b.WriteString(units.major)
	} else {
		b.WriteString(units.majorPlural)
	}
	if minor > 0 && units.minor != "" {
		b.WriteString(" and ")
		b.WriteString(numberToWords(minor))
		b.WriteString(" ")
		if minor == 1 {
			b.WriteString(units.minor)
		} else {
			b.WriteString(units.minorPlural)
		}
	}
	return b.String()
}

func numberToWords(n int64) string {
	if n == 0 {
		return onesWords[0]
	}
	var parts []string
	for i := len(scaleWords) - 1; i >= 0; i-- {
		scale := int64(math.Pow(1000, float64(i)))
		if n < scale {
			continue
		}
		group := n / scale
		n %= scale
		if group == 0 {
			continue
		}
		words := hundredsToWords(group)
		if scaleWords[i] != "" {
			words += " " + scaleWords[i]
		}
		parts = append(parts, words)
	}
	return strings.Join(parts, " ")
}

func hundredsToWords(n int64) string {
	// The group above the largest named scale is unbounded; spell it with the
	// full decomposition ("Two Thousand Trillion" rather than running off the
	// word tables).
	if n >= 1000 {
		return numberToWords(n)
	}
	var parts []string
	if n >= 100 {
		parts = append(parts, onesWords[n/100]+" Hundred")
		n %= 100
	}
	switch {
	case n == 0:
	case n < 20:
		parts = append(parts, onesWords[n])
	default:
		word := tensWords[n/10]
		if n%10 != 0 {
			word += "-" + onesWords[n%10]
		}
		parts = append(parts, word)
	}
	return strings.Join(parts, " ")
}
