package compose

import (
	"fmt"
	"html"
	"strings"

	"github.com/meridian-crm/meridian-crm/internal/quotation/pricing"
)

// tokenDictionary builds the closed set of substitutable placeholders for one
// document. Values are pre-rendered strings; nothing here is evaluated again.
func tokenDictionary(doc Document) map[string]string {
	return map[string]string{
		"company_name":      doc.Client.CompanyName,
		"client_name":       doc.Client.Name,
		"organization_name": doc.Org.Name,
		"contact_person":    doc.Sender.Name,
		"quotation_number":  doc.Number,
		"quotation_title":   doc.Title,
		"issue_date":        pricing.FormatDate(doc.IssueDate),
		"valid_until":       pricing.FormatDate(doc.ValidUntil),
		"currency":          doc.Currency,
		"subtotal":          pricing.FormatAmount(doc.Totals.Subtotal, doc.Currency),
		"discount":          pricing.FormatAmount(doc.Totals.DiscountAmount, doc.Currency),
		"tax":               pricing.FormatAmount(doc.Totals.TaxAmount, doc.Currency),
		"total":             pricing.FormatAmount(doc.Totals.Total, doc.Currency),
		"amount_in_words":   doc.Totals.AmountInWords,
		"logo":              imageMarkup(resolveAsset(doc.LogoURL, doc.Org.LogoURL), "logo", 140),
		"signature":         imageMarkup(resolveAsset(doc.SignatureURL, doc.Org.SignatureURL), "signature", 160),
	}
}

// substituteTokens replaces every known {{token}} in s in one non-recursive
// pass. strings.Replacer never rescans replaced text, so a value containing a
// token-like substring cannot trigger further expansion. Unknown tokens stay
// literal.
func substituteTokens(s string, dict map[string]string) string {
	if s == "" || !strings.Contains(s, "{{") {
		return s
	}
	pairs := make([]string, 0, len(dict)*2)
	for token, value := range dict {
		pairs = append(pairs, "{{"+token+"}}", value)
	}
	return strings.NewReplacer(pairs...).Replace(s)
}

// imageMarkup renders an inline img tag for a resolved asset URL, or nothing
// when the asset is absent. A fixed width keeps the output print-stable.
func imageMarkup(url, alt string, width int) string {
	if url == "" {
		return ""
	}
	return fmt.Sprintf(`<img src="%s" alt="%s" style="width:%dpx;max-width:100%%;" />`,
		html.EscapeString(url), html.EscapeString(alt), width)
}
