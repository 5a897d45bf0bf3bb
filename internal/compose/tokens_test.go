package compose

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/meridian-crm/meridian-crm/internal/quotation/pricing"
)

func testDocument() Document {
	return Document{
		Number:     "QT-2602-0042",
		Title:      "Website revamp",
		Currency:   "USD",
		IssueDate:  time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC),
		ValidUntil: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		Client: Party{
			Name:        "Dana Obrecht",
			CompanyName: "Obrecht Logistics",
			Email:       "dana@obrecht.example",
		},
		Sender: Party{Name: "Sam Field", CompanyName: "Meridian Studio", Email: "sam@meridian.example"},
		Org:    Organization{Name: "Meridian Studio", LogoURL: "https://cdn.example/logo.png"},
		Items: []Line{
			{Name: "Design", Quantity: 2, UnitPrice: 100, Total: 212.40},
		},
		Totals: pricing.Totals{
			Subtotal: 200, DiscountAmount: 20, TaxAmount: 32.40, Total: 212.40,
			AmountInWords: "Two Hundred Twelve Dollars and Forty Cents",
		},
	}
}

func TestSubstituteTokens(t *testing.T) {
	dict := tokenDictionary(testDocument())

	out := substituteTokens("Dear {{client_name}}, quote {{quotation_number}} totals {{total}}.", dict)
	assert.Equal(t, "Dear Dana Obrecht, quote QT-2602-0042 totals $212.40.", out)
}

func TestSubstituteTokensUnknownStaysLiteral(t *testing.T) {
	dict := tokenDictionary(testDocument())

	out := substituteTokens("Hello {{not_a_real_token}}!", dict)
	assert.Equal(t, "Hello {{not_a_real_token}}!", out)
}

func TestSubstituteTokensSinglePass(t *testing.T) {
	doc := testDocument()
	// A value containing a token-like substring must not expand further.
	doc.Client.Name = "{{total}} Industries"
	dict := tokenDictionary(doc)

	out := substituteTokens("To: {{client_name}}", dict)
	assert.Equal(t, "To: {{total}} Industries", out)
}

func TestSubstituteTokensEmptyInput(t *testing.T) {
	dict := tokenDictionary(testDocument())
	assert.Equal(t, "", substituteTokens("", dict))
	assert.Equal(t, "plain text", substituteTokens("plain text", dict))
}

func TestTokenDictionaryLogoResolution(t *testing.T) {
	doc := testDocument()
	dict := tokenDictionary(doc)
	assert.Contains(t, dict["logo"], "https://cdn.example/logo.png")

	override := "https://cdn.example/custom.png"
	doc.LogoURL = &override
	dict = tokenDictionary(doc)
	assert.Contains(t, dict["logo"], override)

	doc.LogoURL = nil
	doc.Org.LogoURL = ""
	dict = tokenDictionary(doc)
	assert.Empty(t, dict["logo"], "absent logo renders nothing, not a broken image")
}

func TestImageMarkupEscapesURL(t *testing.T) {
	out := imageMarkup(`https://x.example/a"onerror="1.png`, "logo", 140)
	assert.NotContains(t, out, `a"onerror=`)
}
