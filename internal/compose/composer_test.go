package compose

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-crm/meridian-crm/internal/templates"
)

func structuredTemplate() templates.Template {
	return templates.Template{
		ID:     1,
		OrgID:  1,
		Name:   "Modern",
		Layout: templates.Layout{Mode: templates.LayoutModeStructured},
		Styles: templates.Styles{PrimaryColor: "#003366", FontFamily: "Georgia"},
	}
}

func TestRenderStructured(t *testing.T) {
	composer, err := NewComposer()
	require.NoError(t, err)

	doc := testDocument()
	html, err := composer.Render(doc, structuredTemplate())
	require.NoError(t, err)

	assert.Contains(t, html, "QT-2602-0042")
	assert.Contains(t, html, "Website revamp")
	assert.Contains(t, html, "Obrecht Logistics")
	assert.Contains(t, html, "Quote To")
	assert.Contains(t, html, "Contact Person")
	assert.Contains(t, html, "Sam Field")
	assert.Contains(t, html, "$212.40")
	assert.Contains(t, html, "Two Hundred Twelve Dollars and Forty Cents")
	assert.Contains(t, html, "#003366")
	assert.Contains(t, html, "Generated by Meridian CRM")
	assert.NotContains(t, html, "{{")
}

func TestRenderStructuredDeterministic(t *testing.T) {
	composer, err := NewComposer()
	require.NoError(t, err)

	doc := testDocument()
	tpl := structuredTemplate()
	first, err := composer.Render(doc, tpl)
	require.NoError(t, err)
	second, err := composer.Render(doc, tpl)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRenderClientCardNeverFallsBackToSender(t *testing.T) {
	composer, err := NewComposer()
	require.NoError(t, err)

	doc := testDocument()
	doc.Client.CompanyName = ""
	doc.Client.Name = "Dana Obrecht"

	html, err := composer.Render(doc, structuredTemplate())
	require.NoError(t, err)

	quoteTo := between(html, "Quote To", "Contact Person")
	assert.Contains(t, quoteTo, "Dana Obrecht")
	assert.NotContains(t, quoteTo, "Meridian Studio",
		"sender organisation must never appear in the quote-to card")
}

func TestRenderUnsetPercentagesAsDash(t *testing.T) {
	composer, err := NewComposer()
	require.NoError(t, err)

	doc := testDocument()
	doc.Items[0].DiscountPercent = nil
	zero := 0.0
	doc.Items[0].TaxPercent = &zero

	html, err := composer.Render(doc, structuredTemplate())
	require.NoError(t, err)

	assert.Contains(t, html, "—", "unset percent renders as an em-dash")
	assert.Contains(t, html, "0%", "explicit zero percent renders as 0%")
}

func TestRenderLegacy(t *testing.T) {
	composer, err := NewComposer()
	require.NoError(t, err)

	tpl := templates.Template{
		Layout: templates.Layout{
			Mode: templates.LayoutModeFreeform,
			Sections: []templates.Section{
				{Key: "terms", Title: "Terms", Body: "Payment within 30 days.", Visible: true, Position: 3},
				{Key: "intro", Title: "Hello", Body: "Dear {{client_name}}, total is {{total}}.", Visible: true, Position: 1},
				{Key: "hidden", Title: "Internal", Body: "Not for clients", Visible: false, Position: 2},
			},
		},
		Styles: templates.Styles{
			HeaderHTML: "<p>{{organization_name}}</p>",
			FooterHTML: "<p>Quote {{quotation_number}}</p>",
		},
	}

	html, err := composer.Render(testDocument(), tpl)
	require.NoError(t, err)

	assert.Contains(t, html, "Dear Dana Obrecht, total is $212.40.")
	assert.Contains(t, html, "Payment within 30 days.")
	assert.NotContains(t, html, "Not for clients", "hidden sections are skipped")
	assert.Less(t, strings.Index(html, "Dear Dana"), strings.Index(html, "Payment within"),
		"sections render in position order")
	assert.Contains(t, html, "<p>Meridian Studio</p>")
	assert.Contains(t, html, "<p>Quote QT-2602-0042</p>")
	assert.Contains(t, html, "Generated by Meridian CRM")
}

func TestRenderLegacyUnknownToken(t *testing.T) {
	composer, err := NewComposer()
	require.NoError(t, err)

	tpl := templates.Template{
		Layout: templates.Layout{
			Mode: templates.LayoutModeFreeform,
			Sections: []templates.Section{
				{Key: "s", Body: "Keep {{not_a_real_token}} as-is", Visible: true, Position: 1},
			},
		},
	}

	html, err := composer.Render(testDocument(), tpl)
	require.NoError(t, err)
	assert.Contains(t, html, "Keep {{not_a_real_token}} as-is")
}

func TestRenderAttributionFollowsFooter(t *testing.T) {
	composer, err := NewComposer()
	require.NoError(t, err)

	tpl := structuredTemplate()
	tpl.Styles.FooterHTML = "<p>Custom footer</p>"

	html, err := composer.Render(testDocument(), tpl)
	require.NoError(t, err)

	assert.Less(t, strings.Index(html, "Custom footer"), strings.Index(html, "Generated by Meridian CRM"),
		"attribution block is appended after any template footer")
}

func TestResolveSenderFallbackChain(t *testing.T) {
	org := Organization{Name: "Meridian Studio", ContactName: "Front Desk", Email: "hello@meridian.example"}
	manager := &Party{Name: "Alex Mgr"}
	owner := &Party{Name: "Robin Owner"}

	assert.Equal(t, "Alex Mgr", ResolveSender(manager, owner, org).Name)
	assert.Equal(t, "Robin Owner", ResolveSender(nil, owner, org).Name)
	assert.Equal(t, "Robin Owner", ResolveSender(&Party{}, owner, org).Name)
	fallback := ResolveSender(nil, nil, org)
	assert.Equal(t, "Front Desk", fallback.Name)
	assert.Equal(t, "Meridian Studio", fallback.CompanyName)
}

// between extracts the substring bounded by two markers for targeted asserts.
func between(s, from, to string) string {
	start := strings.Index(s, from)
	if start < 0 {
		return ""
	}
	rest := s[start:]
	end := strings.Index(rest, to)
	if end < 0 {
		return rest
	}
	return rest[:end]
}
