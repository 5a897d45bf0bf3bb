package compose

import (
	"bytes"
	"fmt"
	"html/template"
	"sort"
	"strconv"

	"github.com/meridian-crm/meridian-crm/internal/quotation/pricing"
	"github.com/meridian-crm/meridian-crm/internal/templates"
	"github.com/meridian-crm/meridian-crm/web"
)

const (
	defaultPrimaryColor = "#2d5d8f"
	defaultFontFamily   = "Helvetica, Arial, sans-serif"
)

// Composer merges quotation data with a template into one self-contained HTML
// document. Rendering is a pure transformation: the same document and
// template always produce the same bytes.
type Composer struct {
	tpl *template.Template
}

// NewComposer parses the embedded document skeletons.
func NewComposer() (*Composer, error) {
	tpl, err := template.ParseFS(web.Templates, "templates/quote/*.html")
	if err != nil {
		return nil, fmt.Errorf("compose: parse templates: %w", err)
	}
	return &Composer{tpl: tpl}, nil
}

// Render produces the final HTML for a document under the given template,
// dispatching once on the layout mode.
func (c *Composer) Render(doc Document, tpl templates.Template) (string, error) {
	if c == nil || c.tpl == nil {
		return "", fmt.Errorf("compose: composer not initialised")
	}

	dict := tokenDictionary(doc)

	var name string
	var view any
	switch tpl.Layout.Mode {
	case templates.LayoutModeFreeform:
		name = "legacy.html"
		view = buildLegacyView(doc, tpl, dict)
	default:
		name = "structured.html"
		view = buildStructuredView(doc, tpl, dict)
	}

	buf := &bytes.Buffer{}
	if err := c.tpl.ExecuteTemplate(buf, name, view); err != nil {
		return "", fmt.Errorf("compose: render %s: %w", name, err)
	}
	return buf.String(), nil
}

type partyView struct {
	Name        string
	CompanyName string
	Email       string
	Phone       string
	Address     string
}

type lineView struct {
	Name        string
	Description string
	Quantity    string
	UnitPrice   string
	Discount    string
	Tax         string
	Total       string
}

type structuredView struct {
	Number     string
	Title      string
	IssueDate  string
	ValidUntil string

	Client partyView
	Sender partyView

	Lines []lineView

	Subtotal      string
	Discount      string
	Tax           string
	Charges       string
	Total         string
	AmountInWords string

	PaymentTerms string
	Terms        string
	Notes        string

	PrimaryColor  string
	FontFamily    string
	CustomCSS     template.CSS
	HeaderHTML    template.HTML
	FooterHTML    template.HTML
	LogoHTML      template.HTML
	SignatureHTML template.HTML
}

func buildStructuredView(doc Document, tpl templates.Template, dict map[string]string) structuredView {
	view := structuredView{
		Number:     doc.Number,
		Title:      doc.Title,
		IssueDate:  pricing.FormatDate(doc.IssueDate),
		ValidUntil: pricing.FormatDate(doc.ValidUntil),
		// The client card is populated strictly from the contact being
		// quoted; an absent company simply renders without one.
		Client: partyView(doc.Client),
		Sender: partyView(doc.Sender),

		Subtotal:      pricing.FormatAmount(doc.Totals.Subtotal, doc.Currency),
		Discount:      pricing.FormatAmount(doc.Totals.DiscountAmount, doc.Currency),
		Tax:           pricing.FormatAmount(doc.Totals.TaxAmount, doc.Currency),
		Total:         pricing.FormatAmount(doc.Totals.Total, doc.Currency),
		AmountInWords: doc.Totals.AmountInWords,

		PaymentTerms: doc.PaymentTerms,
		Terms:        doc.TermsAndConditions,
		Notes:        doc.Notes,

		PrimaryColor:  styleOr(tpl.Styles.PrimaryColor, defaultPrimaryColor),
		FontFamily:    styleOr(tpl.Styles.FontFamily, defaultFontFamily),
		CustomCSS:     template.CSS(tpl.Styles.CustomCSS),
		HeaderHTML:    template.HTML(substituteTokens(tpl.Styles.HeaderHTML, dict)),
		FooterHTML:    template.HTML(substituteTokens(tpl.Styles.FooterHTML, dict)),
		LogoHTML:      template.HTML(imageMarkup(resolveAsset(doc.LogoURL, doc.Org.LogoURL), "logo", 140)),
		SignatureHTML: template.HTML(imageMarkup(resolveAsset(doc.SignatureURL, doc.Org.SignatureURL), "signature", 160)),
	}
	if doc.Totals.Charges != 0 {
		view.Charges = pricing.FormatAmount(doc.Totals.Charges, doc.Currency)
	}

	view.Lines = make([]lineView, 0, len(doc.Items))
	for _, item := range doc.Items {
		view.Lines = append(view.Lines, lineView{
			Name:        item.Name,
			Description: item.Description,
			Quantity:    strconv.FormatFloat(item.Quantity, 'f', -1, 64),
			UnitPrice:   pricing.FormatAmount(item.UnitPrice, doc.Currency),
			Discount:    pricing.FormatPercent(item.DiscountPercent),
			Tax:         pricing.FormatPercent(item.TaxPercent),
			Total:       pricing.FormatAmount(item.Total, doc.Currency),
		})
	}
	return view
}

type sectionView struct {
	Title string
	Body  template.HTML
}

type legacyView struct {
	Number       string
	Title        string
	Sections     []sectionView
	PrimaryColor string
	FontFamily   string
	CustomCSS    template.CSS
	HeaderHTML   template.HTML
	FooterHTML   template.HTML
}

// buildLegacyView orders the visible sections and applies the token pass to
// each of them plus header and footer. Section bodies are concatenated
// verbatim; the composer adds no structure of its own.
func buildLegacyView(doc Document, tpl templates.Template, dict map[string]string) legacyView {
	sections := make([]templates.Section, 0, len(tpl.Layout.Sections))
	for _, s := range tpl.Layout.Sections {
		if s.Visible {
			sections = append(sections, s)
		}
	}
	sort.SliceStable(sections, func(i, j int) bool {
		return sections[i].Position < sections[j].Position
	})

	view := legacyView{
		Number:       doc.Number,
		Title:        doc.Title,
		PrimaryColor: styleOr(tpl.Styles.PrimaryColor, defaultPrimaryColor),
		FontFamily:   styleOr(tpl.Styles.FontFamily, defaultFontFamily),
		CustomCSS:    template.CSS(tpl.Styles.CustomCSS),
		HeaderHTML:   template.HTML(substituteTokens(tpl.Styles.HeaderHTML, dict)),
		FooterHTML:   template.HTML(substituteTokens(tpl.Styles.FooterHTML, dict)),
	}
	for _, s := range sections {
		view.Sections = append(view.Sections, sectionView{
			Title: substituteTokens(s.Title, dict),
			Body:  template.HTML(substituteTokens(s.Body, dict)),
		})
	}
	return view
}

func styleOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
