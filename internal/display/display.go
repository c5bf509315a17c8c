// Package display renders drafts and catalogs for the terminal.
package display

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"

	"promodraft/internal"
	"promodraft/internal/promo"
)

var (
	accent = lipgloss.Color("#D97706")
	fg     = lipgloss.Color("#E8E6E3")
	dim    = lipgloss.Color("#6B7280")
	good   = lipgloss.Color("#22C55E")
	danger = lipgloss.Color("#EF4444")
)

var (
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(1, 2)

	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(fg)
	oldPriceStyle = lipgloss.NewStyle().Strikethrough(true).Foreground(dim)
	newPriceStyle = lipgloss.NewStyle().Bold(true).Foreground(good)
	dimStyle      = lipgloss.NewStyle().Foreground(dim)
	errorStyle    = lipgloss.NewStyle().Bold(true).Foreground(danger)
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(accent).Padding(0, 1)
	cellStyle     = lipgloss.NewStyle().Padding(0, 1)
)

// Renderer holds the output width and whether to emit plain text. Plain is
// for pipes and tests.
type Renderer struct {
	Width int
	Plain bool
}

func NewRenderer(width int, plain bool) Renderer {
	if width <= 0 {
		width = 72
	}
	return Renderer{Width: width, Plain: plain}
}

// FormatPrice puts a one-character symbol in front ("$1,000") and longer
// currency labels after ("1,000 L.L.").
func FormatPrice(amount int64, currency string) string {
	n := humanize.Comma(amount)
	currency = strings.TrimSpace(currency)
	switch {
	case currency == "":
		return n
	case utf8.RuneCountInString(currency) == 1:
		return currency + n
	default:
		return n + " " + currency
	}
}

// Markdown renders md through glamour and falls back to the raw text when
// rendering fails.
func (r Renderer) Markdown(md string) string {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(r.Width - 4), glamour.WithEmoji()}
	if r.Plain {
		opts = append(opts, glamour.WithStandardStyle("notty"))
	} else {
		opts = append(opts, glamour.WithAutoStyle())
	}
	tr, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return md
	}
	out, err := tr.Render(md)
	if err != nil {
		return md
	}
	return strings.Trim(out, "\n")
}

// Selection shows a picked item with its old and promo price.
func (r Renderer) Selection(sel internal.Selection, currency string) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(sel.Item.Name))
	b.WriteString("\n")
	b.WriteString(oldPriceStyle.Render(FormatPrice(sel.Item.Price, currency)))
	b.WriteString("  ")
	b.WriteString(newPriceStyle.Render(FormatPrice(sel.PromoPrice, currency)))
	if sel.DiscountPct > 0 {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  (-%g%%)", sel.DiscountPct)))
	}
	return b.String()
}

// Panel is the bordered draft card: item, prices, then the message.
func (r Renderer) Panel(draft internal.Draft, currency string) string {
	sel := internal.Selection{Item: draft.Item, PromoPrice: draft.PromoPrice, DiscountPct: draft.DiscountPct}
	body := r.Selection(sel, currency) + "\n\n" + r.Markdown(draft.Message)
	if draft.Model != "" {
		body += "\n\n" + dimStyle.Render("model: "+draft.Model)
	}
	return panelStyle.Width(r.Width).Render(body)
}

func (r Renderer) Catalog(items []internal.CatalogItem, pricing promo.Pricing, currency string) string {
	if len(items) == 0 {
		return dimStyle.Render("catalog is empty")
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(dim)).
		Headers("#", "Product", "Price", "Promo").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	for i, item := range items {
		t.Row(
			fmt.Sprintf("%d", i+1),
			item.Name,
			FormatPrice(item.Price, currency),
			FormatPrice(pricing.PromoPrice(item.Price), currency),
		)
	}
	return t.Render()
}

func (r Renderer) Drafts(drafts []internal.Draft, currency string) string {
	if len(drafts) == 0 {
		return dimStyle.Render("no drafts yet")
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(dim)).
		Headers("ID", "Created", "Product", "Promo", "Model").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	for _, d := range drafts {
		t.Row(
			d.ID,
			d.CreatedAt.Local().Format("2006-01-02 15:04"),
			d.Item.Name,
			FormatPrice(d.PromoPrice, currency),
			d.Model,
		)
	}
	return t.Render()
}

func Error(err error) string {
	return errorStyle.Render("error: ") + err.Error()
}
