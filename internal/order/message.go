package order

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/hudsonjuan/digno-acai/internal/catalog"
	"github.com/hudsonjuan/digno-acai/internal/enum"
	"github.com/shopspring/decimal"
)

// SummaryLine is one label/value row of the on-screen order confirmation.
type SummaryLine struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Formatter renders an Order into the on-screen summary and the outbound
// WhatsApp message.
type Formatter struct {
	cat    *catalog.Catalog
	pixKey string
}

// NewFormatter creates a Formatter. pixKey is disclosed in messages for Pix
// payments.
func NewFormatter(cat *catalog.Catalog, pixKey string) *Formatter {
	return &Formatter{cat: cat, pixKey: pixKey}
}

// BuildSummary renders the order as ordered label/value lines. Optional
// sections (fruits, ice creams, toppings, notes) only appear when present.
func (f *Formatter) BuildSummary(o *Order) []SummaryLine {
	lines := []SummaryLine{
		{Label: "Tamanho", Value: fmt.Sprintf("%s (%s)", o.Size.Name, FormatReais(o.Size.Price))},
	}
	if len(o.Fruits) > 0 {
		lines = append(lines, SummaryLine{Label: "Frutas", Value: f.joinNames(o.Fruits, f.cat.Fruit)})
	}
	if len(o.IceCreams) > 0 {
		lines = append(lines, SummaryLine{Label: "Sorvetes", Value: f.joinNames(o.IceCreams, f.cat.IceCream)})
	}
	if len(o.Toppings) > 0 {
		lines = append(lines, SummaryLine{Label: "Complementos", Value: f.joinNames(o.Toppings, f.cat.Topping)})
	}
	if o.Notes != "" {
		lines = append(lines, SummaryLine{Label: "Observações", Value: o.Notes})
	}
	return append(lines, SummaryLine{Label: "Total", Value: FormatReais(o.Total)})
}

// BuildOrderMessage renders the outbound WhatsApp message, including the
// payment section. It fails when no payment method has been chosen.
func (f *Formatter) BuildOrderMessage(o *Order) (string, error) {
	if o.Payment == nil || o.Payment.Method == "" {
		return "", ErrPaymentMethodRequired
	}

	var sb strings.Builder
	sb.WriteString("🍧 *NOVO PEDIDO - Digno Açaí* 🍧\n\n")
	sb.WriteString(fmt.Sprintf("*TAMANHO:* %s (%s)", o.Size.Name, FormatReais(o.Size.Price)))

	if len(o.Fruits) > 0 {
		sb.WriteString(fmt.Sprintf("\n*FRUTAS:* %s", f.joinNames(o.Fruits, f.cat.Fruit)))
	}
	if len(o.IceCreams) > 0 {
		sb.WriteString(fmt.Sprintf("\n*SORVETES:* %s", f.joinNames(o.IceCreams, f.cat.IceCream)))
	}
	if len(o.Toppings) > 0 {
		sb.WriteString(fmt.Sprintf("\n*COMPLEMENTOS:* %s", f.joinNames(o.Toppings, f.cat.Topping)))
	}
	if o.Notes != "" {
		sb.WriteString(fmt.Sprintf("\n*OBSERVAÇÕES:* %s", o.Notes))
	}

	switch o.Payment.Method {
	case enum.PaymentMethodCash:
		sb.WriteString("\n*PAGAMENTO:* Dinheiro")
		sb.WriteString(fmt.Sprintf("\n*VALOR ENTREGUE:* %s", FormatReais(o.Payment.Tendered)))
		if change := o.Payment.Tendered.Sub(o.Total); change.IsPositive() {
			sb.WriteString(fmt.Sprintf("\n*TROCO:* %s", FormatReais(change)))
		}
	case enum.PaymentMethodPix:
		sb.WriteString("\n*PAGAMENTO:* Pix")
		if f.pixKey != "" {
			sb.WriteString(fmt.Sprintf("\n*CHAVE PIX:* %s", f.pixKey))
		}
	}

	sb.WriteString(fmt.Sprintf("\n\n*TOTAL: %s*", FormatReais(o.Total)))
	return sb.String(), nil
}

// WhatsAppLink builds the deep link that opens the messaging app with the
// order message pre-filled.
func WhatsAppLink(number, message string) string {
	return fmt.Sprintf("https://wa.me/%s?text=%s", number, url.QueryEscape(message))
}

// FormatReais renders a price the Brazilian way: "R$ 14,00".
func FormatReais(d decimal.Decimal) string {
	return "R$ " + strings.Replace(d.StringFixed(2), ".", ",", 1)
}

func (f *Formatter) joinNames(ids []string, lookup func(string) (catalog.Item, bool)) string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if it, ok := lookup(id); ok {
			names = append(names, it.Name)
		}
	}
	return strings.Join(names, ", ")
}
