// Package whatsapp builds click-to-chat links with a pre-filled order
// summary, plus a QR rendering of the same link.
package whatsapp

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/yourease/storefront/internal/backend"
)

type Builder struct {
	number string
}

// NewBuilder takes the store's WhatsApp number in international format
// without the plus sign, e.g. "919876543210".
func NewBuilder(number string) *Builder {
	return &Builder{number: strings.TrimPrefix(number, "+")}
}

func (b *Builder) IsConfigured() bool {
	return b.number != ""
}

// OrderLink returns a wa.me deep link whose text parameter carries the
// order summary.
func (b *Builder) OrderLink(order *backend.Order) string {
	return fmt.Sprintf("https://wa.me/%s?text=%s", b.number, url.QueryEscape(OrderText(order)))
}

// OrderText renders the pre-filled chat message for an order.
func OrderText(order *backend.Order) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Hi! I have a question about my YourEase order %s.\n", order.ID)
	for _, item := range order.Items {
		fmt.Fprintf(&sb, "- %s x%d", item.Title, item.Quantity)
		if len(item.SelectedOptions) > 0 {
			fmt.Fprintf(&sb, " (%s)", formatOptions(item.SelectedOptions))
		}
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "Total: %s", FormatPaisa(order.TotalPaisa))
	return sb.String()
}

// OrderLinkQR renders the deep link as a PNG QR code.
func (b *Builder) OrderLinkQR(order *backend.Order, size int) ([]byte, error) {
	if size <= 0 {
		size = 256
	}
	png, err := qrcode.Encode(b.OrderLink(order), qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	return png, nil
}

func formatOptions(opts map[string]string) string {
	parts := make([]string, 0, len(opts))
	for k, v := range opts {
		parts = append(parts, k+": "+v)
	}
	sort.Strings(parts)
	return strings.Join(parts, ", ")
}

// FormatPaisa formats integer paisa as rupees, e.g. 159900 -> "₹1599.00".
func FormatPaisa(paisa int64) string {
	sign := ""
	if paisa < 0 {
		sign = "-"
		paisa = -paisa
	}
	return fmt.Sprintf("%s₹%d.%02d", sign, paisa/100, paisa%100)
}
