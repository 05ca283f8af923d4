package checkout

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/arglo/storefront/internal/domain"
)

const rule = "━━━━━━━━━━━━━━━━━━\n"

// Message renders the quote request sent to the seller: one block per line
// with its subtotal, then the cart total. Amounts use two decimals.
func Message(cart domain.Cart) string {
	var b strings.Builder

	b.WriteString("🌟 *SOLICITUD DE COTIZACIÓN* 🌟\n\n")
	b.WriteString("Buen día, quisiera una cotización de los siguientes productos:\n\n")
	b.WriteString(rule)
	b.WriteString("📋 *DETALLE DEL PEDIDO*\n")
	b.WriteString(rule)
	b.WriteString("\n")

	for i, line := range cart {
		fmt.Fprintf(&b, "*Producto %d:*\n", i+1)
		fmt.Fprintf(&b, "📦 %s\n", line.Title)
		fmt.Fprintf(&b, "• Color: %s\n", line.Color)
		fmt.Fprintf(&b, "• Precio unitario: $%s\n", strconv.FormatFloat(line.Price, 'f', -1, 64))
		fmt.Fprintf(&b, "• Cantidad: %d\n", line.Quantity)
		fmt.Fprintf(&b, "• Subtotal: $%.2f\n\n", line.LineTotal())
	}

	b.WriteString(rule)
	fmt.Fprintf(&b, "💰 *VALOR TOTAL: $%.2f*\n", cart.Total())
	b.WriteString(rule)
	b.WriteString("\n")
	b.WriteString("Por favor confírmeme disponibilidad, formas de pago, tiempo de entrega y costo de envío.\n\n")
	b.WriteString("¡Gracias!")

	return b.String()
}
