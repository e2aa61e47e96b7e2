package telegram

import (
	"fmt"
	"html"
	"strings"
	"time"

	"qris-workers/internal/common/money"
)

type Item struct {
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int64  `json:"quantity"`
}

// Order is what the admin sees when a checkout produces a payment code.
type Order struct {
	ID                 string
	CustomerName       string
	CustomerEmail      string
	CustomerPhone      string
	Items              []Item
	Total              int64
	ProjectName        string
	ProjectDescription string
	CreatedAt          time.Time
}

var jakarta = time.FixedZone("WIB", 7*60*60)

// FormatOrder renders o as Bot API HTML. User-supplied text is escaped.
func FormatOrder(o Order) string {
	var b strings.Builder

	b.WriteString("🛒 <b>PESANAN BARU!</b>\n\n")
	fmt.Fprintf(&b, "📋 <b>Order ID:</b> %s\n", html.EscapeString(o.ID))
	fmt.Fprintf(&b, "👤 <b>Nama:</b> %s\n", html.EscapeString(o.CustomerName))
	fmt.Fprintf(&b, "📧 <b>Email:</b> %s\n", html.EscapeString(o.CustomerEmail))
	fmt.Fprintf(&b, "📱 <b>Phone:</b> %s\n", html.EscapeString(orDash(o.CustomerPhone)))

	if len(o.Items) > 0 {
		b.WriteString("\n📦 <b>Items:</b>\n")
		for _, it := range o.Items {
			fmt.Fprintf(&b, "• %s x%d - Rp %s\n", html.EscapeString(it.Name), it.Quantity, money.GroupIDR(it.Price*it.Quantity))
		}
	}

	fmt.Fprintf(&b, "\n💰 <b>Total:</b> Rp %s\n", money.GroupIDR(o.Total))

	if o.ProjectName != "" || o.ProjectDescription != "" {
		fmt.Fprintf(&b, "\n📝 <b>Project:</b> %s\n", html.EscapeString(orDash(o.ProjectName)))
		fmt.Fprintf(&b, "📄 <b>Deskripsi:</b> %s\n", html.EscapeString(orDash(o.ProjectDescription)))
	}

	created := o.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	fmt.Fprintf(&b, "\n⏰ <b>Waktu:</b> %s", created.In(jakarta).Format("2/1/2006, 15.04.05"))

	return b.String()
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
