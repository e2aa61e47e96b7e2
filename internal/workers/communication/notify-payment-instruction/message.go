package notifypaymentinstruction

import (
	"fmt"
	"html"
	"net/url"
	"strings"

	"qris-workers/internal/common/money"
)

// NormalizePhone turns an Indonesian number into the international digits
// wa.me and SNS expect: 0857... and +62857... both become 62857....
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	switch {
	case digits == "":
		return ""
	case strings.HasPrefix(digits, "62"):
		return digits
	case strings.HasPrefix(digits, "0"):
		return "62" + digits[1:]
	case strings.HasPrefix(digits, "8"):
		return "62" + digits
	}
	return digits
}

// WhatsAppLink opens a chat with the admin prefilled with the confirmation text.
func WhatsAppLink(adminPhone, adminName, orderID, total string) string {
	text := fmt.Sprintf("Halo Admin %s, saya ingin konfirmasi pembayaran untuk Order ID: %s. Total: %s",
		adminName, orderID, total)
	return "https://wa.me/" + NormalizePhone(adminPhone) + "?text=" + strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
}

type instruction struct {
	OrderID       string
	Amount        int64
	CustomerName  string
	QRISString    string
	Total         string
	AdminTelegram string
	AdminWhatsApp string
	WhatsAppLink  string
}

func (in instruction) subject() string {
	return fmt.Sprintf("Instruksi Pembayaran QRIS - Order %s", in.OrderID)
}

func (in instruction) text() string {
	var b strings.Builder
	if in.CustomerName != "" {
		fmt.Fprintf(&b, "Halo %s,\n\n", in.CustomerName)
	}
	b.WriteString("Scan QR Code untuk melakukan pembayaran.\n\n")
	fmt.Fprintf(&b, "Kode QRIS:\n%s\n\n", in.QRISString)
	fmt.Fprintf(&b, "Jumlah Pembayaran: %s\n", in.Total)
	fmt.Fprintf(&b, "Order ID: %s\n\n", in.OrderID)
	b.WriteString("Hubungi Admin untuk Konfirmasi:\n")
	fmt.Fprintf(&b, "Telegram: %s\n", in.AdminTelegram)
	fmt.Fprintf(&b, "WhatsApp: %s\n", in.AdminWhatsApp)
	fmt.Fprintf(&b, "%s\n\n", in.WhatsAppLink)
	b.WriteString("Setelah pembayaran, silakan kirim bukti transfer ke admin untuk verifikasi.\n")
	b.WriteString("Pesanan akan diproses setelah pembayaran dikonfirmasi.\n")
	return b.String()
}

func (in instruction) html() string {
	var b strings.Builder
	b.WriteString("<div>")
	if in.CustomerName != "" {
		fmt.Fprintf(&b, "<p>Halo %s,</p>", html.EscapeString(in.CustomerName))
	}
	b.WriteString("<p>Scan QR Code untuk melakukan pembayaran:</p>")
	fmt.Fprintf(&b, `<p><b>Kode QRIS:</b></p><pre style="white-space:pre-wrap;word-break:break-all">%s</pre>`,
		html.EscapeString(in.QRISString))
	fmt.Fprintf(&b, "<p><b>Jumlah Pembayaran:</b> %s</p>", html.EscapeString(in.Total))
	fmt.Fprintf(&b, "<p>Order ID: %s</p>", html.EscapeString(in.OrderID))
	b.WriteString("<p><b>Hubungi Admin untuk Konfirmasi:</b></p>")
	fmt.Fprintf(&b, "<p><b>Telegram:</b> %s<br/><b>WhatsApp:</b> %s</p>",
		html.EscapeString(in.AdminTelegram), html.EscapeString(in.AdminWhatsApp))
	fmt.Fprintf(&b, `<p><a href="%s">Konfirmasi via WhatsApp</a></p>`, html.EscapeString(in.WhatsAppLink))
	b.WriteString("<p>Setelah pembayaran, silakan kirim bukti transfer ke admin untuk verifikasi.<br/>")
	b.WriteString("Pesanan akan diproses setelah pembayaran dikonfirmasi.</p></div>")
	return b.String()
}

// sms is plain GSM text, so the amount uses an ASCII space after the symbol.
func (in instruction) sms() string {
	return fmt.Sprintf("Order %s: bayar Rp %s via QRIS. Konfirmasi ke WA %s",
		in.OrderID, money.GroupIDR(in.Amount), in.AdminWhatsApp)
}
