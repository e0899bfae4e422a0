package receipt

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// Width is the character width of a thermal receipt.
const Width = 40

// Render writes r as fixed-width text.
func Render(w io.Writer, r Receipt) error {
	var b strings.Builder
	rule := strings.Repeat("-", Width)

	center(&b, r.Header.ShopName)
	if r.Header.Address != "" {
		center(&b, r.Header.Address)
	}
	if r.Header.Phone != "" {
		center(&b, "Tel: "+r.Header.Phone)
	}
	b.WriteString(rule + "\n")
	pair(&b, "Txn", r.Header.TransactionID)
	pair(&b, "Date", r.Header.Timestamp.Format("02 Jan 2006 15:04"))
	if r.Header.Cashier != "" {
		pair(&b, "Cashier", r.Header.Cashier)
	}
	b.WriteString(rule + "\n")

	for _, l := range r.Lines {
		b.WriteString(truncate(l.Name, Width) + "\n")
		pair(&b, "  "+l.Quantity+" x "+l.UnitPrice, l.Total)
	}
	b.WriteString(rule + "\n")
	pair(&b, "TOTAL", r.GrandTotal)
	for _, f := range r.Footer {
		pair(&b, f.Label, f.Value)
	}
	b.WriteString(rule + "\n")
	center(&b, "Thank you for shopping!")

	_, err := io.WriteString(w, b.String())
	return err
}

func center(b *strings.Builder, s string) {
	s = truncate(s, Width)
	pad := (Width - utf8.RuneCountInString(s)) / 2
	b.WriteString(strings.Repeat(" ", pad) + s + "\n")
}

// pair writes left and right justified on one line, wrapping the right side when they collide.
func pair(b *strings.Builder, left, right string) {
	gap := Width - utf8.RuneCountInString(left) - utf8.RuneCountInString(right)
	if gap < 1 {
		fmt.Fprintf(b, "%s\n%*s\n", left, Width, right)
		return
	}
	b.WriteString(left + strings.Repeat(" ", gap) + right + "\n")
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-1]) + "…"
}
