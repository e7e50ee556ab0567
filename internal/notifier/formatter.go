package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"CandleAlert/internal/model"

	"github.com/shopspring/decimal"
)

// TimestampLayout renders the invocation time of an alert.
const TimestampLayout = "2006-01-02 15:04:05 UTC"

// Template holds the fixed wording of an alert.
type Template struct {
	Title string
	Asset string
}

// DefaultTemplate is the Bitcoin alert wording.
var DefaultTemplate = Template{Title: "Bitcoin Trading Signal Alert", Asset: "BTC"}

// exactExponent is small enough for NewFromFloatWithExponent to keep every
// binary digit of a float64.
const exactExponent = -1074

// FormatPrice renders a price with exactly two decimals. The stored binary
// value is rounded half to even, as printf-style formatting does.
func FormatPrice(p float64) string {
	return decimal.NewFromFloatWithExponent(p, exactExponent).StringFixedBank(2)
}

func mark(met bool) string {
	if met {
		return "✅"
	}
	return "❌"
}

// HTML renders the email body: title, timestamp, current price and the checklist.
func (t Template) HTML(eval *model.Evaluation, at time.Time) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("<h2>%s</h2>\n", html.EscapeString(t.Title)))
	b.WriteString(fmt.Sprintf("<p>Timestamp: %s</p>\n", at.UTC().Format(TimestampLayout)))
	b.WriteString(fmt.Sprintf("<p>Current %s Price: $%s</p>\n", html.EscapeString(t.Asset), FormatPrice(eval.CurrentPrice)))
	b.WriteString("<h3>Conditions Met:</h3>\n<ul>\n")
	for _, c := range eval.Conditions {
		b.WriteString(fmt.Sprintf("    <li>%s %s</li>\n", html.EscapeString(c.Label), mark(c.Met)))
	}
	b.WriteString("</ul>\n")
	return b.String()
}

// Text renders the same content for Telegram, which accepts a small subset of HTML.
func (t Template) Text(eval *model.Evaluation, at time.Time) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📈 <b>%s</b>\n\n", html.EscapeString(t.Title)))
	b.WriteString(fmt.Sprintf("Timestamp: %s\n", at.UTC().Format(TimestampLayout)))
	b.WriteString(fmt.Sprintf("Current %s Price: $%s\n\n", html.EscapeString(t.Asset), FormatPrice(eval.CurrentPrice)))
	b.WriteString("<b>Conditions Met:</b>\n")
	for _, c := range eval.Conditions {
		b.WriteString(fmt.Sprintf("  %s %s\n", c.Label, mark(c.Met)))
	}
	return b.String()
}

// FormatAlertHTML renders eval with the default template.
func FormatAlertHTML(eval *model.Evaluation, at time.Time) string {
	return DefaultTemplate.HTML(eval, at)
}

// FormatAlertText renders eval with the default template for chat channels.
func FormatAlertText(eval *model.Evaluation, at time.Time) string {
	return DefaultTemplate.Text(eval, at)
}
