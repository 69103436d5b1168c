// Package email renders transactional email bodies. Nothing in here touches the
// database or the network: callers pass every field the templates need.
package email

import (
	"fmt"
	"html/template"
	"strings"
	"time"
)

// Message is a ready-to-send email.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Rendered is the output of a template before a recipient is attached.
type Rendered struct {
	Subject string
	HTML    string
	Text    string
}

// To attaches a recipient.
func (r Rendered) To(addr string) Message {
	return Message{To: addr, Subject: r.Subject, HTML: r.HTML, Text: r.Text}
}

// Renderer holds the branding shared by every template.
type Renderer struct {
	ProductName string
	AppBaseURL  string
	Now         func() time.Time
}

func NewRenderer(productName, appBaseURL string) *Renderer {
	return &Renderer{
		ProductName: productName,
		AppBaseURL:  strings.TrimRight(appBaseURL, "/"),
		Now:         time.Now,
	}
}

// URL joins a relative link onto the application base URL.
func (r *Renderer) URL(link string) string {
	if link == "" {
		return ""
	}
	if !strings.HasPrefix(link, "/") {
		link = "/" + link
	}
	return r.AppBaseURL + link
}

// Layout wraps content in the shared shell: header band, content area, footer.
func (r *Renderer) Layout(content string) string {
	year := r.Now().Year()
	name := template.HTMLEscapeString(r.ProductName)

	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>%s</title>
</head>
<body style="margin:0;padding:0;background-color:#f9fafb;font-family:'Segoe UI',Tahoma,Arial,sans-serif;">
<div style="max-width:640px;margin:0 auto;padding:24px 20px;">
<div style="background-color:#10b981;border-radius:12px 12px 0 0;padding:20px 24px;text-align:center;">
<h1 style="margin:0;font-size:22px;font-weight:700;color:#ffffff;">%s</h1>
</div>
<div style="background-color:#ffffff;border:1px solid #e5e7eb;border-top:none;border-radius:0 0 12px 12px;padding:24px 24px 28px 24px;color:#1f2937;font-size:16px;line-height:1.75;word-break:break-word;">
%s
</div>
<div style="text-align:center;color:#6b7280;font-size:12px;line-height:1.7;margin-top:16px;">
<p style="margin:0;">&copy; %d %s. All rights reserved.</p>
<p style="margin:0;">This is an automated message, please do not reply to this email.</p>
</div>
</div>
</body>
</html>`, name, name, content, year, name)
}

func paragraph(text string) string {
	escaped := template.HTMLEscapeString(strings.TrimSpace(text))
	escaped = strings.ReplaceAll(strings.ReplaceAll(escaped, "\r\n", "\n"), "\n", "<br />")
	return `<p style="margin:0 0 18px 0;line-height:1.7;">` + escaped + `</p>`
}

func heading(text string) string {
	return `<h2 style="margin:0 0 16px 0;font-size:20px;color:#111827;">` + template.HTMLEscapeString(text) + `</h2>`
}

func button(label, href string) string {
	if strings.TrimSpace(label) == "" || strings.TrimSpace(href) == "" {
		return ""
	}
	return fmt.Sprintf(`<div style="text-align:center;margin:12px 0 24px 0;">
<a href="%s" style="display:inline-block;padding:12px 28px;background-color:#10b981;color:#ffffff;text-decoration:none;border-radius:999px;font-weight:600;">%s</a>
</div>`, template.HTMLEscapeString(href), template.HTMLEscapeString(label))
}

type metaRow struct {
	Label string
	Value string
}

func metaTable(rows []metaRow) string {
	var b strings.Builder
	kept := 0
	for _, row := range rows {
		if strings.TrimSpace(row.Value) == "" {
			continue
		}
		kept++
		b.WriteString(fmt.Sprintf(`<tr>
<td style="padding:10px 16px;font-size:13px;color:#6b7280;width:38%%;border-bottom:1px solid #e5e7eb;">%s</td>
<td style="padding:10px 16px;font-size:15px;color:#111827;font-weight:600;border-bottom:1px solid #e5e7eb;">%s</td>
</tr>
`, template.HTMLEscapeString(row.Label), template.HTMLEscapeString(row.Value)))
	}
	if kept == 0 {
		return ""
	}
	return `<table role="presentation" cellpadding="0" cellspacing="0" width="100%" style="border:1px solid #e5e7eb;border-radius:12px;background-color:#f9fafb;margin:0 0 24px 0;">
<tbody>
` + b.String() + `</tbody>
</table>`
}

func greetingName(firstName string) string {
	if strings.TrimSpace(firstName) == "" {
		return "there"
	}
	return strings.TrimSpace(firstName)
}
