package email

import (
	"fmt"
	"html/template"
	"strings"
)

// NotificationData is the content shared by the user, business and admin variants.
type NotificationData struct {
	FirstName string
	Title     string
	Message   string
	Link      string
}

func (r *Renderer) RenderUserNotification(d NotificationData) Rendered {
	return r.renderNotification(d, "", "View Details")
}

// RenderBusinessNotification adds a business-name badge above the title when one is known.
func (r *Renderer) RenderBusinessNotification(d NotificationData, businessName string) Rendered {
	return r.renderNotification(d, businessName, "View Details")
}

// RenderAdminNotification renders the admin broadcast variant; the button label depends on the event type.
func (r *Renderer) RenderAdminNotification(d NotificationData, eventType string) Rendered {
	return r.renderNotification(d, "", AdminButtonLabel(eventType))
}

// AdminButtonLabel picks the call to action for an admin event type.
func AdminButtonLabel(eventType string) string {
	switch {
	case strings.Contains(eventType, "refund"):
		return "Review Refund"
	case eventType == "new_cremation_center" || eventType == "pending_application":
		return "Review Application"
	case strings.Contains(eventType, "appeal"):
		return "Review Appeal"
	default:
		return "View Details"
	}
}

func (r *Renderer) renderNotification(d NotificationData, badge, buttonLabel string) Rendered {
	url := r.URL(d.Link)

	var content strings.Builder
	content.WriteString(paragraph("Hello " + greetingName(d.FirstName) + ","))
	if strings.TrimSpace(badge) != "" {
		content.WriteString(fmt.Sprintf(
			`<div style="display:inline-block;margin:0 0 12px 0;padding:4px 12px;border-radius:999px;background-color:#ecfdf5;color:#047857;font-size:13px;font-weight:600;">%s</div>`,
			template.HTMLEscapeString(badge),
		))
	}
	content.WriteString(heading(d.Title))
	content.WriteString(paragraph(d.Message))
	if url != "" {
		content.WriteString(button(buttonLabel, url))
	}

	var text strings.Builder
	text.WriteString("Hello " + greetingName(d.FirstName) + ",\n\n")
	if strings.TrimSpace(badge) != "" {
		text.WriteString("[" + strings.TrimSpace(badge) + "]\n")
	}
	text.WriteString(d.Title + "\n\n")
	text.WriteString(d.Message + "\n")
	if url != "" {
		text.WriteString("\n" + buttonLabel + ": " + url + "\n")
	}
	text.WriteString("\n" + r.ProductName)

	return Rendered{
		Subject: fmt.Sprintf("%s - %s", d.Title, r.ProductName),
		HTML:    r.Layout(content.String()),
		Text:    text.String(),
	}
}
