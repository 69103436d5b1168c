package email

import (
	"fmt"
	"strings"
)

// BookingData feeds the richer booking templates.
type BookingData struct {
	BookingID    int64
	FirstName    string
	PetName      string
	ServiceName  string
	ProviderName string
	Date         string
	Time         string
	TotalAmount  float64
	Link         string
}

var statusHeadlines = map[string]string{
	"confirmed":   "Your booking has been confirmed",
	"in_progress": "Your pet's service is in progress",
	"completed":   "Your booking has been completed",
	"cancelled":   "Your booking has been cancelled",
	"pending":     "Your booking is pending",
}

// BookingConfirmation is sent once a booking has been created.
func (r *Renderer) BookingConfirmation(d BookingData) Rendered {
	var content strings.Builder
	content.WriteString(paragraph("Hello " + greetingName(d.FirstName) + ","))
	content.WriteString(heading("Booking received"))
	content.WriteString(paragraph(fmt.Sprintf(
		"Thank you for trusting us with %s. Your booking request has been received and sent to %s for confirmation.",
		d.PetName, d.ProviderName,
	)))
	content.WriteString(metaTable(bookingRows(d)))
	content.WriteString(button("View Booking", r.URL(d.Link)))

	return Rendered{
		Subject: fmt.Sprintf("Booking Confirmation #%d - %s", d.BookingID, r.ProductName),
		HTML:    r.Layout(content.String()),
		Text:    bookingText(r, d, "Booking received"),
	}
}

// BookingStatusUpdate is sent when a booking moves to a new status.
func (r *Renderer) BookingStatusUpdate(d BookingData, status, note string) Rendered {
	headline, ok := statusHeadlines[status]
	if !ok {
		headline = "Your booking has been updated"
	}

	var content strings.Builder
	content.WriteString(paragraph("Hello " + greetingName(d.FirstName) + ","))
	content.WriteString(heading(headline))
	if strings.TrimSpace(note) != "" {
		content.WriteString(paragraph(note))
	}
	content.WriteString(metaTable(append(bookingRows(d), metaRow{Label: "Status", Value: humanStatus(status)})))
	content.WriteString(button("View Booking", r.URL(d.Link)))

	text := bookingText(r, d, headline)
	if strings.TrimSpace(note) != "" {
		text = note + "\n\n" + text
	}

	return Rendered{
		Subject: fmt.Sprintf("Booking #%d %s - %s", d.BookingID, humanStatus(status), r.ProductName),
		HTML:    r.Layout(content.String()),
		Text:    text,
	}
}

func bookingRows(d BookingData) []metaRow {
	rows := []metaRow{
		{Label: "Booking", Value: fmt.Sprintf("#%d", d.BookingID)},
		{Label: "Pet", Value: d.PetName},
		{Label: "Service", Value: d.ServiceName},
		{Label: "Provider", Value: d.ProviderName},
		{Label: "Date", Value: d.Date},
		{Label: "Time", Value: d.Time},
	}
	if d.TotalAmount > 0 {
		rows = append(rows, metaRow{Label: "Total", Value: FormatPeso(d.TotalAmount)})
	}
	return rows
}

func bookingText(r *Renderer, d BookingData, headline string) string {
	var b strings.Builder
	b.WriteString(headline + "\n\n")
	for _, row := range bookingRows(d) {
		if strings.TrimSpace(row.Value) == "" {
			continue
		}
		b.WriteString(row.Label + ": " + row.Value + "\n")
	}
	if url := r.URL(d.Link); url != "" {
		b.WriteString("\nView booking: " + url + "\n")
	}
	return b.String()
}

func humanStatus(status string) string {
	return strings.ReplaceAll(status, "_", " ")
}

// FormatPeso renders an amount the way the marketplace displays prices, e.g. ₱1500 or ₱1500.50.
func FormatPeso(amount float64) string {
	if amount == float64(int64(amount)) {
		return fmt.Sprintf("₱%d", int64(amount))
	}
	return fmt.Sprintf("₱%.2f", amount)
}
