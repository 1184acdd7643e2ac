package notify

import (
	"bytes"
	"fmt"
	"html/template"

	"venuehub/internal/external"
	"venuehub/internal/models"
)

const layout = `{{define "layout"}}<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #222;">
<p>Hi {{.Recipient.FirstName}},</p>
{{template "body" .}}
<p>VenueHub</p>
</body>
</html>{{end}}`

var emailSubjects = map[string]string{
	"booking_request":   "New booking request",
	"booking_accepted":  "Your booking has been accepted",
	"booking_rejected":  "Your booking was declined",
	"payment_succeeded": "Payment confirmed",
	"payment_failed":    "Payment failed",
	"otp":               "Your verification code",
}

var emailBodies = map[string]string{
	"booking_request": `{{define "body"}}<p>{{.Data.VenueName}} has a new booking request for {{.Data.EventDate}} ({{.Data.NumberOfGuests}} guests).</p>
<p>Total: {{.Data.TotalAmount}}</p>{{end}}`,
	"booking_accepted": `{{define "body"}}<p>Your booking for {{.Data.VenueName}} on {{.Data.EventDate}} has been accepted.</p>
<p>Amount due: {{.Data.TotalAmount}}</p>
<p><a href="{{.Data.PaymentURL}}">Pay now</a></p>{{end}}`,
	"booking_rejected": `{{define "body"}}<p>Your booking for {{.Data.VenueName}} on {{.Data.EventDate}} was declined.</p>
<p>Reason: {{.Data.Reason}}</p>{{end}}`,
	"payment_succeeded": `{{define "body"}}<p>We received your payment of {{.Data.TotalAmount}} for {{.Data.VenueName}} on {{.Data.EventDate}}.</p>
<p>Reference: {{.Data.Reference}}</p>{{end}}`,
	"payment_failed": `{{define "body"}}<p>Your payment for {{.Data.VenueName}} on {{.Data.EventDate}} did not go through.</p>
<p><a href="{{.Data.PaymentURL}}">Try again</a></p>{{end}}`,
	"otp": `{{define "body"}}<p>Your verification code is <strong>{{.Data.Code}}</strong>.</p>
<p>It expires in {{.Data.ExpiresIn}}.</p>{{end}}`,
}

var templates = parseTemplates()

func parseTemplates() map[string]*template.Template {
	out := make(map[string]*template.Template, len(emailBodies))
	for name, body := range emailBodies {
		t := template.Must(template.New(name).Parse(layout))
		out[name] = template.Must(t.Parse(body))
	}
	return out
}

// render builds the email for the named template.
func render(name string, recipient *models.Identity, data any) (external.Email, error) {
	t, ok := templates[name]
	if !ok {
		return external.Email{}, fmt.Errorf("unknown email template %q", name)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", struct {
		Recipient *models.Identity
		Data      any
	}{recipient, data}); err != nil {
		return external.Email{}, fmt.Errorf("failed to execute template %s: %w", name, err)
	}

	return external.Email{
		To:      recipient.Email,
		Subject: emailSubjects[name],
		HTML:    buf.String(),
	}, nil
}

// OTPEmail renders the one-time password email.
func OTPEmail(recipient *models.Identity, code, expiresIn string) (external.Email, error) {
	return render("otp", recipient, struct {
		Code      string
		ExpiresIn string
	}{code, expiresIn})
}
