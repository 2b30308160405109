package services

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/Ananth-NQI/servicebook-backend/internal/logger"
	"github.com/Ananth-NQI/servicebook-backend/internal/models"
	"github.com/Ananth-NQI/servicebook-backend/internal/utils"
)

// Template names
const (
	TemplateOTP              = "otp"
	TemplateNewCustomer      = "new_booking_customer"
	TemplateNewStaff         = "new_booking_staff"
	TemplateConfirmed        = "status_confirmed"
	TemplateCompleted        = "status_completed"
	TemplateCancelled        = "status_cancelled"
	TemplateRescheduled      = "rescheduled"
	TemplateReminderCustomer = "reminder_customer"
	TemplateReminderStaff    = "reminder_staff"
	TemplateDigest           = "digest"
)

var emailTemplates = template.Must(template.New("emails").Funcs(template.FuncMap{
	"displayDate": utils.FormatDisplayDate,
	"orDefault": func(s, def string) string {
		if s == "" {
			return def
		}
		return s
	},
}).Parse(`
{{define "details"}}
<p><b>Service:</b> {{.ServiceType}}</p>
<p><b>Date:</b> {{orDefault (displayDate .Date) "Not specified"}}</p>
<p><b>Time:</b> {{orDefault .Time "Not specified"}}</p>
<p><b>Urgency:</b> {{.Urgency.Label}}</p>
<p><b>Address:</b> {{.Address}}, {{.PostalCode}}</p>
{{end}}

{{define "otp"}}
<h2>Welcome to {{.Brand}}</h2>
<p>Your One-Time Password (OTP) is:</p>
<h1 style="color:#00c2cb">{{.Code}}</h1>
<p>This OTP will expire in {{.Minutes}} minutes.</p>
<p>If you did not request this, please ignore this email.</p>
{{end}}

{{define "new_booking_customer"}}
<h2>Dear {{.Booking.Name}},</h2>
<p>Thank you for choosing <b>{{.Brand}}</b>.</p>
<p>Your booking has been received with the following details:</p>
{{template "details" .Booking}}
<p><b>Booking ID:</b> {{.Booking.ID}}</p>
<p>We will contact you shortly to confirm the details.</p>
{{end}}

{{define "new_booking_staff"}}
<h2>New booking received</h2>
<p><b>Name:</b> {{.Booking.Name}}</p>
<p><b>Phone:</b> {{.Booking.Phone}}</p>
<p><b>Email:</b> {{.Booking.Email}}</p>
{{template "details" .Booking}}
<p><b>Instructions:</b> {{orDefault .Booking.Instructions "None"}}</p>
<p><b>Verified:</b> {{if .Booking.Verified}}yes{{else}}no (entered by staff){{end}}</p>
{{end}}

{{define "status"}}
<h2>Hi {{.Booking.Name}},</h2>
<p>{{.Headline}}</p>
{{template "details" .Booking}}
{{if .Reason}}<p><b>Reason:</b> {{.Reason}}</p>{{end}}
<p>Thank you for choosing {{.Brand}}.</p>
{{end}}

{{define "reminder_customer"}}
<h2>Hi {{.Booking.Name}},</h2>
<p>This is a friendly reminder that your service is scheduled for <b>{{displayDate .Booking.Date}}</b> at <b>{{orDefault .Booking.Time "the agreed time"}}</b>.</p>
<p>Our team will be there at your address: {{.Booking.Address}}, {{.Booking.PostalCode}}.</p>
<p>Thank you for choosing us!</p>
{{end}}

{{define "reminder_staff"}}
<h2>Visit tomorrow</h2>
<p><b>Customer:</b> {{.Booking.Name}} ({{.Booking.Phone}})</p>
{{template "details" .Booking}}
<p><b>Instructions:</b> {{orDefault .Booking.Instructions "None"}}</p>
{{end}}

{{define "digest"}}
<h2>Here's the summary for {{displayDate .Date}}:</h2>
<p>{{len .Bookings}} confirmed booking(s) scheduled.</p>
<table border="1" cellpadding="6" cellspacing="0">
<tr><th>Time</th><th>Name</th><th>Phone</th><th>Service</th><th>Address</th></tr>
{{range .Bookings}}<tr><td>{{orDefault .Time "-"}}</td><td>{{.Name}}</td><td>{{.Phone}}</td><td>{{.ServiceType}}</td><td>{{.Address}}, {{.PostalCode}}</td></tr>
{{end}}</table>
{{with .Stats}}<p>Pending: {{.Pending}} | Confirmed: {{.Confirmed}} | Completed: {{.Completed}} | Cancelled: {{.Cancelled}} | Total: {{.Total}}</p>{{end}}
{{end}}
`))

// TemplateService renders the transactional emails
type TemplateService struct {
	brand      string
	staffEmail string
}

// NewTemplateService creates a new template service
func NewTemplateService(brand, staffEmail string) *TemplateService {
	return &TemplateService{brand: brand, staffEmail: staffEmail}
}

// StaffEmail is the staff recipient; empty when staff mail is disabled.
func (t *TemplateService) StaffEmail() string {
	return t.staffEmail
}

func (t *TemplateService) OTP(to, code string, ttl time.Duration) Email {
	return t.build(to, "Your OTP Code - "+t.brand, TemplateOTP, "otp", map[string]interface{}{
		"Brand":   t.brand,
		"Code":    code,
		"Minutes": int(ttl.Minutes()),
	})
}

func (t *TemplateService) NewBookingCustomer(b *models.Booking) Email {
	return t.build(b.Email, "Booking Received - "+t.brand, TemplateNewCustomer, "new_booking_customer", t.bookingData(b, ""))
}

func (t *TemplateService) NewBookingStaff(b *models.Booking) Email {
	subject := fmt.Sprintf("New Booking Received - %s (%s)", b.Name, b.ServiceType)
	return t.build(t.staffEmail, subject, TemplateNewStaff, "new_booking_staff", t.bookingData(b, ""))
}

// StatusUpdate renders the customer email for a status change. The bool is
// false for statuses that have no email.
func (t *TemplateService) StatusUpdate(b *models.Booking, reason string) (Email, bool) {
	var name, subject, headline string
	switch b.Status {
	case models.BookingStatusConfirmed:
		name, subject, headline = TemplateConfirmed, "Booking Confirmed", "Your booking has been confirmed."
	case models.BookingStatusCompleted:
		name, subject, headline = TemplateCompleted, "Service Completed", "Your service has been completed. We hope you are happy with our work."
	case models.BookingStatusCancelled:
		name, subject, headline = TemplateCancelled, "Booking Cancelled", "Your booking has been cancelled."
	default:
		return Email{}, false
	}

	data := t.bookingData(b, reason)
	data["Headline"] = headline
	return t.build(b.Email, subject+" - "+t.brand, name, "status", data), true
}

func (t *TemplateService) Rescheduled(b *models.Booking, reason string) Email {
	data := t.bookingData(b, reason)
	data["Headline"] = "Your booking has been rescheduled. The new schedule is below."
	return t.build(b.Email, "Booking Rescheduled - "+t.brand, TemplateRescheduled, "status", data)
}

func (t *TemplateService) ReminderCustomer(b *models.Booking) Email {
	return t.build(b.Email, "Reminder: Your Service is Tomorrow", TemplateReminderCustomer, "reminder_customer", t.bookingData(b, ""))
}

func (t *TemplateService) ReminderStaff(b *models.Booking) Email {
	subject := fmt.Sprintf("Reminder: %s visit tomorrow for %s", b.ServiceType, b.Name)
	return t.build(t.staffEmail, subject, TemplateReminderStaff, "reminder_staff", t.bookingData(b, ""))
}

// Digest lists the confirmed bookings for date. stats may be nil.
func (t *TemplateService) Digest(date string, bookings []*models.Booking, stats *models.BookingStats) Email {
	return t.build(t.staffEmail, "Daily Digest - "+t.brand, TemplateDigest, "digest", map[string]interface{}{
		"Date":     date,
		"Bookings": bookings,
		"Stats":    stats,
	})
}

func (t *TemplateService) bookingData(b *models.Booking, reason string) map[string]interface{} {
	return map[string]interface{}{
		"Brand":   t.brand,
		"Booking": b,
		"Reason":  reason,
	}
}

func (t *TemplateService) build(to, subject, name, tmpl string, data interface{}) Email {
	var buf bytes.Buffer
	if err := emailTemplates.ExecuteTemplate(&buf, tmpl, data); err != nil {
		logger.Log.WithError(err).WithField("template", name).Error("Failed to render email")
		buf.Reset()
		buf.WriteString("<p>" + template.HTMLEscapeString(subject) + "</p>")
	}
	return Email{To: to, Subject: subject, HTML: buf.String(), Template: name}
}
