package service

import (
	"fmt"
	"html/template"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/coshikowa/ms-go-agency/app/entity"
	"github.com/coshikowa/ms-go-agency/app/types"
)

type emailField struct {
	Label string
	Value string
}

type submissionEmailData struct {
	Title       string
	Position    string
	ContactName string
	Email       string
	Fields      []emailField
}

type approvalRequestEmailData struct {
	PaymentType string
	AmountKES   string
	Method      string
	Reference   string
	Email       string
	ApproveURL  string
}

type paymentApprovedEmailData struct {
	ContactName string
	PaymentType string
	AmountKES   string
	Method      string
}

var operatorEmailTemplate = template.Must(template.New("operator").Parse(`
<h2>{{.Title}}</h2>
<p><strong>Position:</strong> {{.Position}}</p>
<p><strong>Name:</strong> {{.ContactName}}</p>
<p><strong>Email:</strong> {{.Email}}</p>
<h3>Submitted Details</h3>
<table border="1" cellpadding="6" cellspacing="0">
{{range .Fields}}<tr><td><strong>{{.Label}}</strong></td><td>{{.Value}}</td></tr>
{{end}}</table>
`))

var acknowledgmentEmailTemplate = template.Must(template.New("ack").Parse(`
<h2>{{.Title}}</h2>
<p>Dear {{.ContactName}},</p>
<p>We have received your {{if .Position}}request regarding <strong>{{.Position}}</strong>{{else}}request{{end}} and our team is reviewing it.</p>
<p>We will get back to you shortly.</p>
<p>Best regards,<br>Coshikowa Agency</p>
`))

var approvalRequestEmailTemplate = template.Must(template.New("approval-request").Parse(`
<h2>Manual Payment Awaiting Approval</h2>
<p>A submitter has reported an offline payment and is waiting for review.</p>
<table border="1" cellpadding="6" cellspacing="0">
<tr><td><strong>Type</strong></td><td>{{.PaymentType}}</td></tr>
<tr><td><strong>Amount</strong></td><td>KES {{.AmountKES}}</td></tr>
<tr><td><strong>Method</strong></td><td>{{.Method}}</td></tr>
<tr><td><strong>Reference</strong></td><td>{{.Reference}}</td></tr>
<tr><td><strong>Submitter</strong></td><td>{{.Email}}</td></tr>
</table>
<p>Once you have confirmed the funds, approve the payment:</p>
<p><a href="{{.ApproveURL}}">Approve this payment</a></p>
<p>If the payment cannot be verified, no action is needed.</p>
`))

var paymentApprovedEmailTemplate = template.Must(template.New("payment-approved").Parse(`
<h2>Payment Confirmed</h2>
<p>Dear {{.ContactName}},</p>
<p>Your {{.Method}} payment of KES {{.AmountKES}} for your {{.PaymentType}} has been confirmed.</p>
<p>Your submission is now being processed and our team will contact you soon.</p>
<p>Best regards,<br>Coshikowa Agency</p>
`))

func renderOperatorEmail(kind, position, contactName string, payload types.SubmissionPayload) (string, error) {
	data := submissionEmailData{
		Title:       "New Job Application",
		Position:    position,
		ContactName: contactName,
		Email:       payload.Email(),
		Fields:      payloadFields(payload),
	}
	if kind == entity.PaymentTypeHiringRequest {
		data.Title = "New Hiring Request"
	}
	return renderTemplate(operatorEmailTemplate, data)
}

func renderAcknowledgmentEmail(kind, position, contactName string) (string, error) {
	data := submissionEmailData{
		Title:       "We Received Your Application",
		Position:    position,
		ContactName: contactName,
	}
	if kind == entity.PaymentTypeHiringRequest {
		data.Title = "We Received Your Hiring Request"
	}
	return renderTemplate(acknowledgmentEmailTemplate, data)
}

func renderApprovalRequestEmail(payment *entity.Payment, method, reference, approveURL string) (string, error) {
	return renderTemplate(approvalRequestEmailTemplate, approvalRequestEmailData{
		PaymentType: paymentTypeLabel(payment.PaymentType),
		AmountKES:   formatKES(payment.AmountKES),
		Method:      methodLabel(method),
		Reference:   reference,
		Email:       payment.Email,
		ApproveURL:  approveURL,
	})
}

func renderPaymentApprovedEmail(payment *entity.Payment) (string, error) {
	method := ""
	if payment.PaymentMethod != nil {
		method = *payment.PaymentMethod
	}
	contactName := payment.FormData["fullName"]
	if payment.PaymentType == entity.PaymentTypeHiringRequest {
		contactName = payment.FormData["contactPerson"]
	}
	if strings.TrimSpace(contactName) == "" {
		contactName = "Customer"
	}
	return renderTemplate(paymentApprovedEmailTemplate, paymentApprovedEmailData{
		ContactName: contactName,
		PaymentType: paymentTypeLabel(payment.PaymentType),
		AmountKES:   formatKES(payment.AmountKES),
		Method:      methodLabel(method),
	})
}

func renderTemplate(tmpl *template.Template, data any) (string, error) {
	var builder strings.Builder
	if err := tmpl.Execute(&builder, data); err != nil {
		return "", fmt.Errorf("render %s email: %w", tmpl.Name(), err)
	}
	return builder.String(), nil
}

func payloadFields(payload types.SubmissionPayload) []emailField {
	keys := make([]string, 0, len(payload))
	for key := range payload {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	fields := make([]emailField, 0, len(keys))
	for _, key := range keys {
		value := strings.TrimSpace(payload[key])
		if value == "" {
			continue
		}
		fields = append(fields, emailField{Label: fieldLabel(key), Value: value})
	}
	return fields
}

// fieldLabel turns a camelCase payload key into a readable label,
// e.g. "desiredPosition" becomes "Desired Position".
func fieldLabel(key string) string {
	var builder strings.Builder
	for i, r := range key {
		if i == 0 {
			builder.WriteRune(unicode.ToUpper(r))
			continue
		}
		if unicode.IsUpper(r) {
			builder.WriteByte(' ')
		}
		builder.WriteRune(r)
	}
	return builder.String()
}

func paymentTypeLabel(paymentType string) string {
	switch paymentType {
	case entity.PaymentTypeJobApplication:
		return "Job Application"
	case entity.PaymentTypeHiringRequest:
		return "Hiring Request"
	default:
		return paymentType
	}
}

func methodLabel(method string) string {
	switch method {
	case entity.PaymentMethodPayPal:
		return "PayPal"
	case entity.PaymentMethodMpesa:
		return "M-Pesa"
	case entity.PaymentMethodBank:
		return "Bank Transfer"
	default:
		return method
	}
}

// formatKES renders an amount with thousands separators, e.g. 2,000.
func formatKES(amount int64) string {
	digits := strconv.FormatInt(amount, 10)
	if len(digits) <= 3 {
		return digits
	}

	var builder strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		builder.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if builder.Len() > 0 {
			builder.WriteByte(',')
		}
		builder.WriteString(digits[i : i+3])
	}
	return builder.String()
}
