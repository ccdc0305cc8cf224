package services

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/courseloft/api/model"
)

// receiptTemplate renders the purchase receipt. Kept deliberately plain so it
// prints well from a browser.
var receiptTemplate = template.Must(template.New("receipt").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Receipt {{.ReceiptNo}} - Courseloft</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; color: #333; max-width: 600px; margin: 0 auto; padding: 24px; }
        .header { border-bottom: 2px solid #1a3c6e; padding-bottom: 12px; margin-bottom: 24px; }
        .header h1 { color: #1a3c6e; margin: 0; font-size: 24px; }
        table { width: 100%; border-collapse: collapse; }
        td { padding: 8px 0; border-bottom: 1px solid #eee; }
        td.label { color: #666; width: 40%; }
        .total { font-size: 18px; font-weight: 600; color: #1a3c6e; }
        .footer { margin-top: 32px; font-size: 12px; color: #666; }
    </style>
</head>
<body>
    <div class="header">
        <h1>Courseloft</h1>
        <p>Payment Receipt</p>
    </div>
    <table>
        <tr><td class="label">Receipt No.</td><td>{{.ReceiptNo}}</td></tr>
        <tr><td class="label">Date</td><td>{{.Date}}</td></tr>
        <tr><td class="label">Billed To</td><td>{{.CustomerName}} ({{.CustomerEmail}})</td></tr>
        <tr><td class="label">Course</td><td>{{.CourseTitle}}</td></tr>
        <tr><td class="label">Access</td><td>{{.AccessLabel}}</td></tr>
        <tr><td class="label">Order ID</td><td>{{.OrderID}}</td></tr>
        <tr><td class="label">Payment ID</td><td>{{.PaymentID}}</td></tr>
        <tr><td class="label total">Amount Paid</td><td class="total">{{.AmountLabel}}</td></tr>
    </table>
    <div class="footer">
        <p>This is a system generated receipt and does not require a signature.</p>
    </div>
</body>
</html>
`))

type receiptData struct {
	ReceiptNo     string
	Date          string
	CustomerName  string
	CustomerEmail string
	CourseTitle   string
	AccessLabel   string
	OrderID       string
	PaymentID     string
	AmountLabel   string
}

// BuildReceipt renders the HTML receipt for a settled payment. It performs no
// I/O; the caller supplies fully loaded records and persists the result.
func BuildReceipt(payment *model.PaymentRecord, course *model.Course, user *model.User) (string, error) {
	if payment == nil || course == nil || user == nil {
		return "", fmt.Errorf("receipt requires payment, course and user")
	}

	data := receiptData{
		ReceiptNo:     fmt.Sprintf("CL-%d", payment.ID),
		Date:          payment.UpdatedAt.UTC().Format("02 Jan 2006"),
		CustomerName:  user.Name,
		CustomerEmail: user.Email,
		CourseTitle:   course.Title,
		AccessLabel:   accessLabel(course.AccessType),
		OrderID:       payment.OrderID,
		PaymentID:     payment.PaymentID,
		AmountLabel:   FormatAmount(payment.Amount, payment.Currency),
	}

	var buf bytes.Buffer
	if err := receiptTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func accessLabel(accessType string) string {
	switch accessType {
	case model.AccessLifetime:
		return "Lifetime access"
	case model.AccessMonthly:
		return "1 month access"
	case model.AccessYearly:
		return "1 year access"
	default:
		return accessType
	}
}

// FormatAmount renders a minor-unit amount with its currency symbol
func FormatAmount(amount int64, currency string) string {
	symbol := "₹"
	if currency == model.CurrencyDollar {
		symbol = "$"
	}
	return fmt.Sprintf("%s%d.%02d", symbol, amount/100, amount%100)
}

// ReceiptKey is the object storage key for a payment's receipt
func ReceiptKey(payment *model.PaymentRecord, at time.Time) string {
	return fmt.Sprintf("receipts/%d/%s.html", at.Year(), payment.OrderID)
}
