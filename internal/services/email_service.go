package services

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/samedayramps/app.samedayramps.com/internal/config"
	"github.com/samedayramps/app.samedayramps.com/internal/constants"
	"github.com/samedayramps/app.samedayramps.com/internal/models"
	"github.com/samedayramps/app.samedayramps.com/internal/utils"
	"github.com/sirupsen/logrus"
)

// HTML template for the customer-facing quote email.
const quoteEmailHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>Your Ramp Rental Quote</title>
<style>
  body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Arial, sans-serif; line-height: 1.6; color: #1f2937; background-color: #f3f4f6; margin: 0; padding: 20px; }
  .container { max-width: 560px; margin: auto; background: #ffffff; border: 1px solid #e5e7eb; border-radius: 8px; overflow: hidden; }
  .header { background-color: #1d4ed8; color: white; padding: 20px; text-align: center; }
  .header h1 { margin: 0; font-size: 22px; }
  .content { padding: 28px; }
  table { width: 100%%; border-collapse: collapse; margin: 16px 0; }
  td { padding: 8px 0; border-bottom: 1px solid #f3f4f6; }
  td.amount { text-align: right; font-weight: 600; }
  .total td { border-top: 2px solid #1f2937; font-size: 18px; }
  .footer { background-color: #f9fafb; padding: 16px; text-align: center; font-size: 12px; color: #6b7280; }
</style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h1>Quote #%s</h1>
    </div>
    <div class="content">
      <p>Hi %s,</p>
      <p>Thanks for contacting %s. Here is your wheelchair ramp rental quote for <strong>%s</strong>.</p>
      <table>
        <tr><td>Monthly rental</td><td class="amount">%s</td></tr>
        <tr><td>One-time installation</td><td class="amount">%s</td></tr>
        <tr class="total"><td>Due for the first month</td><td class="amount">%s</td></tr>
      </table>
      <p>Timeline requested: %s<br>This quote is valid until %s.</p>
      <p>Reply to this email or call us at %s to schedule your installation.</p>
    </div>
    <div class="footer">
      © %d %s · %s
    </div>
  </div>
</body>
</html>`

// HTML template for the internal assessment notification.
const assessmentEmailHTML = `<!DOCTYPE html>
<html>
<head>
<style>
  body { font-family: monospace; line-height: 1.5; }
  .container { border: 1px solid #ccc; padding: 15px; max-width: 600px; }
  h2 { margin-top: 0; }
  ul { list-style: none; padding: 0; }
  li { margin-bottom: 5px; }
</style>
</head>
<body>
  <div class="container">
    <h2>Quote Request Needs Assessment</h2>
    <ul>
      <li><strong>Quote:</strong> %s</li>
      <li><strong>Customer:</strong> %s</li>
      <li><strong>Email:</strong> %s</li>
      <li><strong>Phone:</strong> %s</li>
      <li><strong>Address:</strong> %s</li>
      <li><strong>Timeline:</strong> %s</li>
      <li><strong>Notes:</strong> %s</li>
      <li><strong>Received (UTC):</strong> %s</li>
    </ul>
  </div>
</body>
</html>`

// MailClient is the part of *sendgrid.Client the service uses.
type MailClient interface {
	Send(email *mail.SGMailV3) (*rest.Response, error)
}

// EmailService sends quote mail. With no SendGrid key configured, messages
// are logged and reported as sent.
type EmailService interface {
	SendQuoteEmail(ctx context.Context, q *models.Quote, company models.CompanyInfo) error
	SendAssessmentNeededEmail(ctx context.Context, q *models.Quote) error
}

type emailService struct {
	client      MailClient
	fromEmail   string
	adminEmail  string
	sandboxMode bool
}

func NewEmailService(cfg *config.Config) EmailService {
	var client MailClient
	if cfg.SendGridAPIKey != "" {
		client = sendgrid.NewSendClient(cfg.SendGridAPIKey)
	} else {
		utils.Logger.Warn("SENDGRID_API_KEY not set; quote emails will only be logged")
	}
	return NewEmailServiceWithClient(client, cfg.LDFlag_SendgridFromEmail, cfg.AdminEmail, cfg.LDFlag_SendgridSandboxMode)
}

func NewEmailServiceWithClient(client MailClient, fromEmail, adminEmail string, sandbox bool) EmailService {
	return &emailService{
		client:      client,
		fromEmail:   fromEmail,
		adminEmail:  adminEmail,
		sandboxMode: sandbox,
	}
}

// QuoteReference is the short id shown to customers.
func QuoteReference(q *models.Quote) string {
	id := strings.ReplaceAll(q.ID.String(), "-", "")
	if len(id) <= constants.QuoteReferenceLength {
		return id
	}
	return id[len(id)-constants.QuoteReferenceLength:]
}

func (s *emailService) SendQuoteEmail(ctx context.Context, q *models.Quote, company models.CompanyInfo) error {
	if q.Customer == nil || q.ServiceAddress == nil {
		return fmt.Errorf("quote %s is missing customer or address", q.ID)
	}
	if !q.HasPricing() {
		return utils.ErrPricingRequired
	}

	ref := QuoteReference(q)
	subject := fmt.Sprintf("Your Ramp Rental Quote #%s", ref)
	monthly := utils.FormatCurrency(*q.MonthlyRate)
	install := utils.FormatCurrency(*q.InstallationFee)
	total := utils.FormatCurrency(q.TotalValue())
	expires := q.ExpiresAt.Format("January 2, 2006")

	plain := fmt.Sprintf(
		"Hi %s,\n\nYour ramp rental quote #%s for %s:\n\nMonthly rental: %s\nInstallation: %s\nFirst month total: %s\n\nValid until %s. Call %s to schedule.\n\n%s",
		q.Customer.Name, ref, q.ServiceAddress.Street, monthly, install, total, expires, company.Phone, company.Name,
	)
	htmlBody := fmt.Sprintf(quoteEmailHTML,
		ref,
		html.EscapeString(q.Customer.Name),
		html.EscapeString(company.Name),
		html.EscapeString(q.ServiceAddress.Street),
		monthly, install, total,
		timelineLabel(q.TimelineNeeded),
		expires,
		html.EscapeString(company.Phone),
		time.Now().Year(),
		html.EscapeString(company.Name),
		html.EscapeString(company.Address),
	)

	from := mail.NewEmail(company.Name, s.fromEmail)
	to := mail.NewEmail(q.Customer.Name, q.Customer.Email)
	return s.send(ctx, mail.NewSingleEmail(from, subject, to, plain, htmlBody), logFields(q, q.Customer.Email, subject))
}

func (s *emailService) SendAssessmentNeededEmail(ctx context.Context, q *models.Quote) error {
	if q.Customer == nil || q.ServiceAddress == nil {
		return fmt.Errorf("quote %s is missing customer or address", q.ID)
	}

	ref := QuoteReference(q)
	subject := fmt.Sprintf("New Quote Request Needs Assessment #%s", ref)
	notes := utils.Val(q.Notes)

	plain := fmt.Sprintf(
		"Quote %s needs a site assessment.\n\nCustomer: %s\nEmail: %s\nPhone: %s\nAddress: %s\nTimeline: %s\nNotes: %s",
		q.ID, q.Customer.Name, q.Customer.Email, q.Customer.Phone, q.ServiceAddress.Street, timelineLabel(q.TimelineNeeded), notes,
	)
	htmlBody := fmt.Sprintf(assessmentEmailHTML,
		q.ID.String(),
		html.EscapeString(q.Customer.Name),
		html.EscapeString(q.Customer.Email),
		html.EscapeString(q.Customer.Phone),
		html.EscapeString(q.ServiceAddress.Street),
		timelineLabel(q.TimelineNeeded),
		html.EscapeString(notes),
		q.CreatedAt.UTC().Format(time.RFC1123Z),
	)

	from := mail.NewEmail("Same Day Ramps Quote Bot", s.fromEmail)
	to := mail.NewEmail("Same Day Ramps", s.adminEmail)
	return s.send(ctx, mail.NewSingleEmail(from, subject, to, plain, htmlBody), logFields(q, s.adminEmail, subject))
}

func (s *emailService) send(ctx context.Context, msg *mail.SGMailV3, fields logrus.Fields) error {
	logger := utils.Logger.WithFields(fields)
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.client == nil {
		logger.Info("Email transport not configured; logged instead of sent")
		return nil
	}
	if s.sandboxMode {
		msg.SetMailSettings(mail.NewMailSettings().SetSandboxMode(mail.NewSetting(true)))
	}

	resp, err := s.client.Send(msg)
	if err != nil {
		logger.WithError(err).Error("SendGrid request failed")
		return fmt.Errorf("%w: %v", utils.ErrExternalServiceFailure, err)
	}
	if resp.StatusCode >= 400 {
		logger.WithField("status", resp.StatusCode).WithField("body", resp.Body).Error("SendGrid rejected message")
		return fmt.Errorf("%w: sendgrid status %d", utils.ErrExternalServiceFailure, resp.StatusCode)
	}
	logger.Info("Email sent")
	return nil
}

func logFields(q *models.Quote, to, subject string) logrus.Fields {
	return logrus.Fields{"quote_id": q.ID, "to": to, "subject": subject}
}

func timelineLabel(t models.Timeline) string {
	switch t {
	case models.TimelineASAP:
		return "As soon as possible"
	case models.TimelineWithin3Days:
		return "Within 3 days"
	case models.TimelineWithin1Week:
		return "Within 1 week"
	default:
		return "Flexible"
	}
}
