package notification

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"ev-rental-ledger/internal/domain"
	"ev-rental-ledger/internal/logger"
	"ev-rental-ledger/internal/utils"
)

// mailClient is the subset of *sendgrid.Client used here.
type mailClient interface {
	Send(email *mail.SGMailV3) (*rest.Response, error)
}

// SendGridNotifier e-mails the operator mailbox through SendGrid.
type SendGridNotifier struct {
	client    mailClient
	fromEmail string
	fromName  string
	operator  string
}

func NewSendGridNotifier(apiKey, fromEmail, fromName, operatorEmail string) *SendGridNotifier {
	return newSendGridNotifier(sendgrid.NewSendClient(apiKey), fromEmail, fromName, operatorEmail)
}

func newSendGridNotifier(client mailClient, fromEmail, fromName, operatorEmail string) *SendGridNotifier {
	return &SendGridNotifier{
		client:    client,
		fromEmail: fromEmail,
		fromName:  fromName,
		operator:  operatorEmail,
	}
}

func (n *SendGridNotifier) RentalReturned(ctx context.Context, a *domain.RentalAgreement, st *domain.EVCarState) error {
	subject := fmt.Sprintf("Rental %d returned", a.ReceiptNumber)
	body := fmt.Sprintf(
		"Receipt: %d\nVIN: %s\nCompany: %s (%s)\nCustomer: %s\nReturned at: %s\nCost per day: %s\nAdditional costs: %s\n\n"+
			"Battery life: %d%%\nBattery level: %d%%\nUsable battery level: %d%%\nRange: %d\n",
		a.ReceiptNumber, a.VINNumber, a.RentalCompanyName, a.CompanyLocation, a.UserRetailerName,
		formatUnix(a.ReturnDateTime), a.CostPerDay, a.AdditionalCosts,
		st.BatteryLife, st.BatteryLevel, st.UsableBatteryLevel, st.BatteryRange,
	)
	body += "\n" + chargeSummary(a)
	return n.send(ctx, "RentalReturned", subject, body)
}

func (n *SendGridNotifier) OverdueRentals(ctx context.Context, asOf int64, agreements []domain.RentalAgreement) error {
	if len(agreements) == 0 {
		return nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d rental(s) overdue as of %s:\n\n", len(agreements), formatUnix(asOf))
	for _, a := range agreements {
		fmt.Fprintf(&b, "- receipt %d, VIN %s, %s, due %s\n", a.ReceiptNumber, a.VINNumber, a.UserRetailerName, formatUnix(a.ReturnDateTime))
	}
	subject := fmt.Sprintf("%d overdue rental(s)", len(agreements))
	return n.send(ctx, "OverdueRentals", subject, b.String())
}

func (n *SendGridNotifier) send(ctx context.Context, operation, subject, plainText string) error {
	from := mail.NewEmail(n.fromName, n.fromEmail)
	to := mail.NewEmail("Rental operator", n.operator)
	message := mail.NewSingleEmail(from, subject, to, plainText, "")

	logger.ExternalServiceCall("sendgrid", operation, "subject", subject)
	response, err := n.client.Send(message)
	if err == nil && response.StatusCode >= 400 {
		err = fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	logger.ExternalServiceResult("sendgrid", operation, err)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func chargeSummary(a *domain.RentalAgreement) string {
	charge, err := utils.CalculateRentalCharge(a)
	if err != nil {
		return fmt.Sprintf("Charge: unavailable (%v)\n", err)
	}
	return fmt.Sprintf("Billable days: %d\nDays cost: %s\nTotal charge: %s\n", charge.Days, charge.DaysCost, charge.Total)
}

func formatUnix(sec int64) string {
	return time.Unix(sec, 0).UTC().Format(time.RFC3339)
}
