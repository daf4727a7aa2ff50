package notification

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ev-rental-ledger/internal/domain"
	"ev-rental-ledger/internal/logger"
)

type MockMailClient struct {
	mock.Mock
}

func (m *MockMailClient) Send(email *mail.SGMailV3) (*rest.Response, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rest.Response), args.Error(1)
}

func returned() (*domain.RentalAgreement, *domain.EVCarState) {
	a := &domain.RentalAgreement{
		ReceiptNumber:   1,
		VINNumber:       "1ABC234DEF567GHI89",
		RentalDateTime:  1700000000,
		ReturnDateTime:  1700172800,
		CostPerDay:      100,
		AdditionalCosts: 50000000000000000,
		Closed:          true,
	}
	st := &domain.EVCarState{
		VINNumber:    a.VINNumber,
		BatteryState: domain.BatteryState{BatteryLife: 80, BatteryLevel: 60, UsableBatteryLevel: 50, BatteryRange: 150},
	}
	return a, st
}

func TestSendGridNotifier_RentalReturned(t *testing.T) {
	client := new(MockMailClient)
	n := newSendGridNotifier(client, "ledger@example.com", "EV Rental Ledger", "ops@example.com")

	var sent *mail.SGMailV3
	client.On("Send", mock.AnythingOfType("*mail.SGMailV3")).
		Run(func(args mock.Arguments) { sent = args.Get(0).(*mail.SGMailV3) }).
		Return(&rest.Response{StatusCode: 202}, nil)

	a, st := returned()
	require.NoError(t, n.RentalReturned(context.Background(), a, st))

	require.NotNil(t, sent)
	assert.Equal(t, "Rental 1 returned", sent.Subject)
	assert.Equal(t, "ledger@example.com", sent.From.Address)
	require.Len(t, sent.Personalizations, 1)
	assert.Equal(t, "ops@example.com", sent.Personalizations[0].To[0].Address)
	assert.Contains(t, sent.Content[0].Value, "Additional costs: 50000000000000000")
	assert.Contains(t, sent.Content[0].Value, "Battery level: 60%")
	assert.Contains(t, sent.Content[0].Value, "Billable days: 3")
	assert.Contains(t, sent.Content[0].Value, "Total charge: 50000000000000300")
	client.AssertExpectations(t)
}

func TestSendGridNotifier_Errors(t *testing.T) {
	a, st := returned()

	t.Run("TransportError", func(t *testing.T) {
		client := new(MockMailClient)
		n := newSendGridNotifier(client, "a@example.com", "A", "ops@example.com")
		client.On("Send", mock.Anything).Return(nil, errors.New("dial tcp: timeout"))

		assert.Error(t, n.RentalReturned(context.Background(), a, st))
	})

	t.Run("HTTPError", func(t *testing.T) {
		client := new(MockMailClient)
		n := newSendGridNotifier(client, "a@example.com", "A", "ops@example.com")
		client.On("Send", mock.Anything).Return(&rest.Response{StatusCode: 401, Body: "unauthorized"}, nil)

		err := n.RentalReturned(context.Background(), a, st)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 401")
	})
}

func TestSendGridNotifier_OverdueRentals(t *testing.T) {
	client := new(MockMailClient)
	n := newSendGridNotifier(client, "a@example.com", "A", "ops@example.com")

	t.Run("NothingOverdue", func(t *testing.T) {
		assert.NoError(t, n.OverdueRentals(context.Background(), 0, nil))
		client.AssertNotCalled(t, "Send", mock.Anything)
	})

	t.Run("Digest", func(t *testing.T) {
		var sent *mail.SGMailV3
		client.On("Send", mock.Anything).
			Run(func(args mock.Arguments) { sent = args.Get(0).(*mail.SGMailV3) }).
			Return(&rest.Response{StatusCode: 202}, nil).Once()

		overdue := []domain.RentalAgreement{
			{ReceiptNumber: 3, VINNumber: "VIN3", ReturnDateTime: 0},
			{ReceiptNumber: 4, VINNumber: "VIN4", ReturnDateTime: 60},
		}
		require.NoError(t, n.OverdueRentals(context.Background(), 3600, overdue))
		assert.Equal(t, "2 overdue rental(s)", sent.Subject)
		assert.Contains(t, sent.Content[0].Value, "receipt 3, VIN VIN3")
		assert.Contains(t, sent.Content[0].Value, "due 1970-01-01T00:01:00Z")
	})
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	logger.InitializeWithWriter(&buf, "debug", "json")
	defer logger.Initialize("info", "text")

	n := NewLogNotifier()
	a, st := returned()
	assert.NoError(t, n.RentalReturned(context.Background(), a, st))
	assert.Contains(t, buf.String(), `"total_charge":"50000000000000300"`)

	buf.Reset()
	b := *a
	b.ReceiptNumber = 2
	assert.NoError(t, n.OverdueRentals(context.Background(), 10, []domain.RentalAgreement{*a, b}))
	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
	assert.Contains(t, buf.String(), `"receipt_numbers":[1,2]`)

	buf.Reset()
	assert.NoError(t, n.OverdueRentals(context.Background(), 10, nil))
	assert.Empty(t, buf.String())
}
