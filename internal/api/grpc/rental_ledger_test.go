package grpc

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/known/structpb"

	"ev-rental-ledger/internal/api/grpc/interceptor"
	"ev-rental-ledger/internal/notification"
	"ev-rental-ledger/internal/repository/memory"
	"ev-rental-ledger/internal/service"
)

func newTestClient(t *testing.T) *RentalLedgerClient {
	t.Helper()
	lis := bufconn.Listen(1024 * 1024)

	svc := service.NewRentalLedgerService(memory.New(), notification.NewLogNotifier(), nil)
	s := grpc.NewServer(grpc.UnaryInterceptor(interceptor.NewRequestInterceptor().Unary()))
	RegisterRentalLedgerServer(s, NewRentalLedgerHandler(svc))
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return NewRentalLedgerClient(conn)
}

func mustStruct(t *testing.T, m map[string]any) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(m)
	require.NoError(t, err)
	return s
}

func createRequest(t *testing.T) *structpb.Struct {
	return mustStruct(t, map[string]any{
		"receipt_number":       "1",
		"rental_date_time":     1700000000,
		"vin_number":           "1ABC234DEF567GHI89",
		"car_insurance_number": "INS12345",
		"return_date_time":     1700172800,
		"rental_company_name":  "XYZ Car Rentals",
		"user_retailer_name":   "John Doe",
		"company_location":     "City, State, Country",
		"cost_per_day":         "100000000000000000",
	})
}

func returnRequest(t *testing.T, receipt string) *structpb.Struct {
	return mustStruct(t, map[string]any{
		"receipt_number":       receipt,
		"return_date_time":     1700200001,
		"battery_life":         80,
		"battery_level":        60,
		"usable_battery_level": 50,
		"battery_range":        150,
	})
}

func TestRentalLedgerHandler_Lifecycle(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	var header metadata.MD
	created, err := client.CreateRentalAgreement(ctx, createRequest(t), grpc.Header(&header))
	require.NoError(t, err)
	assert.Equal(t, "OPEN", created.Fields["status"].GetStringValue())
	assert.Equal(t, "0", created.Fields["additional_costs"].GetStringValue())
	assert.NotEmpty(t, header.Get(interceptor.RequestIDHeader))

	_, err = client.CreateRentalAgreement(ctx, createRequest(t))
	assert.Equal(t, codes.AlreadyExists, status.Code(err))

	returned, err := client.ReturnEVCar(ctx, mustStruct(t, map[string]any{
		"receipt_number":       1,
		"return_date_time":     1700200000,
		"additional_costs":     "50000000000000000",
		"battery_life":         80,
		"battery_level":        60,
		"usable_battery_level": 50,
		"battery_range":        150,
	}))
	require.NoError(t, err)
	assert.True(t, returned.Fields["closed"].GetBoolValue())

	got, err := client.GetRentalAgreement(ctx, mustStruct(t, map[string]any{"receipt_number": "1"}))
	require.NoError(t, err)
	assert.Equal(t, float64(1700200000), got.Fields["return_date_time"].GetNumberValue())
	assert.Equal(t, "100000000000000000", got.Fields["cost_per_day"].GetStringValue())
	assert.Equal(t, "50000000000000000", got.Fields["additional_costs"].GetStringValue())

	st, err := client.GetEVCarState(ctx, mustStruct(t, map[string]any{"vin_number": "1ABC234DEF567GHI89"}))
	require.NoError(t, err)
	assert.Equal(t, float64(60), st.Fields["battery_level"].GetNumberValue())

	_, err = client.ReturnEVCar(ctx, returnRequest(t, "1"))
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))
}

func TestRentalLedgerHandler_UpdateEVCarState(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	for _, level := range []float64{60, 35} {
		_, err := client.UpdateEVCarState(ctx, mustStruct(t, map[string]any{
			"vin_number":           "VIN1",
			"battery_life":         90,
			"battery_level":        level,
			"usable_battery_level": 30,
			"battery_range":        100,
		}))
		require.NoError(t, err)
	}

	st, err := client.GetEVCarState(ctx, mustStruct(t, map[string]any{"vin_number": "VIN1"}))
	require.NoError(t, err)
	assert.Equal(t, float64(35), st.Fields["battery_level"].GetNumberValue())
}

func TestRentalLedgerHandler_Errors(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	_, err := client.GetRentalAgreement(ctx, mustStruct(t, map[string]any{"receipt_number": "99"}))
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = client.GetEVCarState(ctx, mustStruct(t, map[string]any{"vin_number": "UNKNOWN"}))
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = client.ReturnEVCar(ctx, returnRequest(t, "5"))
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = client.GetRentalAgreement(ctx, mustStruct(t, map[string]any{"receipt_number": "abc"}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = client.GetRentalAgreement(ctx, mustStruct(t, map[string]any{"receipt_number": 1.5}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = client.UpdateEVCarState(ctx, mustStruct(t, map[string]any{"vin_number": "VIN1", "battery_level": 150}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = client.GetEVCarState(ctx, mustStruct(t, map[string]any{"vin_number": 12}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestRentalLedgerHandler_RequiredFields(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	_, err := client.CreateRentalAgreement(ctx, createRequest(t))
	require.NoError(t, err)

	t.Run("ReturnWithoutTelemetry", func(t *testing.T) {
		_, err := client.ReturnEVCar(ctx, mustStruct(t, map[string]any{
			"receipt_number":   "1",
			"return_date_time": 1700200000,
		}))
		assert.Equal(t, codes.InvalidArgument, status.Code(err))
		assert.Contains(t, status.Convert(err).Message(), "battery_life")
	})

	t.Run("ReturnWithoutReturnTime", func(t *testing.T) {
		req := returnRequest(t, "1")
		delete(req.Fields, "return_date_time")
		_, err := client.ReturnEVCar(ctx, req)
		assert.Equal(t, codes.InvalidArgument, status.Code(err))
	})

	t.Run("ReturnWithNullField", func(t *testing.T) {
		req := returnRequest(t, "1")
		req.Fields["battery_range"] = structpb.NewNullValue()
		_, err := client.ReturnEVCar(ctx, req)
		assert.Equal(t, codes.InvalidArgument, status.Code(err))
	})

	t.Run("UpdateStateWithoutAllFields", func(t *testing.T) {
		_, err := client.UpdateEVCarState(ctx, mustStruct(t, map[string]any{"vin_number": "VIN1", "battery_level": 40}))
		assert.Equal(t, codes.InvalidArgument, status.Code(err))
	})

	// Rejected returns leave the agreement open.
	got, err := client.GetRentalAgreement(ctx, mustStruct(t, map[string]any{"receipt_number": "1"}))
	require.NoError(t, err)
	assert.Equal(t, "OPEN", got.Fields["status"].GetStringValue())

	_, err = client.ReturnEVCar(ctx, returnRequest(t, "1"))
	assert.NoError(t, err)
}

func TestToStatus_HidesInternalErrors(t *testing.T) {
	err := toStatus(assert.AnError)
	assert.Equal(t, codes.Internal, status.Code(err))
	assert.NotContains(t, err.Error(), assert.AnError.Error())
	assert.Nil(t, toStatus(nil))
}

func TestRentalLedgerServiceDesc_Registration(t *testing.T) {
	s := grpc.NewServer()
	svc := service.NewRentalLedgerService(memory.New(), nil, nil)
	RegisterRentalLedgerServer(s, NewRentalLedgerHandler(svc))

	info, ok := s.GetServiceInfo()[RentalLedgerServiceName]
	require.True(t, ok)
	assert.Len(t, info.Methods, 5)

	// The descriptor has no compiled .proto, which is why reflection stays off.
	_, err := protoregistry.GlobalFiles.FindFileByPath(info.Metadata.(string))
	assert.ErrorIs(t, err, protoregistry.NotFound)
}
