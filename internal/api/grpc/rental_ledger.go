package grpc

import (
	"context"

	"google.golang.org/protobuf/types/known/structpb"

	"ev-rental-ledger/internal/service"
)

type RentalLedgerHandler struct {
	ledgerSvc service.RentalLedgerService
}

func NewRentalLedgerHandler(ledgerSvc service.RentalLedgerService) *RentalLedgerHandler {
	return &RentalLedgerHandler{ledgerSvc: ledgerSvc}
}

func (h *RentalLedgerHandler) CreateRentalAgreement(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	in, err := MapProtoToCreateInput(req)
	if err != nil {
		return nil, toStatus(err)
	}
	a, err := h.ledgerSvc.CreateRentalAgreement(ctx, in)
	if err != nil {
		return nil, toStatus(err)
	}
	return MapDomainAgreementToProto(a), nil
}

func (h *RentalLedgerHandler) ReturnEVCar(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	in, err := MapProtoToReturnInput(req)
	if err != nil {
		return nil, toStatus(err)
	}
	a, err := h.ledgerSvc.ReturnEVCar(ctx, in)
	if err != nil {
		return nil, toStatus(err)
	}
	return MapDomainAgreementToProto(a), nil
}

func (h *RentalLedgerHandler) UpdateEVCarState(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	vin, battery, err := MapProtoToBatteryState(req)
	if err != nil {
		return nil, toStatus(err)
	}
	st, err := h.ledgerSvc.UpdateEVCarState(ctx, vin, battery)
	if err != nil {
		return nil, toStatus(err)
	}
	return MapDomainEVStateToProto(st), nil
}

func (h *RentalLedgerHandler) GetRentalAgreement(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	receipt, err := MapProtoToReceiptNumber(req)
	if err != nil {
		return nil, toStatus(err)
	}
	a, err := h.ledgerSvc.GetRentalAgreement(ctx, receipt)
	if err != nil {
		return nil, toStatus(err)
	}
	return MapDomainAgreementToProto(a), nil
}

func (h *RentalLedgerHandler) GetEVCarState(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	vin, err := MapProtoToVINNumber(req)
	if err != nil {
		return nil, toStatus(err)
	}
	st, err := h.ledgerSvc.GetEVCarState(ctx, vin)
	if err != nil {
		return nil, toStatus(err)
	}
	return MapDomainEVStateToProto(st), nil
}
