package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"ev-rental-ledger/internal/domain"
	"ev-rental-ledger/internal/logger"
	"ev-rental-ledger/internal/service"
)

// RentalLedgerHandler exposes the ledger as JSON over HTTP
type RentalLedgerHandler struct {
	ledgerSvc service.RentalLedgerService
}

func NewRentalLedgerHandler(ledgerSvc service.RentalLedgerService) *RentalLedgerHandler {
	return &RentalLedgerHandler{ledgerSvc: ledgerSvc}
}

type agreementResponse struct {
	ReceiptNumber      uint64       `json:"receipt_number,string"`
	RentalDateTime     int64        `json:"rental_date_time"`
	VINNumber          string       `json:"vin_number"`
	CarInsuranceNumber string       `json:"car_insurance_number"`
	ReturnDateTime     int64        `json:"return_date_time"`
	RentalCompanyName  string       `json:"rental_company_name"`
	UserRetailerName   string       `json:"user_retailer_name"`
	CompanyLocation    string       `json:"company_location"`
	CostPerDay         domain.Money `json:"cost_per_day,string"`
	AdditionalCosts    domain.Money `json:"additional_costs,string"`
	Closed             bool         `json:"closed"`
	Status             string       `json:"status"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// RegisterRoutes mounts the ledger endpoints on router
func (h *RentalLedgerHandler) RegisterRoutes(router *mux.Router) {
	v1 := router.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/agreements", h.HandleCreateAgreement).Methods(http.MethodPost)
	v1.HandleFunc("/agreements/{receipt:[0-9]+}", h.HandleGetAgreement).Methods(http.MethodGet)
	v1.HandleFunc("/agreements/{receipt:[0-9]+}/return", h.HandleReturnEVCar).Methods(http.MethodPost)
	v1.HandleFunc("/ev-states/{vin}", h.HandleUpdateEVState).Methods(http.MethodPut)
	v1.HandleFunc("/ev-states/{vin}", h.HandleGetEVState).Methods(http.MethodGet)
}

func (h *RentalLedgerHandler) HandleCreateAgreement(w http.ResponseWriter, r *http.Request) {
	var req createAgreementRequest
	if !decode(w, r, &req) {
		return
	}
	a, err := h.ledgerSvc.CreateRentalAgreement(r.Context(), service.CreateRentalAgreementInput{
		ReceiptNumber:      uint64(req.ReceiptNumber),
		RentalDateTime:     req.RentalDateTime,
		VINNumber:          req.VINNumber,
		CarInsuranceNumber: req.CarInsuranceNumber,
		ReturnDateTime:     req.ReturnDateTime,
		RentalCompanyName:  req.RentalCompanyName,
		UserRetailerName:   req.UserRetailerName,
		CompanyLocation:    req.CompanyLocation,
		CostPerDay:         domain.Money(req.CostPerDay),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAgreementResponse(a))
}

func (h *RentalLedgerHandler) HandleGetAgreement(w http.ResponseWriter, r *http.Request) {
	receipt, ok := receiptFromPath(w, r)
	if !ok {
		return
	}
	a, err := h.ledgerSvc.GetRentalAgreement(r.Context(), receipt)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAgreementResponse(a))
}

func (h *RentalLedgerHandler) HandleReturnEVCar(w http.ResponseWriter, r *http.Request) {
	receipt, ok := receiptFromPath(w, r)
	if !ok {
		return
	}
	var req returnRequest
	if !decode(w, r, &req) {
		return
	}
	if req.ReturnDateTime == nil {
		writeError(w, r, missingField("return_date_time"))
		return
	}
	battery, err := req.toDomain()
	if err != nil {
		writeError(w, r, err)
		return
	}
	a, err := h.ledgerSvc.ReturnEVCar(r.Context(), service.ReturnEVCarInput{
		ReceiptNumber:   receipt,
		ReturnDateTime:  *req.ReturnDateTime,
		AdditionalCosts: domain.Money(req.AdditionalCosts),
		Battery:         battery,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAgreementResponse(a))
}

func (h *RentalLedgerHandler) HandleUpdateEVState(w http.ResponseWriter, r *http.Request) {
	var req batteryRequest
	if !decode(w, r, &req) {
		return
	}
	battery, err := req.toDomain()
	if err != nil {
		writeError(w, r, err)
		return
	}
	st, err := h.ledgerSvc.UpdateEVCarState(r.Context(), mux.Vars(r)["vin"], battery)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *RentalLedgerHandler) HandleGetEVState(w http.ResponseWriter, r *http.Request) {
	st, err := h.ledgerSvc.GetEVCarState(r.Context(), mux.Vars(r)["vin"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func toAgreementResponse(a *domain.RentalAgreement) agreementResponse {
	return agreementResponse{
		ReceiptNumber:      a.ReceiptNumber,
		RentalDateTime:     a.RentalDateTime,
		VINNumber:          a.VINNumber,
		CarInsuranceNumber: a.CarInsuranceNumber,
		ReturnDateTime:     a.ReturnDateTime,
		RentalCompanyName:  a.RentalCompanyName,
		UserRetailerName:   a.UserRetailerName,
		CompanyLocation:    a.CompanyLocation,
		CostPerDay:         a.CostPerDay,
		AdditionalCosts:    a.AdditionalCosts,
		Closed:             a.Closed,
		Status:             string(a.Status()),
	}
}

func receiptFromPath(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	receipt, err := strconv.ParseUint(mux.Vars(r)["receipt"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid receipt number"})
		return 0, false
	}
	return receipt, true
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return false
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: unexpected data after JSON object"})
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := http.StatusInternalServerError
	msg := "internal error"
	switch {
	case errors.Is(err, domain.ErrNotFound):
		code, msg = http.StatusNotFound, err.Error()
	case errors.Is(err, domain.ErrAlreadyExists), errors.Is(err, domain.ErrAlreadyClosed):
		code, msg = http.StatusConflict, err.Error()
	case errors.Is(err, domain.ErrInvalidInput):
		code, msg = http.StatusBadRequest, err.Error()
	default:
		logger.ErrorContext(r.Context(), "Request failed", "path", r.URL.Path, "error", err)
	}
	writeJSON(w, code, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}
