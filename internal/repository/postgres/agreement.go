package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ev-rental-ledger/internal/domain"
	"ev-rental-ledger/internal/logger"
	"ev-rental-ledger/internal/repository"
)

const agreementColumns = `receipt_number, rental_date_time, vin_number, car_insurance_number, return_date_time, 
	rental_company_name, user_retailer_name, company_location, cost_per_day, additional_costs, closed`

type agreementRepository struct {
	db        dbtx
	forUpdate bool
}

func NewAgreementRepository(db *sql.DB) repository.AgreementRepository {
	return &agreementRepository{db: db}
}

func (r *agreementRepository) Insert(ctx context.Context, a *domain.RentalAgreement) error {
	query := `INSERT INTO rental_agreements (` + agreementColumns + `, created_on, updated_on) 
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW()) 
	          ON CONFLICT (receipt_number) DO NOTHING`
	logger.DatabaseCall("InsertAgreement", query, "receipt_number", a.ReceiptNumber)

	res, err := r.db.ExecContext(ctx, query,
		int64(a.ReceiptNumber), a.RentalDateTime, a.VINNumber, a.CarInsuranceNumber, a.ReturnDateTime,
		a.RentalCompanyName, a.UserRetailerName, a.CompanyLocation, a.CostPerDay, a.AdditionalCosts, a.Closed)
	if err != nil {
		logger.DatabaseResult("InsertAgreement", 0, err)
		return fmt.Errorf("insert agreement %d: %w", a.ReceiptNumber, err)
	}
	n, err := res.RowsAffected()
	logger.DatabaseResult("InsertAgreement", n, err)
	if err != nil {
		return fmt.Errorf("insert agreement %d: %w", a.ReceiptNumber, err)
	}
	if n == 0 {
		return fmt.Errorf("receipt %d: %w", a.ReceiptNumber, domain.ErrAlreadyExists)
	}
	return nil
}

func (r *agreementRepository) Get(ctx context.Context, receiptNumber uint64) (*domain.RentalAgreement, error) {
	query := `SELECT ` + agreementColumns + ` FROM rental_agreements WHERE receipt_number = $1`
	if r.forUpdate {
		query += ` FOR UPDATE`
	}
	logger.DatabaseCall("GetAgreement", query, "receipt_number", receiptNumber)

	a, err := scanAgreement(r.db.QueryRowContext(ctx, query, int64(receiptNumber)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("receipt %d: %w", receiptNumber, domain.ErrNotFound)
	}
	if err != nil {
		logger.DatabaseResult("GetAgreement", 0, err)
		return nil, fmt.Errorf("get agreement %d: %w", receiptNumber, err)
	}
	return a, nil
}

func (r *agreementRepository) Update(ctx context.Context, a *domain.RentalAgreement) error {
	query := `UPDATE rental_agreements SET rental_date_time=$1, vin_number=$2, car_insurance_number=$3, return_date_time=$4, 
	          rental_company_name=$5, user_retailer_name=$6, company_location=$7, cost_per_day=$8, additional_costs=$9, closed=$10, 
	          updated_on=NOW() WHERE receipt_number=$11`
	logger.DatabaseCall("UpdateAgreement", query, "receipt_number", a.ReceiptNumber)

	res, err := r.db.ExecContext(ctx, query,
		a.RentalDateTime, a.VINNumber, a.CarInsuranceNumber, a.ReturnDateTime,
		a.RentalCompanyName, a.UserRetailerName, a.CompanyLocation, a.CostPerDay, a.AdditionalCosts, a.Closed,
		int64(a.ReceiptNumber))
	if err != nil {
		logger.DatabaseResult("UpdateAgreement", 0, err)
		return fmt.Errorf("update agreement %d: %w", a.ReceiptNumber, err)
	}
	n, err := res.RowsAffected()
	logger.DatabaseResult("UpdateAgreement", n, err)
	if err != nil {
		return fmt.Errorf("update agreement %d: %w", a.ReceiptNumber, err)
	}
	if n == 0 {
		return fmt.Errorf("receipt %d: %w", a.ReceiptNumber, domain.ErrNotFound)
	}
	return nil
}

func (r *agreementRepository) ListOpenDueBefore(ctx context.Context, asOf int64) ([]domain.RentalAgreement, error) {
	query := `SELECT ` + agreementColumns + ` FROM rental_agreements 
	          WHERE closed = FALSE AND return_date_time < $1 ORDER BY receipt_number`
	logger.DatabaseCall("ListOpenDueBefore", query, "as_of", asOf)

	rows, err := r.db.QueryContext(ctx, query, asOf)
	if err != nil {
		logger.DatabaseResult("ListOpenDueBefore", 0, err)
		return nil, fmt.Errorf("list overdue agreements: %w", err)
	}
	defer rows.Close()

	var agreements []domain.RentalAgreement
	for rows.Next() {
		a, err := scanAgreement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan overdue agreement: %w", err)
		}
		agreements = append(agreements, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate overdue agreements: %w", err)
	}
	logger.DatabaseResult("ListOpenDueBefore", int64(len(agreements)), nil)
	return agreements, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAgreement(row rowScanner) (*domain.RentalAgreement, error) {
	a := &domain.RentalAgreement{}
	err := row.Scan(&a.ReceiptNumber, &a.RentalDateTime, &a.VINNumber, &a.CarInsuranceNumber, &a.ReturnDateTime,
		&a.RentalCompanyName, &a.UserRetailerName, &a.CompanyLocation, &a.CostPerDay, &a.AdditionalCosts, &a.Closed)
	if err != nil {
		return nil, err
	}
	return a, nil
}
