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

type evStateRepository struct {
	db dbtx
}

func NewEVStateRepository(db *sql.DB) repository.EVStateRepository {
	return &evStateRepository{db: db}
}

func (r *evStateRepository) Upsert(ctx context.Context, st *domain.EVCarState) error {
	query := `INSERT INTO ev_car_states (vin_number, battery_life, battery_level, usable_battery_level, battery_range, updated_on) 
	          VALUES ($1, $2, $3, $4, $5, NOW()) 
	          ON CONFLICT (vin_number) DO UPDATE SET battery_life = EXCLUDED.battery_life, battery_level = EXCLUDED.battery_level, 
	          usable_battery_level = EXCLUDED.usable_battery_level, battery_range = EXCLUDED.battery_range, updated_on = EXCLUDED.updated_on`
	logger.DatabaseCall("UpsertEVState", query, "vin_number", st.VINNumber)

	res, err := r.db.ExecContext(ctx, query, st.VINNumber,
		int64(st.BatteryLife), int64(st.BatteryLevel), int64(st.UsableBatteryLevel), int64(st.BatteryRange))
	if err != nil {
		logger.DatabaseResult("UpsertEVState", 0, err)
		return fmt.Errorf("upsert ev state %q: %w", st.VINNumber, err)
	}
	n, err := res.RowsAffected()
	logger.DatabaseResult("UpsertEVState", n, err)
	if err != nil {
		return fmt.Errorf("upsert ev state %q: %w", st.VINNumber, err)
	}
	return nil
}

func (r *evStateRepository) Get(ctx context.Context, vinNumber string) (*domain.EVCarState, error) {
	query := `SELECT vin_number, battery_life, battery_level, usable_battery_level, battery_range FROM ev_car_states WHERE vin_number = $1`
	logger.DatabaseCall("GetEVState", query, "vin_number", vinNumber)

	st := &domain.EVCarState{}
	err := r.db.QueryRowContext(ctx, query, vinNumber).Scan(&st.VINNumber, &st.BatteryLife, &st.BatteryLevel, &st.UsableBatteryLevel, &st.BatteryRange)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("vin %q: %w", vinNumber, domain.ErrNotFound)
	}
	if err != nil {
		logger.DatabaseResult("GetEVState", 0, err)
		return nil, fmt.Errorf("get ev state %q: %w", vinNumber, err)
	}
	return st, nil
}
