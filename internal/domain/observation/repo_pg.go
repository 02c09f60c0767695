package observation

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgRepo struct{ pool *pgxpool.Pool }

func NewPGRepo(pool *pgxpool.Pool) Repository { return &pgRepo{pool: pool} }

func limitClause(limit int) string {
	if limit > 0 {
		return fmt.Sprintf(" LIMIT %d", limit)
	}
	return ""
}

func (r *pgRepo) AddVitalSign(ctx context.Context, v *VitalSignRecord) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO vital_signs (id, patient_id, timestamp, heart_rate, systolic, diastolic,
			temperature, respiratory_rate, oxygen_saturation, weight, height, bmi, recorded_by, location)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		v.ID, v.PatientID, v.Timestamp, v.HeartRate, v.BloodPressure.Systolic, v.BloodPressure.Diastolic,
		v.Temperature, v.RespiratoryRate, v.OxygenSaturation, v.Weight, v.Height, v.BMI, v.RecordedBy, v.Location)
	return err
}

func (r *pgRepo) ListVitalSigns(ctx context.Context, patientID uuid.UUID, limit int) ([]*VitalSignRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, patient_id, timestamp, heart_rate, systolic, diastolic, temperature,
			respiratory_rate, oxygen_saturation, weight, height, bmi, recorded_by, location
		FROM vital_signs WHERE patient_id = $1 ORDER BY timestamp DESC`+limitClause(limit), patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*VitalSignRecord
	for rows.Next() {
		var v VitalSignRecord
		if err := rows.Scan(&v.ID, &v.PatientID, &v.Timestamp, &v.HeartRate,
			&v.BloodPressure.Systolic, &v.BloodPressure.Diastolic, &v.Temperature,
			&v.RespiratoryRate, &v.OxygenSaturation, &v.Weight, &v.Height, &v.BMI,
			&v.RecordedBy, &v.Location); err != nil {
			return nil, err
		}
		items = append(items, &v)
	}
	return items, rows.Err()
}

func (r *pgRepo) AddLabResult(ctx context.Context, l *LabResult) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO lab_results (id, patient_id, test_name, test_code, value, unit, reference_range,
			status, ordered_by, performed_by, order_date, result_date, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		l.ID, l.PatientID, l.TestName, l.TestCode, l.Value, l.Unit, l.ReferenceRange,
		l.Status, l.OrderedBy, l.PerformedBy, l.OrderDate, l.ResultDate, l.Notes)
	return err
}

func (r *pgRepo) ListLabResults(ctx context.Context, patientID uuid.UUID, limit int) ([]*LabResult, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, patient_id, test_name, test_code, value, unit, reference_range, status,
			ordered_by, performed_by, order_date, result_date, notes
		FROM lab_results WHERE patient_id = $1 ORDER BY result_date DESC`+limitClause(limit), patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*LabResult
	for rows.Next() {
		var l LabResult
		if err := rows.Scan(&l.ID, &l.PatientID, &l.TestName, &l.TestCode, &l.Value, &l.Unit,
			&l.ReferenceRange, &l.Status, &l.OrderedBy, &l.PerformedBy, &l.OrderDate,
			&l.ResultDate, &l.Notes); err != nil {
			return nil, err
		}
		items = append(items, &l)
	}
	return items, rows.Err()
}

func (r *pgRepo) AddHealthScan(ctx context.Context, s *HealthScan) error {
	results, err := json.Marshal(s.Results)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO health_scans (id, patient_id, scan_type, timestamp, results, ai_confidence, reviewed_by, review_date)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		s.ID, s.PatientID, s.ScanType, s.Timestamp, results, s.AIConfidence, s.ReviewedBy, s.ReviewDate)
	return err
}

func (r *pgRepo) ListHealthScans(ctx context.Context, patientID uuid.UUID, limit int) ([]*HealthScan, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, patient_id, scan_type, timestamp, results, ai_confidence, reviewed_by, review_date
		FROM health_scans WHERE patient_id = $1 ORDER BY timestamp DESC`+limitClause(limit), patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*HealthScan
	for rows.Next() {
		var (
			s       HealthScan
			results []byte
		)
		if err := rows.Scan(&s.ID, &s.PatientID, &s.ScanType, &s.Timestamp, &results,
			&s.AIConfidence, &s.ReviewedBy, &s.ReviewDate); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(results, &s.Results); err != nil {
			return nil, fmt.Errorf("decode scan results: %w", err)
		}
		items = append(items, &s)
	}
	return items, rows.Err()
}
