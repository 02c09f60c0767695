package appointment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgRepo struct{ pool *pgxpool.Pool }

func NewPGRepo(pool *pgxpool.Pool) Repository { return &pgRepo{pool: pool} }

const apptCols = `id, patient_id, provider_id, type, status, scheduled_date, duration, location,
	chief_complaint, notes, diagnosis, treatment, follow_up_required, follow_up_date, created_at, updated_at`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.PatientID, &a.ProviderID, &a.Type, &a.Status, &a.ScheduledDate,
		&a.Duration, &a.Location, &a.ChiefComplaint, &a.Notes, &a.Diagnosis, &a.Treatment,
		&a.FollowUpRequired, &a.FollowUpDate, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &a, err
}

func (r *pgRepo) Create(ctx context.Context, a *Appointment) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO appointments (id, patient_id, provider_id, type, status, scheduled_date, duration,
			location, chief_complaint, notes, diagnosis, treatment, follow_up_required, follow_up_date,
			created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`,
		a.ID, a.PatientID, a.ProviderID, a.Type, a.Status, a.ScheduledDate, a.Duration,
		a.Location, a.ChiefComplaint, a.Notes, a.Diagnosis, a.Treatment, a.FollowUpRequired,
		a.FollowUpDate, a.CreatedAt, a.UpdatedAt)
	return err
}

func (r *pgRepo) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return scanAppointment(r.pool.QueryRow(ctx, `SELECT `+apptCols+` FROM appointments WHERE id = $1`, id))
}

func (r *pgRepo) Update(ctx context.Context, a *Appointment) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE appointments SET status=$2, scheduled_date=$3, duration=$4, location=$5,
			chief_complaint=$6, notes=$7, diagnosis=$8, treatment=$9, follow_up_required=$10,
			follow_up_date=$11, updated_at=$12
		WHERE id = $1`,
		a.ID, a.Status, a.ScheduledDate, a.Duration, a.Location, a.ChiefComplaint,
		a.Notes, a.Diagnosis, a.Treatment, a.FollowUpRequired, a.FollowUpDate, a.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgRepo) List(ctx context.Context, limit, offset int) ([]*Appointment, int, error) {
	return r.list(ctx, ``, nil, limit, offset)
}

func (r *pgRepo) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return r.list(ctx, `WHERE patient_id = $1`, []interface{}{patientID}, limit, offset)
}

func (r *pgRepo) ListByProvider(ctx context.Context, providerID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return r.list(ctx, `WHERE provider_id = $1`, []interface{}{providerID}, limit, offset)
}

func (r *pgRepo) list(ctx context.Context, where string, args []interface{}, limit, offset int) ([]*Appointment, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM appointments `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	idx := len(args) + 1
	query := fmt.Sprintf(`SELECT %s FROM appointments %s ORDER BY scheduled_date DESC LIMIT $%d OFFSET $%d`,
		apptCols, where, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	return items, total, rows.Err()
}
