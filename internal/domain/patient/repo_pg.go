package patient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// pgRepo persists patients with the nested documents stored as jsonb.
type pgRepo struct{ pool *pgxpool.Pool }

func NewPGRepo(pool *pgxpool.Pool) Repository { return &pgRepo{pool: pool} }

const patientCols = `id, personal_info, medical_history, current_medications, created_at, updated_at`

func scanPatient(row pgx.Row) (*Patient, error) {
	var (
		p          Patient
		info, hist []byte
		meds       []byte
	)
	if err := row.Scan(&p.ID, &info, &hist, &meds, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(info, &p.PersonalInfo); err != nil {
		return nil, fmt.Errorf("decode personal_info: %w", err)
	}
	if err := json.Unmarshal(hist, &p.MedicalHistory); err != nil {
		return nil, fmt.Errorf("decode medical_history: %w", err)
	}
	if err := json.Unmarshal(meds, &p.CurrentMedications); err != nil {
		return nil, fmt.Errorf("decode current_medications: %w", err)
	}
	return &p, nil
}

func patientDocs(p *Patient) (info, hist, meds []byte, err error) {
	if info, err = json.Marshal(p.PersonalInfo); err != nil {
		return
	}
	if hist, err = json.Marshal(p.MedicalHistory); err != nil {
		return
	}
	if p.CurrentMedications == nil {
		meds = []byte("[]")
		return
	}
	meds, err = json.Marshal(p.CurrentMedications)
	return
}

func (r *pgRepo) Create(ctx context.Context, p *Patient) error {
	info, hist, meds, err := patientDocs(p)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO patients (id, personal_info, medical_history, current_medications, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		p.ID, info, hist, meds, p.CreatedAt, p.UpdatedAt)
	return err
}

func (r *pgRepo) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return scanPatient(r.pool.QueryRow(ctx, `SELECT `+patientCols+` FROM patients WHERE id = $1`, id))
}

func (r *pgRepo) Update(ctx context.Context, p *Patient) error {
	info, hist, meds, err := patientDocs(p)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, `
		UPDATE patients SET personal_info=$2, medical_history=$3, current_medications=$4, updated_at=$5
		WHERE id = $1`,
		p.ID, info, hist, meds, p.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgRepo) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM patients`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+patientCols+` FROM patients ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}
