package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgRepo struct{ pool *pgxpool.Pool }

func NewPGRepo(pool *pgxpool.Pool) Repository { return &pgRepo{pool: pool} }

const providerCols = `id, personal_info, credentials, availability, consultation, ratings, is_active, created_at, updated_at`

func scanProvider(row pgx.Row) (*Provider, error) {
	var (
		p                              Provider
		info, creds, avail, cons, rat  []byte
	)
	if err := row.Scan(&p.ID, &info, &creds, &avail, &cons, &rat, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	for _, doc := range []struct {
		raw []byte
		dst interface{}
	}{
		{info, &p.PersonalInfo},
		{creds, &p.Credentials},
		{avail, &p.Availability},
		{cons, &p.Consultation},
		{rat, &p.Ratings},
	} {
		if err := json.Unmarshal(doc.raw, doc.dst); err != nil {
			return nil, fmt.Errorf("decode provider document: %w", err)
		}
	}
	return &p, nil
}

func providerDocs(p *Provider) (info, creds, avail, cons, rat []byte, err error) {
	if info, err = json.Marshal(p.PersonalInfo); err != nil {
		return
	}
	if creds, err = json.Marshal(p.Credentials); err != nil {
		return
	}
	if avail, err = json.Marshal(p.Availability); err != nil {
		return
	}
	if cons, err = json.Marshal(p.Consultation); err != nil {
		return
	}
	rat, err = json.Marshal(p.Ratings)
	return
}

func (r *pgRepo) Create(ctx context.Context, p *Provider) error {
	info, creds, avail, cons, rat, err := providerDocs(p)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO providers (id, personal_info, credentials, availability, consultation, ratings, is_active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		p.ID, info, creds, avail, cons, rat, p.Active(), p.CreatedAt, p.UpdatedAt)
	return err
}

func (r *pgRepo) GetByID(ctx context.Context, id uuid.UUID) (*Provider, error) {
	return scanProvider(r.pool.QueryRow(ctx, `SELECT `+providerCols+` FROM providers WHERE id = $1`, id))
}

func (r *pgRepo) Update(ctx context.Context, p *Provider) error {
	info, creds, avail, cons, rat, err := providerDocs(p)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, `
		UPDATE providers SET personal_info=$2, credentials=$3, availability=$4, consultation=$5,
			ratings=$6, is_active=$7, updated_at=$8
		WHERE id = $1`,
		p.ID, info, creds, avail, cons, rat, p.Active(), p.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgRepo) List(ctx context.Context, limit, offset int) ([]*Provider, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM providers`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+providerCols+` FROM providers ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items, err := collectProviders(rows)
	return items, total, err
}

func (r *pgRepo) ListActive(ctx context.Context) ([]*Provider, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+providerCols+` FROM providers WHERE is_active ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectProviders(rows)
}

func collectProviders(rows pgx.Rows) ([]*Provider, error) {
	var items []*Provider
	for rows.Next() {
		p, err := scanProvider(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}
