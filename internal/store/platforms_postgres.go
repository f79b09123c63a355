package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresPlatformStore struct {
	pool *pgxpool.Pool
}

func NewPostgresPlatformStore(pool *pgxpool.Pool) *PostgresPlatformStore {
	return &PostgresPlatformStore{pool: pool}
}

func (s *PostgresPlatformStore) List(ctx context.Context) ([]Platform, error) {
	const q = `SELECT id, platform_name, logo_path FROM platforms ORDER BY platform_name ASC`
	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Platform
	for rows.Next() {
		var p Platform
		if err := rows.Scan(&p.ID, &p.Name, &p.LogoPath); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PostgresPlatformStore) GetByID(ctx context.Context, id int64) (Platform, error) {
	const q = `SELECT id, platform_name, logo_path FROM platforms WHERE id = $1`
	var p Platform
	err := s.pool.QueryRow(ctx, q, id).Scan(&p.ID, &p.Name, &p.LogoPath)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Platform{}, ErrNotFound
		}
		return Platform{}, err
	}
	return p, nil
}

func (s *PostgresPlatformStore) Create(ctx context.Context, p Platform) (Platform, error) {
	const q = `INSERT INTO platforms (platform_name, logo_path)
	           VALUES ($1, $2)
	           RETURNING id, platform_name, logo_path`
	var out Platform
	err := s.pool.QueryRow(ctx, q, p.Name, p.LogoPath).Scan(&out.ID, &out.Name, &out.LogoPath)
	return out, err
}

func (s *PostgresPlatformStore) Update(ctx context.Context, id int64, patch PlatformPatch) (Platform, error) {
	sets := make([]string, 0, 2)
	args := []any{id}
	if patch.Name != nil {
		args = append(args, *patch.Name)
		sets = append(sets, fmt.Sprintf("platform_name = $%d", len(args)))
	}
	if patch.LogoPath != nil {
		args = append(args, *patch.LogoPath)
		sets = append(sets, fmt.Sprintf("logo_path = $%d", len(args)))
	}
	if len(sets) == 0 {
		return s.GetByID(ctx, id)
	}

	q := `UPDATE platforms SET ` + strings.Join(sets, ", ") +
		` WHERE id = $1 RETURNING id, platform_name, logo_path`
	var p Platform
	err := s.pool.QueryRow(ctx, q, args...).Scan(&p.ID, &p.Name, &p.LogoPath)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Platform{}, ErrNotFound
		}
		return Platform{}, err
	}
	return p, nil
}

func (s *PostgresPlatformStore) Delete(ctx context.Context, id int64) (Platform, error) {
	const q = `DELETE FROM platforms WHERE id = $1 RETURNING id, platform_name, logo_path`
	var p Platform
	err := s.pool.QueryRow(ctx, q, id).Scan(&p.ID, &p.Name, &p.LogoPath)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Platform{}, ErrNotFound
		}
		return Platform{}, err
	}
	return p, nil
}
