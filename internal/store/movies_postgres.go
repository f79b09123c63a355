package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const movieColumns = `id, title, overview, tagline, release_date, poster_file, banner_file, platform_id, created_at`

type PostgresMovieStore struct {
	pool *pgxpool.Pool
}

func NewPostgresMovieStore(pool *pgxpool.Pool) *PostgresMovieStore {
	return &PostgresMovieStore{pool: pool}
}

func (s *PostgresMovieStore) List(ctx context.Context) ([]Movie, error) {
	const q = `SELECT ` + movieColumns + ` FROM movies ORDER BY title`
	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Movie
	for rows.Next() {
		m, err := scanMovieRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *PostgresMovieStore) GetByID(ctx context.Context, id int64) (Movie, error) {
	const q = `SELECT ` + movieColumns + ` FROM movies WHERE id = $1`
	m, err := scanMovie(s.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Movie{}, ErrNotFound
		}
		return Movie{}, err
	}
	return m, nil
}

func (s *PostgresMovieStore) Create(ctx context.Context, m Movie) (Movie, error) {
	const q = `INSERT INTO movies (title, overview, tagline, release_date, poster_file, banner_file, platform_id)
	           VALUES ($1, $2, $3, $4, $5, $6, $7)
	           RETURNING ` + movieColumns
	return scanMovie(s.pool.QueryRow(ctx, q,
		m.Title, m.Overview, m.Tagline, m.ReleaseDate, m.PosterFile, m.BannerFile, m.PlatformID))
}

func (s *PostgresMovieStore) Update(ctx context.Context, id int64, patch MoviePatch) (Movie, error) {
	sets := make([]string, 0, 7)
	args := []any{id}
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Overview != nil {
		add("overview", *patch.Overview)
	}
	if patch.Tagline != nil {
		add("tagline", *patch.Tagline)
	}
	if patch.ReleaseDate != nil {
		add("release_date", *patch.ReleaseDate)
	}
	if patch.PosterFile != nil {
		add("poster_file", *patch.PosterFile)
	}
	if patch.BannerFile != nil {
		add("banner_file", *patch.BannerFile)
	}
	if patch.PlatformID != nil {
		add("platform_id", *patch.PlatformID)
	}
	if len(sets) == 0 {
		return s.GetByID(ctx, id)
	}

	q := `UPDATE movies SET ` + strings.Join(sets, ", ") + ` WHERE id = $1 RETURNING ` + movieColumns
	m, err := scanMovie(s.pool.QueryRow(ctx, q, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Movie{}, ErrNotFound
		}
		return Movie{}, err
	}
	return m, nil
}

func (s *PostgresMovieStore) Delete(ctx context.Context, id int64) (Movie, error) {
	const q = `DELETE FROM movies WHERE id = $1 RETURNING ` + movieColumns
	m, err := scanMovie(s.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Movie{}, ErrNotFound
		}
		return Movie{}, err
	}
	return m, nil
}

func scanMovie(row pgx.Row) (Movie, error) {
	var m Movie
	err := row.Scan(&m.ID, &m.Title, &m.Overview, &m.Tagline, &m.ReleaseDate,
		&m.PosterFile, &m.BannerFile, &m.PlatformID, &m.CreatedAt)
	return m, err
}

func scanMovieRow(rows pgx.Rows) (Movie, error) {
	var m Movie
	err := rows.Scan(&m.ID, &m.Title, &m.Overview, &m.Tagline, &m.ReleaseDate,
		&m.PosterFile, &m.BannerFile, &m.PlatformID, &m.CreatedAt)
	return m, err
}
