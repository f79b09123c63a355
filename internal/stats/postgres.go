package stats

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStatStore persists aggregates in the statistic table. Every Apply*
// is a single statement, so the arithmetic runs server-side under the row
// lock Postgres takes for the update: concurrent deltas for one movie
// serialize on that lock while different movies proceed in parallel.
type PostgresStatStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStatStore(pool *pgxpool.Pool) *PostgresStatStore {
	return &PostgresStatStore{pool: pool}
}

func (s *PostgresStatStore) Get(ctx context.Context, movieID int64) (Aggregate, error) {
	const q = `SELECT movie_id, vote_count, vote_avg FROM statistic WHERE movie_id = $1`
	var a Aggregate
	err := s.pool.QueryRow(ctx, q, movieID).Scan(&a.MovieID, &a.VoteCount, &a.VoteAvg)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Aggregate{}, ErrNoAggregate
		}
		return Aggregate{}, err
	}
	return a, nil
}

func (s *PostgresStatStore) ApplyCreate(ctx context.Context, movieID int64, rating int) error {
	// The upsert creates a fresh row as {1, rating} and otherwise folds the
	// new rating into whatever count/avg the row holds at update time.
	const q = `INSERT INTO statistic (movie_id, vote_count, vote_avg)
	           VALUES ($1, 1, $2)
	           ON CONFLICT (movie_id) DO UPDATE SET
	             vote_count = statistic.vote_count + 1,
	             vote_avg   = (statistic.vote_avg * statistic.vote_count + EXCLUDED.vote_avg)
	                          / (statistic.vote_count + 1)`
	_, err := s.pool.Exec(ctx, q, movieID, float64(rating))
	return err
}

func (s *PostgresStatStore) ApplyReplace(ctx context.Context, movieID int64, oldRating, newRating int) error {
	const q = `UPDATE statistic SET
	             vote_avg = (vote_avg * vote_count - $2 + $3) / vote_count
	           WHERE movie_id = $1 AND vote_count > 0`
	tag, err := s.pool.Exec(ctx, q, movieID, float64(oldRating), float64(newRating))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNoAggregate
	}
	return nil
}

func (s *PostgresStatStore) ApplyDelete(ctx context.Context, movieID int64, rating int) error {
	// Column references on the right-hand side see the pre-update row, so the
	// CASE decides on the old vote_count.
	const q = `UPDATE statistic SET
	             vote_count = vote_count - 1,
	             vote_avg   = CASE WHEN vote_count > 1
	                          THEN (vote_avg * vote_count - $2) / (vote_count - 1)
	                          ELSE 0 END
	           WHERE movie_id = $1 AND vote_count > 0`
	tag, err := s.pool.Exec(ctx, q, movieID, float64(rating))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNoAggregate
	}
	return nil
}

func (s *PostgresStatStore) Overwrite(ctx context.Context, movieID int64, count int64, avg float64) error {
	const q = `INSERT INTO statistic (movie_id, vote_count, vote_avg)
	           VALUES ($1, $2, $3)
	           ON CONFLICT (movie_id) DO UPDATE SET
	             vote_count = EXCLUDED.vote_count,
	             vote_avg   = EXCLUDED.vote_avg`
	_, err := s.pool.Exec(ctx, q, movieID, count, avg)
	return err
}

func (s *PostgresStatStore) ListMovieIDs(ctx context.Context) ([]int64, error) {
	rows, err := s.pool.Query(ctx, `SELECT movie_id FROM statistic ORDER BY movie_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
