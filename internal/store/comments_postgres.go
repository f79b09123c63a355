package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const commentColumns = `id, user_id, movie_id, body, rating, comment_likes, comment_dislikes, created_at`

// PostgresCommentStore persists comments in Postgres.
type PostgresCommentStore struct {
	pool *pgxpool.Pool
}

func NewPostgresCommentStore(pool *pgxpool.Pool) *PostgresCommentStore {
	return &PostgresCommentStore{pool: pool}
}

func (s *PostgresCommentStore) Create(ctx context.Context, c Comment) (Comment, error) {
	const q = `INSERT INTO comments (user_id, movie_id, body, rating, comment_likes, comment_dislikes)
	           VALUES ($1, $2, $3, $4, $5, $6)
	           RETURNING ` + commentColumns
	row := s.pool.QueryRow(ctx, q, c.UserID, c.MovieID, c.Body, c.Rating, c.Likes, c.Dislikes)
	return scanComment(row)
}

func (s *PostgresCommentStore) GetByID(ctx context.Context, id int64) (Comment, error) {
	const q = `SELECT ` + commentColumns + ` FROM comments WHERE id = $1`
	c, err := scanComment(s.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Comment{}, ErrNotFound
		}
		return Comment{}, err
	}
	return c, nil
}

func (s *PostgresCommentStore) List(ctx context.Context) ([]Comment, error) {
	const q = `SELECT ` + commentColumns + ` FROM comments ORDER BY created_at DESC`
	return s.queryComments(ctx, q)
}

func (s *PostgresCommentStore) ListByMovie(ctx context.Context, movieID int64, f MovieCommentsFilter) ([]Comment, error) {
	var b strings.Builder
	b.WriteString(`SELECT ` + commentColumns + ` FROM comments WHERE movie_id = $1`)
	if f.RatedOnly {
		b.WriteString(` AND rating IS NOT NULL`)
	}
	switch f.SortByRating {
	case "asc":
		b.WriteString(` ORDER BY rating ASC, created_at DESC`)
	case "desc":
		b.WriteString(` ORDER BY rating DESC, created_at DESC`)
	default:
		b.WriteString(` ORDER BY created_at DESC`)
	}
	return s.queryComments(ctx, b.String(), movieID)
}

// Update applies the patch inside a transaction that locks the row first, so
// the returned old state is exactly what the update replaced.
func (s *PostgresCommentStore) Update(ctx context.Context, id int64, patch CommentPatch) (Comment, Comment, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Comment{}, Comment{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	old, err := scanComment(tx.QueryRow(ctx,
		`SELECT `+commentColumns+` FROM comments WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Comment{}, Comment{}, ErrNotFound
		}
		return Comment{}, Comment{}, err
	}

	sets := make([]string, 0, 2)
	args := []any{id}
	if patch.Body != nil {
		args = append(args, *patch.Body)
		sets = append(sets, fmt.Sprintf("body = $%d", len(args)))
	}
	if patch.RatingSet {
		args = append(args, patch.Rating)
		sets = append(sets, fmt.Sprintf("rating = $%d", len(args)))
	}
	if len(sets) == 0 {
		return old, old, nil
	}

	q := `UPDATE comments SET ` + strings.Join(sets, ", ") + ` WHERE id = $1 RETURNING ` + commentColumns
	updated, err := scanComment(tx.QueryRow(ctx, q, args...))
	if err != nil {
		return Comment{}, Comment{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Comment{}, Comment{}, err
	}
	return old, updated, nil
}

func (s *PostgresCommentStore) Delete(ctx context.Context, id int64) (Comment, error) {
	const q = `DELETE FROM comments WHERE id = $1 RETURNING ` + commentColumns
	c, err := scanComment(s.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Comment{}, ErrNotFound
		}
		return Comment{}, err
	}
	return c, nil
}

func (s *PostgresCommentStore) Like(ctx context.Context, id int64) (Comment, error) {
	return s.bump(ctx, id, "comment_likes")
}

func (s *PostgresCommentStore) Dislike(ctx context.Context, id int64) (Comment, error) {
	return s.bump(ctx, id, "comment_dislikes")
}

func (s *PostgresCommentStore) bump(ctx context.Context, id int64, col string) (Comment, error) {
	q := `UPDATE comments SET ` + col + ` = ` + col + ` + 1 WHERE id = $1 RETURNING ` + commentColumns
	c, err := scanComment(s.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Comment{}, ErrNotFound
		}
		return Comment{}, err
	}
	return c, nil
}

func (s *PostgresCommentStore) RatedScores(ctx context.Context, movieID int64) ([]int, error) {
	const q = `SELECT rating FROM comments WHERE movie_id = $1 AND rating IS NOT NULL`
	rows, err := s.pool.Query(ctx, q, movieID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scores []int
	for rows.Next() {
		var r int
		if err := rows.Scan(&r); err != nil {
			return nil, err
		}
		scores = append(scores, r)
	}
	return scores, rows.Err()
}

func (s *PostgresCommentStore) queryComments(ctx context.Context, q string, args ...any) ([]Comment, error) {
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Comment
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.UserID, &c.MovieID, &c.Body, &c.Rating,
			&c.Likes, &c.Dislikes, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanComment(row pgx.Row) (Comment, error) {
	var c Comment
	err := row.Scan(&c.ID, &c.UserID, &c.MovieID, &c.Body, &c.Rating,
		&c.Likes, &c.Dislikes, &c.CreatedAt)
	return c, err
}
