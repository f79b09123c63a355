package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const personColumns = `id, name, biography, birth_date, photo_url, created_at`

type PostgresPersonStore struct {
	pool *pgxpool.Pool
}

func NewPostgresPersonStore(pool *pgxpool.Pool) *PostgresPersonStore {
	return &PostgresPersonStore{pool: pool}
}

func (s *PostgresPersonStore) List(ctx context.Context) ([]Person, error) {
	const q = `SELECT ` + personColumns + ` FROM people ORDER BY id`
	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Person
	for rows.Next() {
		var p Person
		if err := rows.Scan(&p.ID, &p.Name, &p.Biography, &p.BirthDate, &p.PhotoURL, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PostgresPersonStore) GetByID(ctx context.Context, id int64) (Person, error) {
	const q = `SELECT ` + personColumns + ` FROM people WHERE id = $1`
	var p Person
	err := s.pool.QueryRow(ctx, q, id).Scan(&p.ID, &p.Name, &p.Biography, &p.BirthDate, &p.PhotoURL, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Person{}, ErrNotFound
		}
		return Person{}, err
	}
	return p, nil
}

func (s *PostgresPersonStore) CastForMovie(ctx context.Context, movieID int64) ([]CastMember, error) {
	const q = `SELECT p.id, p.name, p.biography, p.birth_date, p.photo_url, p.created_at,
	                  mc.movie_id, mc.role, mc.character_name
	           FROM movie_cast mc
	           JOIN people p ON p.id = mc.person_id
	           WHERE mc.movie_id = $1
	           ORDER BY p.name`
	rows, err := s.pool.Query(ctx, q, movieID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CastMember
	for rows.Next() {
		var m CastMember
		if err := rows.Scan(&m.Person.ID, &m.Person.Name, &m.Person.Biography,
			&m.Person.BirthDate, &m.Person.PhotoURL, &m.Person.CreatedAt,
			&m.MovieID, &m.Role, &m.CharacterName); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
