package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"kloza/internal/domain"
)

const pgUniqueViolation = "23505"

// Postgres stores entities in PostgreSQL through a pgx pool.
type Postgres struct {
	Pool *pgxpool.Pool
}

var _ Repo = Postgres{}

func isPgUnique(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

func pgNotFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func scanPgIdea(row pgx.Row) (domain.Idea, error) {
	var (
		i      domain.Idea
		status string
	)
	if err := row.Scan(&i.ID, &i.Title, &i.Description, &i.CreatedBy, &status, &i.CreatedAt); err != nil {
		return domain.Idea{}, pgNotFound(err)
	}
	i.Status = domain.IdeaStatus(status)
	i.CreatedAt = i.CreatedAt.UTC()
	return i, nil
}

func scanPgKollab(row pgx.Row) (domain.Kollab, error) {
	var (
		k      domain.Kollab
		status string
	)
	if err := row.Scan(&k.ID, &k.IdeaID, &k.Goal, &k.Participants, &k.SuccessCriteria, &status, &k.CreatedAt); err != nil {
		return domain.Kollab{}, pgNotFound(err)
	}
	k.Participants = copyStrings(k.Participants)
	k.Status = domain.KollabStatus(status)
	k.CreatedAt = k.CreatedAt.UTC()
	return k, nil
}

func (r Postgres) InsertIdea(ctx context.Context, i domain.Idea) (domain.Idea, error) {
	i.ID = NewID()
	_, err := r.Pool.Exec(ctx, `INSERT INTO ideas(`+ideaColumns+`) VALUES ($1,$2,$3,$4,$5,$6)`,
		i.ID, i.Title, i.Description, i.CreatedBy, string(i.Status), i.CreatedAt)
	if err != nil {
		if isPgUnique(err) {
			return domain.Idea{}, fmt.Errorf("insert idea: %w", ErrDuplicate)
		}
		return domain.Idea{}, fmt.Errorf("insert idea: %w", err)
	}
	return i, nil
}

func (r Postgres) GetIdea(ctx context.Context, id string) (domain.Idea, error) {
	return scanPgIdea(r.Pool.QueryRow(ctx, `SELECT `+ideaColumns+` FROM ideas WHERE id=$1`, canonicalID(id)))
}

func (r Postgres) ListIdeas(ctx context.Context, skip, limit int) ([]domain.Idea, error) {
	rows, err := r.Pool.Query(ctx, `SELECT `+ideaColumns+` FROM ideas ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`, limit, skip)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := []domain.Idea{}
	for rows.Next() {
		i, err := scanPgIdea(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, i)
	}
	return res, rows.Err()
}

func (r Postgres) CountIdeas(ctx context.Context) (int64, error) {
	var n int64
	err := r.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM ideas`).Scan(&n)
	return n, err
}

func (r Postgres) InsertKollab(ctx context.Context, k domain.Kollab) (domain.Kollab, error) {
	k.ID = NewID()
	k.IdeaID = canonicalID(k.IdeaID)
	k.Participants = copyStrings(k.Participants)
	_, err := r.Pool.Exec(ctx, `INSERT INTO kollabs(`+kollabColumns+`) VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		k.ID, k.IdeaID, k.Goal, k.Participants, k.SuccessCriteria, string(k.Status), k.CreatedAt)
	if err != nil {
		if isPgUnique(err) {
			return domain.Kollab{}, fmt.Errorf("insert kollab: %w", ErrDuplicate)
		}
		return domain.Kollab{}, fmt.Errorf("insert kollab: %w", err)
	}
	return k, nil
}

func (r Postgres) GetKollab(ctx context.Context, id string) (domain.Kollab, error) {
	return scanPgKollab(r.Pool.QueryRow(ctx, `SELECT `+kollabColumns+` FROM kollabs WHERE id=$1`, canonicalID(id)))
}

func (r Postgres) FindActiveKollab(ctx context.Context, ideaID string) (domain.Kollab, error) {
	return scanPgKollab(r.Pool.QueryRow(ctx, `SELECT `+kollabColumns+` FROM kollabs WHERE idea_id=$1 AND status=$2 LIMIT 1`,
		canonicalID(ideaID), string(domain.KollabActive)))
}

func (r Postgres) InsertDiscussion(ctx context.Context, d domain.Discussion) (domain.Discussion, error) {
	d.ID = NewID()
	d.KollabID = canonicalID(d.KollabID)
	_, err := r.Pool.Exec(ctx, `INSERT INTO discussions(id,kollab_id,message,author,created_at) VALUES ($1,$2,$3,$4,$5)`,
		d.ID, d.KollabID, d.Message, d.Author, d.CreatedAt)
	if err != nil {
		return domain.Discussion{}, fmt.Errorf("insert discussion: %w", err)
	}
	return d, nil
}

func (r Postgres) Ping(ctx context.Context) error {
	var one int
	return r.Pool.QueryRow(ctx, "select 1").Scan(&one)
}

func (r Postgres) Close(context.Context) error {
	r.Pool.Close()
	return nil
}
