package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"kloza/internal/domain"
)

// timeLayout is fixed width so that TEXT ordering matches time ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// SQLite stores entities in a local database file.
type SQLite struct {
	DB *sql.DB
}

var _ Repo = SQLite{}

type rowScanner interface {
	Scan(dest ...any) error
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}

func isSQLiteUnique(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func scanIdea(row rowScanner) (domain.Idea, error) {
	var (
		i       domain.Idea
		status  string
		created string
	)
	err := row.Scan(&i.ID, &i.Title, &i.Description, &i.CreatedBy, &status, &created)
	if err == sql.ErrNoRows {
		return i, ErrNotFound
	}
	if err != nil {
		return i, err
	}
	i.Status = domain.IdeaStatus(status)
	i.CreatedAt, err = parseTime(created)
	return i, err
}

func scanKollab(row rowScanner) (domain.Kollab, error) {
	var (
		k            domain.Kollab
		participants string
		status       string
		created      string
	)
	err := row.Scan(&k.ID, &k.IdeaID, &k.Goal, &participants, &k.SuccessCriteria, &status, &created)
	if err == sql.ErrNoRows {
		return k, ErrNotFound
	}
	if err != nil {
		return k, err
	}
	if err := json.Unmarshal([]byte(participants), &k.Participants); err != nil {
		return k, fmt.Errorf("decode participants: %w", err)
	}
	k.Status = domain.KollabStatus(status)
	k.CreatedAt, err = parseTime(created)
	return k, err
}

const (
	ideaColumns   = `id,title,description,created_by,status,created_at`
	kollabColumns = `id,idea_id,goal,participants,success_criteria,status,created_at`
)

func (r SQLite) InsertIdea(ctx context.Context, i domain.Idea) (domain.Idea, error) {
	i.ID = NewID()
	_, err := r.DB.ExecContext(ctx, `INSERT INTO ideas(`+ideaColumns+`) VALUES (?,?,?,?,?,?)`,
		i.ID, i.Title, i.Description, i.CreatedBy, string(i.Status), formatTime(i.CreatedAt))
	if err != nil {
		if isSQLiteUnique(err) {
			return domain.Idea{}, fmt.Errorf("insert idea: %w", ErrDuplicate)
		}
		return domain.Idea{}, fmt.Errorf("insert idea: %w", err)
	}
	return i, nil
}

func (r SQLite) GetIdea(ctx context.Context, id string) (domain.Idea, error) {
	return scanIdea(r.DB.QueryRowContext(ctx, `SELECT `+ideaColumns+` FROM ideas WHERE id=?`, canonicalID(id)))
}

func (r SQLite) ListIdeas(ctx context.Context, skip, limit int) ([]domain.Idea, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+ideaColumns+` FROM ideas ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`, limit, skip)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := []domain.Idea{}
	for rows.Next() {
		i, err := scanIdea(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, i)
	}
	return res, rows.Err()
}

func (r SQLite) CountIdeas(ctx context.Context) (int64, error) {
	var n int64
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM ideas`).Scan(&n)
	return n, err
}

func (r SQLite) InsertKollab(ctx context.Context, k domain.Kollab) (domain.Kollab, error) {
	k.ID = NewID()
	k.IdeaID = canonicalID(k.IdeaID)
	k.Participants = copyStrings(k.Participants)
	participants, err := json.Marshal(k.Participants)
	if err != nil {
		return domain.Kollab{}, err
	}
	_, err = r.DB.ExecContext(ctx, `INSERT INTO kollabs(`+kollabColumns+`) VALUES (?,?,?,?,?,?,?)`,
		k.ID, k.IdeaID, k.Goal, string(participants), k.SuccessCriteria, string(k.Status), formatTime(k.CreatedAt))
	if err != nil {
		if isSQLiteUnique(err) {
			return domain.Kollab{}, fmt.Errorf("insert kollab: %w", ErrDuplicate)
		}
		return domain.Kollab{}, fmt.Errorf("insert kollab: %w", err)
	}
	return k, nil
}

func (r SQLite) GetKollab(ctx context.Context, id string) (domain.Kollab, error) {
	return scanKollab(r.DB.QueryRowContext(ctx, `SELECT `+kollabColumns+` FROM kollabs WHERE id=?`, canonicalID(id)))
}

func (r SQLite) FindActiveKollab(ctx context.Context, ideaID string) (domain.Kollab, error) {
	return scanKollab(r.DB.QueryRowContext(ctx, `SELECT `+kollabColumns+` FROM kollabs WHERE idea_id=? AND status=? LIMIT 1`,
		canonicalID(ideaID), string(domain.KollabActive)))
}

func (r SQLite) InsertDiscussion(ctx context.Context, d domain.Discussion) (domain.Discussion, error) {
	d.ID = NewID()
	d.KollabID = canonicalID(d.KollabID)
	_, err := r.DB.ExecContext(ctx, `INSERT INTO discussions(id,kollab_id,message,author,created_at) VALUES (?,?,?,?,?)`,
		d.ID, d.KollabID, d.Message, d.Author, formatTime(d.CreatedAt))
	if err != nil {
		return domain.Discussion{}, fmt.Errorf("insert discussion: %w", err)
	}
	return d, nil
}

func (r SQLite) Ping(ctx context.Context) error {
	return r.DB.PingContext(ctx)
}

func (r SQLite) Close(context.Context) error {
	return r.DB.Close()
}
