package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"route-itinerary-service/internal/domain"
	"route-itinerary-service/internal/platform/obs"
	"time"
)

const defaultListLimit = 50

// sqliteTimeLayout is fixed width so TEXT timestamps sort chronologically.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type dialect struct {
	name           string
	insertCommit   string
	insertLandmark string
	listAll        string
	listByStatus   string
	timeArg        func(time.Time) any
}

var postgresDialect = dialect{
	name: "postgres",
	insertCommit: `
	INSERT INTO commit_journal (commit_id, draft_id, route_id, route_name, status, error, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7);
	`,
	insertLandmark: `
	INSERT INTO commit_journal_landmarks (commit_id, sequence_id, landmark_id, route_landmark_id, error)
	VALUES ($1, $2, $3, $4, $5);
	`,
	listAll:      listQuery("", "$1"),
	listByStatus: listQuery("WHERE status = $1", "$2"),
	timeArg:      func(t time.Time) any { return t.UTC() },
}

var sqliteDialect = dialect{
	name: "sqlite",
	insertCommit: `
	INSERT INTO commit_journal (commit_id, draft_id, route_id, route_name, status, error, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?);
	`,
	insertLandmark: `
	INSERT INTO commit_journal_landmarks (commit_id, sequence_id, landmark_id, route_landmark_id, error)
	VALUES (?, ?, ?, ?, ?);
	`,
	listAll:      listQuery("", "?"),
	listByStatus: listQuery("WHERE status = ?", "?"),
	timeArg:      func(t time.Time) any { return t.UTC().Format(sqliteTimeLayout) },
}

func listQuery(where, limit string) string {
	return fmt.Sprintf(`
	SELECT c.commit_id, c.draft_id, c.route_id, c.route_name, c.status, c.error, c.created_at,
		l.sequence_id, l.landmark_id, l.route_landmark_id, l.error
	FROM (
		SELECT commit_id, draft_id, route_id, route_name, status, error, created_at
		FROM commit_journal
		%s
		ORDER BY created_at DESC
		LIMIT %s
	) c
	LEFT JOIN commit_journal_landmarks l ON l.commit_id = c.commit_id
	ORDER BY c.created_at DESC, c.commit_id, l.sequence_id;
	`, where, limit)
}

// SQLCommitJournal implements ports.CommitJournal on Postgres or SQLite.
type SQLCommitJournal struct {
	DB *sql.DB
	d  dialect
}

func NewSQLCommitJournal(db *sql.DB) *SQLCommitJournal {
	return &SQLCommitJournal{DB: db, d: postgresDialect}
}

func NewSqliteCommitJournal(db *sql.DB) *SQLCommitJournal {
	return &SQLCommitJournal{DB: db, d: sqliteDialect}
}

// Record stores a commit attempt and its per-landmark outcomes in one transaction.
func (j *SQLCommitJournal) Record(ctx context.Context, rec domain.CommitRecord) (err error) {
	defer obs.Time(ctx, "journal."+j.d.name+".Record")(&err)

	if j.DB == nil {
		return errors.New("commit journal: db is nil")
	}
	if rec.ID == "" {
		return errors.New("record commit: commit id must not be empty")
	}

	tx, err := j.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("record commit: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, j.d.insertCommit,
		rec.ID, rec.DraftID, rec.RouteID, rec.RouteName, string(rec.Status), rec.Error, j.d.timeArg(rec.CreatedAt),
	); err != nil {
		return fmt.Errorf("record commit %s: insert commit_journal: %w", rec.ID, err)
	}

	if len(rec.Landmarks) > 0 {
		stmt, err := tx.PrepareContext(ctx, j.d.insertLandmark)
		if err != nil {
			return fmt.Errorf("record commit %s: db prepare: %w", rec.ID, err)
		}
		defer stmt.Close()

		for _, o := range rec.Landmarks {
			if _, err := stmt.ExecContext(ctx, rec.ID, o.SequenceID, o.LandmarkID, o.RouteLandmarkID, o.Error); err != nil {
				return fmt.Errorf("record commit %s sequence=%d: %w", rec.ID, o.SequenceID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("record commit %s: commit: %w", rec.ID, err)
	}

	return nil
}

func (j *SQLCommitJournal) List(
	ctx context.Context,
	status domain.CommitStatus,
	limit int,
) (_ []domain.CommitRecord, err error) {
	defer obs.Time(ctx, "journal."+j.d.name+".List")(&err)

	if j.DB == nil {
		return nil, errors.New("commit journal: db is nil")
	}
	if limit <= 0 {
		limit = defaultListLimit
	}

	var rows *sql.Rows
	if status == "" {
		rows, err = j.DB.QueryContext(ctx, j.d.listAll, limit)
	} else {
		rows, err = j.DB.QueryContext(ctx, j.d.listByStatus, string(status), limit)
	}
	if err != nil {
		return nil, fmt.Errorf("list commits: query commit_journal: %w", err)
	}
	defer rows.Close()

	var out []domain.CommitRecord
	for rows.Next() {
		var (
			rec       domain.CommitRecord
			st        string
			created   scannedTime
			seq, lmID sql.NullInt64
			rlID      sql.NullInt64
			lmErr     sql.NullString
		)
		if err := rows.Scan(
			&rec.ID, &rec.DraftID, &rec.RouteID, &rec.RouteName, &st, &rec.Error, &created,
			&seq, &lmID, &rlID, &lmErr,
		); err != nil {
			return nil, fmt.Errorf("list commits: scan rows: %w", err)
		}

		if n := len(out); n == 0 || out[n-1].ID != rec.ID {
			rec.Status = domain.CommitStatus(st)
			rec.CreatedAt = created.t
			out = append(out, rec)
		}
		if seq.Valid {
			last := &out[len(out)-1]
			last.Landmarks = append(last.Landmarks, domain.LandmarkOutcome{
				SequenceID:      int(seq.Int64),
				LandmarkID:      int(lmID.Int64),
				RouteLandmarkID: int(rlID.Int64),
				Error:           lmErr.String,
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list commits: row iteration: %w", err)
	}

	return out, nil
}

// scannedTime accepts both native timestamps and the SQLite TEXT form.
type scannedTime struct{ t time.Time }

func (s *scannedTime) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		s.t = v.UTC()
	case string:
		return s.parse(v)
	case []byte:
		return s.parse(string(v))
	case nil:
		s.t = time.Time{}
	default:
		return fmt.Errorf("scan time: unsupported type %T", src)
	}
	return nil
}

func (s *scannedTime) parse(v string) error {
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return fmt.Errorf("scan time %q: %w", v, err)
	}
	s.t = t.UTC()
	return nil
}
