package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	"github.com/okian/crease/internal/domain/model"
)

// PostgresStore is the relational Store implementation. The schema is
// owned by the authoring service; this store touches only the columns
// the engine writes (contest status, answer keys, scores, ranks).
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a connection pool and verifies connectivity.
func NewPostgresStore(ctx context.Context, dsn string, opts ...PostgresOption) (*PostgresStore, error) {
	cfg := postgresConfig{
		maxOpenConns:    25,
		maxIdleConns:    25,
		connMaxLifetime: 5 * time.Minute,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(cfg.maxOpenConns)
	db.SetMaxIdleConns(cfg.maxIdleConns)
	db.SetConnMaxLifetime(cfg.connMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) Contest(ctx context.Context, id string) (model.Contest, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, match_id, category, status FROM contests WHERE id = $1`, id)
	return scanContest(row, id)
}

func (s *PostgresStore) ContestsByMatch(ctx context.Context, matchID string) ([]model.Contest, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, match_id, category, status FROM contests WHERE match_id = $1 ORDER BY id`, matchID)
	if err != nil {
		return nil, fmt.Errorf("querying contests for match %s: %w", matchID, err)
	}
	defer rows.Close()
	return collectContests(rows)
}

func (s *PostgresStore) ContestsByStatus(ctx context.Context, status model.Status) ([]model.Contest, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, match_id, category, status FROM contests WHERE status = $1 ORDER BY id`, string(status))
	if err != nil {
		return nil, fmt.Errorf("querying contests in status %s: %w", status, err)
	}
	defer rows.Close()
	return collectContests(rows)
}

// CompareAndSetStatus relies on the WHERE clause for the optimistic
// check; zero rows affected means another writer got there first.
func (s *PostgresStore) CompareAndSetStatus(ctx context.Context, id string, from, to model.Status) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE contests SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`,
		string(to), id, string(from))
	if err != nil {
		return false, fmt.Errorf("updating contest %s status: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("updating contest %s status: %w", id, err)
	}
	return affected == 1, nil
}

func (s *PostgresStore) QuestionsByContest(ctx context.Context, contestID string) ([]model.Question, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, contest_id, text, answer_key, points, data_path
		 FROM questions WHERE contest_id = $1 ORDER BY id`, contestID)
	if err != nil {
		return nil, fmt.Errorf("querying questions for contest %s: %w", contestID, err)
	}
	defer rows.Close()

	var out []model.Question
	for rows.Next() {
		var q model.Question
		var key, dataPath sql.NullString
		var points sql.NullInt64
		if err := rows.Scan(&q.ID, &q.ContestID, &q.Text, &key, &points, &dataPath); err != nil {
			return nil, fmt.Errorf("scanning question: %w", err)
		}
		if key.Valid {
			q.AnswerKey = &key.String
		}
		q.Points = int(points.Int64)
		q.DataPath = dataPath.String
		out = append(out, q)
	}
	return out, rows.Err()
}

// SetAnswerKey only fills keys that are still null, so a duplicate
// settlement run cannot overwrite an earlier resolution.
func (s *PostgresStore) SetAnswerKey(ctx context.Context, questionID, key string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE questions SET answer_key = $1, updated_at = NOW()
		 WHERE id = $2 AND answer_key IS NULL`, key, questionID)
	if err != nil {
		return fmt.Errorf("setting answer key for question %s: %w", questionID, err)
	}
	return nil
}

func (s *PostgresStore) SubmissionsByContest(ctx context.Context, contestID string) ([]model.Submission, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, contest_id, user_id, answers, total_score, max_score, submitted_at_epoch, rank
		 FROM submissions WHERE contest_id = $1 ORDER BY id`, contestID)
	if err != nil {
		return nil, fmt.Errorf("querying submissions for contest %s: %w", contestID, err)
	}
	defer rows.Close()

	var out []model.Submission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

func (s *PostgresStore) SubmissionByUser(ctx context.Context, contestID, userID string) (model.Submission, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, contest_id, user_id, answers, total_score, max_score, submitted_at_epoch, rank
		 FROM submissions WHERE contest_id = $1 AND user_id = $2`, contestID, userID)

	sub, err := scanSubmission(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Submission{}, fmt.Errorf("submission for user %s in contest %s: %w", userID, contestID, ErrNotFound)
	}
	return sub, err
}

func (s *PostgresStore) SetScore(ctx context.Context, submissionID string, total, max int) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE submissions SET total_score = $1, max_score = $2, updated_at = NOW() WHERE id = $3`,
		total, max, submissionID)
	if err != nil {
		return fmt.Errorf("setting score for submission %s: %w", submissionID, err)
	}
	return nil
}

func (s *PostgresStore) SetRank(ctx context.Context, submissionID string, rank int) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE submissions SET rank = $1, updated_at = NOW() WHERE id = $2`,
		rank, submissionID)
	if err != nil {
		return fmt.Errorf("setting rank for submission %s: %w", submissionID, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContest(row rowScanner, id string) (model.Contest, error) {
	var c model.Contest
	var status string
	if err := row.Scan(&c.ID, &c.MatchID, &c.RawCategory, &status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Contest{}, fmt.Errorf("contest %s: %w", id, ErrNotFound)
		}
		return model.Contest{}, fmt.Errorf("scanning contest: %w", err)
	}
	c.Status = model.Status(status)
	c.Category = model.ParseCategory(c.RawCategory)
	return c, nil
}

func collectContests(rows *sql.Rows) ([]model.Contest, error) {
	var out []model.Contest
	for rows.Next() {
		var c model.Contest
		var status string
		if err := rows.Scan(&c.ID, &c.MatchID, &c.RawCategory, &status); err != nil {
			return nil, fmt.Errorf("scanning contest: %w", err)
		}
		c.Status = model.Status(status)
		c.Category = model.ParseCategory(c.RawCategory)
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanSubmission(row rowScanner) (model.Submission, error) {
	var sub model.Submission
	var answers []byte
	var rank sql.NullInt64
	if err := row.Scan(&sub.ID, &sub.ContestID, &sub.UserID, &answers,
		&sub.TotalScore, &sub.MaxScore, &sub.SubmittedAtEpoch, &rank); err != nil {
		return model.Submission{}, err
	}
	if len(answers) > 0 {
		if err := json.Unmarshal(answers, &sub.Answers); err != nil {
			return model.Submission{}, fmt.Errorf("decoding answers for submission %s: %w", sub.ID, err)
		}
	}
	sub.Rank = int(rank.Int64)
	return sub, nil
}
