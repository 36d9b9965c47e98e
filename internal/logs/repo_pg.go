package logs

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new log.
func (r *PGRepo) Create(ctx context.Context, log Log) error {
	const query = `
INSERT INTO logs (id, request_id, user_id, ts, query, status, result, feedback)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	resultPayload, err := marshalResult(log.Result)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, query,
		log.ID,
		log.RequestID,
		log.UserID,
		log.Timestamp,
		log.Query,
		log.Status,
		resultPayload,
		log.Feedback,
	)
	return err
}

// GetByID returns a log by ID.
func (r *PGRepo) GetByID(ctx context.Context, logID string) (Log, error) {
	const query = `
SELECT id, request_id, user_id, ts, query, status, result, feedback
FROM logs
WHERE id = $1
LIMIT 1`
	row := r.DB.QueryRowContext(ctx, query, logID)
	log, err := scanLog(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Log{}, ErrNotFound
	}
	return log, err
}

// UpdateStatusResult updates only the status and result columns.
// Feedback written concurrently by another caller is left untouched.
func (r *PGRepo) UpdateStatusResult(ctx context.Context, logID, status string, result *AnalysisResult) error {
	const query = `UPDATE logs SET status = $2, result = $3 WHERE id = $1`
	resultPayload, err := marshalResult(result)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx, query, logID, status, resultPayload)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// UpdateFeedback updates only the feedback column.
func (r *PGRepo) UpdateFeedback(ctx context.Context, logID string, feedback bool) error {
	const query = `UPDATE logs SET feedback = $2 WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, logID, feedback)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// ListAll returns all logs ordered by timestamp descending.
func (r *PGRepo) ListAll(ctx context.Context) ([]Log, error) {
	const query = `
SELECT id, request_id, user_id, ts, query, status, result, feedback
FROM logs
ORDER BY ts DESC`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Log
	for rows.Next() {
		log, err := scanLog(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, log)
	}
	return out, rows.Err()
}

// ListPaginated returns one page of logs ordered by timestamp descending.
func (r *PGRepo) ListPaginated(ctx context.Context, skip, limit int) (Page, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM logs`).Scan(&total); err != nil {
		return Page{}, err
	}

	const query = `
SELECT id, request_id, user_id, ts, query, status, result, feedback
FROM logs
ORDER BY ts DESC
OFFSET $1 LIMIT $2`
	rows, err := r.DB.QueryContext(ctx, query, skip, limit)
	if err != nil {
		return Page{}, err
	}
	defer rows.Close()

	data := make([]Log, 0, limit)
	for rows.Next() {
		log, err := scanLog(rows)
		if err != nil {
			return Page{}, err
		}
		data = append(data, log)
	}
	if err := rows.Err(); err != nil {
		return Page{}, err
	}

	return Page{Total: total, Skip: skip, Limit: limit, Data: data}, nil
}

// Delete removes a log.
func (r *PGRepo) Delete(ctx context.Context, logID string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM logs WHERE id = $1`, logID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLog(row rowScanner) (Log, error) {
	var (
		log       Log
		ts        time.Time
		query     sql.NullString
		rawResult []byte
		feedback  sql.NullBool
	)
	if err := row.Scan(&log.ID, &log.RequestID, &log.UserID, &ts, &query, &log.Status, &rawResult, &feedback); err != nil {
		return Log{}, err
	}
	log.Timestamp = ts.UTC()
	if query.Valid {
		log.Query = &query.String
	}
	if len(rawResult) > 0 {
		var result AnalysisResult
		if err := json.Unmarshal(rawResult, &result); err != nil {
			return Log{}, fmt.Errorf("unmarshal result for log %s: %w", log.ID, err)
		}
		log.Result = &result
	}
	if feedback.Valid {
		log.Feedback = &feedback.Bool
	}
	return log, nil
}

func marshalResult(result *AnalysisResult) (any, error) {
	if result == nil {
		return nil, nil
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return payload, nil
}

func requireRow(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
