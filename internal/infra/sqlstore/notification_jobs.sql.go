package sqlstore

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const createNotificationJob = `
INSERT INTO notification_jobs (kind, topic, key, payload, run_at)
VALUES ($1, $2, $3, $4, $5)
RETURNING id`

type CreateNotificationJobParams struct {
	Kind    string             `json:"kind"`
	Topic   string             `json:"topic"`
	Key     string             `json:"key"`
	Payload []byte             `json:"payload"`
	RunAt   pgtype.Timestamptz `json:"run_at"`
}

func (q *Queries) CreateNotificationJob(ctx context.Context, db DBTX, arg CreateNotificationJobParams) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.QueryRow(ctx, createNotificationJob, arg.Kind, arg.Topic, arg.Key, arg.Payload, arg.RunAt).Scan(&id)
	return id, err
}

// Leased rows are pushed to $3 so other dispatchers skip them after this
// statement commits. A job whose outcome is never recorded comes due again
// once the lease runs out.
const leaseNotificationJobs = `
WITH due AS (
    SELECT id FROM notification_jobs
    WHERE status = 'queued' AND run_at <= $1
    ORDER BY run_at, id
    LIMIT $2
    FOR UPDATE SKIP LOCKED
)
UPDATE notification_jobs j
SET run_at = $3, updated_at = now()
FROM due
WHERE j.id = due.id
RETURNING j.id, j.kind, j.topic, j.key, j.payload, j.status, j.attempts, j.run_at, j.last_error, j.created_at, j.updated_at`

type LeaseNotificationJobsParams struct {
	Now        pgtype.Timestamptz `json:"now"`
	Limit      int32              `json:"limit"`
	LeaseUntil pgtype.Timestamptz `json:"lease_until"`
}

func (q *Queries) LeaseNotificationJobs(ctx context.Context, db DBTX, arg LeaseNotificationJobsParams) ([]NotificationJobs, error) {
	rows, err := db.Query(ctx, leaseNotificationJobs, arg.Now, arg.Limit, arg.LeaseUntil)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []NotificationJobs
	for rows.Next() {
		var i NotificationJobs
		if err := rows.Scan(
			&i.ID,
			&i.Kind,
			&i.Topic,
			&i.Key,
			&i.Payload,
			&i.Status,
			&i.Attempts,
			&i.RunAt,
			&i.LastError,
			&i.CreatedAt,
			&i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const markNotificationJobDone = `
UPDATE notification_jobs
SET status = 'done', attempts = attempts + 1, last_error = NULL, updated_at = now()
WHERE id = $1`

func (q *Queries) MarkNotificationJobDone(ctx context.Context, db DBTX, id uuid.UUID) error {
	_, err := db.Exec(ctx, markNotificationJobDone, id)
	return err
}

const markNotificationJobFailed = `
UPDATE notification_jobs
SET status = $2, attempts = attempts + 1, last_error = $3, run_at = $4, updated_at = now()
WHERE id = $1`

type MarkNotificationJobFailedParams struct {
	ID        uuid.UUID          `json:"id"`
	Status    string             `json:"status"`
	LastError pgtype.Text        `json:"last_error"`
	RunAt     pgtype.Timestamptz `json:"run_at"`
}

func (q *Queries) MarkNotificationJobFailed(ctx context.Context, db DBTX, arg MarkNotificationJobFailedParams) error {
	_, err := db.Exec(ctx, markNotificationJobFailed, arg.ID, arg.Status, arg.LastError, arg.RunAt)
	return err
}

const countNotificationJobsByStatus = `SELECT status, count(*)::bigint FROM notification_jobs GROUP BY status ORDER BY status`

type CountNotificationJobsByStatusRow struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

func (q *Queries) CountNotificationJobsByStatus(ctx context.Context, db DBTX) ([]CountNotificationJobsByStatusRow, error) {
	rows, err := db.Query(ctx, countNotificationJobsByStatus)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CountNotificationJobsByStatusRow
	for rows.Next() {
		var i CountNotificationJobsByStatusRow
		if err := rows.Scan(&i.Status, &i.Count); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
