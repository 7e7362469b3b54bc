package repository

import (
	"context"
	"time"

	"affiliate-notify/internal/infra"
	"affiliate-notify/internal/infra/sqlstore"
	"affiliate-notify/internal/pkg/pgconv"
	"affiliate-notify/internal/usecase/shared"

	"github.com/google/uuid"
)

type NotificationWriteQueries interface {
	CreateNotificationJob(ctx context.Context, db sqlstore.DBTX, arg sqlstore.CreateNotificationJobParams) (uuid.UUID, error)
	LeaseNotificationJobs(ctx context.Context, db sqlstore.DBTX, arg sqlstore.LeaseNotificationJobsParams) ([]sqlstore.NotificationJobs, error)
	MarkNotificationJobDone(ctx context.Context, db sqlstore.DBTX, id uuid.UUID) error
	MarkNotificationJobFailed(ctx context.Context, db sqlstore.DBTX, arg sqlstore.MarkNotificationJobFailedParams) error
}

type NotificationRepository struct {
	queries NotificationWriteQueries
	db      sqlstore.DBTX
}

func NewNotificationRepository(queries NotificationWriteQueries, db sqlstore.DBTX) *NotificationRepository {
	return &NotificationRepository{
		queries: queries,
		db:      db,
	}
}

func (r *NotificationRepository) CreateJob(ctx context.Context, tx sqlstore.DBTX, job shared.NewNotificationJob) (uuid.UUID, error) {
	id, err := r.queries.CreateNotificationJob(ctx, tx, sqlstore.CreateNotificationJobParams{
		Kind:    job.Kind,
		Topic:   job.Topic,
		Key:     job.Key,
		Payload: job.Payload,
		RunAt:   pgconv.TimeToPgtype(job.RunAt),
	})
	if err != nil {
		return uuid.Nil, infra.WrapRepoErr("failed to create notification job", err)
	}
	return id, nil
}

func (r *NotificationRepository) LeaseDue(ctx context.Context, tx sqlstore.DBTX, now time.Time, lease time.Duration, limit int32) ([]shared.NotificationJob, error) {
	rows, err := r.queries.LeaseNotificationJobs(ctx, tx, sqlstore.LeaseNotificationJobsParams{
		Now:        pgconv.TimeToPgtype(now),
		Limit:      limit,
		LeaseUntil: pgconv.TimeToPgtype(now.Add(lease)),
	})
	if err != nil {
		return nil, infra.WrapRepoErr("failed to lease notification jobs", err)
	}
	jobs := make([]shared.NotificationJob, len(rows))
	for i, row := range rows {
		jobs[i] = shared.NotificationJob{
			ID:       row.ID,
			Kind:     row.Kind,
			Topic:    row.Topic,
			Key:      row.Key,
			Payload:  row.Payload,
			Attempts: int(row.Attempts),
			RunAt:    pgconv.TimeFromPgtype(row.RunAt),
		}
	}
	return jobs, nil
}

func (r *NotificationRepository) MarkDone(ctx context.Context, tx sqlstore.DBTX, jobID uuid.UUID) error {
	if err := r.queries.MarkNotificationJobDone(ctx, tx, jobID); err != nil {
		return infra.WrapRepoErr("failed to mark notification job done", err)
	}
	return nil
}

// MarkFailed records a failed attempt. When dead is false the job is
// rescheduled for retryAt.
func (r *NotificationRepository) MarkFailed(ctx context.Context, tx sqlstore.DBTX, jobID uuid.UUID, lastError string, retryAt time.Time, dead bool) error {
	status := shared.JobStatusQueued
	if dead {
		status = shared.JobStatusDead
	}
	err := r.queries.MarkNotificationJobFailed(ctx, tx, sqlstore.MarkNotificationJobFailedParams{
		ID:        jobID,
		Status:    status,
		LastError: pgconv.TextOrNull(lastError),
		RunAt:     pgconv.TimeToPgtype(retryAt),
	})
	if err != nil {
		return infra.WrapRepoErr("failed to mark notification job failed", err)
	}
	return nil
}
