package converter

import (
	"encoding/json"
	"fmt"

	"affiliate-notify/internal/domain/intent"
	"affiliate-notify/internal/domain/request"
	"affiliate-notify/internal/infra/sqlstore"
	"affiliate-notify/internal/pkg/pgconv"
	"affiliate-notify/internal/pkg/ptr"
)

func RequestToInfra(r *request.Request) (sqlstore.ShoppingRequests, error) {
	intentJSON, err := json.Marshal(r.Intent())
	if err != nil {
		return sqlstore.ShoppingRequests{}, fmt.Errorf("marshal intent: %w", err)
	}
	notifications, err := json.Marshal(r.Notifications())
	if err != nil {
		return sqlstore.ShoppingRequests{}, fmt.Errorf("marshal notifications: %w", err)
	}

	return sqlstore.ShoppingRequests{
		ID:                r.ID(),
		UserID:            r.UserID(),
		UserEmail:         r.UserEmail(),
		Query:             r.Query(),
		Intent:            intentJSON,
		Category:          pgconv.StringPtrToPgtype(ptr.NilIfZero(r.Intent().CategoryValue())),
		Status:            r.Status().String(),
		MatchedProductIds: r.MatchedProductIDs(),
		Notifications:     notifications,
		FulfilledAt:       pgconv.TimePtrToPgtype(r.FulfilledAt()),
		ExpiresAt:         pgconv.TimeToPgtype(r.ExpiresAt()),
		Version:           r.Version(),
		CreatedAt:         pgconv.TimeToPgtype(r.CreatedAt()),
		UpdatedAt:         pgconv.TimeToPgtype(r.UpdatedAt()),
	}, nil
}

func RequestFromInfra(row sqlstore.ShoppingRequests) (*request.Request, error) {
	var parsed intent.ParsedIntent
	if err := json.Unmarshal(row.Intent, &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal intent of request %s: %w", row.ID, err)
	}
	if parsed.Tags == nil {
		parsed.Tags = []string{}
	}
	var notifications []request.Notification
	if len(row.Notifications) > 0 {
		if err := json.Unmarshal(row.Notifications, &notifications); err != nil {
			return nil, fmt.Errorf("unmarshal notifications of request %s: %w", row.ID, err)
		}
	}
	status, err := request.NewStatus(row.Status)
	if err != nil {
		return nil, err
	}

	return request.ReconstructRequest(
		row.ID,
		row.UserID,
		row.UserEmail,
		row.Query,
		parsed,
		status,
		row.MatchedProductIds,
		notifications,
		pgconv.TimePtrFromPgtype(row.FulfilledAt),
		pgconv.TimeFromPgtype(row.ExpiresAt),
		row.Version,
		pgconv.TimeFromPgtype(row.CreatedAt),
		pgconv.TimeFromPgtype(row.UpdatedAt),
	), nil
}

func RequestsFromInfra(rows []sqlstore.ShoppingRequests) ([]*request.Request, error) {
	items := make([]*request.Request, 0, len(rows))
	for _, row := range rows {
		r, err := RequestFromInfra(row)
		if err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, nil
}
