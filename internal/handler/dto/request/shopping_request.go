package request

import (
	domrequest "affiliate-notify/internal/domain/request"
	"affiliate-notify/internal/pkg/ptr"
)

type SubmitRequest struct {
	Query string `json:"query" binding:"required,max=1000"`
}

// ListRequestsQuery is bound from the query string of the request listings.
type ListRequestsQuery struct {
	Status string `form:"status" binding:"omitempty,request_status"`
	Cursor string `form:"cursor"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=200"`
}

func (q *ListRequestsQuery) StatusFilter() *string {
	return ptr.NilIfZero(q.Status)
}

// DeleteRequestsQuery scopes a bulk delete to one status, or all when empty.
type DeleteRequestsQuery struct {
	Status string `form:"status" binding:"omitempty,request_status"`
}

func (q *DeleteRequestsQuery) ToDomain() (*domrequest.Status, error) {
	if q.Status == "" {
		return nil, nil
	}
	s, err := domrequest.NewStatus(q.Status)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
