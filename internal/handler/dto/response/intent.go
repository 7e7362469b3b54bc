package response

import "affiliate-notify/internal/domain/intent"

type ParseIntentResponse struct {
	Query  string              `json:"query"`
	Intent intent.ParsedIntent `json:"intent"`
}
