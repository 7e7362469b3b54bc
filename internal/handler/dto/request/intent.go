package request

type ParseIntentRequest struct {
	Query string `json:"query" binding:"required,max=1000"`
}
