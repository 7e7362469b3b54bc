package api

import (
	"net/http"

	reqdto "affiliate-notify/internal/handler/dto/request"
	resdto "affiliate-notify/internal/handler/dto/response"
	"affiliate-notify/internal/handler/httperr"
	"affiliate-notify/internal/handler/middleware"
	"affiliate-notify/internal/pkg/errs"
	"affiliate-notify/internal/usecase/commands"
	"affiliate-notify/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type RequestHandler struct {
	cmds commands.RequestCommands
	q    queries.RequestQueries
}

func NewRequestHandler(cmds commands.RequestCommands, q queries.RequestQueries) *RequestHandler {
	return &RequestHandler{cmds: cmds, q: q}
}

// @Summary Submit a shopping request
// @Description Parse the text, store the request and match it against the fresh catalog
// @Tags requests
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Makes retries return the first result"
// @Param request body reqdto.SubmitRequest true "Shopping request"
// @Success 201 {object} resdto.SubmitResponse
// @Success 200 {object} resdto.SubmitResponse "Replayed"
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Router /requests [post]
func (h *RequestHandler) Submit(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, nil, "User not authenticated", nil)
		return
	}

	idempotencyKey, err := idempotencyKeyFrom(c)
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid Idempotency-Key header", nil)
		return
	}

	var req reqdto.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}

	result, err := h.cmds.Submit(c.Request.Context(), req, userID, idempotencyKey)
	if err != nil {
		respondRequestError(c, err)
		return
	}

	role, _ := middleware.GetUserRole(c)
	detail, err := h.q.GetDetail(c.Request.Context(), result.RequestID, userID, role)
	if err != nil {
		respondRequestError(c, err)
		return
	}

	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
		c.Header(idempotentReplayedHeader, "true")
	}
	c.JSON(status, resdto.SubmitResponse{
		Request: resdto.FromRequestView(detail.Request),
		Match:   resdto.FromMatchResult(result.Match),
	})
}

// @Summary List my requests
// @Tags requests
// @Security BearerAuth
// @Produce json
// @Param status query string false "ACTIVE, FULFILLED, CANCELLED or EXPIRED"
// @Param cursor query string false "Pagination cursor"
// @Param limit query int false "Page size"
// @Success 200 {object} resdto.RequestListResponse
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Router /requests/mine [get]
func (h *RequestHandler) ListMine(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, nil, "User not authenticated", nil)
		return
	}

	var query reqdto.ListRequestsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid query parameters", nil)
		return
	}

	items, next, err := h.q.ListMine(c.Request.Context(), userID, query.StatusFilter(), cursorFrom(query.Cursor), query.Limit)
	if err != nil {
		respondRequestError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromRequestList(items, next))
}

// @Summary Get a request
// @Description Owner or admin only. Includes the matched products.
// @Tags requests
// @Security BearerAuth
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} resdto.RequestDetailResponse
// @Failure 400 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /requests/{id} [get]
func (h *RequestHandler) Get(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, nil, "User not authenticated", nil)
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	role, _ := middleware.GetUserRole(c)
	detail, err := h.q.GetDetail(c.Request.Context(), id, userID, role)
	if err != nil {
		respondRequestError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromRequestDetail(detail))
}

// @Summary Cancel a request
// @Tags requests
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Success 204 "No Content"
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /requests/{id}/cancel [post]
func (h *RequestHandler) Cancel(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, nil, "User not authenticated", nil)
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.cmds.Cancel(c.Request.Context(), id, userID); err != nil {
		respondRequestError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func respondRequestError(c *gin.Context, err error) {
	switch {
	case errs.Is(err, commands.ErrInvalidRequest):
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid shopping request", nil)
	case errs.Is(err, queries.ErrInvalidCursor):
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid cursor", nil)
	case errs.Is(err, commands.ErrUserNotFound):
		httperr.AbortWithError(c, http.StatusUnauthorized, err, "User not found", nil)
	case errs.Is(err, commands.ErrUserInactive):
		httperr.AbortWithError(c, http.StatusForbidden, err, "Account is inactive", nil)
	case errs.Is(err, commands.ErrRequestAccess), errs.Is(err, queries.ErrRequestAccess):
		httperr.AbortWithError(c, http.StatusForbidden, err, "Access denied", nil)
	case errs.Is(err, commands.ErrRequestNotFound), errs.Is(err, queries.ErrRequestNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Request not found", nil)
	case errs.Is(err, commands.ErrRequestClosed):
		httperr.AbortWithError(c, http.StatusConflict, err, "Request is no longer active", nil)
	case errs.Is(err, commands.ErrRequestBusy):
		httperr.AbortWithError(c, http.StatusConflict, err, "Request was modified, retry", nil)
	case errs.Is(err, commands.ErrIdempotencyInProgress):
		httperr.AbortWithError(c, http.StatusConflict, err, "Request with this Idempotency-Key is being processed", nil)
	case errs.Is(err, commands.ErrIdempotencyKeyReused):
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, "Idempotency-Key was used with a different body", nil)
	default:
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
	}
}

const (
	idempotencyKeyHeader     = "Idempotency-Key"
	idempotentReplayedHeader = "Idempotent-Replayed"
)

// idempotencyKeyFrom returns uuid.Nil when the header is absent.
func idempotencyKeyFrom(c *gin.Context) (uuid.UUID, error) {
	raw := c.GetHeader(idempotencyKeyHeader)
	if raw == "" {
		return uuid.Nil, nil
	}
	key, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errs.Wrap(err, "parse idempotency key")
	}
	if key == uuid.Nil {
		return uuid.Nil, errs.New("idempotency key must not be the nil UUID")
	}
	return key, nil
}

func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid ID format", nil)
		return uuid.Nil, false
	}
	return id, true
}

func cursorFrom(s string) *queries.Cursor {
	if s == "" {
		return nil
	}
	return &queries.Cursor{After: s}
}
