package api

import (
	"net/http"

	reqdto "affiliate-notify/internal/handler/dto/request"
	resdto "affiliate-notify/internal/handler/dto/response"
	"affiliate-notify/internal/handler/httperr"
	"affiliate-notify/internal/handler/middleware"
	"affiliate-notify/internal/usecase/commands"
	"affiliate-notify/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

// AdminHandler serves the curator and admin console: catalog writes and
// request moderation.
type AdminHandler struct {
	requestCmds commands.RequestCommands
	requests    queries.RequestQueries
	productCmds commands.ProductCommands
	products    queries.ProductQueries
}

func NewAdminHandler(
	requestCmds commands.RequestCommands,
	requests queries.RequestQueries,
	productCmds commands.ProductCommands,
	products queries.ProductQueries,
) *AdminHandler {
	return &AdminHandler{
		requestCmds: requestCmds,
		requests:    requests,
		productCmds: productCmds,
		products:    products,
	}
}

// @Summary List all requests
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Param status query string false "ACTIVE, FULFILLED, CANCELLED or EXPIRED"
// @Param cursor query string false "Pagination cursor"
// @Param limit query int false "Page size"
// @Success 200 {object} resdto.RequestListResponse
// @Failure 400 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Router /admin/requests [get]
func (h *AdminHandler) ListRequests(c *gin.Context) {
	var query reqdto.ListRequestsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid query parameters", nil)
		return
	}

	items, next, err := h.requests.ListAll(c.Request.Context(), query.StatusFilter(), cursorFrom(query.Cursor), query.Limit)
	if err != nil {
		respondRequestError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromRequestList(items, next))
}

// @Summary Request statistics
// @Description Counts by status and the ten most requested categories
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} queries.RequestStats
// @Router /admin/requests/stats [get]
func (h *AdminHandler) RequestStats(c *gin.Context) {
	stats, err := h.requests.Stats(c.Request.Context())
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// @Summary Delete a request
// @Tags admin
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Success 204 "No Content"
// @Failure 404 {object} httperr.Response
// @Router /admin/requests/{id} [delete]
func (h *AdminHandler) DeleteRequest(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.requestCmds.Delete(c.Request.Context(), id); err != nil {
		respondRequestError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Delete requests in bulk
// @Description Deletes every request, or only those with the given status
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Param status query string false "Restrict to one status"
// @Success 200 {object} resdto.DeleteCountResponse
// @Failure 400 {object} httperr.Response
// @Router /admin/requests [delete]
func (h *AdminHandler) DeleteRequests(c *gin.Context) {
	var query reqdto.DeleteRequestsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid query parameters", nil)
		return
	}
	status, err := query.ToDomain()
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid status", nil)
		return
	}

	deleted, err := h.requestCmds.DeleteAll(c.Request.Context(), status)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}
	c.JSON(http.StatusOK, resdto.DeleteCountResponse{Deleted: deleted})
}

// @Summary Create a product
// @Description Adds a catalog entry and notifies matching requests
// @Tags admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body reqdto.CreateProductRequest true "Product"
// @Success 201 {object} resdto.ProductWriteResponse
// @Failure 400 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Router /admin/products [post]
func (h *AdminHandler) CreateProduct(c *gin.Context) {
	curatorID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, nil, "User not authenticated", nil)
		return
	}

	var req reqdto.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}

	result, err := h.productCmds.Create(c.Request.Context(), req, curatorID)
	if err != nil {
		respondProductError(c, err)
		return
	}
	h.respondProductWrite(c, http.StatusCreated, result)
}

// @Summary Update a product
// @Description Partial update. A price change resets freshness and notifies matching requests.
// @Tags admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param request body reqdto.UpdateProductRequest true "Changed fields"
// @Success 200 {object} resdto.ProductWriteResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /admin/products/{id} [put]
func (h *AdminHandler) UpdateProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req reqdto.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}

	result, err := h.productCmds.Update(c.Request.Context(), id, req)
	if err != nil {
		respondProductError(c, err)
		return
	}
	h.respondProductWrite(c, http.StatusOK, result)
}

// @Summary Delete a product
// @Tags admin
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Success 204 "No Content"
// @Failure 404 {object} httperr.Response
// @Router /admin/products/{id} [delete]
func (h *AdminHandler) DeleteProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.productCmds.Delete(c.Request.Context(), id); err != nil {
		respondProductError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Catalog statistics
// @Description Per platform: count, fresh count, average price, views and clicks
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Success 200 {array} queries.PlatformStats
// @Router /admin/products/stats [get]
func (h *AdminHandler) ProductStats(c *gin.Context) {
	stats, err := h.products.StatsByPlatform(c.Request.Context())
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *AdminHandler) respondProductWrite(c *gin.Context, status int, result *commands.ProductResult) {
	view, err := h.products.GetByID(c.Request.Context(), result.ProductID)
	if err != nil {
		respondProductError(c, err)
		return
	}
	c.JSON(status, resdto.ProductWriteResponse{
		Product: resdto.FromCuratedProductView(view),
		Match:   resdto.FromMatchResult(result.Match),
	})
}
