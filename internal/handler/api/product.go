package api

import (
	"net/http"

	reqdto "affiliate-notify/internal/handler/dto/request"
	resdto "affiliate-notify/internal/handler/dto/response"
	"affiliate-notify/internal/handler/httperr"
	"affiliate-notify/internal/pkg/errs"
	"affiliate-notify/internal/usecase/commands"
	"affiliate-notify/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

// ProductHandler serves the public catalog.
type ProductHandler struct {
	cmds commands.ProductCommands
	q    queries.ProductQueries
}

func NewProductHandler(cmds commands.ProductCommands, q queries.ProductQueries) *ProductHandler {
	return &ProductHandler{cmds: cmds, q: q}
}

// @Summary List products
// @Description Cursor-paginated list of fresh catalog entries
// @Tags products
// @Produce json
// @Param category query string false "Category"
// @Param min_price query int false "Minimum price"
// @Param max_price query int false "Maximum price"
// @Param platform query string false "Platform"
// @Param search query string false "Text search over title, description and tags"
// @Param cursor query string false "Pagination cursor"
// @Param limit query int false "Page size"
// @Success 200 {object} resdto.ProductListResponse
// @Failure 400 {object} httperr.Response
// @Router /products [get]
func (h *ProductHandler) List(c *gin.Context) {
	var query reqdto.ListProductsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid query parameters", nil)
		return
	}

	items, next, err := h.q.List(c.Request.Context(), query.Filters(), cursorFrom(query.Cursor), query.Limit)
	if err != nil {
		respondProductError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromProductList(items, next))
}

// @Summary Get a product
// @Description Returns the product and counts a view
// @Tags products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} resdto.ProductResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /products/{id} [get]
func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.cmds.RecordView(c.Request.Context(), id); err != nil {
		respondProductError(c, err)
		return
	}
	view, err := h.q.GetByID(c.Request.Context(), id)
	if err != nil {
		respondProductError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromProductView(view))
}

// @Summary Follow an affiliate link
// @Description Counts a click and returns the URL to redirect to
// @Tags products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} resdto.ClickResponse
// @Failure 404 {object} httperr.Response
// @Router /products/{id}/click [post]
func (h *ProductHandler) Click(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	link, err := h.cmds.RecordClick(c.Request.Context(), id)
	if err != nil {
		respondProductError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.ClickResponse{RedirectURL: link})
}

func respondProductError(c *gin.Context, err error) {
	switch {
	case errs.Is(err, commands.ErrInvalidProduct):
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid product", nil)
	case errs.Is(err, queries.ErrInvalidCursor):
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid cursor", nil)
	case errs.Is(err, commands.ErrProductNotFound), errs.Is(err, queries.ErrProductNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Product not found", nil)
	default:
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
	}
}
