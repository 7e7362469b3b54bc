//go:build unit

package api_test

import (
	"errors"
	"net/http"
	"testing"

	"affiliate-notify/internal/handler/api"
	resdto "affiliate-notify/internal/handler/dto/response"
	"affiliate-notify/internal/handler/validation"
	"affiliate-notify/internal/pkg/ptr"
	"affiliate-notify/internal/usecase/commands"
	"affiliate-notify/internal/usecase/queries"
	"affiliate-notify/tests/common/builder"
	"affiliate-notify/tests/common/httptest"
	commandsmock "affiliate-notify/tests/mock/commands"
	queriesmock "affiliate-notify/tests/mock/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type ProductHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockCtrl     *gomock.Controller
	mockCommands *commandsmock.MockProductCommands
	mockQueries  *queriesmock.MockProductQueries
}

func (s *ProductHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.Require().NoError(validation.Register())
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockCommands = commandsmock.NewMockProductCommands(s.mockCtrl)
	s.mockQueries = queriesmock.NewMockProductQueries(s.mockCtrl)
	handler := api.NewProductHandler(s.mockCommands, s.mockQueries)

	s.router.GET("/products", handler.List)
	s.router.GET("/products/:id", handler.Get)
	s.router.POST("/products/:id/click", handler.Click)
}

func (s *ProductHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestProductHandlerSuite(t *testing.T) {
	suite.Run(t, new(ProductHandlerTestSuite))
}

func (s *ProductHandlerTestSuite) TestList() {
	s.Run("success: binds filters from the query string", func() {
		view := builder.NewProductBuilder().BuildView()
		want := queries.ProductFilters{
			Category: ptr.Of("Laptops"),
			MinPrice: ptr.Of(int64(1000)),
			MaxPrice: ptr.Of(int64(90000)),
			Platform: ptr.Of("AMAZON"),
		}
		s.mockQueries.EXPECT().List(gomock.Any(), want, nil, 0).
			Return([]*queries.ProductView{view}, nil, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet,
			"/products?category=Laptops&min_price=1000&max_price=90000&platform=amazon", nil, "")

		var response resdto.ProductListResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Require().Len(response.Items, 1)
		s.Equal(view.ID, response.Items[0].ID)
		s.Empty(response.NextCursor)
	})

	s.Run("error: 400 on unknown platform", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/products?platform=alibaba", nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid query parameters")
	})

	s.Run("error: 400 on negative price", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/products?min_price=-1", nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid query parameters")
	})
}

func (s *ProductHandlerTestSuite) TestGet() {
	view := builder.NewProductBuilder().BuildView()
	url := "/products/" + view.ID.String()

	s.Run("success: counts the view and hides curator notes", func() {
		view.AdminNotes = "supplier margin 8%"
		gomock.InOrder(
			s.mockCommands.EXPECT().RecordView(gomock.Any(), view.ID).Return(nil),
			s.mockQueries.EXPECT().GetByID(gomock.Any(), view.ID).Return(view, nil),
		)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, "")

		var response map[string]any
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Equal(view.Title, response["title"])
		s.NotContains(response, "admin_notes")
	})

	s.Run("error: 404 when missing", func() {
		s.mockCommands.EXPECT().RecordView(gomock.Any(), view.ID).Return(commands.ErrProductNotFound)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "Product not found")
	})
}

func (s *ProductHandlerTestSuite) TestClick() {
	id := uuid.New()
	url := "/products/" + id.String() + "/click"

	s.Run("success: returns the affiliate link", func() {
		s.mockCommands.EXPECT().RecordClick(gomock.Any(), id).
			Return("https://www.amazon.in/dp/B0ABCDEFGH?tag=aff-21", nil)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, nil, "")

		var response resdto.ClickResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Equal("https://www.amazon.in/dp/B0ABCDEFGH?tag=aff-21", response.RedirectURL)
	})

	s.Run("error: maps usecase errors to proper statuses", func() {
		testCases := []struct {
			name           string
			commandsError  error
			expectedStatus int
		}{
			{name: "not found", commandsError: commands.ErrProductNotFound, expectedStatus: http.StatusNotFound},
			{name: "internal", commandsError: errors.New("db"), expectedStatus: http.StatusInternalServerError},
		}
		for _, tc := range testCases {
			s.Run(tc.name, func() {
				s.mockCommands.EXPECT().RecordClick(gomock.Any(), id).Return("", tc.commandsError)

				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, nil, "")
				httptest.AssertErrorResponse(s.T(), rec, tc.expectedStatus, "")
			})
		}
	})
}
