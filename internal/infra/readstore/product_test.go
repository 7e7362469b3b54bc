//go:build unit

package readstore

import (
	"context"
	"testing"

	"affiliate-notify/internal/domain/intent"
	"affiliate-notify/internal/domain/marketplace"
	"affiliate-notify/internal/infra"
	"affiliate-notify/internal/infra/sqlstore"
	"affiliate-notify/internal/pkg/ptr"
	"affiliate-notify/internal/usecase/queries"
	"affiliate-notify/tests/common/builder"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockProductReadQueries struct {
	mock.Mock
}

func (m *MockProductReadQueries) GetProductByID(ctx context.Context, db sqlstore.DBTX, id uuid.UUID) (sqlstore.Products, error) {
	args := m.Called(ctx, db, id)
	return args.Get(0).(sqlstore.Products), args.Error(1)
}

func (m *MockProductReadQueries) GetProductForUpdate(ctx context.Context, db sqlstore.DBTX, id uuid.UUID) (sqlstore.Products, error) {
	args := m.Called(ctx, db, id)
	return args.Get(0).(sqlstore.Products), args.Error(1)
}

func (m *MockProductReadQueries) GetProductsByIDs(ctx context.Context, db sqlstore.DBTX, ids []uuid.UUID) ([]sqlstore.Products, error) {
	args := m.Called(ctx, db, ids)
	return args.Get(0).([]sqlstore.Products), args.Error(1)
}

func (m *MockProductReadQueries) ListFreshProducts(ctx context.Context, db sqlstore.DBTX, arg sqlstore.ListFreshProductsParams) ([]sqlstore.Products, error) {
	args := m.Called(ctx, db, arg)
	return args.Get(0).([]sqlstore.Products), args.Error(1)
}

func (m *MockProductReadQueries) FindCandidateProducts(ctx context.Context, db sqlstore.DBTX, arg sqlstore.FindCandidateProductsParams) ([]sqlstore.Products, error) {
	args := m.Called(ctx, db, arg)
	return args.Get(0).([]sqlstore.Products), args.Error(1)
}

func (m *MockProductReadQueries) GetProductStatsByPlatform(ctx context.Context, db sqlstore.DBTX) ([]sqlstore.GetProductStatsByPlatformRow, error) {
	args := m.Called(ctx, db)
	return args.Get(0).([]sqlstore.GetProductStatsByPlatformRow), args.Error(1)
}

func TestProductFindByID(t *testing.T) {
	t.Run("maps the row to a view", func(t *testing.T) {
		b := builder.NewProductBuilder().With(func(b *builder.ProductBuilder) { b.OriginalPrice = ptr.Of(int64(80000)) })
		row := b.BuildInfra()
		mockQueries := new(MockProductReadQueries)
		mockQueries.On("GetProductByID", mock.Anything, mock.Anything, b.ID).Return(row, nil)

		view, err := NewProductReadStore(mockQueries, nil).FindByID(context.Background(), b.ID)

		require.NoError(t, err)
		assert.Equal(t, b.Title, view.Title)
		assert.Equal(t, "AMAZON", view.Platform)
		assert.Equal(t, "AMAZON_API", view.Strategy)
		assert.Equal(t, "B0ABCDEFGH", view.ASIN)
		assert.Equal(t, int64(80000), *view.OriginalPrice)
		mockQueries.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		id := uuid.New()
		mockQueries := new(MockProductReadQueries)
		mockQueries.On("GetProductByID", mock.Anything, mock.Anything, id).Return(sqlstore.Products{}, pgx.ErrNoRows)

		_, err := NewProductReadStore(mockQueries, nil).FindByID(context.Background(), id)

		assert.True(t, infra.IsKind(err, infra.KindNotFound))
	})

	t.Run("no ids skips the query", func(t *testing.T) {
		mockQueries := new(MockProductReadQueries)

		views, err := NewProductReadStore(mockQueries, nil).FindByIDs(context.Background(), nil)

		require.NoError(t, err)
		assert.Empty(t, views)
		mockQueries.AssertNotCalled(t, "GetProductsByIDs", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestProductListing(t *testing.T) {
	t.Run("filters escape like wildcards", func(t *testing.T) {
		mockQueries := new(MockProductReadQueries)
		mockQueries.On("ListFreshProducts", mock.Anything, mock.Anything, sqlstore.ListFreshProductsParams{
			Category: pgtype.Text{String: `50\% off`, Valid: true},
			MaxPrice: pgtype.Int8{Int64: 1000, Valid: true},
			Platform: pgtype.Text{String: "AMAZON", Valid: true},
			Limit:    21,
		}).Return([]sqlstore.Products{builder.NewProductBuilder().BuildInfra()}, nil)

		views, err := NewProductReadStore(mockQueries, nil).ListFirstPage(context.Background(), queries.ProductFilters{
			Category: ptr.Of(" 50% off "),
			MaxPrice: ptr.Of(int64(1000)),
			Platform: ptr.Of("AMAZON"),
		}, 21)

		require.NoError(t, err)
		assert.Len(t, views, 1)
		mockQueries.AssertExpectations(t)
	})

	t.Run("keyset carries the position", func(t *testing.T) {
		lastID := uuid.New()
		mockQueries := new(MockProductReadQueries)
		mockQueries.On("ListFreshProducts", mock.Anything, mock.Anything, mock.MatchedBy(func(p sqlstore.ListFreshProductsParams) bool {
			return p.AfterCreatedAt.Valid && p.AfterCreatedAt.Time.Equal(builder.BaseTime) &&
				p.AfterID.Valid && p.AfterID.Bytes == lastID && p.Limit == 11
		})).Return([]sqlstore.Products{}, nil)

		views, err := NewProductReadStore(mockQueries, nil).ListKeyset(context.Background(), queries.ProductFilters{}, builder.BaseTime, lastID, 11)

		require.NoError(t, err)
		assert.Empty(t, views)
		mockQueries.AssertExpectations(t)
	})
}

func TestLoadCandidates(t *testing.T) {
	exclude := []uuid.UUID{uuid.New()}
	in := intent.ParsedIntent{
		Category:  ptr.Of("Laptops"),
		MaxPrice:  ptr.Of(int64(80000)),
		MinPrice:  20000,
		Platforms: []marketplace.Platform{marketplace.Amazon, marketplace.Flipkart},
	}
	mockQueries := new(MockProductReadQueries)
	mockQueries.On("FindCandidateProducts", mock.Anything, mock.Anything, sqlstore.FindCandidateProductsParams{
		Category:   pgtype.Text{String: "Laptops", Valid: true},
		MinPrice:   20000,
		MaxPrice:   pgtype.Int8{Int64: 80000, Valid: true},
		Platforms:  []string{"AMAZON", "FLIPKART"},
		ExcludeIDs: exclude,
		Limit:      5,
	}).Return([]sqlstore.Products{builder.NewProductBuilder().BuildInfra()}, nil)

	items, err := NewProductReadStore(mockQueries, nil).LoadCandidates(context.Background(), in, exclude, 5)

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, items[0].IsFresh())
	mockQueries.AssertExpectations(t)
}

func TestStatsByPlatform(t *testing.T) {
	mockQueries := new(MockProductReadQueries)
	mockQueries.On("GetProductStatsByPlatform", mock.Anything, mock.Anything).Return([]sqlstore.GetProductStatsByPlatformRow{
		{Platform: "AMAZON", Total: 4, Fresh: 3, AvgPrice: 45000, Views: 10, Clicks: 2},
	}, nil)

	stats, err := NewProductReadStore(mockQueries, nil).StatsByPlatform(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []queries.PlatformStats{{Platform: "AMAZON", Total: 4, Fresh: 3, AvgPrice: 45000, Views: 10, Clicks: 2}}, stats)
}
