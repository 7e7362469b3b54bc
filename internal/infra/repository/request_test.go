//go:build unit

package repository

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"affiliate-notify/internal/domain/request"
	"affiliate-notify/internal/infra"
	"affiliate-notify/internal/infra/sqlstore"
	"affiliate-notify/tests/common/builder"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRequestWriteQueries struct {
	mock.Mock
}

func (m *MockRequestWriteQueries) CreateShoppingRequest(ctx context.Context, db sqlstore.DBTX, arg sqlstore.CreateShoppingRequestParams) error {
	return m.Called(ctx, db, arg).Error(0)
}

func (m *MockRequestWriteQueries) UpdateShoppingRequestState(ctx context.Context, db sqlstore.DBTX, arg sqlstore.UpdateShoppingRequestStateParams) (int64, error) {
	args := m.Called(ctx, db, arg)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRequestWriteQueries) DeleteShoppingRequest(ctx context.Context, db sqlstore.DBTX, id uuid.UUID) (int64, error) {
	args := m.Called(ctx, db, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRequestWriteQueries) DeleteShoppingRequests(ctx context.Context, db sqlstore.DBTX, status pgtype.Text) (int64, error) {
	args := m.Called(ctx, db, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRequestWriteQueries) ListExpiredActiveRequests(ctx context.Context, db sqlstore.DBTX, arg sqlstore.ListExpiredActiveRequestsParams) ([]sqlstore.ShoppingRequests, error) {
	args := m.Called(ctx, db, arg)
	return args.Get(0).([]sqlstore.ShoppingRequests), args.Error(1)
}

func TestRequestCreate(t *testing.T) {
	b := builder.NewRequestBuilder()
	mockQueries := new(MockRequestWriteQueries)
	mockQueries.On("CreateShoppingRequest", mock.Anything, mock.Anything, mock.MatchedBy(func(p sqlstore.CreateShoppingRequestParams) bool {
		var decoded map[string]any
		if err := json.Unmarshal(p.Intent, &decoded); err != nil {
			return false
		}
		return p.ID == b.ID && p.Status == "ACTIVE" && p.Category.String == "Laptops" &&
			decoded["maxPrice"] == float64(80000) && string(p.Notifications) == "[]"
	})).Return(nil)

	err := NewRequestRepository(mockQueries, nil).Create(context.Background(), nil, b.BuildDomain())

	assert.NoError(t, err)
	mockQueries.AssertExpectations(t)
}

func TestRequestSaveState(t *testing.T) {
	b := builder.NewRequestBuilder().With(func(b *builder.RequestBuilder) { b.Version = 3 })
	productID := uuid.New()
	now := builder.BaseTime.Add(time.Hour)

	newReq := func(t *testing.T) *request.Request {
		r := b.BuildDomain()
		_, err := r.RecordMatch(productID, now, 1)
		require.NoError(t, err)
		return r
	}

	t.Run("guards on the loaded version", func(t *testing.T) {
		mockQueries := new(MockRequestWriteQueries)
		mockQueries.On("UpdateShoppingRequestState", mock.Anything, mock.Anything, mock.MatchedBy(func(p sqlstore.UpdateShoppingRequestStateParams) bool {
			return p.ID == b.ID && p.Version == 3 && p.Status == "FULFILLED" &&
				p.FulfilledAt.Valid && p.FulfilledAt.Time.Equal(now) &&
				len(p.MatchedProductIds) == 1 && p.MatchedProductIds[0] == productID
		})).Return(int64(1), nil)

		assert.NoError(t, NewRequestRepository(mockQueries, nil).SaveState(context.Background(), nil, newReq(t)))
		mockQueries.AssertExpectations(t)
	})

	t.Run("stale version is a conflict", func(t *testing.T) {
		mockQueries := new(MockRequestWriteQueries)
		mockQueries.On("UpdateShoppingRequestState", mock.Anything, mock.Anything, mock.Anything).Return(int64(0), nil)

		err := NewRequestRepository(mockQueries, nil).SaveState(context.Background(), nil, newReq(t))

		assert.True(t, infra.IsKind(err, infra.KindConflict))
	})

	t.Run("database error", func(t *testing.T) {
		mockQueries := new(MockRequestWriteQueries)
		mockQueries.On("UpdateShoppingRequestState", mock.Anything, mock.Anything, mock.Anything).Return(int64(0), assert.AnError)

		err := NewRequestRepository(mockQueries, nil).SaveState(context.Background(), nil, newReq(t))

		assert.True(t, infra.IsKind(err, infra.KindDBFailure))
	})
}

func TestRequestDelete(t *testing.T) {
	t.Run("missing row", func(t *testing.T) {
		id := uuid.New()
		mockQueries := new(MockRequestWriteQueries)
		mockQueries.On("DeleteShoppingRequest", mock.Anything, mock.Anything, id).Return(int64(0), nil)

		err := NewRequestRepository(mockQueries, nil).Delete(context.Background(), nil, id)

		assert.True(t, infra.IsKind(err, infra.KindNotFound))
	})

	t.Run("all with status", func(t *testing.T) {
		status := request.StatusCancelled
		mockQueries := new(MockRequestWriteQueries)
		mockQueries.On("DeleteShoppingRequests", mock.Anything, mock.Anything, pgtype.Text{String: "CANCELLED", Valid: true}).Return(int64(3), nil)

		n, err := NewRequestRepository(mockQueries, nil).DeleteAll(context.Background(), nil, &status)

		require.NoError(t, err)
		assert.Equal(t, int64(3), n)
	})

	t.Run("all without status", func(t *testing.T) {
		mockQueries := new(MockRequestWriteQueries)
		mockQueries.On("DeleteShoppingRequests", mock.Anything, mock.Anything, pgtype.Text{}).Return(int64(9), nil)

		n, err := NewRequestRepository(mockQueries, nil).DeleteAll(context.Background(), nil, nil)

		require.NoError(t, err)
		assert.Equal(t, int64(9), n)
	})
}

func TestListExpired(t *testing.T) {
	now := builder.BaseTime.Add(31 * 24 * time.Hour)
	mockQueries := new(MockRequestWriteQueries)
	mockQueries.On("ListExpiredActiveRequests", mock.Anything, mock.Anything, mock.MatchedBy(func(p sqlstore.ListExpiredActiveRequestsParams) bool {
		return p.Now.Time.Equal(now) && p.Limit == 200
	})).Return([]sqlstore.ShoppingRequests{builder.NewRequestBuilder().BuildInfra()}, nil)

	reqs, err := NewRequestRepository(mockQueries, nil).ListExpired(context.Background(), nil, now, 200)

	require.NoError(t, err)
	require.Len(t, reqs, 1)
	assert.True(t, reqs[0].Expire(now))
}
