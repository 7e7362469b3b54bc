//go:build unit

package commands_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"affiliate-notify/internal/domain/product"
	"affiliate-notify/internal/domain/request"
	"affiliate-notify/internal/infra/sqlstore"
	"affiliate-notify/internal/pkg/clock"
	"affiliate-notify/internal/pkg/config"
	"affiliate-notify/internal/usecase/commands"
	"affiliate-notify/internal/usecase/shared"
	"affiliate-notify/tests/common/builder"
	sharedmock "affiliate-notify/tests/mock/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type sweepFixture struct {
	uow      *sharedmock.MockUnitOfWork
	tx       *sharedmock.MockTx
	products *sharedmock.MockProductRepository
	requests *sharedmock.MockRequestRepository
	keys     *sharedmock.MockIdempotencyRepository
	now      time.Time
	cfg      config.Config
	cmds     commands.SweepCommands
}

func newSweepFixture(t *testing.T) *sweepFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := &sweepFixture{
		uow:      sharedmock.NewMockUnitOfWork(ctrl),
		tx:       sharedmock.NewMockTx(ctrl),
		products: sharedmock.NewMockProductRepository(ctrl),
		requests: sharedmock.NewMockRequestRepository(ctrl),
		keys:     sharedmock.NewMockIdempotencyRepository(ctrl),
		now:      builder.BaseTime.Add(60 * 24 * time.Hour),
		cfg:      config.NewTestConfig(),
	}
	f.uow.EXPECT().Within(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(context.Context, shared.Tx) error) error {
			return fn(ctx, f.tx)
		}).AnyTimes()
	f.tx.EXPECT().Products().Return(f.products).AnyTimes()
	f.tx.EXPECT().Requests().Return(f.requests).AnyTimes()
	f.tx.EXPECT().Idempotency().Return(f.keys).AnyTimes()
	f.tx.EXPECT().DB().Return(nil).AnyTimes()
	f.cmds = commands.NewSweepCommands(f.uow, clock.NewMockClock(f.now), f.cfg)
	return f
}

func (f *sweepFixture) pricedAgo(age time.Duration, freshness product.Freshness) *product.Product {
	return builder.NewProductBuilder().With(func(b *builder.ProductBuilder) {
		b.LastPricedAt = f.now.Add(-age)
		b.Freshness = freshness
	}).BuildDomain()
}

func TestAgeProducts(t *testing.T) {
	t.Run("moves products along their freshness", func(t *testing.T) {
		f := newSweepFixture(t)
		stale := f.cfg.Freshness.StaleAfter
		archive := f.cfg.Freshness.ArchiveAfter
		items := []*product.Product{
			f.pricedAgo(stale+time.Hour, product.FreshnessFresh),
			f.pricedAgo(archive+time.Hour, product.FreshnessStale),
			f.pricedAgo(time.Hour, product.FreshnessFresh),
		}
		f.products.EXPECT().LockForAging(gomock.Any(), gomock.Any(), f.now.Add(-stale), f.now.Add(-archive), int32(200)).
			Return(items, nil)

		var saved []product.Freshness
		f.products.EXPECT().SaveFreshness(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ sqlstore.DBTX, p *product.Product) error {
				saved = append(saved, p.Freshness())
				return nil
			}).Times(2)

		res, err := f.cmds.AgeProducts(context.Background())

		require.NoError(t, err)
		assert.Equal(t, &commands.SweepResult{Staled: 1, Archived: 1}, res)
		assert.Equal(t, []product.Freshness{product.FreshnessStale, product.FreshnessArchived}, saved)
	})

	t.Run("full batch triggers another round", func(t *testing.T) {
		f := newSweepFixture(t)
		full := make([]*product.Product, 200)
		for i := range full {
			full[i] = f.pricedAgo(f.cfg.Freshness.StaleAfter, product.FreshnessFresh)
		}
		gomock.InOrder(
			f.products.EXPECT().LockForAging(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(full, nil),
			f.products.EXPECT().LockForAging(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil),
		)
		f.products.EXPECT().SaveFreshness(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(200)

		res, err := f.cmds.AgeProducts(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 200, res.Staled)
	})

	t.Run("save failure aborts the sweep", func(t *testing.T) {
		f := newSweepFixture(t)
		f.products.EXPECT().LockForAging(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return([]*product.Product{f.pricedAgo(f.cfg.Freshness.ArchiveAfter, product.FreshnessFresh)}, nil)
		f.products.EXPECT().SaveFreshness(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("deadlock"))

		res, err := f.cmds.AgeProducts(context.Background())

		assert.EqualError(t, err, "deadlock")
		assert.Zero(t, res.Archived)
	})
}

func TestExpireRequests(t *testing.T) {
	t.Run("expires requests past their deadline", func(t *testing.T) {
		f := newSweepFixture(t)
		due := builder.NewRequestBuilder().With(func(b *builder.RequestBuilder) { b.ExpiresAt = f.now.Add(-time.Minute) })
		notDue := builder.NewRequestBuilder().With(func(b *builder.RequestBuilder) { b.ExpiresAt = f.now.Add(time.Minute) })
		f.requests.EXPECT().ListExpired(gomock.Any(), gomock.Any(), f.now, int32(200)).
			Return([]*request.Request{due.BuildDomain(), notDue.BuildDomain()}, nil)
		f.requests.EXPECT().SaveState(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ sqlstore.DBTX, r *request.Request) error {
				assert.Equal(t, due.ID, r.ID())
				assert.Equal(t, request.StatusExpired, r.Status())
				return nil
			})

		res, err := f.cmds.ExpireRequests(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 1, res.Expired)
	})

	t.Run("nothing to do", func(t *testing.T) {
		f := newSweepFixture(t)
		f.requests.EXPECT().ListExpired(gomock.Any(), gomock.Any(), f.now, int32(200)).Return(nil, nil)

		res, err := f.cmds.ExpireRequests(context.Background())

		require.NoError(t, err)
		assert.Zero(t, res.Expired)
	})

	t.Run("list failure", func(t *testing.T) {
		f := newSweepFixture(t)
		f.requests.EXPECT().ListExpired(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("timeout"))

		_, err := f.cmds.ExpireRequests(context.Background())

		assert.Error(t, err)
	})
}

func TestPurgeIdempotencyKeys(t *testing.T) {
	t.Run("deletes keys past their expiry", func(t *testing.T) {
		f := newSweepFixture(t)
		f.keys.EXPECT().DeleteExpired(gomock.Any(), gomock.Any(), f.now).Return(int64(4), nil)

		res, err := f.cmds.PurgeIdempotencyKeys(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 4, res.Purged)
	})

	t.Run("storage failure", func(t *testing.T) {
		f := newSweepFixture(t)
		f.keys.EXPECT().DeleteExpired(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(0), errors.New("timeout"))

		res, err := f.cmds.PurgeIdempotencyKeys(context.Background())

		assert.Error(t, err)
		assert.Zero(t, res.Purged)
	})
}
