//go:build unit

package commands_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"affiliate-notify/internal/domain/request"
	"affiliate-notify/internal/domain/user"
	reqdto "affiliate-notify/internal/handler/dto/request"
	"affiliate-notify/internal/infra"
	"affiliate-notify/internal/infra/sqlstore"
	"affiliate-notify/internal/pkg/clock"
	"affiliate-notify/internal/pkg/config"
	"affiliate-notify/internal/pkg/errs"
	"affiliate-notify/internal/usecase/commands"
	"affiliate-notify/internal/usecase/shared"
	"affiliate-notify/tests/common/builder"
	commandsmock "affiliate-notify/tests/mock/commands"
	sharedmock "affiliate-notify/tests/mock/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type requestFixture struct {
	uow      *sharedmock.MockUnitOfWork
	tx       *sharedmock.MockTx
	reads    *sharedmock.MockCommandReads
	requests *sharedmock.MockRequestRepository
	keys     *sharedmock.MockIdempotencyRepository
	engine   *commandsmock.MockMatchEngine
	clock    *clock.MockClock
	cfg      config.Config
	cmds     commands.RequestCommands
}

func newRequestFixture(t *testing.T) *requestFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := &requestFixture{
		uow:      sharedmock.NewMockUnitOfWork(ctrl),
		tx:       sharedmock.NewMockTx(ctrl),
		reads:    sharedmock.NewMockCommandReads(ctrl),
		requests: sharedmock.NewMockRequestRepository(ctrl),
		keys:     sharedmock.NewMockIdempotencyRepository(ctrl),
		engine:   commandsmock.NewMockMatchEngine(ctrl),
		clock:    clock.NewMockClock(builder.BaseTime),
		cfg:      config.NewTestConfig(),
	}
	f.uow.EXPECT().Within(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(context.Context, shared.Tx) error) error {
			return fn(ctx, f.tx)
		}).AnyTimes()
	f.uow.EXPECT().CommandReads().Return(f.reads).AnyTimes()
	f.tx.EXPECT().Reads().Return(f.reads).AnyTimes()
	f.tx.EXPECT().Requests().Return(f.requests).AnyTimes()
	f.tx.EXPECT().Idempotency().Return(f.keys).AnyTimes()
	f.tx.EXPECT().DB().Return(nil).AnyTimes()
	f.cmds = commands.NewRequestCommands(f.uow, f.engine, f.clock, f.cfg)
	return f
}

func (f *requestFixture) expectOwner(id uuid.UUID, active bool) {
	f.reads.EXPECT().UserByID(gomock.Any(), id).Return(&shared.UserSnapshot{
		ID:       id,
		Email:    "shopper@example.com",
		Role:     user.RoleShopper,
		IsActive: active,
	}, nil)
}

func TestSubmitRequest(t *testing.T) {
	t.Run("stores the parsed request and runs the first match", func(t *testing.T) {
		f := newRequestFixture(t)
		userID := uuid.New()
		f.expectOwner(userID, true)

		var created *request.Request
		f.requests.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ sqlstore.DBTX, r *request.Request) error {
				created = r
				return nil
			})
		f.engine.EXPECT().MatchNewRequest(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, id uuid.UUID) (*commands.MatchResult, error) {
				assert.Equal(t, created.ID(), id)
				return &commands.MatchResult{Claimed: 1, Delivered: 1}, nil
			})

		res, err := f.cmds.Submit(context.Background(), reqdto.SubmitRequest{Query: "gaming laptop under 80000 from amazon"}, userID, uuid.Nil)

		require.NoError(t, err)
		require.NotNil(t, created)
		assert.Equal(t, created.ID(), res.RequestID)
		assert.Equal(t, 1, res.Match.Delivered)
		assert.Equal(t, userID, created.UserID())
		assert.Equal(t, "shopper@example.com", created.UserEmail())
		assert.Equal(t, "Laptops", created.Intent().CategoryValue())
		assert.Equal(t, builder.BaseTime.Add(f.cfg.Match.RequestTTL), created.ExpiresAt())
	})

	t.Run("failed match run still reports the request", func(t *testing.T) {
		f := newRequestFixture(t)
		userID := uuid.New()
		f.expectOwner(userID, true)
		f.requests.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		f.engine.EXPECT().MatchNewRequest(gomock.Any(), gomock.Any()).Return(nil, commands.ErrMatchLockUnavailable)

		res, err := f.cmds.Submit(context.Background(), reqdto.SubmitRequest{Query: "phone under 20k"}, userID, uuid.Nil)

		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, res.RequestID)
		assert.Zero(t, res.Match.Claimed)
	})

	t.Run("inactive user", func(t *testing.T) {
		f := newRequestFixture(t)
		userID := uuid.New()
		f.expectOwner(userID, false)

		_, err := f.cmds.Submit(context.Background(), reqdto.SubmitRequest{Query: "phone"}, userID, uuid.Nil)

		assert.ErrorIs(t, err, commands.ErrUserInactive)
	})

	t.Run("unknown user", func(t *testing.T) {
		f := newRequestFixture(t)
		f.reads.EXPECT().UserByID(gomock.Any(), gomock.Any()).
			Return(nil, infra.WrapRepoErr("user not found", nil, infra.KindNotFound))

		_, err := f.cmds.Submit(context.Background(), reqdto.SubmitRequest{Query: "phone"}, uuid.New(), uuid.Nil)

		assert.ErrorIs(t, err, commands.ErrUserNotFound)
	})

	t.Run("oversized query is invalid", func(t *testing.T) {
		f := newRequestFixture(t)
		userID := uuid.New()
		f.expectOwner(userID, true)

		_, err := f.cmds.Submit(context.Background(), reqdto.SubmitRequest{Query: strings.Repeat("laptop ", 200)}, userID, uuid.Nil)

		assert.True(t, errs.Is(err, commands.ErrInvalidRequest))
	})

	t.Run("storage failure", func(t *testing.T) {
		f := newRequestFixture(t)
		userID := uuid.New()
		f.expectOwner(userID, true)
		f.requests.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("connection reset"))

		_, err := f.cmds.Submit(context.Background(), reqdto.SubmitRequest{Query: "phone"}, userID, uuid.Nil)

		assert.EqualError(t, err, "connection reset")
	})
}

func TestCancelRequest(t *testing.T) {
	t.Run("owner cancels an active request", func(t *testing.T) {
		f := newRequestFixture(t)
		b := builder.NewRequestBuilder()
		f.reads.EXPECT().RequestByID(gomock.Any(), b.ID).Return(b.BuildDomain(), nil)
		f.requests.EXPECT().SaveState(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ sqlstore.DBTX, r *request.Request) error {
				assert.Equal(t, request.StatusCancelled, r.Status())
				return nil
			})

		assert.NoError(t, f.cmds.Cancel(context.Background(), b.ID, b.UserID))
	})

	t.Run("someone else's request", func(t *testing.T) {
		f := newRequestFixture(t)
		b := builder.NewRequestBuilder()
		f.reads.EXPECT().RequestByID(gomock.Any(), b.ID).Return(b.BuildDomain(), nil)

		assert.ErrorIs(t, f.cmds.Cancel(context.Background(), b.ID, uuid.New()), commands.ErrRequestAccess)
	})

	t.Run("already fulfilled", func(t *testing.T) {
		f := newRequestFixture(t)
		b := builder.NewRequestBuilder().WithStatus(request.StatusFulfilled)
		f.reads.EXPECT().RequestByID(gomock.Any(), b.ID).Return(b.BuildDomain(), nil)

		err := f.cmds.Cancel(context.Background(), b.ID, b.UserID)

		assert.True(t, errs.Is(err, commands.ErrRequestClosed))
	})

	t.Run("missing", func(t *testing.T) {
		f := newRequestFixture(t)
		id := uuid.New()
		f.reads.EXPECT().RequestByID(gomock.Any(), id).
			Return(nil, infra.WrapRepoErr("request not found", nil, infra.KindNotFound))

		assert.ErrorIs(t, f.cmds.Cancel(context.Background(), id, uuid.New()), commands.ErrRequestNotFound)
	})

	t.Run("concurrent match wins", func(t *testing.T) {
		f := newRequestFixture(t)
		b := builder.NewRequestBuilder()
		f.reads.EXPECT().RequestByID(gomock.Any(), b.ID).Return(b.BuildDomain(), nil)
		f.requests.EXPECT().SaveState(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(infra.WrapRepoErr("version mismatch", nil, infra.KindConflict))

		err := f.cmds.Cancel(context.Background(), b.ID, b.UserID)

		assert.True(t, errs.Is(err, commands.ErrRequestBusy))
	})
}

func TestDeleteRequests(t *testing.T) {
	t.Run("delete one", func(t *testing.T) {
		f := newRequestFixture(t)
		id := uuid.New()
		f.requests.EXPECT().Delete(gomock.Any(), gomock.Any(), id).Return(nil)

		assert.NoError(t, f.cmds.Delete(context.Background(), id))
	})

	t.Run("delete one that is missing", func(t *testing.T) {
		f := newRequestFixture(t)
		id := uuid.New()
		f.requests.EXPECT().Delete(gomock.Any(), gomock.Any(), id).
			Return(infra.WrapRepoErr("request not found", nil, infra.KindNotFound))

		assert.ErrorIs(t, f.cmds.Delete(context.Background(), id), commands.ErrRequestNotFound)
	})

	t.Run("delete by status", func(t *testing.T) {
		f := newRequestFixture(t)
		status := request.StatusExpired
		f.requests.EXPECT().DeleteAll(gomock.Any(), gomock.Any(), &status).Return(int64(7), nil)

		n, err := f.cmds.DeleteAll(context.Background(), &status)

		require.NoError(t, err)
		assert.Equal(t, int64(7), n)
	})

	t.Run("delete all fails", func(t *testing.T) {
		f := newRequestFixture(t)
		f.requests.EXPECT().DeleteAll(gomock.Any(), gomock.Any(), nil).Return(int64(0), errors.New("timeout"))

		n, err := f.cmds.DeleteAll(context.Background(), nil)

		assert.Error(t, err)
		assert.Zero(t, n)
	})
}

func TestRequestTTLFromConfig(t *testing.T) {
	f := newRequestFixture(t)
	f.cfg.Match.RequestTTL = 48 * time.Hour
	f.cmds = commands.NewRequestCommands(f.uow, f.engine, f.clock, f.cfg)
	userID := uuid.New()
	f.expectOwner(userID, true)
	f.requests.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ sqlstore.DBTX, r *request.Request) error {
			assert.Equal(t, builder.BaseTime.Add(48*time.Hour), r.ExpiresAt())
			return nil
		})
	f.engine.EXPECT().MatchNewRequest(gomock.Any(), gomock.Any()).Return(&commands.MatchResult{}, nil)

	_, err := f.cmds.Submit(context.Background(), reqdto.SubmitRequest{Query: "books"}, userID, uuid.Nil)

	require.NoError(t, err)
}

func TestSubmitRequestIdempotency(t *testing.T) {
	body := reqdto.SubmitRequest{Query: "phone under 20k"}

	t.Run("first call claims the key and completes it with the new request", func(t *testing.T) {
		f := newRequestFixture(t)
		userID, key := uuid.New(), uuid.New()
		f.expectOwner(userID, true)

		var created *request.Request
		f.keys.EXPECT().TryInsert(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ sqlstore.DBTX, rec shared.NewIdempotencyKey) (bool, error) {
				assert.Equal(t, key, rec.Key)
				assert.Equal(t, userID, rec.UserID)
				assert.Equal(t, "POST /requests", rec.Endpoint)
				assert.Len(t, rec.RequestHash, 64)
				assert.Equal(t, builder.BaseTime.Add(f.cfg.Match.IdempotencyTTL), rec.ExpiresAt)
				return true, nil
			})
		f.requests.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ sqlstore.DBTX, r *request.Request) error {
				created = r
				return nil
			})
		f.keys.EXPECT().Complete(gomock.Any(), gomock.Any(), key, userID, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ sqlstore.DBTX, _, _, resultID uuid.UUID) error {
				assert.Equal(t, created.ID(), resultID)
				return nil
			})
		f.engine.EXPECT().MatchNewRequest(gomock.Any(), gomock.Any()).Return(&commands.MatchResult{}, nil)

		res, err := f.cmds.Submit(context.Background(), body, userID, key)

		require.NoError(t, err)
		assert.False(t, res.Replayed)
	})

	t.Run("completed key replays without creating or matching", func(t *testing.T) {
		f := newRequestFixture(t)
		userID, key, prior := uuid.New(), uuid.New(), uuid.New()
		f.expectOwner(userID, true)

		var hash string
		f.keys.EXPECT().TryInsert(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ sqlstore.DBTX, rec shared.NewIdempotencyKey) (bool, error) {
				hash = rec.RequestHash
				return false, nil
			})
		f.keys.EXPECT().Get(gomock.Any(), gomock.Any(), key, userID).
			DoAndReturn(func(context.Context, sqlstore.DBTX, uuid.UUID, uuid.UUID) (*shared.IdempotencyRecord, error) {
				return &shared.IdempotencyRecord{
					Key:             key,
					UserID:          userID,
					Endpoint:        "POST /requests",
					RequestHash:     hash,
					Status:          shared.IdempotencyCompleted,
					ResultRequestID: &prior,
				}, nil
			})

		res, err := f.cmds.Submit(context.Background(), body, userID, key)

		require.NoError(t, err)
		assert.True(t, res.Replayed)
		assert.Equal(t, prior, res.RequestID)
	})

	conflicts := []struct {
		name    string
		record  func(hash string) *shared.IdempotencyRecord
		wantErr error
	}{
		{
			name: "different body",
			record: func(string) *shared.IdempotencyRecord {
				return &shared.IdempotencyRecord{Endpoint: "POST /requests", RequestHash: "other", Status: shared.IdempotencyCompleted}
			},
			wantErr: commands.ErrIdempotencyKeyReused,
		},
		{
			name: "still processing",
			record: func(hash string) *shared.IdempotencyRecord {
				return &shared.IdempotencyRecord{Endpoint: "POST /requests", RequestHash: hash, Status: shared.IdempotencyProcessing}
			},
			wantErr: commands.ErrIdempotencyInProgress,
		},
		{
			name: "original request deleted",
			record: func(hash string) *shared.IdempotencyRecord {
				return &shared.IdempotencyRecord{Endpoint: "POST /requests", RequestHash: hash, Status: shared.IdempotencyCompleted}
			},
			wantErr: commands.ErrRequestNotFound,
		},
	}
	for _, tc := range conflicts {
		t.Run(tc.name, func(t *testing.T) {
			f := newRequestFixture(t)
			userID, key := uuid.New(), uuid.New()
			f.expectOwner(userID, true)

			var hash string
			f.keys.EXPECT().TryInsert(gomock.Any(), gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, _ sqlstore.DBTX, rec shared.NewIdempotencyKey) (bool, error) {
					hash = rec.RequestHash
					return false, nil
				})
			f.keys.EXPECT().Get(gomock.Any(), gomock.Any(), key, userID).
				DoAndReturn(func(context.Context, sqlstore.DBTX, uuid.UUID, uuid.UUID) (*shared.IdempotencyRecord, error) {
					return tc.record(hash), nil
				})

			_, err := f.cmds.Submit(context.Background(), body, userID, key)

			assert.ErrorIs(t, err, tc.wantErr)
		})
	}

	t.Run("storage failure on claim", func(t *testing.T) {
		f := newRequestFixture(t)
		userID := uuid.New()
		f.expectOwner(userID, true)
		f.keys.EXPECT().TryInsert(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(false, infra.WrapRepoErr("failed to try insert idempotency key", errors.New("conn reset")))

		_, err := f.cmds.Submit(context.Background(), body, userID, uuid.New())

		assert.True(t, errs.Is(err, commands.ErrIdempotencyCheckFailed))
	})
}
