//go:build unit

package notify_test

import (
	"context"
	"encoding/json"
	"testing"

	"affiliate-notify/internal/infra/notify"
	"affiliate-notify/internal/pkg/clock"
	"affiliate-notify/internal/pkg/config"
	"affiliate-notify/internal/usecase/shared"
	"affiliate-notify/tests/common/builder"
	sharedmock "affiliate-notify/tests/mock/shared"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type MockMessageWriter struct {
	mock.Mock
}

func (m *MockMessageWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *MockMessageWriter) Close() error {
	return m.Called().Error(0)
}

func notification() shared.MatchNotification {
	return shared.MatchNotification{
		RequestID:     uuid.New(),
		UserID:        uuid.New(),
		UserEmail:     "shopper@example.com",
		Query:         "gaming laptop under 80000",
		ProductID:     uuid.New(),
		ProductTitle:  "Gaming laptop RTX",
		Price:         65000,
		Platform:      "AMAZON",
		AffiliateLink: "https://www.amazon.in/dp/B0TEST1234",
		MatchedAt:     builder.BaseTime,
	}
}

func TestKafkaNotifier(t *testing.T) {
	t.Run("keys the message by request", func(t *testing.T) {
		n := notification()
		writer := new(MockMessageWriter)
		writer.On("WriteMessages", mock.Anything, mock.MatchedBy(func(msgs []kafka.Message) bool {
			if len(msgs) != 1 || string(msgs[0].Key) != n.RequestID.String() {
				return false
			}
			var got shared.MatchNotification
			return json.Unmarshal(msgs[0].Value, &got) == nil && got.ProductID == n.ProductID
		})).Return(nil)

		err := notify.NewKafkaNotifier(writer).Notify(context.Background(), n)

		require.NoError(t, err)
		writer.AssertExpectations(t)
	})

	t.Run("broker error is wrapped", func(t *testing.T) {
		writer := new(MockMessageWriter)
		writer.On("WriteMessages", mock.Anything, mock.Anything).Return(assert.AnError)

		err := notify.NewKafkaNotifier(writer).Publish(context.Background(), "k", []byte("{}"))

		assert.ErrorIs(t, err, assert.AnError)
		assert.Contains(t, err.Error(), "publish notification")
	})

	t.Run("close closes the writer", func(t *testing.T) {
		writer := new(MockMessageWriter)
		writer.On("Close").Return(nil)

		assert.NoError(t, notify.NewKafkaNotifier(writer).Close())
		writer.AssertExpectations(t)
	})
}

func TestOutboxNotifier(t *testing.T) {
	setup := func(t *testing.T) (*sharedmock.MockUnitOfWork, *sharedmock.MockNotificationRepository) {
		ctrl := gomock.NewController(t)
		uow := sharedmock.NewMockUnitOfWork(ctrl)
		tx := sharedmock.NewMockTx(ctrl)
		jobs := sharedmock.NewMockNotificationRepository(ctrl)
		uow.EXPECT().Within(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, fn func(context.Context, shared.Tx) error) error {
				return fn(ctx, tx)
			}).AnyTimes()
		tx.EXPECT().Notifications().Return(jobs).AnyTimes()
		tx.EXPECT().DB().Return(nil).AnyTimes()
		return uow, jobs
	}
	cfg := config.NewTestConfig().Notify

	t.Run("stores a due job", func(t *testing.T) {
		uow, jobs := setup(t)
		n := notification()
		payload, err := json.Marshal(n)
		require.NoError(t, err)
		jobs.EXPECT().CreateJob(gomock.Any(), gomock.Any(), shared.NewNotificationJob{
			Kind:    shared.JobKindMatchNotification,
			Topic:   cfg.KafkaTopic,
			Key:     n.RequestID.String(),
			Payload: payload,
			RunAt:   builder.BaseTime,
		}).Return(uuid.New(), nil)

		err = notify.NewOutboxNotifier(uow, clock.NewMockClock(builder.BaseTime), cfg).Notify(context.Background(), n)

		assert.NoError(t, err)
	})

	t.Run("insert failure is returned", func(t *testing.T) {
		uow, jobs := setup(t)
		jobs.EXPECT().CreateJob(gomock.Any(), gomock.Any(), gomock.Any()).Return(uuid.Nil, assert.AnError)

		err := notify.NewOutboxNotifier(uow, clock.NewMockClock(builder.BaseTime), cfg).Notify(context.Background(), notification())

		assert.ErrorIs(t, err, assert.AnError)
	})
}

func TestLogNotifier(t *testing.T) {
	assert.NoError(t, notify.NewLogNotifier().Notify(context.Background(), notification()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, notify.NewLogNotifier().Notify(ctx, notification()), context.Canceled)
}

func TestNew(t *testing.T) {
	kafkaNotifier := notify.NewKafkaNotifier(new(MockMessageWriter))
	clk := clock.NewMockClock(builder.BaseTime)

	tests := []struct {
		driver  string
		want    any
		wantErr bool
	}{
		{driver: config.NotifyDriverOutbox, want: &notify.OutboxNotifier{}},
		{driver: config.NotifyDriverKafka, want: kafkaNotifier},
		{driver: config.NotifyDriverLog, want: &notify.LogNotifier{}},
		{driver: "carrier-pigeon", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			cfg := config.NewTestConfig()
			cfg.Notify.Driver = tt.driver

			n, err := notify.New(cfg, nil, kafkaNotifier, clk)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, n)
		})
	}
}
