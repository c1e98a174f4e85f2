package commandreader

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	commandv1 "github.com/muhammadchandra19/exchange-engine/internal/domain/command/v1"
	"github.com/muhammadchandra19/exchange-engine/pkg/logger"
	redismock "github.com/muhammadchandra19/exchange-engine/pkg/redis/mock"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeKafka struct {
	messages []kafka.Message
	offset   int64
	closed   bool
}

func (f *fakeKafka) ReadMessage(ctx context.Context) (kafka.Message, error) {
	if len(f.messages) == 0 {
		return kafka.Message{}, context.Canceled
	}
	msg := f.messages[0]
	f.messages = f.messages[1:]
	return msg, nil
}

func (f *fakeKafka) SetOffset(offset int64) error {
	f.offset = offset
	return nil
}

func (f *fakeKafka) Close() error {
	f.closed = true
	return nil
}

const depthCommand = `{"correlationId":"c-1","command":{"type":"GET_DEPTH","data":{"market":"TATA_INR"}}}`

func TestKafkaReader(t *testing.T) {
	ctx := context.Background()
	fake := &fakeKafka{messages: []kafka.Message{
		{Offset: 7, Value: []byte(depthCommand)},
		{Offset: 8, Value: []byte(`{"correlationId":"c-2","command":`)},
	}}
	r := &KafkaReader{kafkaReader: fake, logger: logger.NewNop()}

	require.NoError(t, r.SetOffset(7))
	assert.Equal(t, int64(7), fake.offset)

	env, err := r.ReadCommand(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(7), env.Offset)
	assert.Equal(t, "c-1", env.CorrelationID)
	assert.Equal(t, commandv1.GetDepth, env.Command.Type)

	env, err = r.ReadCommand(ctx)
	var decodeErr *commandv1.DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, int64(8), decodeErr.Offset)
	assert.Equal(t, int64(8), env.Offset)

	_, err = r.ReadCommand(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	require.NoError(t, r.Commit(ctx, env))
	require.NoError(t, r.Close())
	assert.True(t, fake.closed)
}

func TestRedisReader(t *testing.T) {
	t.Run("stamps consecutive offsets after SetOffset", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		client := redismock.NewMockClient(ctrl)
		r := NewRedisReader(client, "messages", logger.NewNop())
		require.NoError(t, r.SetOffset(10))

		gomock.InOrder(
			client.EXPECT().BRPop(gomock.Any(), gomock.Any(), "messages").Return("", false, nil),
			client.EXPECT().BRPop(gomock.Any(), gomock.Any(), "messages").Return(depthCommand, true, nil),
			client.EXPECT().BRPop(gomock.Any(), gomock.Any(), "messages").Return("garbage", true, nil),
		)

		env, err := r.ReadCommand(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(10), env.Offset)
		assert.Equal(t, "c-1", env.CorrelationID)

		env, err = r.ReadCommand(context.Background())
		var decodeErr *commandv1.DecodeError
		require.ErrorAs(t, err, &decodeErr)
		assert.Equal(t, int64(11), env.Offset)
	})

	t.Run("negative offset rejected", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		r := NewRedisReader(redismock.NewMockClient(ctrl), "messages", logger.NewNop())
		assert.Error(t, r.SetOffset(-1))
	})

	t.Run("pop error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		client := redismock.NewMockClient(ctrl)
		r := NewRedisReader(client, "messages", logger.NewNop())

		client.EXPECT().BRPop(gomock.Any(), gomock.Any(), gomock.Any()).Return("", false, errors.New("conn reset"))

		_, err := r.ReadCommand(context.Background())
		assert.EqualError(t, err, "conn reset")
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		client := redismock.NewMockClient(ctrl)
		r := NewRedisReader(client, "messages", logger.NewNop())
		r.popTimeout = 10 * time.Millisecond

		ctx, cancel := context.WithCancel(context.Background())
		client.EXPECT().BRPop(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(context.Context, time.Duration, string) (string, bool, error) {
				cancel()
				return "", false, nil
			})

		_, err := r.ReadCommand(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
