package queue

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/redis/go-redis/v9"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"devtrack.app/api/internal/model"
)

// scriptedRedis answers commands in-process and records their order.
type scriptedRedis struct {
	commands []string
	failOn   map[string]error
}

func (s *scriptedRedis) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		return nil, errors.New("dial disabled")
	}
}

func (s *scriptedRedis) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		s.commands = append(s.commands, cmd.Name())
		if err := s.failOn[cmd.Name()]; err != nil {
			cmd.SetErr(err)
			return err
		}
		return nil
	}
}

func (s *scriptedRedis) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

var _ = Describe("RedisConsumer delivery bookkeeping", func() {
	var (
		ctx      context.Context
		script   *scriptedRedis
		consumer *RedisConsumer
		msg      Message
	)

	BeforeEach(func() {
		ctx = context.Background()
		script = &scriptedRedis{failOn: map[string]error{}}
		client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
		client.AddHook(script)
		DeferCleanup(client.Close)

		consumer = &RedisConsumer{client: client, cfg: ConsumerConfig{
			Stream:    "devtrack_notifications",
			Group:     "mailers",
			Consumer:  "worker-1",
			DLQStream: "devtrack_notifications_dlq",
		}}
		msg = Message{
			ID:           "1700000000000-0",
			Notification: model.Notification{Type: model.NotificationOTP, To: "ana@acme.io"},
			Attempt:      1,
		}
	})

	It("appends the retry before acking the original", func() {
		Expect(consumer.Requeue(ctx, msg, "smtp timeout")).To(Succeed())
		Expect(script.commands).To(Equal([]string{"xadd", "xack"}))
	})

	It("leaves the original pending when the retry cannot be appended", func() {
		script.failOn["xadd"] = errors.New("READONLY")

		Expect(consumer.Requeue(ctx, msg, "smtp timeout")).To(MatchError(ContainSubstring("xadd requeue")))
		Expect(script.commands).NotTo(ContainElement("xack"))
	})

	It("leaves the original pending when cancelled during the delay", func() {
		consumer.cfg.RequeueDelay = time.Hour
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		Expect(consumer.Requeue(cancelled, msg, "smtp timeout")).To(MatchError(context.Canceled))
		Expect(script.commands).To(BeEmpty())
	})

	It("dead-letters before acking", func() {
		Expect(consumer.SendDLQ(ctx, msg, "mailbox unavailable")).To(Succeed())
		Expect(script.commands).To(Equal([]string{"xadd", "xack"}))
	})

	It("keeps the message when the dead letter stream rejects it", func() {
		script.failOn["xadd"] = errors.New("OOM")

		Expect(consumer.SendDLQ(ctx, msg, "mailbox unavailable")).To(MatchError(ContainSubstring("xadd dlq")))
		Expect(script.commands).To(Equal([]string{"xadd"}))
	})
})
