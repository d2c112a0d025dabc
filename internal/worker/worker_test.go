package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"devtrack.app/api/internal/mail"
	"devtrack.app/api/internal/model"
	"devtrack.app/api/internal/queue"
)

func otpMessage(id string, attempt int) queue.Message {
	return queue.Message{
		ID:      id,
		Attempt: attempt,
		Notification: model.Notification{
			Type: model.NotificationOTP,
			To:   "dev@acme.io",
			Data: map[string]string{"code": "123456", "ttl_minutes": "10"},
		},
	}
}

var _ = Describe("Worker", func() {
	var (
		ctx      context.Context
		consumer *fakeConsumer
		sender   *mockSender
		recorder *countingRecorder
		w        *Worker
	)

	BeforeEach(func() {
		ctx = context.Background()
		consumer = &fakeConsumer{}
		sender = &mockSender{}
		recorder = &countingRecorder{}
		w = New(consumer, sender, recorder, Config{MaxAttempts: 3})
	})

	Describe("Handle", func() {
		It("acks after a successful send", func() {
			var got model.Notification
			sender.sendFn = func(_ context.Context, n model.Notification) error {
				got = n
				return nil
			}

			w.Handle(ctx, otpMessage("1-0", 1))

			acked, requeued, dlq := consumer.snapshot()
			Expect(acked).To(Equal([]string{"1-0"}))
			Expect(requeued).To(BeEmpty())
			Expect(dlq).To(BeEmpty())
			Expect(got.Data["code"]).To(Equal("123456"))
			Expect(recorder.sent).To(Equal(1))
		})

		It("requeues transient failures below the attempt limit", func() {
			sender.sendFn = func(context.Context, model.Notification) error {
				return errors.New("smtp: connection reset")
			}

			w.Handle(ctx, otpMessage("2-0", 1))

			acked, requeued, dlq := consumer.snapshot()
			Expect(acked).To(BeEmpty())
			Expect(requeued).To(Equal([]string{"2-0"}))
			Expect(dlq).To(BeEmpty())
			Expect(recorder.failed[false]).To(Equal(1))
		})

		It("dead-letters once the attempt limit is reached", func() {
			sender.sendFn = func(context.Context, model.Notification) error {
				return errors.New("smtp: timeout")
			}

			w.Handle(ctx, otpMessage("3-0", 3))

			_, requeued, dlq := consumer.snapshot()
			Expect(requeued).To(BeEmpty())
			Expect(dlq).To(Equal([]string{"3-0"}))
			Expect(recorder.failed[true]).To(Equal(1))
		})

		It("dead-letters permanent failures immediately", func() {
			sender.sendFn = func(context.Context, model.Notification) error {
				return fmt.Errorf("%w: bad recipient", mail.ErrPermanent)
			}

			w.Handle(ctx, otpMessage("4-0", 1))

			_, requeued, dlq := consumer.snapshot()
			Expect(requeued).To(BeEmpty())
			Expect(dlq).To(Equal([]string{"4-0"}))
		})

		It("turns a panicking sender into a retry", func() {
			sender.sendFn = func(context.Context, model.Notification) error {
				panic("boom")
			}

			Expect(func() { w.Handle(ctx, otpMessage("5-0", 1)) }).NotTo(Panic())

			_, requeued, _ := consumer.snapshot()
			Expect(requeued).To(Equal([]string{"5-0"}))
		})
	})

	Describe("Run", func() {
		It("processes queued batches until stopped", func() {
			consumer.batches = [][]queue.Message{
				{otpMessage("10-0", 1), otpMessage("11-0", 1)},
				{otpMessage("12-0", 1)},
			}

			done := make(chan error, 1)
			go func() { done <- w.Run(ctx) }()

			Eventually(func() []string {
				acked, _, _ := consumer.snapshot()
				return acked
			}, time.Second).Should(ConsistOf("10-0", "11-0", "12-0"))

			w.Stop()
			Eventually(done).Should(Receive(BeNil()))
		})
	})
})
