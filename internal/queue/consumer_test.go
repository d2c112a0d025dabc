package queue

import (
	"strconv"

	"github.com/redis/go-redis/v9"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"devtrack.app/api/internal/model"
)

var _ = Describe("ParseMessage", func() {
	It("parses a well-formed notification", func() {
		msg, err := ParseMessage(redis.XMessage{
			ID: "1700000000000-0",
			Values: map[string]any{
				"type":     "task_assigned",
				"to":       "dev@acme.io",
				"name":     "Dana",
				"data":     `{"title":"Fix login","project":"Acme"}`,
				"attempt":  "2",
				"trace_id": "4bf92f3577b34da6a3ce929d0e0e4736",
			},
		})

		Expect(err).NotTo(HaveOccurred())
		Expect(msg.ID).To(Equal("1700000000000-0"))
		Expect(msg.Notification.Type).To(Equal(model.NotificationTaskAssigned))
		Expect(msg.Notification.To).To(Equal("dev@acme.io"))
		Expect(msg.Notification.Name).To(Equal("Dana"))
		Expect(msg.Notification.Data).To(HaveKeyWithValue("title", "Fix login"))
		Expect(msg.Attempt).To(Equal(2))
		Expect(msg.TraceID).To(Equal("4bf92f3577b34da6a3ce929d0e0e4736"))
	})

	It("defaults attempt to one", func() {
		msg, err := ParseMessage(redis.XMessage{
			ID:     "1-0",
			Values: map[string]any{"type": "otp", "to": "a@b.io"},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(msg.Attempt).To(Equal(1))
		Expect(msg.Notification.Data).To(BeEmpty())
	})

	DescribeTable("rejects malformed entries",
		func(values map[string]any, want string) {
			_, err := ParseMessage(redis.XMessage{ID: "1-0", Values: values})
			Expect(err).To(MatchError(ContainSubstring(want)))
		},
		Entry("missing type", map[string]any{"to": "a@b.io"}, "missing type"),
		Entry("unknown type", map[string]any{"type": "sms", "to": "a@b.io"}, "unknown notification type"),
		Entry("missing recipient", map[string]any{"type": "otp"}, "missing to"),
		Entry("bad attempt", map[string]any{"type": "otp", "to": "a@b.io", "attempt": "x"}, "parsing attempt"),
		Entry("bad data", map[string]any{"type": "otp", "to": "a@b.io", "data": "{"}, "parsing data"),
	)

	It("round-trips through notificationValues", func() {
		values, err := notificationValues(Message{
			Notification: model.Notification{
				Type: model.NotificationWelcome,
				To:   "new@acme.io",
				Data: map[string]string{"role": "client"},
			},
			Attempt: 3,
		})
		Expect(err).NotTo(HaveOccurred())

		// go-redis hands values back as strings.
		stringly := map[string]any{}
		for k, v := range values {
			stringly[k] = fmtAny(v)
		}
		msg, err := ParseMessage(redis.XMessage{ID: "9-0", Values: stringly})
		Expect(err).NotTo(HaveOccurred())
		Expect(msg.Attempt).To(Equal(3))
		Expect(msg.Notification.Data).To(HaveKeyWithValue("role", "client"))
	})
})

func fmtAny(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case int:
		return strconv.Itoa(t)
	default:
		return ""
	}
}
