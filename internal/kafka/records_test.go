package kafka

import (
	"fmt"
	"regexp"
	"testing"

	"github.com/DataDog/datadog-go/v5/statsd"
	"github.com/franela/goblin"
	"go.uber.org/zap"

	"github.com/mimiro.io/kafka-source-layer/kafka-source-layer/internal/coder"
	"github.com/mimiro.io/kafka-source-layer/kafka-source-layer/internal/conf"
	"github.com/mimiro.io/kafka-source-layer/kafka-source-layer/internal/source"
)

// scriptedClient answers polls from a fixed message queue, then returns nil
// messages once the queue is drained.
type scriptedClient struct {
	messages []*source.Message
	pollErr  error
	closed   bool
}

func (c *scriptedClient) SubscribePattern(_ *regexp.Regexp) error { return nil }

func (c *scriptedClient) Assign(_ []source.TopicPartition) error { return nil }

func (c *scriptedClient) Poll(_ int) (*source.Message, error) {
	if c.pollErr != nil {
		return nil, c.pollErr
	}
	if len(c.messages) == 0 {
		return nil, nil
	}
	msg := c.messages[0]
	c.messages = c.messages[1:]
	return msg, nil
}

func (c *scriptedClient) Close() error {
	c.closed = true
	return nil
}

type scriptedFactory struct {
	client source.Client
}

func (f *scriptedFactory) Construct(_ source.Properties) (source.Client, error) {
	return f.client, nil
}

func queuedMessages(n int) []*source.Message {
	messages := make([]*source.Message, 0, n)
	for i := 0; i < n; i++ {
		messages = append(messages, &source.Message{
			Topic:     "events-orders",
			Partition: 0,
			Offset:    int64(i),
			Value:     []byte(fmt.Sprintf(`{"seq": %v}`, i)),
		})
	}
	return messages
}

func streamDocument() *conf.SourceDocument {
	return &conf.SourceDocument{
		BootstrapServers: "broker:9092",
		ClientDNSLookup:  "use_all_dns_ips",
		Protocol:         &conf.ProtocolConfig{SecurityProtocol: "PLAINTEXT"},
		Subscription:     &conf.SubscriptionConfig{SubscriptionType: "subscribe", TopicPattern: "events-.*"},
	}
}

func newTestRecords(client source.Client, doc *conf.SourceDocument) *Records {
	env := &conf.Env{
		Logger:      zap.NewNop().Sugar(),
		ServiceName: "kafka-source-layer",
	}
	mngr := &conf.ConfigurationManager{Sources: &conf.SourcesConfig{
		Connections: []conf.ConnectionConfig{{Name: "events", Source: doc}},
	}}
	builder := source.NewBuilder(env, &scriptedFactory{client: client})
	return NewRecords(env, mngr, builder, &statsd.NoOpClient{})
}

func TestStream(t *testing.T) {
	g := goblin.Goblin(t)
	g.Describe("Stream", func() {
		g.It("should stream until the subscription is depleted", func() {
			client := &scriptedClient{messages: queuedMessages(4)}
			records := newTestRecords(client, streamDocument())

			var emitted []*coder.Record
			err := records.Stream(StreamRequest{Connection: "events", Limit: -1}, func(record *coder.Record) {
				emitted = append(emitted, record)
			})
			g.Assert(err).IsNil()
			g.Assert(len(emitted)).Eql(4)
			g.Assert(emitted[3].Offset).Eql(int64(3))
			g.Assert(client.closed).IsTrue()
		})
		g.It("should stop at the requested limit", func() {
			client := &scriptedClient{messages: queuedMessages(10)}
			records := newTestRecords(client, streamDocument())

			count := 0
			err := records.Stream(StreamRequest{Connection: "events", Limit: 3}, func(_ *coder.Record) {
				count++
			})
			g.Assert(err).IsNil()
			g.Assert(count).Eql(3)
			g.Assert(client.closed).IsTrue()
		})
		g.It("should cap an unbounded stream at max_poll_records", func() {
			doc := streamDocument()
			maxPoll := 2
			doc.MaxPollRecords = &maxPoll
			client := &scriptedClient{messages: queuedMessages(10)}
			records := newTestRecords(client, doc)

			count := 0
			err := records.Stream(StreamRequest{Connection: "events", Limit: -1}, func(_ *coder.Record) {
				count++
			})
			g.Assert(err).IsNil()
			g.Assert(count).Eql(2)
		})
		g.It("should cap a too-large limit at max_poll_records", func() {
			doc := streamDocument()
			maxPoll := 2
			doc.MaxPollRecords = &maxPoll
			client := &scriptedClient{messages: queuedMessages(10)}
			records := newTestRecords(client, doc)

			count := 0
			err := records.Stream(StreamRequest{Connection: "events", Limit: 5}, func(_ *coder.Record) {
				count++
			})
			g.Assert(err).IsNil()
			g.Assert(count).Eql(2)
		})
		g.It("should honour a limit below max_poll_records", func() {
			doc := streamDocument()
			maxPoll := 5
			doc.MaxPollRecords = &maxPoll
			client := &scriptedClient{messages: queuedMessages(10)}
			records := newTestRecords(client, doc)

			count := 0
			err := records.Stream(StreamRequest{Connection: "events", Limit: 1}, func(_ *coder.Record) {
				count++
			})
			g.Assert(err).IsNil()
			g.Assert(count).Eql(1)
		})
		g.It("should cancel the stream when all brokers are down", func() {
			client := &scriptedClient{pollErr: source.ErrBrokersDown}
			records := newTestRecords(client, streamDocument())

			count := 0
			err := records.Stream(StreamRequest{Connection: "events", Limit: -1}, func(_ *coder.Record) {
				count++
			})
			g.Assert(err).IsNil()
			g.Assert(count).Eql(0)
			g.Assert(client.closed).IsTrue()
		})
		g.It("should fail for a connection that is not configured", func() {
			records := newTestRecords(&scriptedClient{}, streamDocument())

			err := records.Stream(StreamRequest{Connection: "missing"}, func(_ *coder.Record) {})
			g.Assert(err).IsNotNil()
		})
	})
}
