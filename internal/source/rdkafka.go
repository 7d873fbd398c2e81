package source

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"go.uber.org/zap"

	"github.com/mimiro.io/kafka-source-layer/kafka-source-layer/internal/conf"
)

// Properties handled by this layer instead of librdkafka. The deserializer
// pair is applied by the record codec, max.poll.records by the poll loop,
// and client.dns.lookup has no librdkafka equivalent. The JAAS credential
// is translated to sasl.username/sasl.password below.
var localProps = map[string]bool{
	propKeyDeserializer:   true,
	propValueDeserializer: true,
	propMaxPollRecords:    true,
	propClientDNSLookup:   true,
	propSASLJAASConfig:    true,
}

var jaasField = regexp.MustCompile(`(\w+)="([^"]*)"`)

type rdkafkaFactory struct {
	logger *zap.SugaredLogger
}

// NewFactory returns the librdkafka backed client factory.
func NewFactory(env *conf.Env) Factory {
	return &rdkafkaFactory{logger: env.Logger.Named("rdkafka")}
}

func (f *rdkafkaFactory) Construct(props Properties) (Client, error) {
	configMap := kafka.ConfigMap{}
	for k, v := range props {
		if localProps[k] {
			continue
		}
		configMap[k] = fmt.Sprintf("%v", v)
	}
	if jaas, ok := props[propSASLJAASConfig]; ok {
		username, password := saslCredentials(fmt.Sprintf("%v", jaas))
		if username != "" {
			configMap["sasl.username"] = username
			configMap["sasl.password"] = password
		}
	}

	consumer, err := kafka.NewConsumer(&configMap)
	if err != nil {
		return nil, err
	}
	return &rdkafkaClient{consumer: consumer, logger: f.logger}, nil
}

// saslCredentials pulls username and password out of a JAAS config string,
// e.g. `...PlainLoginModule required username="u" password="p";`.
func saslCredentials(jaas string) (string, string) {
	var username, password string
	for _, m := range jaasField.FindAllStringSubmatch(jaas, -1) {
		switch m[1] {
		case "username":
			username = m[2]
		case "password":
			password = m[2]
		}
	}
	return username, password
}

type rdkafkaClient struct {
	consumer *kafka.Consumer
	logger   *zap.SugaredLogger
}

func (c *rdkafkaClient) SubscribePattern(pattern *regexp.Regexp) error {
	// topics starting with ^ are treated as regex subscriptions by librdkafka
	topic := pattern.String()
	if !strings.HasPrefix(topic, "^") {
		topic = "^" + topic
	}
	return c.consumer.Subscribe(topic, nil)
}

func (c *rdkafkaClient) Assign(assignments []TopicPartition) error {
	partitions := make([]kafka.TopicPartition, len(assignments))
	for i := range assignments {
		partitions[i] = kafka.TopicPartition{
			Topic:     &assignments[i].Topic,
			Partition: assignments[i].Partition,
			Offset:    kafka.OffsetStored,
		}
	}
	return c.consumer.Assign(partitions)
}

func (c *rdkafkaClient) Poll(timeoutMs int) (*Message, error) {
	ev := c.consumer.Poll(timeoutMs)
	switch e := ev.(type) {
	case *kafka.Message:
		return &Message{
			Topic:     *e.TopicPartition.Topic,
			Partition: e.TopicPartition.Partition,
			Offset:    int64(e.TopicPartition.Offset),
			Key:       e.Key,
			Value:     e.Value,
		}, nil
	case kafka.Error:
		// Errors are generally informational, the client recovers on its
		// own. All brokers down is the one we give up on.
		if e.Code() == kafka.ErrAllBrokersDown {
			return nil, fmt.Errorf("%w: %s", ErrBrokersDown, e.Error())
		}
		c.logger.Warn("poll returned a kafka.Error: ", e)
		return nil, nil
	default:
		return nil, nil
	}
}

func (c *rdkafkaClient) Close() error {
	return c.consumer.Close()
}
