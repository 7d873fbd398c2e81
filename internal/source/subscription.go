package source

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/mimiro.io/kafka-source-layer/kafka-source-layer/internal/conf"
)

const (
	subscriptionTypeSubscribe = "subscribe"
	subscriptionTypeAssign    = "assign"
)

var whitespace = regexp.MustCompile(`\s+`)

// bindSubscription binds a constructed client to topics exactly once,
// either via a compiled pattern subscription or an explicit partition
// assignment.
func (b *Builder) bindSubscription(client Client, subscription *conf.SubscriptionConfig) error {
	if subscription == nil {
		return fmt.Errorf("%w: no subscription", ErrIncompleteDocument)
	}
	b.logger.Infof("Kafka subscribe method: %+v", subscription)

	switch subscription.SubscriptionType {
	case subscriptionTypeSubscribe:
		pattern, err := regexp.Compile(subscription.TopicPattern)
		if err != nil {
			return &InvalidPatternError{Pattern: subscription.TopicPattern, Cause: err}
		}
		return client.SubscribePattern(pattern)
	case subscriptionTypeAssign:
		assignments, err := ParseTopicPartitions(subscription.TopicPartitions)
		if err != nil {
			return err
		}
		b.logger.Infof("Topic-partition list: %+v", assignments)
		return client.Assign(assignments)
	default:
		return &UnsupportedSubscriptionError{Type: subscription.SubscriptionType}
	}
}

// ParseTopicPartitions parses a "topic:partition,topic:partition" string
// into an ordered assignment list. All whitespace is stripped first, so
// "topic-a:0, topic-a:1" and "topic-a:0,topic-a:1" are equivalent. The
// partition index must be a non-negative integer.
func ParseTopicPartitions(raw string) ([]TopicPartition, error) {
	stripped := whitespace.ReplaceAllString(raw, "")
	tokens := strings.Split(stripped, ",")
	assignments := make([]TopicPartition, 0, len(tokens))
	for _, token := range tokens {
		pair := strings.Split(token, ":")
		if len(pair) != 2 {
			return nil, &InvalidPartitionSpecError{Token: token}
		}
		partition, err := strconv.Atoi(pair[1])
		if err != nil || partition < 0 {
			return nil, &InvalidPartitionSpecError{Token: token}
		}
		assignments = append(assignments, TopicPartition{Topic: pair[0], Partition: int32(partition)})
	}
	return assignments, nil
}
