package kafka

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/juliangruber/go-intersect"
	kgo "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/mimiro.io/kafka-source-layer/kafka-source-layer/internal/conf"
	"github.com/mimiro.io/kafka-source-layer/kafka-source-layer/internal/source"
)

const (
	CheckSucceeded = "succeeded"
	CheckFailed    = "failed"
)

// Probe verifies broker reachability and, where the protocol allows it,
// compares the configured assignment against live topic metadata.
type Probe struct {
	logger *zap.SugaredLogger
}

func NewProbe(env *conf.Env) *Probe {
	return &Probe{logger: env.Logger.Named("probe")}
}

type CheckResult struct {
	Status            string   `json:"status"`
	Message           string   `json:"message,omitempty"`
	Topics            []string `json:"topics,omitempty"`
	MissingPartitions []string `json:"missingPartitions,omitempty"`
}

func (p *Probe) Check(ctx context.Context, doc *conf.SourceDocument) *CheckResult {
	brokers := strings.Split(doc.BootstrapServers, ",")
	broker := strings.TrimSpace(brokers[0])

	timeout := 10 * time.Second
	if doc.RequestTimeoutMs != nil {
		timeout = time.Duration(*doc.RequestTimeoutMs) * time.Millisecond
	}
	dialer := &kgo.Dialer{Timeout: timeout, DualStack: true}

	conn, err := dialer.DialContext(ctx, "tcp", broker)
	if err != nil {
		p.logger.Warnf("Broker %s unreachable: %v", broker, err)
		return &CheckResult{Status: CheckFailed, Message: err.Error()}
	}
	defer conn.Close()

	// metadata can only be read anonymously on a plaintext listener, for
	// SASL protocols reaching the broker is all we verify here
	if !strings.EqualFold(doc.Protocol.SecurityProtocol, "plaintext") {
		return &CheckResult{Status: CheckSucceeded}
	}

	partitions, err := conn.ReadPartitions()
	if err != nil {
		p.logger.Warnf("Could not read partition metadata from %s: %v", broker, err)
		return &CheckResult{Status: CheckFailed, Message: err.Error()}
	}

	topics := make([]string, 0)
	seen := make(map[string]bool)
	available := make([]string, 0, len(partitions))
	for _, partition := range partitions {
		available = append(available, fmt.Sprintf("%s:%d", partition.Topic, partition.ID))
		if !seen[partition.Topic] {
			seen[partition.Topic] = true
			topics = append(topics, partition.Topic)
		}
	}

	result := &CheckResult{Status: CheckSucceeded, Topics: topics}

	if doc.Subscription.SubscriptionType == "assign" {
		assignments, err := source.ParseTopicPartitions(doc.Subscription.TopicPartitions)
		if err != nil {
			return &CheckResult{Status: CheckFailed, Message: err.Error()}
		}
		assigned := make([]string, 0, len(assignments))
		for _, a := range assignments {
			assigned = append(assigned, fmt.Sprintf("%s:%d", a.Topic, a.Partition))
		}
		present := make(map[string]bool)
		for _, v := range intersect.Simple(assigned, available) {
			present[v.(string)] = true
		}
		for _, a := range assigned {
			if !present[a] {
				result.MissingPartitions = append(result.MissingPartitions, a)
			}
		}
		if len(result.MissingPartitions) > 0 {
			result.Message = "assignment references partitions not present on the broker"
		}
	}

	return result
}
