package source

import "regexp"

// Properties is the effective property map handed to the client factory.
// Values are rendered to text at the client boundary, so entries hold
// whatever scalar type the configuration document carried.
type Properties map[string]interface{}

type TopicPartition struct {
	Topic     string
	Partition int32
}

// Message is a single consumed record, decoupled from the client library's
// own message type.
type Message struct {
	Topic     string
	Partition int32
	Offset    int64
	Key       []byte
	Value     []byte
}

// Client is a constructed consumer handle. The handle is owned by the
// caller for its lifetime and is not safe for concurrent use.
type Client interface {
	// SubscribePattern binds the handle to all topics matching the pattern.
	SubscribePattern(pattern *regexp.Regexp) error
	// Assign binds the handle to an explicit list of topic partitions,
	// replacing any prior assignment.
	Assign(assignments []TopicPartition) error
	// Poll waits up to timeoutMs for the next message. A nil message with a
	// nil error means nothing arrived within the timeout.
	Poll(timeoutMs int) (*Message, error)
	Close() error
}

// Factory constructs client handles from an effective property map.
type Factory interface {
	Construct(props Properties) (Client, error)
}
