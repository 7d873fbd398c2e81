package conf

type SourcesConfig struct {
	ID          string             `json:"id"`
	Connections []ConnectionConfig `json:"connections"`
}

type ConnectionConfig struct {
	Name   string          `json:"name"`
	Source *SourceDocument `json:"source"`
}

// SourceDocument is the validated configuration document for a single
// consumer connection. Optional scalars are pointers so that an absent
// field is distinguishable from a zero value; the resolver drops absent
// fields from the effective property map instead of passing zeroes on.
type SourceDocument struct {
	BootstrapServers     string              `json:"bootstrap_servers"`
	GroupID              *string             `json:"group_id"`
	MaxPollRecords       *int                `json:"max_poll_records"`
	ClientID             *string             `json:"client_id"`
	ClientDNSLookup      string              `json:"client_dns_lookup"`
	EnableAutoCommit     bool                `json:"enable_auto_commit"`
	AutoCommitIntervalMs *int                `json:"auto_commit_interval_ms"`
	RetryBackoffMs       *int                `json:"retry_backoff_ms"`
	RequestTimeoutMs     *int                `json:"request_timeout_ms"`
	ReceiveBufferBytes   *int                `json:"receive_buffer_bytes"`
	Protocol             *ProtocolConfig     `json:"protocol"`
	Subscription         *SubscriptionConfig `json:"subscription"`
}

// ProtocolConfig selects the security mode. The JAAS config string is an
// opaque, already resolved credential and is never parsed by this layer.
type ProtocolConfig struct {
	SecurityProtocol string `json:"security_protocol"`
	SASLJAASConfig   string `json:"sasl_jaas_config"`
	SASLMechanism    string `json:"sasl_mechanism"`
}

// SubscriptionConfig selects the topic binding mode. The topic_partitions
// string uses the "topic:partition,topic:partition" grammar.
type SubscriptionConfig struct {
	SubscriptionType string `json:"subscription_type"`
	TopicPattern     string `json:"topic_pattern"`
	TopicPartitions  string `json:"topic_partitions"`
}
