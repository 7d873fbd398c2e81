package source

import (
	"fmt"
	"strings"

	"github.com/mimiro.io/kafka-source-layer/kafka-source-layer/internal/conf"
)

const (
	propBootstrapServers   = "bootstrap.servers"
	propGroupID            = "group.id"
	propMaxPollRecords     = "max.poll.records"
	propClientID           = "client.id"
	propClientDNSLookup    = "client.dns.lookup"
	propEnableAutoCommit   = "enable.auto.commit"
	propAutoCommitInterval = "auto.commit.interval.ms"
	propRetryBackoff       = "retry.backoff.ms"
	propRequestTimeout     = "request.timeout.ms"
	propReceiveBuffer      = "receive.buffer.bytes"
	propSecurityProtocol   = "security.protocol"
	propSASLJAASConfig     = "sasl.jaas.config"
	propSASLMechanism      = "sasl.mechanism"
	propKeyDeserializer    = "key.deserializer"
	propValueDeserializer  = "value.deserializer"
)

// The codec pair is fixed: keys are UTF-8 strings, values are JSON
// documents.
const (
	keyDeserializerString = "string"
	valueDeserializerJSON = "json"
)

// resolveProperties maps the scalar fields of a configuration document to
// client properties. Absent optional fields become nil entries here and are
// removed by the prune pass together with any blank protocol fields.
func resolveProperties(doc *conf.SourceDocument) Properties {
	return Properties{
		propBootstrapServers:   doc.BootstrapServers,
		propGroupID:            optString(doc.GroupID),
		propMaxPollRecords:     optInt(doc.MaxPollRecords),
		propClientID:           optString(doc.ClientID),
		propClientDNSLookup:    doc.ClientDNSLookup,
		propEnableAutoCommit:   doc.EnableAutoCommit,
		propAutoCommitInterval: optInt(doc.AutoCommitIntervalMs),
		propRetryBackoff:       optInt(doc.RetryBackoffMs),
		propRequestTimeout:     optInt(doc.RequestTimeoutMs),
		propReceiveBuffer:      optInt(doc.ReceiveBufferBytes),
		propKeyDeserializer:    keyDeserializerString,
		propValueDeserializer:  valueDeserializerJSON,
	}
}

// prune removes every entry whose value is absent or renders to a blank
// string. The client library treats an explicit blank differently from an
// unset property, so blanks must never reach it. Runs once over the fully
// merged map.
func prune(props Properties) {
	for k, v := range props {
		if v == nil {
			delete(props, k)
			continue
		}
		if strings.TrimSpace(fmt.Sprintf("%v", v)) == "" {
			delete(props, k)
		}
	}
}

func optString(v *string) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func optInt(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
