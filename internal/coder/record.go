package coder

import (
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/tidwall/gjson"

	"github.com/mimiro.io/kafka-source-layer/kafka-source-layer/internal/source"
)

// Record is the emitted form of a consumed message. The value codec is
// JSON: payloads that are valid JSON are embedded verbatim, anything else
// is carried as a base64 string.
type Record struct {
	Stream    string          `json:"stream"`
	Topic     string          `json:"topic"`
	Partition int32           `json:"partition"`
	Offset    int64           `json:"offset"`
	Key       *string         `json:"key,omitempty"`
	Value     json.RawMessage `json:"value,omitempty"`
	EmittedAt int64           `json:"emittedAt"`
}

func EncodeRecord(streamID string, msg *source.Message) *Record {
	record := &Record{
		Stream:    streamID,
		Topic:     msg.Topic,
		Partition: msg.Partition,
		Offset:    msg.Offset,
		EmittedAt: time.Now().UnixMilli(),
	}
	if len(msg.Key) > 0 {
		key := string(msg.Key)
		record.Key = &key
	}
	if len(msg.Value) > 0 {
		if gjson.ValidBytes(msg.Value) {
			record.Value = msg.Value
		} else {
			encoded, _ := json.Marshal(base64.StdEncoding.EncodeToString(msg.Value))
			record.Value = encoded
		}
	}
	return record
}
