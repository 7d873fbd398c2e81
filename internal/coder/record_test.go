package coder

import (
	"encoding/json"
	"testing"

	"github.com/franela/goblin"

	"github.com/mimiro.io/kafka-source-layer/kafka-source-layer/internal/source"
)

func TestEncodeRecord(t *testing.T) {
	g := goblin.Goblin(t)
	g.Describe("The record encoder", func() {
		g.It("should embed json values verbatim", func() {
			record := EncodeRecord("stream-1", &source.Message{
				Topic:     "events",
				Partition: 2,
				Offset:    41,
				Key:       []byte("key-1"),
				Value:     []byte(`{"name":"test"}`),
			})
			g.Assert(record.Stream).Eql("stream-1")
			g.Assert(record.Topic).Eql("events")
			g.Assert(record.Partition).Eql(int32(2))
			g.Assert(record.Offset).Eql(int64(41))
			g.Assert(*record.Key).Eql("key-1")
			g.Assert(string(record.Value)).Eql(`{"name":"test"}`)
		})
		g.It("should base64 encode values that are not json", func() {
			record := EncodeRecord("stream-1", &source.Message{
				Topic: "events",
				Value: []byte{0x00, 0x01, 0x02},
			})
			var decoded string
			err := json.Unmarshal(record.Value, &decoded)
			g.Assert(err).IsNil()
			g.Assert(decoded).Eql("AAEC")
		})
		g.It("should leave key and value out for empty payloads", func() {
			record := EncodeRecord("stream-1", &source.Message{Topic: "events"})
			g.Assert(record.Key == nil).IsTrue()
			g.Assert(len(record.Value)).Eql(0)
		})
	})
}
