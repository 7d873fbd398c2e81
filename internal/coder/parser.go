package coder

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/bcicen/jstream"

	"github.com/mimiro.io/kafka-source-layer/kafka-source-layer/internal/conf"
)

// ParseConnections streams a JSON array of connection objects from the
// reader, emitting each connection as soon as it is fully parsed. Errors
// from the emit callback stop the stream.
func ParseConnections(reader io.Reader, emit func(connection conf.ConnectionConfig) error) error {
	decoder := jstream.NewDecoder(reader, 1)

	for mv := range decoder.Stream() {
		connection, err := asConnection(mv)
		if err != nil {
			return err
		}
		if err := emit(connection); err != nil {
			return err
		}
	}

	return decoder.Err()
}

func asConnection(value *jstream.MetaValue) (conf.ConnectionConfig, error) {
	connection := conf.ConnectionConfig{}

	raw, ok := value.Value.(map[string]interface{})
	if !ok {
		return connection, errors.New("connection element is not an object")
	}
	// round-trip through json to get the typed document, jstream only gives
	// us generic maps
	data, err := json.Marshal(raw)
	if err != nil {
		return connection, err
	}
	if err := json.Unmarshal(data, &connection); err != nil {
		return connection, err
	}
	if connection.Name == "" {
		return connection, errors.New("connection is missing a name")
	}
	if connection.Source == nil {
		return connection, errors.New("connection " + connection.Name + " is missing a source document")
	}
	if connection.Source.BootstrapServers == "" {
		return connection, errors.New("connection " + connection.Name + " is missing bootstrap_servers")
	}
	if connection.Source.Protocol == nil {
		return connection, errors.New("connection " + connection.Name + " is missing a protocol")
	}
	if connection.Source.Subscription == nil {
		return connection, errors.New("connection " + connection.Name + " is missing a subscription")
	}
	return connection, nil
}
