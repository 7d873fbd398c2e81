package source

import (
	"fmt"
	"strings"

	"github.com/mimiro.io/kafka-source-layer/kafka-source-layer/internal/conf"
)

const (
	protocolPlaintext     = "PLAINTEXT"
	protocolSASLSSL       = "SASL_SSL"
	protocolSASLPlaintext = "SASL_PLAINTEXT"
)

// protocolProperties returns the security related property entries for
// exactly one protocol variant. The discriminator is matched
// case-insensitively; anything outside the closed variant set fails the
// whole construction.
func (b *Builder) protocolProperties(protocol *conf.ProtocolConfig) (Properties, error) {
	if protocol == nil {
		return nil, fmt.Errorf("%w: no protocol", ErrIncompleteDocument)
	}
	b.logger.Infof("Kafka protocol config: %+v", protocol)

	name := strings.ToUpper(protocol.SecurityProtocol)
	props := Properties{propSecurityProtocol: name}
	switch name {
	case protocolPlaintext:
	case protocolSASLSSL, protocolSASLPlaintext:
		props[propSASLJAASConfig] = protocol.SASLJAASConfig
		props[propSASLMechanism] = protocol.SASLMechanism
	default:
		return nil, &UnsupportedProtocolError{Protocol: protocol.SecurityProtocol}
	}
	return props, nil
}
