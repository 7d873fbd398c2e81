package source

import (
	"errors"
	"fmt"
)

// ErrBrokersDown is reported by a client poll when the underlying transport
// considers the whole broker set unreachable.
var ErrBrokersDown = errors.New("all brokers down")

// ErrIncompleteDocument is returned when a source document lacks its
// protocol or subscription block.
var ErrIncompleteDocument = errors.New("incomplete source document")

// UnsupportedProtocolError is returned when the security_protocol
// discriminator is not one of the supported variants.
type UnsupportedProtocolError struct {
	Protocol string
}

func (e *UnsupportedProtocolError) Error() string {
	return fmt.Sprintf("unsupported security protocol: %s", e.Protocol)
}

// UnsupportedSubscriptionError is returned when the subscription_type
// discriminator is neither "subscribe" nor "assign".
type UnsupportedSubscriptionError struct {
	Type string
}

func (e *UnsupportedSubscriptionError) Error() string {
	return fmt.Sprintf("unsupported subscription type: %s", e.Type)
}

// InvalidPatternError is returned when a topic_pattern does not compile.
type InvalidPatternError struct {
	Pattern string
	Cause   error
}

func (e *InvalidPatternError) Error() string {
	return fmt.Sprintf("invalid topic pattern %q: %v", e.Pattern, e.Cause)
}

func (e *InvalidPatternError) Unwrap() error {
	return e.Cause
}

// InvalidPartitionSpecError is returned for a malformed token in a
// topic_partitions string. Token is the full offending "topic:partition"
// token as it appeared after whitespace stripping.
type InvalidPartitionSpecError struct {
	Token string
}

func (e *InvalidPartitionSpecError) Error() string {
	return fmt.Sprintf("invalid topic partition spec: %s", e.Token)
}
