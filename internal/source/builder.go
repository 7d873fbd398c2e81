package source

import (
	"go.uber.org/zap"

	"github.com/mimiro.io/kafka-source-layer/kafka-source-layer/internal/conf"
)

// Builder turns validated configuration documents into live consumer
// clients. It holds no per-document state, so a single Builder can be
// shared across goroutines; the clients it returns cannot.
type Builder struct {
	logger  *zap.SugaredLogger
	factory Factory
}

func NewBuilder(env *conf.Env, factory Factory) *Builder {
	return &Builder{
		logger:  env.Logger.Named("source"),
		factory: factory,
	}
}

// ConstructAndSubscribe builds the effective property map, constructs a
// client from it and binds the client to topics. If the binding fails the
// client is closed and never returned.
func (b *Builder) ConstructAndSubscribe(doc *conf.SourceDocument) (Client, error) {
	client, err := b.ConstructOnly(doc)
	if err != nil {
		return nil, err
	}
	if err := b.bindSubscription(client, doc.Subscription); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// ConstructOnly builds a client without touching subscription state, for
// connectivity checks.
func (b *Builder) ConstructOnly(doc *conf.SourceDocument) (Client, error) {
	props, err := b.buildProperties(doc)
	if err != nil {
		return nil, err
	}
	return b.factory.Construct(props)
}

func (b *Builder) buildProperties(doc *conf.SourceDocument) (Properties, error) {
	props := resolveProperties(doc)
	security, err := b.protocolProperties(doc.Protocol)
	if err != nil {
		return nil, err
	}
	for k, v := range security {
		props[k] = v
	}
	prune(props)
	return props, nil
}
