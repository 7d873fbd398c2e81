package kafka

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/DataDog/datadog-go/v5/statsd"
	"github.com/hashicorp/go-uuid"
	"go.uber.org/zap"

	"github.com/mimiro.io/kafka-source-layer/kafka-source-layer/internal/coder"
	"github.com/mimiro.io/kafka-source-layer/kafka-source-layer/internal/conf"
	"github.com/mimiro.io/kafka-source-layer/kafka-source-layer/internal/source"
)

type Records struct {
	env     *conf.Env
	logger  *zap.SugaredLogger
	builder *source.Builder
	mngr    *conf.ConfigurationManager
	statsd  statsd.ClientInterface
	running map[string]*runState
	lock    *sync.RWMutex
}

type StreamRequest struct {
	Connection string
	Limit      int64
}

type runState struct {
	client      source.Client
	ctx         context.Context
	cancel      context.CancelFunc
	isCancelled bool
}

func NewRecords(env *conf.Env, mngr *conf.ConfigurationManager, builder *source.Builder, statsd statsd.ClientInterface) *Records {
	return &Records{
		env:     env,
		logger:  env.Logger.Named("records"),
		builder: builder,
		mngr:    mngr,
		statsd:  statsd,
		running: make(map[string]*runState),
		lock:    &sync.RWMutex{},
	}
}

func (records *Records) DoesConnectionExist(name string) bool {
	return records.mngr.Connection(name) != nil
}

// Stream constructs and subscribes a consumer for the named connection and
// feeds consumed records to the callback until the subscription runs dry,
// the limit is reached or the stream is cancelled.
func (records *Records) Stream(request StreamRequest, callBack func(record *coder.Record)) error {
	connection := records.mngr.Connection(request.Connection)
	if connection == nil {
		return errors.New("connection has disappeared, bad mojo")
	}

	tags := []string{
		fmt.Sprintf("application:%s", records.env.ServiceName),
		fmt.Sprintf("connection:%s", connection.Name),
	}

	// if multiple requests are made for the same connection, we need to make
	// sure only one is running at a time
	records.lock.RLock()
	if prev, ok := records.running[connection.Name]; ok {
		// so, this means something is still running, so cancel it, and reset
		prev.cancel()
		if !prev.isCancelled {
			_ = prev.client.Close() // this should hopefully allow us to clean exit the previous consumer if still running
		}
	}
	records.lock.RUnlock()

	client, err := records.builder.ConstructAndSubscribe(connection.Source)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(context.Background())

	state := &runState{
		client:      client,
		ctx:         ctx,
		cancel:      cancel,
		isCancelled: false,
	}
	records.lock.Lock()
	records.running[connection.Name] = state
	records.lock.Unlock()

	// clean up, but there is a chance that this is never run
	defer func() {
		if !state.isCancelled {
			_ = state.client.Close()
		}
		state.cancel()
		state.isCancelled = true

		records.lock.Lock()
		delete(records.running, connection.Name)
		records.lock.Unlock()
	}()

	streamID, _ := uuid.GenerateUUID()
	records.logger.Infof("Starting record stream %s for connection %s", streamID, connection.Name)

	// max_poll_records caps a single stream even when the caller asks for
	// more, or for no limit at all
	limit := request.Limit
	if maxPoll := connection.Source.MaxPollRecords; maxPoll != nil {
		if limit < 0 || limit > int64(*maxPoll) {
			limit = int64(*maxPoll)
		}
	}

	run := true
	count := int64(0)
	nilCount := 0
	isBeginning := true

	for run == true {
		select {
		case <-ctx.Done():
			records.logger.Debug("Terminating poll loop")
			run = false
		default:
			msg, err := state.client.Poll(500)
			if err != nil {
				if errors.Is(err, source.ErrBrokersDown) {
					records.logger.Warn("Stopping record stream, all brokers down")
					state.cancel()
				} else {
					records.logger.Warn(err)
				}
				continue
			}
			if msg == nil {
				nilCount++
				if isBeginning {
					if nilCount == 10 {
						records.logger.Debug("Got 10 nil counts, stopping. Do you need to increase the timeout?")
						state.cancel()
					}
					records.logger.Debug("Waiting for data")
					time.Sleep(1000 * time.Millisecond)
				} else {
					records.logger.Info("subscription depleted. cancelling stream context")
					state.cancel()
				}
				continue
			}

			count++
			nilCount = 0
			isBeginning = false

			callBack(coder.EncodeRecord(streamID, msg))
			_ = records.statsd.Incr("kafka.read", tags, 1)

			if limit > -1 && count >= limit {
				records.logger.Debugf("reached limit of %v. stop poll loop", count)
				run = false
			}
		}
	}

	records.logger.Infof("Record stream %s emitted %v msgs", streamID, count)
	return nil
}

// CloseAll cancels every running stream. Used on shutdown.
func (records *Records) CloseAll() {
	records.lock.Lock()
	defer records.lock.Unlock()
	for name, state := range records.running {
		records.logger.Infof("Cancelling stream for connection %s", name)
		state.cancel()
	}
}
