// Package gochannel provides the in-process event channel used when a
// single editing session needs no external broker.
package gochannel

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// CreateChannel returns a publisher and subscriber backed by the same
// in-memory GoChannel, so events published by the editor are delivered
// to subscribers in the same process.
func CreateChannel(logger watermill.LoggerAdapter) (message.Publisher, message.Subscriber) {
	channel := gochannel.NewGoChannel(gochannel.Config{}, logger)

	return channel, channel
}
