package inbound

import (
	"context"
	"log/slog"
	"strings"

	"github.com/samber/lo"
	"github.com/hlmsyhb/authgate/internal/notification/usecase"
	"github.com/hlmsyhb/authgate/internal/pkg/config"
	"github.com/hlmsyhb/authgate/internal/pkg/goroutine"
	"github.com/hlmsyhb/authgate/internal/pkg/instrument"
	"github.com/hlmsyhb/authgate/internal/pkg/messaging"
	"github.com/hlmsyhb/authgate/internal/pkg/uid"
	"github.com/hlmsyhb/authgate/internal/shared/event"
)

type uc interface {
	ConsumeChallengeIssued(ctx context.Context, in usecase.ConsumeChallengeIssuedInput) error
}

func RegisterMQConsumer(
	ctx context.Context,
	cfg config.Config,
	routine *goroutine.Manager,
	messenger messaging.Messaging,
	uuid uid.StringID,
	uc uc,
	ins instrument.Instrumentation,
) {
	mqHandler := &MQHandler{uc: uc, uuid: uuid, ins: ins}

	enableConsumerNames := lo.Filter(cfg.GetArray("modules.notification.consumer_names"), func(name string, _ int) bool {
		return strings.TrimSpace(name) != ""
	})

	var consumers = []struct {
		name              string
		topic             string // destination where publisher sent message
		nsqConsumerName   string // for nsq
		natsConsumerName  string // for nats
		kafkaConsumerName string // for kafka
		handler           messaging.Handler
	}{
		{
			name:              event.ChallengeIssuedConsumerNotification,
			topic:             event.ChallengeIssuedDestination,
			nsqConsumerName:   event.ChallengeIssuedConsumerNotification,
			natsConsumerName:  event.ChallengeIssuedConsumerNotification,
			kafkaConsumerName: event.ChallengeIssuedConsumerNotification,
			handler:           mqHandler.ChallengeIssuedNotification,
		},
	}

	for _, consumer := range consumers {
		if lo.Contains(enableConsumerNames, consumer.name) {
			routine.Go(ctx, func(pCtx context.Context) error {
				slog.InfoContext(ctx, "Running job for handling consumer", "consumer", consumer.name)
				return messenger.Consume(pCtx,
					consumer.topic,
					consumer.handler,
					messaging.WithChannel(consumer.nsqConsumerName),
					messaging.WithQueueGroup(consumer.natsConsumerName),
					messaging.WithGroup(consumer.kafkaConsumerName),
					messaging.WithAutoAck(true),
					messaging.WithConcurrency(10),
					messaging.WithMaxInFlight(10),
				)
			})
		}
	}
}
