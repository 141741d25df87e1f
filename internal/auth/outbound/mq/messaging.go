package mq

import (
	"context"
	"encoding/json"

	"github.com/hlmsyhb/authgate/internal/auth/usecase"
	"github.com/hlmsyhb/authgate/internal/pkg/instrument"
	"github.com/hlmsyhb/authgate/internal/pkg/messaging"
	"github.com/hlmsyhb/authgate/internal/shared/event"
	"go.opentelemetry.io/otel/codes"
)

const keyOfCorrelationID string = "cID"

type Messaging struct {
	client messaging.Messaging
	ins    instrument.Instrumentation
}

func NewMessaging(client messaging.Messaging, ins instrument.Instrumentation) *Messaging {
	return &Messaging{client: client, ins: ins}
}

func (m *Messaging) PublishChallengeIssued(ctx context.Context, msg usecase.ChallengeIssuedEvent) error {
	ctx, span := m.ins.Tracer("auth.outbound.mq").Start(ctx, "PublishChallengeIssued")
	defer span.End()

	body, err := json.Marshal(event.ChallengeIssuedMessage{
		AccountID: msg.AccountID,
		Email:     msg.Email,
		FullName:  msg.FullName,
		Purpose:   msg.Purpose.String(),
		Code:      msg.Code,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	cID := instrument.GetCorrelationID(ctx)
	if _, err := m.client.Publish(ctx, event.ChallengeIssuedDestination, messaging.OutgoingMessage{
		Body:    body,
		Headers: []messaging.Header{{Key: keyOfCorrelationID, Value: []byte(cID)}},
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
