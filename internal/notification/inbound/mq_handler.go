package inbound

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hlmsyhb/authgate/internal/notification/usecase"
	"github.com/hlmsyhb/authgate/internal/pkg/instrument"
	"github.com/hlmsyhb/authgate/internal/pkg/messaging"
	"github.com/hlmsyhb/authgate/internal/pkg/uid"
	"github.com/hlmsyhb/authgate/internal/shared/event"
)

const keyOfCorrelationID string = "cID"

type MQHandler struct {
	uc   uc
	uuid uid.StringID
	ins  instrument.Instrumentation
}

func (h *MQHandler) ensureCorrelationID(ctx context.Context, headers []messaging.Header) context.Context {
	for i := range headers {
		if headers[i].Key == keyOfCorrelationID {
			return instrument.SetCorrelationID(ctx, string(headers[i].Value))
		}
	}
	return instrument.SetCorrelationID(ctx, h.uuid.Generate())
}

func (h *MQHandler) ChallengeIssuedNotification(ctx context.Context, msg messaging.Message) error {
	ctx = h.ensureCorrelationID(ctx, msg.Headers())

	ctx, span := h.ins.Tracer("notification.inbound.mq").Start(ctx, "ChallengeIssuedNotification")
	defer span.End()

	// The payload carries the plaintext code; log only routing fields.
	slog.InfoContext(ctx, "consume: challenge issued notification")

	var payload event.ChallengeIssuedMessage
	if err := json.Unmarshal(msg.Body(), &payload); err != nil {
		slog.ErrorContext(ctx, "failed to parse message body of challenge issued notification", "error", err)
		return nil
	}

	if err := h.uc.ConsumeChallengeIssued(ctx, usecase.ConsumeChallengeIssuedInput{
		AccountID: payload.AccountID,
		Email:     payload.Email,
		FullName:  payload.FullName,
		Purpose:   payload.Purpose,
		Code:      payload.Code,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to consume challenge issued", "email", payload.Email, "purpose", payload.Purpose, "error", err)
		return err
	}

	return nil
}
