package nats

import (
	"context"
	"errors"

	"github.com/nats-io/nats.go"

	"github.com/stephanofer/atlas/internal/core/domain"
	"github.com/stephanofer/atlas/internal/infrastructure/resilience"
)

// transportErrors are the connection-level failures worth retrying. A
// publish that hits one of these says nothing about the event itself,
// only about the broker link at that instant.
var transportErrors = []error{
	nats.ErrNoServers,
	nats.ErrTimeout,
	nats.ErrConnectionClosed,
	nats.ErrDisconnected,
	nats.ErrReconnectBufExceeded,
}

// classifyNATSError decides how the executor treats a publish failure.
// Caller cancellation is neither retried nor held against the breaker;
// transport faults are both; anything else counts as a breaker failure
// but is not retried, since replaying a malformed publish cannot help.
func classifyNATSError(err error) resilience.ErrorClassification {
	if err == nil {
		return resilience.ErrorClassification{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.ErrorClassification{
			Retryable:     false,
			RecordFailure: false,
		}
	}
	if resilience.IsCircuitOpen(err) || isTransportError(err) {
		return resilience.ErrorClassification{
			Retryable:     true,
			RecordFailure: true,
		}
	}

	return resilience.ErrorClassification{
		Retryable:     false,
		RecordFailure: true,
	}
}

func isTransportError(err error) bool {
	for _, te := range transportErrors {
		if errors.Is(err, te) {
			return true
		}
	}
	return false
}

// wrapTemporaryIfNeeded tags retryable publish failures as temporary so
// callers can tell a degraded broker from a bad event without knowing
// NATS error values.
func wrapTemporaryIfNeeded(err error) error {
	if err == nil {
		return nil
	}
	if domain.IsKind(err, domain.ErrTemporary) {
		return err
	}
	class := classifyNATSError(err)
	if class.Retryable || resilience.IsCircuitOpen(err) {
		return domain.WrapError(domain.ErrTemporary, "nats publish", err)
	}
	return err
}
