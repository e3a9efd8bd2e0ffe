package services

import (
	"context"
	"errors"

	"coinpay-backend/internal/models"
	"coinpay-backend/internal/payment"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Acknowledgement bodies. The gateway stops retrying only on the exact
// "success" token.
const (
	AckSuccess = "success"
	AckFail    = "fail"
)

type Outcome string

const (
	OutcomeCredited  Outcome = "credited"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeIgnored   Outcome = "ignored"
	OutcomeRejected  Outcome = "rejected"
	OutcomeError     Outcome = "error"
)

// Ack is the body owed to the gateway for this outcome.
func (o Outcome) Ack() string {
	switch o {
	case OutcomeCredited, OutcomeDuplicate, OutcomeIgnored:
		return AckSuccess
	default:
		return AckFail
	}
}

type NotificationRequest struct {
	Provider string
	Body     []byte
	RemoteIP string
}

type NotificationResult struct {
	Outcome Outcome
	TradeNo string
	Reason  string
	Err     error
}

// HandleNotification runs one inbound notification through
// received -> parsed -> signature checked -> credited | ignored | rejected.
// It never panics on input and always yields an outcome whose Ack is the
// response body.
func (s *PaymentService) HandleNotification(ctx context.Context, req NotificationRequest) NotificationResult {
	log := s.log.With(zap.String("provider", req.Provider), zap.String("remote_ip", req.RemoteIP))

	// The raw body is recorded before anything else looks at it.
	log.Info("notification received", zap.ByteString("body", req.Body))
	receivedID, err := s.audit.Append(ctx, NotificationRecord{
		Provider: req.Provider,
		Stage:    AuditStageReceived,
		RemoteIP: req.RemoteIP,
		Body:     req.Body,
	})
	if err != nil {
		log.Error("failed to record notification", zap.Error(err))
		return NotificationResult{Outcome: OutcomeError, Reason: "audit unavailable", Err: err}
	}

	res := s.dispatch(ctx, req, log)

	fields := []zap.Field{
		zap.String("out_trade_no", res.TradeNo),
		zap.String("outcome", string(res.Outcome)),
		zap.String("reason", res.Reason),
	}
	switch res.Outcome {
	case OutcomeError:
		log.Error("notification failed", append(fields, zap.Error(res.Err))...)
	case OutcomeRejected:
		log.Warn("notification rejected", append(fields, zap.Error(res.Err))...)
	default:
		log.Info("notification processed", fields...)
	}

	if _, err := s.audit.Append(ctx, NotificationRecord{
		Provider:   req.Provider,
		TradeNo:    res.TradeNo,
		Stage:      AuditStageOutcome,
		Outcome:    string(res.Outcome),
		Reason:     res.Reason,
		RemoteIP:   req.RemoteIP,
		ReceivedID: receivedID,
	}); err != nil {
		log.Error("failed to record notification outcome", zap.Error(err))
	}

	return res
}

func (s *PaymentService) dispatch(ctx context.Context, req NotificationRequest, log *zap.Logger) NotificationResult {
	provider, ok := s.registry.Get(req.Provider)
	if !ok {
		return NotificationResult{Outcome: OutcomeRejected, Reason: "unknown provider", Err: ErrProviderNotFound}
	}

	// Disabled providers still verify notifications for orders created
	// while they were enabled.
	settings, err := s.configs.Get(ctx, req.Provider)
	if errors.Is(err, ErrProviderNotFound) {
		return NotificationResult{Outcome: OutcomeRejected, Reason: "provider not configured", Err: err}
	}
	if err != nil {
		return NotificationResult{Outcome: OutcomeError, Reason: "config unavailable", Err: err}
	}

	n, err := provider.Verifier.Verify(settings.Config, req.Body)
	if err != nil {
		res := NotificationResult{Outcome: OutcomeRejected, Err: err}
		if n != nil {
			res.TradeNo = n.TradeNo
		}
		switch {
		case errors.Is(err, payment.ErrSignatureMismatch):
			res.Reason = "signature mismatch"
		default:
			res.Reason = "malformed body"
		}
		return res
	}

	switch n.TradeStatus {
	case payment.TradeStatusSuccess:
		return s.applySuccess(ctx, provider.Name, n, log)
	case payment.TradeStatusClosed:
		return s.applyClosed(ctx, n, log)
	default:
		return NotificationResult{Outcome: OutcomeIgnored, TradeNo: n.TradeNo, Reason: "status " + n.RawStatus}
	}
}

func (s *PaymentService) applySuccess(ctx context.Context, providerName string, n *payment.Notification, log *zap.Logger) NotificationResult {
	res := NotificationResult{TradeNo: n.TradeNo}

	if s.replay != nil && s.replay.Seen(ctx, providerName, n.TradeNo) {
		res.Outcome = OutcomeDuplicate
		res.Reason = "replay marker"
		return res
	}

	order, err := s.orders.Lookup(ctx, n.TradeNo)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			res.Outcome, res.Reason, res.Err = OutcomeRejected, "unknown order", err
			return res
		}
		res.Outcome, res.Reason, res.Err = OutcomeError, "order lookup failed", err
		return res
	}
	if order.Provider != providerName {
		res.Outcome, res.Reason = OutcomeRejected, "provider mismatch"
		return res
	}
	if reason, ok := amountMatches(order, n.Amount); !ok {
		res.Outcome, res.Reason = OutcomeRejected, reason
		return res
	}

	credit, err := s.ledger.CreditIfUnpaid(ctx, n.TradeNo, n.ExternalID)
	switch {
	case errors.Is(err, ErrOrderTerminal):
		// A closed order reported as paid needs a human; keep the gateway retrying.
		res.Outcome, res.Reason, res.Err = OutcomeRejected, "order closed", err
		return res
	case errors.Is(err, ErrOrderNotFound):
		res.Outcome, res.Reason, res.Err = OutcomeRejected, "unknown order", err
		return res
	case err != nil:
		res.Outcome, res.Reason, res.Err = OutcomeError, "credit failed", err
		return res
	}

	if s.replay != nil {
		if err := s.replay.Mark(ctx, providerName, n.TradeNo); err != nil {
			log.Warn("failed to set replay marker", zap.String("out_trade_no", n.TradeNo), zap.Error(err))
		}
	}

	if credit == CreditAlreadyApplied {
		res.Outcome, res.Reason = OutcomeDuplicate, "already paid"
		return res
	}
	res.Outcome = OutcomeCredited
	return res
}

func (s *PaymentService) applyClosed(ctx context.Context, n *payment.Notification, log *zap.Logger) NotificationResult {
	res := NotificationResult{TradeNo: n.TradeNo, Outcome: OutcomeIgnored}

	closed, err := s.orders.CloseIfCreated(ctx, n.TradeNo)
	switch {
	case errors.Is(err, ErrOrderTerminal):
		log.Warn("close reported for a paid order", zap.String("out_trade_no", n.TradeNo))
		res.Reason = "order already paid"
	case errors.Is(err, ErrOrderNotFound):
		res.Reason = "unknown order"
	case err != nil:
		res.Outcome, res.Reason, res.Err = OutcomeError, "close failed", err
	case closed:
		res.Reason = "order closed"
	default:
		res.Reason = "already closed"
	}
	return res
}

// amountMatches compares the notified amount, when present, with the stored
// order amount.
func amountMatches(order *models.PaymentOrder, notified string) (string, bool) {
	if notified == "" {
		return "", true
	}
	amount, err := decimal.NewFromString(notified)
	if err != nil {
		return "unparseable amount", false
	}
	if !amount.Equal(order.Amount) {
		return "amount mismatch", false
	}
	return "", true
}
