package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-credit-sum/internal/logger"
	"github.com/sbilibin2017/gw-credit-sum/internal/models"
	"github.com/sbilibin2017/gw-credit-sum/internal/repositories"
	"github.com/segmentio/kafka-go"
	"github.com/segmentio/ksuid"
)

//go:generate mockgen -source=credits.go -destination=credits_mock.go -package=services

// CreditStore persists credit balances.
type CreditStore interface {
	// Ensure creates the balance with initial credits if it is missing.
	Ensure(ctx context.Context, userID uuid.UUID, initial int) (int, error)
	// Debit subtracts amount only if the balance covers it.
	Debit(ctx context.Context, userID uuid.UUID, amount int) (int, error)
	// Set overwrites the balance.
	Set(ctx context.Context, userID uuid.UUID, amount int) (int, error)
}

// KafkaWriter defines a Kafka writer abstraction.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error // Writes messages to Kafka
	Close() error                                                   // Closes the Kafka writer
}

// CreditService is the credit ledger. Balances only change through
// CheckAndDebit and Set; each committed change is published to Kafka.
type CreditService struct {
	store       CreditStore
	initial     int
	kafkaWriter KafkaWriter
}

// NewCreditService creates a new CreditService. New balances start at
// initial credits. kafkaWriter may be nil.
func NewCreditService(store CreditStore, initial int, kafkaWriter KafkaWriter) *CreditService {
	return &CreditService{
		store:       store,
		initial:     initial,
		kafkaWriter: kafkaWriter,
	}
}

// Ensure creates the user's balance at the default value if it does not
// exist yet and returns the current balance.
func (s *CreditService) Ensure(ctx context.Context, userID uuid.UUID) (int, error) {
	balance, err := s.store.Ensure(ctx, userID, s.initial)
	if err != nil {
		logger.Log.Errorw("failed to ensure credits", "userID", userID, "error", err)
		if errors.Is(err, repositories.ErrReferenceMissing) {
			return 0, ErrUserNotFound
		}
		return 0, err
	}
	return balance, nil
}

// CheckAndDebit subtracts amount if the balance covers it. Otherwise the
// balance is left untouched and ErrInsufficientCredits is returned.
func (s *CreditService) CheckAndDebit(ctx context.Context, userID uuid.UUID, amount int) (int, error) {
	if amount <= 0 {
		return 0, ErrInvalidDebit
	}

	balance, err := s.store.Debit(ctx, userID, amount)
	if err != nil {
		if errors.Is(err, repositories.ErrInsufficientBalance) {
			logger.Log.Infow("insufficient credits", "userID", userID, "amount", amount)
			return 0, ErrInsufficientCredits
		}
		logger.Log.Errorw("failed to debit credits", "userID", userID, "amount", amount, "error", err)
		return 0, err
	}

	s.publishEvent(ctx, userID, models.CreditOperationDebit, amount, balance)
	return balance, nil
}

// Set overwrites the user's balance. Negative amounts are rejected.
func (s *CreditService) Set(ctx context.Context, userID uuid.UUID, amount int) (int, error) {
	if amount < 0 {
		return 0, ErrInvalidAmount
	}

	balance, err := s.store.Set(ctx, userID, amount)
	if err != nil {
		logger.Log.Errorw("failed to set credits", "userID", userID, "amount", amount, "error", err)
		if errors.Is(err, repositories.ErrReferenceMissing) {
			return 0, ErrUserNotFound
		}
		return 0, err
	}

	s.publishEvent(ctx, userID, models.CreditOperationSet, amount, balance)
	return balance, nil
}

// publishEvent publishes a balance change to Kafka. Failures are logged only.
func (s *CreditService) publishEvent(ctx context.Context, userID uuid.UUID, operation string, amount, balance int) {
	event := models.CreditEvent{
		EventID:   ksuid.New().String(),
		Timestamp: time.Now().Unix(),
		UserID:    userID.String(),
		Operation: operation,
		Amount:    amount,
		Balance:   balance,
	}

	if s.kafkaWriter == nil {
		logger.Log.Debugw("Kafka writer not configured, skipping publishing", "event_id", event.EventID)
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		logger.Log.Errorw("Failed to marshal credit event", "event_id", event.EventID, "error", err)
		return
	}

	msg := kafka.Message{
		Key:   []byte(event.UserID),
		Value: data,
	}

	if err := s.kafkaWriter.WriteMessages(ctx, msg); err != nil {
		logger.Log.Errorw("Failed to publish credit event to Kafka", "event_id", event.EventID, "error", err)
	} else {
		logger.Log.Infow("Credit event published to Kafka", "event_id", event.EventID, "operation", operation, "balance", balance)
	}
}
