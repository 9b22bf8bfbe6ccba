package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-credit-sum/internal/logger"
)

//go:generate mockgen -source=sum.go -destination=sum_mock.go -package=services

// Operand bounds and price of one sum.
const (
	MinOperand = 0
	MaxOperand = 1023
	SumCost    = 1
)

// CreditDebiter is the part of the ledger a billable operation needs.
type CreditDebiter interface {
	Ensure(ctx context.Context, userID uuid.UUID) (int, error)
	CheckAndDebit(ctx context.Context, userID uuid.UUID, amount int) (int, error)
}

// SumService adds two integers for one credit.
type SumService struct {
	credits CreditDebiter
}

// NewSumService creates a new SumService.
func NewSumService(credits CreditDebiter) *SumService {
	return &SumService{credits: credits}
}

// Sum returns a+b and debits SumCost from the caller. Operands are checked
// before the ledger is touched; no result is returned unless the debit committed.
func (s *SumService) Sum(ctx context.Context, userID uuid.UUID, a, b int) (int, error) {
	if a < MinOperand || a > MaxOperand || b < MinOperand || b > MaxOperand {
		return 0, ErrOperandOutOfRange
	}

	if _, err := s.credits.Ensure(ctx, userID); err != nil {
		return 0, err
	}

	balance, err := s.credits.CheckAndDebit(ctx, userID, SumCost)
	if err != nil {
		return 0, err
	}

	logger.Log.Infow("sum computed", "userID", userID, "a", a, "b", b, "balance", balance)
	return a + b, nil
}
