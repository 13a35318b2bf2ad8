package checkout

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrPaymentFailed = errors.New("payment failed")

// DefaultPaymentDelay is how long the simulated gateway takes to answer.
const DefaultPaymentDelay = 2 * time.Second

// Receipt identifies a successful charge.
type Receipt struct {
	PaymentID string
	Amount    decimal.Decimal
}

// Gateway charges the order total.
type Gateway interface {
	Charge(ctx context.Context, amount decimal.Decimal) (Receipt, error)
}

var refusals = []string{
	"insufficient funds",
	"card expired",
	"card declined",
	"suspected fraud",
	"issuer unavailable",
}

// SimulatedGateway waits Delay and then succeeds, except for a FailureRate
// share of charges (0 to 1) that are refused with a random reason.
type SimulatedGateway struct {
	Delay       time.Duration
	FailureRate float64
}

func NewSimulatedGateway(delay time.Duration, failureRate float64) *SimulatedGateway {
	return &SimulatedGateway{Delay: delay, FailureRate: failureRate}
}

func (g *SimulatedGateway) Charge(ctx context.Context, amount decimal.Decimal) (Receipt, error) {
	if g.Delay > 0 {
		timer := time.NewTimer(g.Delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return Receipt{}, fmt.Errorf("%w: %w", ErrPaymentFailed, ctx.Err())
		}
	}

	if g.FailureRate > 0 && rand.Float64() < g.FailureRate {
		return Receipt{}, fmt.Errorf("%w: %s", ErrPaymentFailed, refusals[rand.Intn(len(refusals))])
	}

	return Receipt{
		PaymentID: "TXN-" + strings.ToUpper(uuid.NewString()[:8]),
		Amount:    amount,
	}, nil
}
