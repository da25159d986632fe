package paymentgateway

import (
	"context"

	"github.com/riskibarqy/pool-league/internal/domain/payment"
	"github.com/riskibarqy/pool-league/internal/platform/logging"
)

// LogDispatcher accepts every instruction and only writes an audit line.
// It stands in for the gateway in local runs.
type LogDispatcher struct {
	logger *logging.Logger
}

func NewLogDispatcher(logger *logging.Logger) *LogDispatcher {
	if logger == nil {
		logger = logging.Default()
	}
	return &LogDispatcher{logger: logger}
}

func (d *LogDispatcher) Dispatch(ctx context.Context, ins payment.Instruction) error {
	d.logger.Audit(ctx, "payment.dispatch",
		"instruction_id", ins.ID,
		"kind", string(ins.Kind),
		"recipient_id", ins.RecipientID,
		"amount_cents", int64(ins.Amount),
	)
	return nil
}
