package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"orderflow/internal/core/application/usecases/queries"
	"orderflow/internal/core/domain/model/order"

	"github.com/robfig/cron/v3"
)

// DefaultReportSchedule runs the report once a minute, at second zero.
const DefaultReportSchedule = "0 * * * * *"

// StateCounter is the read side the report needs.
type StateCounter interface {
	StateCounts(ctx context.Context) (queries.GetOrderStateCountsQueryResponse, error)
}

// OrderStateReportJob periodically logs how many orders sit in each state.
// It only reads; no transition is ever triggered by time.
type OrderStateReportJob struct {
	counter  StateCounter
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger
}

// NewOrderStateReportJob creates the report job. schedule is a six field cron
// expression with seconds; an empty schedule selects DefaultReportSchedule.
func NewOrderStateReportJob(counter StateCounter, schedule string, logger *slog.Logger) *OrderStateReportJob {
	if schedule == "" {
		schedule = DefaultReportSchedule
	}
	return &OrderStateReportJob{
		counter:  counter,
		schedule: schedule,
		cron:     cron.New(cron.WithSeconds()),
		logger:   logger.With("component", "order_state_report_job"),
	}
}

// Start registers the report with the scheduler and starts it.
func (j *OrderStateReportJob) Start() error {
	_, err := j.cron.AddFunc(j.schedule, func() {
		j.Run(context.Background())
	})
	if err != nil {
		return fmt.Errorf("invalid report schedule %q: %w", j.schedule, err)
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Order state report job started", "schedule", j.schedule)
	return nil
}

// Run produces one report.
func (j *OrderStateReportJob) Run(ctx context.Context) {
	resp, err := j.counter.StateCounts(ctx)
	if err != nil {
		j.logger.ErrorContext(ctx, "Order state report failed", "error", err)
		return
	}

	attrs := make([]any, 0, 2*len(order.States())+2)
	for _, s := range order.States() {
		attrs = append(attrs, s.String(), resp.Counts[s])
	}
	attrs = append(attrs, "total", resp.Total)
	j.logger.InfoContext(ctx, "order state report", attrs...)
}

// Stop stops the scheduler and waits for a running report to finish.
func (j *OrderStateReportJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Order state report job stopped")
}
