package background

import (
	"context"
	"log"
	"time"

	"github.com/begintolern/linkmint-core/internal/infrastructure/kafka"
	"github.com/begintolern/linkmint-core/internal/usecase/disburse"
	"github.com/begintolern/linkmint-core/internal/usecase/ops"
)

type BackgroundTasks struct {
	Runner   *disburse.Runner
	Watchdog *ops.Watchdog
	Consumer *kafka.OrderEventConsumer

	DisburseInterval time.Duration
	WatchdogInterval time.Duration
	BatchSize        int
}

func NewBackgroundTasks(runner *disburse.Runner, watchdog *ops.Watchdog, consumer *kafka.OrderEventConsumer, disburseInterval, watchdogInterval time.Duration, batchSize int) *BackgroundTasks {
	return &BackgroundTasks{
		Runner:           runner,
		Watchdog:         watchdog,
		Consumer:         consumer,
		DisburseInterval: disburseInterval,
		WatchdogInterval: watchdogInterval,
		BatchSize:        batchSize,
	}
}

func (bt *BackgroundTasks) StartAll(ctx context.Context) {
	go bt.startDisbursementLoop(ctx)
	go bt.startWatchdogLoop(ctx)
	go bt.startOrderIngestion(ctx)
}

func (bt *BackgroundTasks) startDisbursementLoop(ctx context.Context) {
	ticker := time.NewTicker(bt.DisburseInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			result, err := bt.Runner.Run(disburse.RunParams{BatchSize: bt.BatchSize})
			if err != nil {
				log.Printf("Disbursement run error: %v\n", err)
				continue
			}
			if result.Halted {
				log.Printf("Disbursement halted: auto-disbursement flag is off\n")
				continue
			}
			if result.PaidCount > 0 {
				log.Printf("Disbursement run %s: paid=%d total_minor=%d\n", result.RunID, result.PaidCount, result.TotalPaidMinor)
			}
		}
	}
}

func (bt *BackgroundTasks) startWatchdogLoop(ctx context.Context) {
	ticker := time.NewTicker(bt.WatchdogInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := bt.Watchdog.Tick(); err != nil {
				log.Printf("Watchdog tick error: %v\n", err)
			}
		}
	}
}

// startOrderIngestion re-subscribes when the broker connection drops; the
// consumer group offset keeps re-delivery idempotent downstream.
func (bt *BackgroundTasks) startOrderIngestion(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		if err := bt.Consumer.Run(); err != nil {
			log.Printf("Order event consumer error: %v\n", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(5 * time.Second):
		}
	}
}
