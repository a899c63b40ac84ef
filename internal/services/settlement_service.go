package services

import (
	"context"
	"errors"
	"strconv"
	"time"

	"bank-backend/internal/database"
	"bank-backend/internal/metrics"
	"bank-backend/internal/models"
	"bank-backend/internal/repositories"
	"bank-backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	SettlementQueueKey = "settlement_queue"

	settlementPopTimeout = 2 * time.Second
	sweepBatchSize       = 100
)

var errQueueUnavailable = errors.New("settlement queue requires redis")

// EnqueueSettlement pushes a pending transaction onto the settlement queue.
func EnqueueSettlement(ctx context.Context, id uint) error {
	if database.RedisClient == nil {
		return errQueueUnavailable
	}
	return database.RedisClient.RPush(ctx, SettlementQueueKey, id).Err()
}

// StartSettlementWorker settles queued transactions one at a time until ctx
// is cancelled.
func StartSettlementWorker(ctx context.Context) {
	logger.Log.Info("Settlement worker started")
	defer logger.Log.Info("Settlement worker stopped")

	for {
		if ctx.Err() != nil {
			return
		}

		result, err := database.RedisClient.BLPop(ctx, settlementPopTimeout, SettlementQueueKey).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if ctx.Err() != nil {
				return
			}
			logger.Log.Error("Redis BLPop error", zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}

		// result[0] is the key, result[1] is the value
		processSettlement(ctx, result[1])

		if depth, err := database.RedisClient.LLen(ctx, SettlementQueueKey).Result(); err == nil {
			metrics.SetSettlementQueueDepth(depth)
		}
	}
}

func processSettlement(ctx context.Context, raw string) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		logger.Log.Warn("Invalid transaction id in settlement queue", zap.String("value", raw))
		return
	}

	record, err := SettleTransaction(ctx, uint(id))
	switch {
	case err == nil:
		logger.Log.Info("Transaction settled",
			zap.Uint("transaction_id", record.ID), zap.String("type", string(record.Type)))
	case errors.Is(err, errNotPending):
		logger.Log.Info("Skipping settled transaction",
			zap.Uint64("transaction_id", id), zap.String("status", string(record.Status)))
	default:
		logger.Log.Warn("Queued settlement failed", zap.Uint64("transaction_id", id), zap.Error(err))
	}
}

// SweepStalePending handles pending transactions older than staleAfter.
// With queued settlement they are enqueued again. Otherwise a pending record
// can only mean the process stopped mid-request, so it is marked failed.
func SweepStalePending(ctx context.Context, staleAfter time.Duration) (int, error) {
	transactions := repositories.NewTransactionRepository(database.DB.WithContext(ctx))

	stale, err := transactions.FindStalePending(time.Now().Add(-staleAfter), sweepBatchSize)
	if err != nil {
		return 0, err
	}

	handled := 0
	for _, record := range stale {
		if QueuedSettlement() {
			if err := EnqueueSettlement(ctx, record.ID); err != nil {
				return handled, err
			}
			handled++
			continue
		}

		ok, err := transactions.TransitionStatus(record.ID, models.TransactionStatusPending,
			models.TransactionStatusFailed, "settlement interrupted")
		if err != nil {
			return handled, err
		}
		if ok {
			metrics.RecordTransaction(string(record.Type), string(models.TransactionStatusFailed))
			handled++
		}
	}

	action := "failed"
	if QueuedSettlement() {
		action = "requeued"
	}
	metrics.RecordSweep(action, handled)
	if handled > 0 {
		logger.Log.Info("Swept stale pending transactions", zap.Int("count", handled), zap.String("action", action))
	}
	return handled, nil
}

// StartSettlementSweeper runs SweepStalePending on schedule until ctx is cancelled.
func StartSettlementSweeper(ctx context.Context, schedule string, staleAfter time.Duration) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		if _, err := SweepStalePending(ctx, staleAfter); err != nil {
			logger.Log.Error("Settlement sweep failed", zap.Error(err))
		}
	})
	if err != nil {
		return nil, err
	}

	c.Start()
	go func() {
		<-ctx.Done()
		<-c.Stop().Done()
	}()
	return c, nil
}
