package counter

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/YuChenWang/ShopPay/app/repository"
	"github.com/YuChenWang/ShopPay/internal/pkg/cache"
)

const dispositionsKey = "payment:counters:dispositions"

// AddDisposition increments the pending counter for one (gateway, disposition)
// pair in Redis. The worker flushes these into payment_daily_stats.
func AddDisposition(gateway, disposition string) error {
	ctx := context.Background()
	field := gateway + "|" + disposition
	return cache.GetClient().HIncrBy(ctx, dispositionsKey, field, 1).Err()
}

// FlushAll drains pending disposition counters into the database
func FlushAll() error {
	return flushDispositions(repository.GetGlobalFactory().GetStatsRepository())
}

// flushDispositions drains the Redis hash atomically and applies the batched
// increments. Uses RENAME to a temporary key so in-flight increments after the
// drain are not lost.
func flushDispositions(stats repository.StatsRepository) error {
	ctx := context.Background()
	rdb := cache.GetClient()

	tmpKey := fmt.Sprintf("%s:tmp:%d", dispositionsKey, time.Now().UnixNano())
	if err := rdb.Do(ctx, "RENAME", dispositionsKey, tmpKey).Err(); err != nil {
		// If key does not exist, nothing to flush
		if strings.Contains(strings.ToLower(err.Error()), "no such key") {
			return nil
		}
		if err.Error() == "redis: nil" {
			return nil
		}
		return err
	}

	// Ensure cleanup of tmpKey even if later steps fail
	defer rdb.Del(ctx, tmpKey)

	data, err := rdb.HGetAll(ctx, tmpKey).Result()
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}

	today := time.Now().UTC()
	for field, v := range data {
		gateway, disposition, ok := strings.Cut(field, "|")
		if !ok {
			continue
		}
		inc, ierr := strconv.ParseInt(v, 10, 64)
		if ierr != nil || inc == 0 {
			continue
		}
		if err := stats.AddToDailyStats(today, gateway, disposition, inc); err != nil {
			return err
		}
	}
	return nil
}
