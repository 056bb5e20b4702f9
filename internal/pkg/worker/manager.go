package worker

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/YuChenWang/ShopPay/app/repository"
	"github.com/YuChenWang/ShopPay/internal/pkg/archive"
	"github.com/YuChenWang/ShopPay/internal/pkg/database"
	"github.com/YuChenWang/ShopPay/internal/pkg/env"
	"github.com/YuChenWang/ShopPay/internal/pkg/metrics/counter"
	"github.com/YuChenWang/ShopPay/internal/pkg/payment"
	"github.com/gofiber/fiber/v2/log"
)

// Manager runs the periodic background tasks: disposition counter flush,
// reconciliation sweep and payload cold-archive.
type Manager struct {
	counterFlushTicker *time.Ticker
	reconcileTicker    *time.Ticker
	archiveTicker      *time.Ticker
	stopCh             chan struct{}
	wg                 sync.WaitGroup
	mu                 sync.Mutex
	running            bool
}

var (
	globalManager *Manager
	managerOnce   sync.Once
)

// GetManager returns the global worker manager (singleton)
func GetManager() *Manager {
	managerOnce.Do(func() {
		globalManager = &Manager{
			stopCh: make(chan struct{}),
		}
	})
	return globalManager
}

// Start starts the background tasks
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return
	}

	// Recreate stop channel for each start cycle so the manager can be
	// restarted safely.
	m.stopCh = make(chan struct{})
	m.running = true
	log.Info("[Worker Manager] Starting background tasks")

	reconcileInterval := intervalFromEnv("RECONCILE_INTERVAL_MINUTES", 2)
	archiveInterval := intervalFromEnv("ARCHIVE_INTERVAL_MINUTES", 10)

	// Counter flush (Redis -> DB) every 5 seconds
	m.counterFlushTicker = time.NewTicker(5 * time.Second)
	m.wg.Add(1)
	go m.counterFlushWorker()

	// Settlement reconciliation sweep
	m.reconcileTicker = time.NewTicker(reconcileInterval)
	m.wg.Add(1)
	go m.reconcileWorker()

	// Payload cold-archive sweep
	m.archiveTicker = time.NewTicker(archiveInterval)
	m.wg.Add(1)
	go m.archiveWorker()
}

// Stop stops the background tasks and waits for them to finish
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}
	m.running = false

	close(m.stopCh)
	m.counterFlushTicker.Stop()
	m.reconcileTicker.Stop()
	m.archiveTicker.Stop()
	m.wg.Wait()
	log.Info("[Worker Manager] Background tasks stopped")
}

func (m *Manager) counterFlushWorker() {
	defer m.wg.Done()
	for {
		select {
		case <-m.stopCh:
			return
		case <-m.counterFlushTicker.C:
			if err := counter.FlushAll(); err != nil {
				log.Errorf("[Worker Manager] Counter flush failed: %v", err)
			}
		}
	}
}

func (m *Manager) reconcileWorker() {
	defer m.wg.Done()
	for {
		select {
		case <-m.stopCh:
			return
		case <-m.reconcileTicker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
			resolved, err := payment.NewReconcilerFromDB(database.GetDB()).Sweep(ctx)
			cancel()
			if err != nil {
				log.Errorf("[Worker Manager] Reconciliation sweep failed: %v", err)
				continue
			}
			if resolved > 0 {
				log.Infof("[Worker Manager] Reconciliation sweep resolved %d audit rows", resolved)
			}
		}
	}
}

// archiveWorker ships ledger payloads older than the retention cutoff to S3.
// A disabled archive config turns this worker into a no-op.
func (m *Manager) archiveWorker() {
	defer m.wg.Done()

	cfg, err := archive.LoadConfig()
	if err != nil {
		log.Errorf("[Worker Manager] Archive config invalid: %v", err)
		return
	}
	if !cfg.IsEnabled() {
		log.Info("[Worker Manager] Payload archive disabled")
		return
	}

	client, err := archive.NewClient(cfg)
	if err != nil {
		log.Errorf("[Worker Manager] Archive client init failed: %v", err)
		return
	}

	retention := time.Duration(positiveIntFromEnv("ARCHIVE_RETENTION_DAYS", 7)) * 24 * time.Hour

	for {
		select {
		case <-m.stopCh:
			return
		case <-m.archiveTicker.C:
			m.archiveSweep(client, cfg, retention)
		}
	}
}

func (m *Manager) archiveSweep(client *archive.Client, cfg *archive.Config, retention time.Duration) {
	events := repository.GetGlobalFactory().GetWebhookEventRepository()

	cutoff := time.Now().Add(-retention)
	batch, err := events.ListUnarchivedBefore(cutoff, 100)
	if err != nil {
		log.Errorf("[Worker Manager] Archive sweep query failed: %v", err)
		return
	}

	for i := range batch {
		event := &batch[i]
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		key := cfg.GetObjectKey(event.Gateway, event.EventID, event.ReceivedAt)
		err := client.UploadPayload(ctx, key, []byte(event.PayloadJSON))
		cancel()
		if err != nil {
			log.Errorf("[Worker Manager] Archive upload failed for event %d: %v", event.ID, err)
			continue
		}
		if err := events.MarkArchived(event.ID); err != nil {
			log.Errorf("[Worker Manager] Archive mark failed for event %d: %v", event.ID, err)
		}
	}
}

func intervalFromEnv(key string, defaultMinutes int) time.Duration {
	return time.Duration(positiveIntFromEnv(key, defaultMinutes)) * time.Minute
}

func positiveIntFromEnv(key string, defaultValue int) int {
	if raw := env.GetEnv(key, ""); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}
