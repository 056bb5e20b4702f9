package repository

import (
	"sync"

	"gorm.io/gorm"
)

// Factory manages repository instances and ensures they are singletons
type Factory struct {
	db    *gorm.DB
	repos *Repositories
	once  sync.Once
}

// NewFactory creates a new repository factory
func NewFactory(db *gorm.DB) *Factory {
	return &Factory{
		db: db,
	}
}

// GetRepositories returns a singleton instance of all repositories
func (f *Factory) GetRepositories() *Repositories {
	f.once.Do(func() {
		f.repos = NewRepositories(f.db)
	})
	return f.repos
}

// GetOrderRepository returns the order repository instance
func (f *Factory) GetOrderRepository() OrderRepository {
	return f.GetRepositories().Order
}

// GetWebhookEventRepository returns the webhook event ledger instance
func (f *Factory) GetWebhookEventRepository() WebhookEventRepository {
	return f.GetRepositories().WebhookEvent
}

// GetAuditLogRepository returns the audit log repository instance
func (f *Factory) GetAuditLogRepository() AuditLogRepository {
	return f.GetRepositories().AuditLog
}

// GetStatsRepository returns the stats repository instance
func (f *Factory) GetStatsRepository() StatsRepository {
	return f.GetRepositories().Stats
}

// Global factory instance
var globalFactory *Factory
var factoryOnce sync.Once

// InitializeFactory initializes the global repository factory
func InitializeFactory(db *gorm.DB) {
	factoryOnce.Do(func() {
		globalFactory = NewFactory(db)
	})
}

// GetGlobalFactory returns the global repository factory instance
func GetGlobalFactory() *Factory {
	if globalFactory == nil {
		panic("Repository factory not initialized. Call InitializeFactory first.")
	}
	return globalFactory
}

// GetGlobalRepositories returns the global repositories instance
func GetGlobalRepositories() *Repositories {
	return GetGlobalFactory().GetRepositories()
}
