package repositories

import "context"

// Repository aggregates the repositories of the worksheet service
type Repository interface {
	// Catalog domain (owned by the admin panel)
	Worksheet() WorksheetRepository
	Question() QuestionRepository

	// Progress domain
	Progress() ProgressRepository

	// Transaction support
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager interface for managing repository lifecycle
type RepositoryManager interface {
	// Initialize repositories with database connections
	Initialize() error

	// Get repository instance
	GetRepository() Repository

	// Health check for all repositories
	HealthCheck(ctx context.Context) error

	// Graceful shutdown
	Shutdown(ctx context.Context) error
}
