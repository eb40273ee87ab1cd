package services

import (
	"context"
	"testing"

	"github.com/thinkable-edu/worksheet-service/internal/events"
	"github.com/thinkable-edu/worksheet-service/internal/repositories/postgres"
	"github.com/thinkable-edu/worksheet-service/internal/testutil"
	"github.com/thinkable-edu/worksheet-service/internal/validator"
)

func TestServiceManager_Lifecycle(t *testing.T) {
	db := testutil.DB(t)
	logger := discardLogger()
	repo := postgres.NewPostgreSQLRepository(postgres.RepositoryConfig{DB: db})
	sm := NewDefaultServiceManager(db, repo, logger, validator.New(), events.NewMockEventPublisher(logger))
	ctx := context.Background()

	t.Run("getter before initialize panics", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Error("Progress() before Initialize should panic")
			}
		}()
		sm.Progress()
	})

	if err := sm.HealthCheck(ctx); err == nil {
		t.Error("HealthCheck() before Initialize should fail")
	}

	if err := sm.Initialize(ctx); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if sm.Progress() == nil || sm.Worksheet() == nil || sm.Export() == nil {
		t.Fatal("Initialize() left a service unset")
	}
	if err := sm.HealthCheck(ctx); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}

	if err := sm.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if err := sm.HealthCheck(ctx); err == nil {
		t.Error("HealthCheck() after Shutdown should fail")
	}
}

func TestServiceManager_RequiresDependencies(t *testing.T) {
	sm := NewServiceManager(nil, nil, discardLogger(), validator.New(), ServiceManagerConfig{})
	if err := sm.Initialize(context.Background()); err == nil {
		t.Error("Initialize() without database should fail")
	}
}
