package api

import (
	"context"

	"civic-engagement/missionhub/internal/models/gorm"
)

// Mock ImportStore
type mockImportStore struct {
	listFunc     func(ctx context.Context, publisherID string, limit int) ([]*gorm.Import, error)
	findByIDFunc func(ctx context.Context, id string) (*gorm.Import, error)
}

func (m *mockImportStore) List(ctx context.Context, publisherID string, limit int) ([]*gorm.Import, error) {
	return m.listFunc(ctx, publisherID, limit)
}

func (m *mockImportStore) FindByID(ctx context.Context, id string) (*gorm.Import, error) {
	return m.findByIDFunc(ctx, id)
}

// Mock PublisherFinder
type mockPublisherFinder struct {
	findByIDFunc func(ctx context.Context, id string) (*gorm.Publisher, error)
}

func (m *mockPublisherFinder) FindByID(ctx context.Context, id string) (*gorm.Publisher, error) {
	return m.findByIDFunc(ctx, id)
}

// Mock ImportStatus
type mockImportStatus struct {
	running bool
}

func (m *mockImportStatus) Running() bool {
	return m.running
}

// Mock ModerationRunner
type mockModerationRunner struct {
	runFunc func(ctx context.Context) error
}

func (m *mockModerationRunner) Run(ctx context.Context) error {
	return m.runFunc(ctx)
}
