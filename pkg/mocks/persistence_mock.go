// Package mocks provides testify mocks for the persistence interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/guidekit/guidekit/pkg/models"
	"github.com/guidekit/guidekit/pkg/persistence"
)

// MockTemplateRepository is a mock implementation of persistence.TemplateRepository interface.
type MockTemplateRepository struct {
	mock.Mock
}

func (m *MockTemplateRepository) All(ctx context.Context) ([]*models.Template, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.Template), args.Error(1)
}

func (m *MockTemplateRepository) GetByID(ctx context.Context, id string) (*models.Template, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Template), args.Error(1)
}

func (m *MockTemplateRepository) Save(ctx context.Context, tmpl *models.Template) error {
	args := m.Called(ctx, tmpl)

	return args.Error(0)
}

func (m *MockTemplateRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)

	return args.Error(0)
}

// MockSubmissionRepository is a mock implementation of persistence.SubmissionRepository interface.
type MockSubmissionRepository struct {
	mock.Mock
}

func (m *MockSubmissionRepository) Get(ctx context.Context, templateID, userID string) (*models.Submission, error) {
	args := m.Called(ctx, templateID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Submission), args.Error(1)
}

func (m *MockSubmissionRepository) Save(ctx context.Context, submission *models.Submission) error {
	args := m.Called(ctx, submission)

	return args.Error(0)
}

func (m *MockSubmissionRepository) Delete(ctx context.Context, templateID, userID string) error {
	args := m.Called(ctx, templateID, userID)

	return args.Error(0)
}

// MockPersistence bundles the repository mocks behind the persistence.Persistence interface.
type MockPersistence struct {
	mock.Mock

	TemplateRepo   *MockTemplateRepository
	SubmissionRepo *MockSubmissionRepository
}

func NewMockPersistence() *MockPersistence {
	return &MockPersistence{
		TemplateRepo:   new(MockTemplateRepository),
		SubmissionRepo: new(MockSubmissionRepository),
	}
}

func (m *MockPersistence) Templates() persistence.TemplateRepository {
	return m.TemplateRepo
}

func (m *MockPersistence) Submissions() persistence.SubmissionRepository {
	return m.SubmissionRepo
}

func (m *MockPersistence) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

func (m *MockPersistence) Close(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}
