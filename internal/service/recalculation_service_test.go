package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/evaluer-api/internal/dto"
	appErrors "github.com/noah-isme/evaluer-api/pkg/errors"
	"github.com/noah-isme/evaluer-api/pkg/jobs"
)

type recalculatorStub struct {
	mu       sync.Mutex
	failures int
	calls    []dto.RecalculateModuleRequest
	done     chan struct{}
}

func (s *recalculatorStub) RecalculateModuleGrade(_ context.Context, req dto.RecalculateModuleRequest) (*dto.RecalculateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, req)
	if s.failures > 0 {
		s.failures--
		return nil, errors.New("db down")
	}
	close(s.done)
	return &dto.RecalculateResult{ModuleGrade: 5, SubjectGrade: 5, OverallGrade: 5}, nil
}

func TestRecalculationServiceRetriesFailedCascade(t *testing.T) {
	stub := &recalculatorStub{failures: 1, done: make(chan struct{})}
	svc := NewRecalculationService(stub, nil, jobs.QueueConfig{Workers: 1, MaxRetries: 2, RetryDelay: time.Millisecond}, nil)
	svc.Start(context.Background())
	defer svc.Stop()

	id, err := svc.Submit(context.Background(), dto.RecalculateModuleRequest{StudentID: 1, ModuleID: 10, SubjectID: 1})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	select {
	case <-stub.done:
	case <-time.After(time.Second):
		t.Fatal("recalculation never succeeded")
	}
	stub.mu.Lock()
	defer stub.mu.Unlock()
	assert.Len(t, stub.calls, 2)
}

func TestRecalculationServiceSubmitErrors(t *testing.T) {
	svc := NewRecalculationService(&recalculatorStub{done: make(chan struct{})}, nil, jobs.QueueConfig{}, nil)

	_, err := svc.Submit(context.Background(), dto.RecalculateModuleRequest{StudentID: 1})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Submit(context.Background(), dto.RecalculateModuleRequest{StudentID: 1, ModuleID: 10, SubjectID: 1})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnavailable.Code, appErrors.FromError(err).Code)
}
