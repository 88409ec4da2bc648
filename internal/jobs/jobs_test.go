package jobs

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"rentaltoll-backend/internal/config"
	"rentaltoll-backend/internal/domain"
	"rentaltoll-backend/internal/logger"
	"rentaltoll-backend/internal/service"
)

type MockTollService struct {
	mock.Mock
	service.TollService
}

func (m *MockTollService) RematchUnmatched(ctx context.Context) (*service.RematchResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.RematchResult), args.Error(1)
}

type MockLedgerService struct {
	mock.Mock
	service.LedgerService
}

func (m *MockLedgerService) OutstandingRenters(ctx context.Context, threshold decimal.Decimal) ([]domain.RenterSummary, error) {
	args := m.Called(ctx, threshold)
	return args.Get(0).([]domain.RenterSummary), args.Error(1)
}

func newRunner(t *testing.T) (*JobRunner, *MockTollService, *MockLedgerService, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger.InitializeWithWriter(&buf, "debug", "text")

	cfg, err := config.Parse([]byte("database:\n  driver: memory\nledger:\n  outstanding_threshold: \"10\"\n"))
	require.NoError(t, err)

	tolls := &MockTollService{}
	ledger := &MockLedgerService{}
	return NewJobRunner(&Services{Toll: tolls, Ledger: ledger}, cfg), tolls, ledger, &buf
}

func TestRematchUnmatchedTolls(t *testing.T) {
	jr, tolls, _, buf := newRunner(t)
	tolls.On("RematchUnmatched", mock.Anything).Return(&service.RematchResult{
		Examined:  3,
		Matched:   2,
		Ambiguous: []service.AmbiguousMatch{{TollID: "T1", RentalID: "R1", Candidates: 2}},
	}, nil)

	jr.RematchUnmatchedTolls()

	tolls.AssertExpectations(t)
	out := buf.String()
	assert.Contains(t, out, "Job completed")
	assert.Contains(t, out, "examined=3")
	assert.Contains(t, out, "tollID=T1")
}

func TestRematchUnmatchedTolls_Error(t *testing.T) {
	jr, tolls, _, buf := newRunner(t)
	tolls.On("RematchUnmatched", mock.Anything).Return(nil, errors.New("db down"))

	jr.RematchUnmatchedTolls()

	assert.Contains(t, buf.String(), "Job failed")
	assert.Contains(t, buf.String(), "db down")
}

func TestReportOutstandingBalances(t *testing.T) {
	jr, _, ledger, buf := newRunner(t)
	ledger.On("OutstandingRenters", mock.Anything, mock.MatchedBy(func(d decimal.Decimal) bool {
		return d.Equal(decimal.NewFromInt(10))
	})).Return([]domain.RenterSummary{
		{RenterName: "Ana", RentalCount: 2, Balance: decimal.RequireFromString("42.5")},
	}, nil)

	jr.ReportOutstandingBalances()

	ledger.AssertExpectations(t)
	assert.Contains(t, buf.String(), "renter=Ana")
	assert.Contains(t, buf.String(), "balance=42.50")
}

func TestRunWithRecovery_Panic(t *testing.T) {
	jr, tolls, _, buf := newRunner(t)
	tolls.On("RematchUnmatched", mock.Anything).Run(func(mock.Arguments) {
		panic("boom")
	}).Return(nil, nil)

	assert.NotPanics(t, jr.RematchUnmatchedTolls)
	assert.Contains(t, buf.String(), "Job panicked")
}

func TestRun(t *testing.T) {
	jr, tolls, _, _ := newRunner(t)
	tolls.On("RematchUnmatched", mock.Anything).Return(&service.RematchResult{}, nil)

	require.NoError(t, jr.Run(JobRematchUnmatchedTolls))
	tolls.AssertNumberOfCalls(t, "RematchUnmatched", 1)

	assert.Error(t, jr.Run("Nope"))
	assert.Equal(t, []string{JobRematchUnmatchedTolls, JobReportOutstandingBalances}, jr.Names())
}
