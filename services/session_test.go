package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sales-dashboard/models"
)

type stubLoader struct {
	records []models.NormalizedRecord
	err     error
	calls   int
}

func (l *stubLoader) Load(ctx context.Context) ([]models.NormalizedRecord, error) {
	l.calls++
	return l.records, l.err
}

func newTestSession(t *testing.T, loader RecordLoader) (*Session, *UserRepository) {
	t.Helper()
	policy, err := NewPolicy()
	require.NoError(t, err)
	repo := newTestRepository(t)
	repo.policy = policy
	return NewSession(repo, policy, loader, newTestLogger()), repo
}

func TestSessionRequiresLogin(t *testing.T) {
	s, _ := newTestSession(t, &stubLoader{})

	_, err := s.View()
	assert.ErrorIs(t, err, ErrNotLoggedIn)
	_, err = s.DetailedRecords()
	assert.ErrorIs(t, err, ErrNotLoggedIn)
	assert.ErrorIs(t, s.ProvisionEmployee(ProvisionRequest{}), ErrNotLoggedIn)
}

func TestSessionLoginLoadsAndFilters(t *testing.T) {
	loader := &stubLoader{records: sampleRecords()}
	s, _ := newTestSession(t, loader)

	require.NoError(t, s.Login(context.Background(), "func1", "senha123"))
	assert.Equal(t, 1, loader.calls)

	view, err := s.View()
	require.NoError(t, err)
	assert.Equal(t, models.RoleEmployee, view.User.Role)
	assert.True(t, view.CanViewDetails)
	assert.True(t, view.Filter.All())
	assert.Equal(t, 4, view.Metrics.TransactionCount)

	s.SetFilter(CategoryFilter("Books"))
	view, err = s.View()
	require.NoError(t, err)
	assert.Equal(t, 1, view.Metrics.TransactionCount)
	assert.True(t, view.Metrics.TotalValue.Equal(dec("25")))

	rows, err := s.DetailedRecords()
	require.NoError(t, err)
	assert.Equal(t, []string{"Novel"}, names(rows))
}

func TestSessionLoginFailure(t *testing.T) {
	loader := &stubLoader{}
	s, _ := newTestSession(t, loader)

	err := s.Login(context.Background(), "func1", "wrong")
	assert.ErrorIs(t, err, ErrAuthFailure)
	assert.Zero(t, loader.calls)

	_, err = s.User()
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestSessionLoginWithLoadErrorKeepsEmptyDataset(t *testing.T) {
	boom := errors.New("db down")
	s, _ := newTestSession(t, &stubLoader{err: boom})

	err := s.Login(context.Background(), "admin", "admin")
	assert.ErrorIs(t, err, boom)

	view, err := s.View()
	require.NoError(t, err)
	assert.Empty(t, view.Records)
	assert.True(t, view.Metrics.TotalValue.IsZero())
}

func TestSessionDetailedRecordsForbidden(t *testing.T) {
	s, _ := newTestSession(t, &stubLoader{records: sampleRecords()})
	require.NoError(t, s.Login(context.Background(), "ana.vendas", "vendas234"))

	_, err := s.DetailedRecords()
	assert.ErrorIs(t, err, ErrForbidden)

	view, err := s.View()
	require.NoError(t, err)
	assert.False(t, view.CanViewDetails)
	assert.Equal(t, 4, view.Metrics.TransactionCount, "aggregates stay visible")
}

func TestSessionPermissionChangesApplyImmediately(t *testing.T) {
	s, repo := newTestSession(t, &stubLoader{records: sampleRecords()})
	require.NoError(t, s.Login(context.Background(), "ana.vendas", "vendas234"))

	require.NoError(t, repo.SetEmployeeFlag("ana.vendas", FlagCanViewDetails, true))
	_, err := s.DetailedRecords()
	assert.NoError(t, err)

	require.NoError(t, repo.SetEmployeeFlag("ana.vendas", FlagCanViewDetails, false))
	_, err = s.DetailedRecords()
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestSessionAccountManagementIsManagerOnly(t *testing.T) {
	s, _ := newTestSession(t, &stubLoader{})
	require.NoError(t, s.Login(context.Background(), "func1", "senha123"))

	req := ProvisionRequest{Username: "x", Secret: "y", ConfirmSecret: "y", Active: true}
	assert.ErrorIs(t, s.ProvisionEmployee(req), ErrForbidden)
	assert.ErrorIs(t, s.SetEmployeeFlag("ana.vendas", FlagActive, false), ErrForbidden)
	_, err := s.Employees()
	assert.ErrorIs(t, err, ErrForbidden)

	s.Logout()
	require.NoError(t, s.Login(context.Background(), "boss", "boss1337"))
	require.NoError(t, s.ProvisionEmployee(req))
	require.NoError(t, s.SetEmployeeFlag("x", FlagCanViewDetails, true))

	employees, err := s.Employees()
	require.NoError(t, err)
	assert.Len(t, employees, 4)
}
