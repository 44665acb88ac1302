package services

import (
	"context"

	"sales-dashboard/models"
	"sales-dashboard/utils"
)

// RecordLoader supplies the normalized dataset.
type RecordLoader interface {
	Load(ctx context.Context) ([]models.NormalizedRecord, error)
}

// View is what a front end needs to render the dashboard.
type View struct {
	User           models.User
	CanViewDetails bool
	Filter         FilterState
	Records        []models.NormalizedRecord
	Metrics        models.Metrics
}

// Session is one caller's dashboard state: who is logged in, the current
// filter and the loaded dataset. A Session is not safe for concurrent use;
// the UserRepository it shares is.
type Session struct {
	users   *UserRepository
	policy  *Policy
	loader  RecordLoader
	logger  *utils.Logger
	user    *models.User
	filter  FilterState
	records []models.NormalizedRecord
}

// NewSession creates a logged-out session.
func NewSession(users *UserRepository, policy *Policy, loader RecordLoader, logger *utils.Logger) *Session {
	return &Session{users: users, policy: policy, loader: loader, logger: logger, filter: AllCategories()}
}

// Login authenticates and loads the dataset. A failed load still logs the
// user in with an empty dataset and returns the load error.
func (s *Session) Login(ctx context.Context, username, secret string) error {
	role, err := s.users.Authenticate(username, secret)
	if err != nil {
		s.logger.Warn("[session] Login failed for %q", username)
		return err
	}

	u := models.User{Username: username, Role: models.RoleManager, Active: true, CanViewDetails: true}
	if role == models.RoleEmployee {
		u, _ = s.users.User(username)
	}

	s.user = &u
	s.filter = AllCategories()
	s.logger.Info("[session] %s logged in as %s", username, u.Role)

	records, err := s.loader.Load(ctx)
	if err != nil {
		s.records = []models.NormalizedRecord{}
		return err
	}
	s.records = records
	return nil
}

// Logout clears all session state.
func (s *Session) Logout() {
	s.user = nil
	s.filter = AllCategories()
	s.records = nil
}

// User returns the logged-in user, refreshed from the repository.
func (s *Session) User() (models.User, error) {
	if s.user == nil {
		return models.User{}, ErrNotLoggedIn
	}
	if s.user.IsManager() {
		return *s.user, nil
	}
	if u, ok := s.users.User(s.user.Username); ok {
		return u, nil
	}
	return *s.user, nil
}

// Records returns the full normalized dataset.
func (s *Session) Records() []models.NormalizedRecord {
	return s.records
}

// Filter returns the current filter.
func (s *Session) Filter() FilterState {
	return s.filter
}

// SetFilter replaces the current filter.
func (s *Session) SetFilter(f FilterState) {
	s.filter = f
}

// View returns the filtered records and their metrics.
func (s *Session) View() (View, error) {
	u, err := s.User()
	if err != nil {
		return View{}, err
	}
	filtered := ApplyFilter(s.records, s.filter)
	return View{
		User:           u,
		CanViewDetails: s.users.CanViewDetailedRecords(u),
		Filter:         s.filter,
		Records:        filtered,
		Metrics:        ComputeMetrics(filtered),
	}, nil
}

// DetailedRecords returns the filtered row-level data if the user may see it.
func (s *Session) DetailedRecords() ([]models.NormalizedRecord, error) {
	u, err := s.User()
	if err != nil {
		return nil, err
	}
	if !s.users.CanViewDetailedRecords(u) {
		return nil, ErrForbidden
	}
	return ApplyFilter(s.records, s.filter), nil
}

// ProvisionEmployee creates an employee account on behalf of a manager.
func (s *Session) ProvisionEmployee(req ProvisionRequest) error {
	if err := s.require(ObjectAccounts, ActionProvision); err != nil {
		return err
	}
	if err := s.users.ProvisionEmployee(req); err != nil {
		return err
	}
	s.logger.Info("[session] %s created employee %q", s.user.Username, req.Username)
	return nil
}

// SetEmployeeFlag toggles an employee flag on behalf of a manager.
func (s *Session) SetEmployeeFlag(username string, flag EmployeeFlag, value bool) error {
	if err := s.require(ObjectAccounts, ActionUpdate); err != nil {
		return err
	}
	if err := s.users.SetEmployeeFlag(username, flag, value); err != nil {
		return err
	}
	s.logger.Info("[session] %s set %s=%t on %q", s.user.Username, flag, value, username)
	return nil
}

// Employees lists employee accounts for a manager.
func (s *Session) Employees() ([]models.User, error) {
	if err := s.require(ObjectAccounts, ActionUpdate); err != nil {
		return nil, err
	}
	return s.users.Employees(), nil
}

func (s *Session) require(obj, act string) error {
	u, err := s.User()
	if err != nil {
		return err
	}
	if !s.policy.Allowed(u, obj, act) {
		return ErrForbidden
	}
	return nil
}
