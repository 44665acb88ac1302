package services

import (
	"errors"
	"sort"
	"sync"

	"github.com/go-playground/validator/v10"

	"sales-dashboard/config"
	"sales-dashboard/models"
)

// EmployeeFlag names a mutable flag on an employee account.
type EmployeeFlag string

const (
	FlagActive         EmployeeFlag = "active"
	FlagCanViewDetails EmployeeFlag = "can_view_details"
)

// ProvisionRequest carries the fields of the new-employee form.
type ProvisionRequest struct {
	Username       string `validate:"required"`
	Secret         string `validate:"required"`
	ConfirmSecret  string
	CanViewDetails bool
	Active         bool
}

type employeeAccount struct {
	secret         string
	active         bool
	canViewDetails bool
}

// UserRepository holds the employee and manager registries. Managers are
// fixed at construction; employees can be added and toggled at runtime.
// All methods are safe for concurrent use.
type UserRepository struct {
	mu        sync.RWMutex
	employees map[string]*employeeAccount
	managers  map[string]string
	policy    *Policy
	validate  *validator.Validate
}

// NewUserRepository builds the registries from seed accounts.
func NewUserRepository(seed config.Users, policy *Policy) *UserRepository {
	repo := &UserRepository{
		employees: make(map[string]*employeeAccount, len(seed.Employees)),
		managers:  make(map[string]string, len(seed.Managers)),
		policy:    policy,
		validate:  validator.New(),
	}
	for _, m := range seed.Managers {
		repo.managers[m.Username] = m.Secret
	}
	for _, e := range seed.Employees {
		repo.employees[e.Username] = &employeeAccount{
			secret:         e.Secret,
			active:         e.Active,
			canViewDetails: e.CanViewDetails,
		}
	}
	return repo
}

// Authenticate resolves the role of a username/secret pair. Employees are
// checked first and must be active; managers second. Every failure returns
// ErrAuthFailure.
func (r *UserRepository) Authenticate(username, secret string) (models.Role, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if e, ok := r.employees[username]; ok && e.secret == secret && e.active {
		return models.RoleEmployee, nil
	}
	if s, ok := r.managers[username]; ok && s == secret {
		return models.RoleManager, nil
	}
	return "", ErrAuthFailure
}

// User returns the current public view of an account. Employees take
// precedence over a manager with the same name.
func (r *UserRepository) User(username string) (models.User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if e, ok := r.employees[username]; ok {
		return models.User{
			Username:       username,
			Role:           models.RoleEmployee,
			Active:         e.active,
			CanViewDetails: e.canViewDetails,
		}, true
	}
	if _, ok := r.managers[username]; ok {
		return models.User{Username: username, Role: models.RoleManager, Active: true, CanViewDetails: true}, true
	}
	return models.User{}, false
}

// Employees lists employee accounts sorted by username.
func (r *UserRepository) Employees() []models.User {
	r.mu.RLock()
	names := make([]string, 0, len(r.employees))
	for name := range r.employees {
		names = append(names, name)
	}
	r.mu.RUnlock()

	sort.Strings(names)
	out := make([]models.User, 0, len(names))
	for _, name := range names {
		if u, ok := r.User(name); ok && u.Role == models.RoleEmployee {
			out = append(out, u)
		}
	}
	return out
}

// CanViewDetailedRecords reports whether user may see row-level data:
// always for managers, per account flag for employees.
func (r *UserRepository) CanViewDetailedRecords(user models.User) bool {
	return r.policy.Allowed(user, ObjectRecords, ActionViewDetailed)
}

// ProvisionEmployee adds an employee account. The registry is unchanged on
// any error. Callers are responsible for checking the caller is a manager.
func (r *UserRepository) ProvisionEmployee(req ProvisionRequest) error {
	if err := r.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return ErrMissingField
		}
		return err
	}
	if req.Secret != req.ConfirmSecret {
		return ErrSecretMismatch
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.employees[req.Username]; ok {
		return ErrDuplicateUsername
	}
	if _, ok := r.managers[req.Username]; ok {
		return ErrDuplicateUsername
	}

	r.employees[req.Username] = &employeeAccount{
		secret:         req.Secret,
		active:         req.Active,
		canViewDetails: req.CanViewDetails,
	}
	return nil
}

// SetEmployeeFlag updates one flag of an existing employee in place.
func (r *UserRepository) SetEmployeeFlag(username string, flag EmployeeFlag, value bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.employees[username]
	if !ok {
		return ErrUnknownUser
	}

	switch flag {
	case FlagActive:
		e.active = value
	case FlagCanViewDetails:
		e.canViewDetails = value
	default:
		return errors.New("unknown employee flag: " + string(flag))
	}
	return nil
}
