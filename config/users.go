package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SeedEmployee is an employee account present at process start.
type SeedEmployee struct {
	Username       string `yaml:"username"`
	Secret         string `yaml:"secret"`
	CanViewDetails bool   `yaml:"can_view_details"`
	Active         bool   `yaml:"active"`
}

// SeedManager is a fixed manager account.
type SeedManager struct {
	Username string `yaml:"username"`
	Secret   string `yaml:"secret"`
}

// Users lists the accounts the registry starts with.
type Users struct {
	Managers  []SeedManager  `yaml:"managers"`
	Employees []SeedEmployee `yaml:"employees"`
}

// DefaultUsers returns the built-in demo accounts.
func DefaultUsers() Users {
	return Users{
		Managers: []SeedManager{
			{Username: "admin", Secret: "admin"},
			{Username: "boss", Secret: "boss1337"},
		},
		Employees: []SeedEmployee{
			{Username: "func1", Secret: "senha123", CanViewDetails: true, Active: true},
			{Username: "ana.vendas", Secret: "vendas234", CanViewDetails: false, Active: true},
		},
	}
}

// LoadUsers reads seed accounts from a YAML file. An empty path yields the
// defaults.
func LoadUsers(path string) (Users, error) {
	if path == "" {
		return DefaultUsers(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Users{}, fmt.Errorf("config: read users file %q: %w", path, err)
	}

	var users Users
	if err := yaml.Unmarshal(data, &users); err != nil {
		return Users{}, fmt.Errorf("config: parse users file %q: %w", path, err)
	}
	if len(users.Managers) == 0 {
		return Users{}, fmt.Errorf("config: users file %q defines no managers", path)
	}
	return users, nil
}
