// Package config provides configuration management for the water quality monitor.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"ipal-monitor/internal/model"
)

// UserSeed is one account entry in a user import file.
type UserSeed struct {
	Username string     `yaml:"username"`
	Password string     `yaml:"password"`
	Role     model.Role `yaml:"role"`
	Email    string     `yaml:"email"`
}

// usersFile is the top-level layout of a user import file.
type usersFile struct {
	Users []*UserSeed `yaml:"users"`
}

// LoadUsers reads account definitions from the specified YAML file.
func LoadUsers(path string) ([]*UserSeed, error) {
	if path == "" {
		return nil, fmt.Errorf("users file path is required")
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("users file not found: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read users file: %w", err)
	}

	var f usersFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse users file: %w", err)
	}

	if len(f.Users) == 0 {
		return nil, fmt.Errorf("no users defined in file: %s", path)
	}

	seen := make(map[string]bool, len(f.Users))
	for i, u := range f.Users {
		if u.Username == "" {
			return nil, fmt.Errorf("user at index %d has no username", i)
		}
		if u.Password == "" {
			return nil, fmt.Errorf("user %q has no password", u.Username)
		}
		if u.Role == "" {
			u.Role = model.RoleViewer
		}
		if !u.Role.IsValid() {
			return nil, fmt.Errorf("user %q has invalid role %q", u.Username, u.Role)
		}
		if seen[u.Username] {
			return nil, fmt.Errorf("user %q is defined more than once", u.Username)
		}
		seen[u.Username] = true
	}

	return f.Users, nil
}
