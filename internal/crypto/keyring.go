package crypto

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

// Keyring provides secure key storage abstraction
type Keyring interface {
	GetKey() (string, error)
	SetKey(password string) error
	DeleteKey() error
	IsAvailable() bool
	Name() string
}

const (
	ServiceName = "workcal"
	KeyName     = "db-encryption-key"

	// EnvVar overrides every other key source
	EnvVar = "WORKCAL_DB_KEY"
)

// ErrNoKey is returned when no source holds the database key
var ErrNoKey = errors.New("database key not found")

// NewKeyring returns the environment variable source backed by the OS keyring
func NewKeyring() Keyring {
	return &chainKeyring{sources: []Keyring{&envKeyring{}, &systemKeyring{}}}
}

// chainKeyring reads from the first source that has a key and writes to the
// first source that accepts writes.
type chainKeyring struct {
	sources []Keyring
}

func (c *chainKeyring) Name() string {
	names := make([]string, 0, len(c.sources))
	for _, s := range c.sources {
		names = append(names, s.Name())
	}
	return strings.Join(names, "+")
}

func (c *chainKeyring) GetKey() (string, error) {
	var errs []error
	for _, s := range c.sources {
		key, err := s.GetKey()
		if err == nil {
			return key, nil
		}
		errs = append(errs, err)
	}
	return "", fmt.Errorf("%w: %w", ErrNoKey, errors.Join(errs...))
}

func (c *chainKeyring) SetKey(password string) error {
	var errs []error
	for _, s := range c.sources {
		err := s.SetKey(password)
		if err == nil {
			return nil
		}
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (c *chainKeyring) DeleteKey() error {
	var errs []error
	for _, s := range c.sources {
		err := s.DeleteKey()
		if err == nil {
			return nil
		}
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (c *chainKeyring) IsAvailable() bool {
	for _, s := range c.sources {
		if s.IsAvailable() {
			return true
		}
	}
	return false
}

// envKeyring reads WORKCAL_DB_KEY. It cannot store keys.
type envKeyring struct{}

func (k *envKeyring) Name() string { return "env" }

// GetKey retrieves the encryption key from the WORKCAL_DB_KEY environment variable
func (k *envKeyring) GetKey() (string, error) {
	key := os.Getenv(EnvVar)
	if key == "" {
		return "", fmt.Errorf("%s environment variable not set", EnvVar)
	}
	return key, nil
}

func (k *envKeyring) SetKey(password string) error {
	if password == "" {
		return errors.New("password cannot be empty")
	}
	return fmt.Errorf("cannot store keys in the environment: set %s yourself", EnvVar)
}

func (k *envKeyring) DeleteKey() error {
	return fmt.Errorf("cannot delete keys from the environment: unset %s yourself", EnvVar)
}

func (k *envKeyring) IsAvailable() bool {
	return os.Getenv(EnvVar) != ""
}

// systemKeyring stores the key in the OS credential store
// (macOS Keychain, Secret Service, Windows Credential Manager).
type systemKeyring struct{}

func (k *systemKeyring) Name() string { return "keyring" }

// GetKey retrieves the encryption key from the OS keyring
func (k *systemKeyring) GetKey() (string, error) {
	key, err := keyring.Get(ServiceName, KeyName)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", fmt.Errorf("encryption key not found in keyring: %w", err)
		}
		return "", fmt.Errorf("failed to retrieve key from keyring: %w", err)
	}

	if key == "" {
		return "", errors.New("encryption key is empty")
	}

	return key, nil
}

// SetKey stores the encryption key in the OS keyring
func (k *systemKeyring) SetKey(password string) error {
	if password == "" {
		return errors.New("password cannot be empty")
	}

	if err := keyring.Set(ServiceName, KeyName, password); err != nil {
		return fmt.Errorf("failed to store key in keyring: %w", err)
	}

	return nil
}

// DeleteKey removes the encryption key from the OS keyring
func (k *systemKeyring) DeleteKey() error {
	if err := keyring.Delete(ServiceName, KeyName); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("encryption key not found in keyring: %w", err)
		}
		return fmt.Errorf("failed to delete key from keyring: %w", err)
	}

	return nil
}

// IsAvailable checks the keyring by writing and removing a throwaway entry
func (k *systemKeyring) IsAvailable() bool {
	entry := "__workcal_availability_test__"
	if err := keyring.Set(ServiceName, entry, "test"); err != nil {
		return false
	}
	_ = keyring.Delete(ServiceName, entry)
	return true
}
