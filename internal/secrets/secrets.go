// Package secrets resolves site credentials from the configuration, the OS
// keychain and the environment.
package secrets

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/zalando/go-keyring"

	"github.com/hazyhaar/easyapply/internal/config"
)

const (
	// KeyringService groups easyapply secrets in the OS keychain.
	KeyringService = "easyapply"

	// PasswordEnv is consulted last.
	PasswordEnv = "EASYAPPLY_PASSWORD"
)

// ErrNoPassword is returned when no source yields a password.
var ErrNoPassword = errors.New("secrets: password not found (set it in config, keychain or " + PasswordEnv + ")")

// Credentials is a resolved login.
type Credentials struct {
	Username string
	Password string
}

// String hides the password from log output.
func (c Credentials) String() string {
	return fmt.Sprintf("Credentials{Username:%q Password:<redacted>}", c.Username)
}

// LoadEnv loads .env files into the process environment. Missing files are
// not an error.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

// Resolve returns the credentials for cfg. The password comes from the
// config file, then the keychain, then the environment.
func Resolve(cfg config.Credentials) (Credentials, error) {
	creds := Credentials{Username: strings.TrimSpace(cfg.Username)}
	if creds.Username == "" {
		return creds, errors.New("secrets: username is empty")
	}

	if pw := cfg.Password; strings.TrimSpace(pw) != "" {
		creds.Password = pw
		return creds, nil
	}

	if acct := strings.TrimSpace(cfg.KeyringAccount); acct != "" {
		pw, err := keyring.Get(KeyringService, acct)
		if err == nil && strings.TrimSpace(pw) != "" {
			creds.Password = pw
			return creds, nil
		}
	}

	if pw := os.Getenv(PasswordEnv); strings.TrimSpace(pw) != "" {
		creds.Password = pw
		return creds, nil
	}

	return creds, ErrNoPassword
}

// SetPassword stores a password in the OS keychain.
func SetPassword(keyringAccount, password string) error {
	if strings.TrimSpace(keyringAccount) == "" {
		return errors.New("secrets: keyring account name is empty")
	}
	if strings.TrimSpace(password) == "" {
		return errors.New("secrets: password is empty")
	}
	return keyring.Set(KeyringService, keyringAccount, password)
}

// DeletePassword removes a stored password.
func DeletePassword(keyringAccount string) error {
	if strings.TrimSpace(keyringAccount) == "" {
		return errors.New("secrets: keyring account name is empty")
	}
	return keyring.Delete(KeyringService, keyringAccount)
}
