package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"

	"reviewhunt-engine/internal/browser"
	"reviewhunt-engine/internal/fsutil"
)

// Backend persists the cookie jar between runs. Load returns (nil, nil) when
// nothing has been saved yet.
type Backend interface {
	Load() ([]browser.Cookie, error)
	Save(cookies []browser.Cookie) error
	Delete() error
	String() string
}

// FileBackend keeps cookies as a JSON array on disk.
type FileBackend struct {
	Path string
}

func (f FileBackend) Load() ([]browser.Cookie, error) {
	b, err := fsutil.ReadLocked(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decode(b)
}

func (f FileBackend) Save(cookies []browser.Cookie) error {
	b, err := json.MarshalIndent(cookies, "", "  ")
	if err != nil {
		return err
	}
	return fsutil.WriteAtomic(f.Path, b, 0o600)
}

func (f FileBackend) Delete() error { return fsutil.Remove(f.Path) }

func (f FileBackend) String() string { return "file:" + f.Path }

const (
	// “Service” groups the app’s secrets in the OS keychain.
	KeyringService = "reviewhunt"
)

// KeyringBackend keeps the same JSON as a secret in the OS keychain.
type KeyringBackend struct {
	Account string
}

func (k KeyringBackend) account() (string, error) {
	a := strings.TrimSpace(k.Account)
	if a == "" {
		return "", errors.New("keyring account name is empty")
	}
	return "reviewhunt:session:" + a, nil
}

func (k KeyringBackend) Load() ([]browser.Cookie, error) {
	acct, err := k.account()
	if err != nil {
		return nil, err
	}
	raw, err := keyring.Get(KeyringService, acct)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("keyring get: %w", err)
	}
	return decode([]byte(raw))
}

func (k KeyringBackend) Save(cookies []browser.Cookie) error {
	acct, err := k.account()
	if err != nil {
		return err
	}
	b, err := json.Marshal(cookies)
	if err != nil {
		return err
	}
	return keyring.Set(KeyringService, acct, string(b))
}

func (k KeyringBackend) Delete() error {
	acct, err := k.account()
	if err != nil {
		return err
	}
	if err := keyring.Delete(KeyringService, acct); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return err
	}
	return nil
}

func (k KeyringBackend) String() string { return "keyring:" + k.Account }

func decode(b []byte) ([]browser.Cookie, error) {
	if len(strings.TrimSpace(string(b))) == 0 {
		return nil, nil
	}
	var cs []browser.Cookie
	if err := json.Unmarshal(b, &cs); err != nil {
		return nil, fmt.Errorf("decode cookies: %w", err)
	}
	return cs, nil
}
