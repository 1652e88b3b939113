package config

import (
	"fmt"
	"os"
	"runtime"

	"github.com/99designs/keyring"
)

const (
	keychainService = "ethereal"
	etherscanKeyRef = "ethereal.etherscan-api-key"
)

// Keystore wraps OS keychain access for the explorer API key.
type Keystore struct {
	ring keyring.Keyring
}

// DefaultKeystore returns a keystore backed by the OS keychain.
func DefaultKeystore() *Keystore {
	cfg := keyring.Config{
		ServiceName:              keychainService,
		KeychainTrustApplication: true,
	}

	// On Linux without a GUI, fall back to file-based storage.
	if runtime.GOOS == "linux" {
		cfg.AllowedBackends = []keyring.BackendType{
			keyring.SecretServiceBackend,
			keyring.KWalletBackend,
			keyring.FileBackend,
		}
	}

	ring, err := keyring.Open(cfg)
	if err != nil {
		ring, _ = keyring.Open(keyring.Config{
			ServiceName:     keychainService,
			AllowedBackends: []keyring.BackendType{keyring.FileBackend},
		})
	}

	return &Keystore{ring: ring}
}

// SetEtherscanKey stores the explorer API key in the keychain.
func (k *Keystore) SetEtherscanKey(key string) error {
	if k.ring == nil {
		return fmt.Errorf("keystore not available")
	}
	err := k.ring.Set(keyring.Item{
		Key:  etherscanKeyRef,
		Data: []byte(key),
	})
	if err != nil {
		return fmt.Errorf("keychain store: %w", err)
	}
	return nil
}

// EtherscanKey returns the explorer API key: the ETHEREAL_ETHERSCAN_KEY env
// var when set, otherwise the keychain entry. Empty when neither exists.
func (k *Keystore) EtherscanKey() string {
	if key := os.Getenv(EnvEtherscanKey); key != "" {
		return key
	}
	if k.ring == nil {
		return ""
	}
	item, err := k.ring.Get(etherscanKeyRef)
	if err != nil {
		return ""
	}
	return string(item.Data)
}

// DeleteEtherscanKey removes the stored explorer API key.
func (k *Keystore) DeleteEtherscanKey() error {
	if k.ring == nil {
		return nil
	}
	if err := k.ring.Remove(etherscanKeyRef); err != nil && err != keyring.ErrKeyNotFound {
		return fmt.Errorf("keychain remove: %w", err)
	}
	return nil
}
