package keyring

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gezibash/arc-trust/pkg/identity"
)

type state struct {
	Default string            `json:"default,omitempty"`
	Aliases map[string]string `json:"aliases,omitempty"`
}

func (kr *Keyring) keysDir() string {
	return filepath.Join(kr.dir, "keys")
}

func (kr *Keyring) statePath() string {
	return filepath.Join(kr.dir, "keyring.json")
}

func (kr *Keyring) seedPath(pkHex string) string {
	return filepath.Join(kr.keysDir(), pkHex+".key")
}

func (kr *Keyring) metaPath(pkHex string) string {
	return filepath.Join(kr.keysDir(), pkHex+".json")
}

func (kr *Keyring) keyExists(pkHex string) bool {
	_, err := os.Stat(kr.seedPath(pkHex))
	return err == nil
}

func (kr *Keyring) saveKey(sk *identity.SigningKey, pkHex string, meta *Metadata) error {
	if err := os.MkdirAll(kr.keysDir(), 0o700); err != nil {
		return err
	}
	seedHex := hex.EncodeToString(sk.Seed())
	if err := os.WriteFile(kr.seedPath(pkHex), []byte(seedHex+"\n"), 0o600); err != nil {
		return err
	}
	raw, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(kr.metaPath(pkHex), raw, 0o600)
}

func (kr *Keyring) loadKey(pkHex string) (*Key, error) {
	raw, err := os.ReadFile(kr.seedPath(pkHex))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	seed, err := hex.DecodeString(strings.TrimSpace(string(raw)))
	if err != nil {
		return nil, fmt.Errorf("corrupt seed file for %s: %w", pkHex, err)
	}
	sk, err := identity.FromSeed(seed)
	if err != nil {
		return nil, fmt.Errorf("corrupt seed file for %s: %w", pkHex, err)
	}

	key := &Key{Signer: sk, PublicKey: pkHex}
	if metaRaw, err := os.ReadFile(kr.metaPath(pkHex)); err == nil {
		var meta Metadata
		if json.Unmarshal(metaRaw, &meta) == nil {
			key.Metadata = &meta
		}
	}
	return key, nil
}

func (kr *Keyring) deleteKeyFiles(pkHex string) error {
	if err := os.Remove(kr.seedPath(pkHex)); err != nil && !os.IsNotExist(err) {
		return err
	}
	if err := os.Remove(kr.metaPath(pkHex)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (kr *Keyring) listMetadata() ([]Metadata, error) {
	entries, err := os.ReadDir(kr.keysDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var metas []Metadata
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(kr.keysDir(), entry.Name()))
		if err != nil {
			continue
		}
		var meta Metadata
		if json.Unmarshal(raw, &meta) != nil {
			continue
		}
		metas = append(metas, meta)
	}
	sort.Slice(metas, func(i, j int) bool {
		return metas[i].CreatedAt.Before(metas[j].CreatedAt)
	})
	return metas, nil
}

func (kr *Keyring) readState() (state, error) {
	var s state
	raw, err := os.ReadFile(kr.statePath())
	if err != nil {
		if os.IsNotExist(err) {
			return state{Aliases: map[string]string{}}, nil
		}
		return s, err
	}
	if err := json.Unmarshal(raw, &s); err != nil {
		return s, fmt.Errorf("corrupt keyring state: %w", err)
	}
	if s.Aliases == nil {
		s.Aliases = map[string]string{}
	}
	return s, nil
}

func (kr *Keyring) writeState(s state) error {
	if err := os.MkdirAll(kr.dir, 0o700); err != nil {
		return err
	}
	raw, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(kr.statePath(), raw, 0o600)
}

// SetAlias points alias at a stored key.
func (kr *Keyring) SetAlias(alias, pkHex string) error {
	s, err := kr.readState()
	if err != nil {
		return err
	}
	s.Aliases[alias] = pkHex
	return kr.writeState(s)
}

// SetDefault marks a stored key as the default.
func (kr *Keyring) SetDefault(pkHex string) error {
	if !kr.keyExists(pkHex) {
		return ErrNotFound
	}
	s, err := kr.readState()
	if err != nil {
		return err
	}
	s.Default = pkHex
	return kr.writeState(s)
}

func (kr *Keyring) resolveAlias(alias string) (string, error) {
	s, err := kr.readState()
	if err != nil {
		return "", err
	}
	pkHex, ok := s.Aliases[alias]
	if !ok {
		return "", ErrAliasNotFound
	}
	return pkHex, nil
}
