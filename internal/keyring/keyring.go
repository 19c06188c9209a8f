// Package keyring stores signing-key seeds on disk for the arc-trust CLI,
// with an alias map and a default key.
package keyring

import (
	"errors"
	"time"

	"github.com/gezibash/arc-trust/pkg/identity"
)

// DefaultAlias is the alias assigned to the first generated key.
const DefaultAlias = "default"

var (
	ErrNotFound      = errors.New("key not found")
	ErrAliasNotFound = errors.New("alias not found")
	ErrAlreadyExists = errors.New("key already exists")
	ErrNoDefault     = errors.New("no default key set")
)

// Keyring manages seed files under <dir>/keys plus a keyring.json alias map.
type Keyring struct {
	dir string
}

// Key is a loaded signing key with its stored metadata.
type Key struct {
	Signer    *identity.SigningKey
	PublicKey string // hex-encoded
	Metadata  *Metadata
}

// Metadata is stored beside each seed file.
type Metadata struct {
	PublicKey string    `json:"public_key"`
	CreatedAt time.Time `json:"created_at"`
}

// KeyInfo summarizes one stored key for listings.
type KeyInfo struct {
	PublicKey   string    `json:"public_key"`
	Fingerprint string    `json:"fingerprint"`
	Aliases     []string  `json:"aliases,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	IsDefault   bool      `json:"is_default"`
}

// New creates a keyring rooted at dir.
func New(dir string) *Keyring {
	return &Keyring{dir: dir}
}

// Generate creates, stores, and aliases a new signing key.
func (kr *Keyring) Generate(alias string) (*Key, error) {
	sk, err := identity.Generate()
	if err != nil {
		return nil, err
	}
	return kr.store(sk, alias)
}

// Import stores a signing key reconstructed from a seed.
func (kr *Keyring) Import(seed []byte, alias string) (*Key, error) {
	sk, err := identity.FromSeed(seed)
	if err != nil {
		return nil, err
	}
	return kr.store(sk, alias)
}

func (kr *Keyring) store(sk *identity.SigningKey, alias string) (*Key, error) {
	pkHex := identity.EncodePublicKey(sk.PublicKey())

	if kr.keyExists(pkHex) {
		return nil, ErrAlreadyExists
	}

	meta := &Metadata{PublicKey: pkHex, CreatedAt: time.Now()}
	if err := kr.saveKey(sk, pkHex, meta); err != nil {
		return nil, err
	}

	if alias != "" {
		if err := kr.SetAlias(alias, pkHex); err != nil {
			_ = kr.deleteKeyFiles(pkHex)
			return nil, err
		}
	}

	return &Key{Signer: sk, PublicKey: pkHex, Metadata: meta}, nil
}

// Load resolves ref (an alias or a public key hex) to a stored key.
func (kr *Keyring) Load(ref string) (*Key, error) {
	pkHex := ref
	if _, err := identity.DecodePublicKey(ref); err != nil {
		resolved, err := kr.resolveAlias(ref)
		if err != nil {
			return nil, err
		}
		pkHex = resolved
	}
	return kr.loadKey(pkHex)
}

// Default loads the default key, or the sole DefaultAlias key if no default
// was set explicitly.
func (kr *Keyring) Default() (*Key, error) {
	state, err := kr.readState()
	if err != nil {
		return nil, err
	}
	pkHex := state.Default
	if pkHex == "" {
		resolved, err := kr.resolveAlias(DefaultAlias)
		if err != nil {
			return nil, ErrNoDefault
		}
		pkHex = resolved
	}
	return kr.loadKey(pkHex)
}

// List returns summaries of all stored keys.
func (kr *Keyring) List() ([]KeyInfo, error) {
	state, err := kr.readState()
	if err != nil {
		return nil, err
	}

	metas, err := kr.listMetadata()
	if err != nil {
		return nil, err
	}

	infos := make([]KeyInfo, 0, len(metas))
	for _, meta := range metas {
		info := KeyInfo{
			PublicKey: meta.PublicKey,
			CreatedAt: meta.CreatedAt,
			IsDefault: meta.PublicKey == state.Default,
		}
		if pk, err := identity.DecodePublicKey(meta.PublicKey); err == nil {
			info.Fingerprint = identity.Fingerprint(pk)
		}
		for alias, target := range state.Aliases {
			if target == meta.PublicKey {
				info.Aliases = append(info.Aliases, alias)
			}
		}
		infos = append(infos, info)
	}
	return infos, nil
}
