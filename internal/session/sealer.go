package session

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/nacl/secretbox"
)

const (
	keySize   = 32
	nonceSize = 24

	cookieKeyInfo = "red-esperanza/session-cookie"
	tokenKeyInfo  = "red-esperanza/session-token"
)

var errSealedTokenInvalid = errors.New("session: sealed token invalid")

func deriveKey(secret []byte, info string) ([keySize]byte, error) {
	var key [keySize]byte
	reader := hkdf.New(sha256.New, secret, nil, []byte(info))
	if _, err := io.ReadFull(reader, key[:]); err != nil {
		return key, fmt.Errorf("derive %s key: %w", info, err)
	}
	return key, nil
}

// sealer encrypts bearer tokens before they reach the store.
type sealer struct {
	key [keySize]byte
}

func (s sealer) seal(plain string) (string, error) {
	if plain == "" {
		return "", nil
	}
	var nonce [nonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	box := secretbox.Seal(nonce[:], []byte(plain), &nonce, &s.key)
	return base64.RawURLEncoding.EncodeToString(box), nil
}

func (s sealer) open(sealed string) (string, error) {
	if sealed == "" {
		return "", nil
	}
	box, err := base64.RawURLEncoding.DecodeString(sealed)
	if err != nil || len(box) <= nonceSize {
		return "", errSealedTokenInvalid
	}
	var nonce [nonceSize]byte
	copy(nonce[:], box[:nonceSize])
	plain, ok := secretbox.Open(nil, box[nonceSize:], &nonce, &s.key)
	if !ok {
		return "", errSealedTokenInvalid
	}
	return string(plain), nil
}
