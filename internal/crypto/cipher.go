// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Riiina Works

// Package crypto provides optional passphrase-based encryption of the
// serialized settings payload before it is chunked and uploaded. The remote
// note service then only ever sees random-looking text.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/argon2"
)

// armorPrefix marks an encrypted payload so restore can tell armored
// payloads from plain ones.
const armorPrefix = "enc:v1:"

var (
	// ErrWrongPassphrase means authentication of the ciphertext failed:
	// either the passphrase differs from the one used to seal, or the
	// payload was tampered with.
	ErrWrongPassphrase = errors.New("wrong passphrase or corrupted payload")

	// ErrNotEncrypted means Open was called on a payload without armor.
	ErrNotEncrypted = errors.New("payload is not encrypted")
)

// PayloadCipher seals and opens settings payloads.
type PayloadCipher interface {
	// Seal encrypts the plaintext and returns a text-armored blob that is
	// safe to store in a note body.
	Seal(plaintext string) (string, error)

	// Open reverses Seal. Fails with [ErrWrongPassphrase] when the
	// passphrase does not match.
	Open(armored string) (string, error)
}

// IsEncrypted reports whether a payload carries the armor prefix.
func IsEncrypted(payload string) bool {
	return strings.HasPrefix(payload, armorPrefix)
}

// payloadCipher derives a 256-bit key from the passphrase with Argon2id,
// using a fresh salt per seal, and encrypts with AES-GCM.
type payloadCipher struct {
	passphrase string

	argonTime    uint32
	argonMemory  uint32
	argonThreads uint8
	argonKeyLen  uint32
}

// NewPayloadCipher constructs a [PayloadCipher] over the given passphrase
// with the Argon2id parameters recommended by OWASP (2024).
func NewPayloadCipher(passphrase string) PayloadCipher {
	return &payloadCipher{
		passphrase:   passphrase,
		argonTime:    1,
		argonMemory:  64 * 1024, // 64 MiB
		argonThreads: 4,
		argonKeyLen:  32, // 256 bits
	}
}

func (c *payloadCipher) Seal(plaintext string) (string, error) {
	salt := make([]byte, 16)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	gcm, err := c.aead(salt)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err = io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	sealed := gcm.Seal(nil, nonce, []byte(plaintext), nil)

	// blob layout: salt || nonce || ciphertext
	blob := make([]byte, 0, len(salt)+len(nonce)+len(sealed))
	blob = append(blob, salt...)
	blob = append(blob, nonce...)
	blob = append(blob, sealed...)

	return armorPrefix + base64.StdEncoding.EncodeToString(blob), nil
}

func (c *payloadCipher) Open(armored string) (string, error) {
	if !IsEncrypted(armored) {
		return "", ErrNotEncrypted
	}

	blob, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(armored, armorPrefix))
	if err != nil {
		return "", fmt.Errorf("decode armor: %w", err)
	}
	if len(blob) < 16 {
		return "", fmt.Errorf("%w: blob too short", ErrWrongPassphrase)
	}

	salt, rest := blob[:16], blob[16:]
	gcm, err := c.aead(salt)
	if err != nil {
		return "", err
	}
	if len(rest) < gcm.NonceSize() {
		return "", fmt.Errorf("%w: blob too short", ErrWrongPassphrase)
	}

	nonce, ciphertext := rest[:gcm.NonceSize()], rest[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", ErrWrongPassphrase
	}

	return string(plaintext), nil
}

func (c *payloadCipher) aead(salt []byte) (cipher.AEAD, error) {
	key := argon2.IDKey([]byte(c.passphrase), salt, c.argonTime, c.argonMemory, c.argonThreads, c.argonKeyLen)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("init gcm: %w", err)
	}
	return gcm, nil
}
