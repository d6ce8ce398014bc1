package service

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"strings"

	"github.com/opendrive/drivevalue/internal/apiconfig/domain"
)

type encryptedPayload struct {
	Version    int    `json:"version"`
	Nonce      string `json:"nonce"`
	Ciphertext string `json:"ciphertext"`
}

// Codec encrypts stored upstream credentials with AES-256-GCM. The key is
// derived from a single process-wide secret; rotating the secret invalidates
// every stored credential.
type Codec struct {
	key []byte
}

// NewCodec derives the AES key from secret. An empty secret yields a codec
// that fails every operation with ErrEncryptionKeyMissing.
func NewCodec(secret string) *Codec {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return &Codec{}
	}
	sum := sha256.Sum256([]byte(secret))
	return &Codec{key: sum[:]}
}

// Encrypt seals plaintext into a versioned, base64-encoded blob.
func (c *Codec) Encrypt(plaintext string) (string, error) {
	if len(c.key) == 0 {
		return "", domain.ErrEncryptionKeyMissing
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	ciphertext := gcm.Seal(nil, nonce, []byte(plaintext), nil)
	out, err := json.Marshal(encryptedPayload{
		Version:    1,
		Nonce:      base64.RawStdEncoding.EncodeToString(nonce),
		Ciphertext: base64.RawStdEncoding.EncodeToString(ciphertext),
	})
	if err != nil {
		return "", err
	}

	return string(out), nil
}

// Decrypt opens a blob produced by Encrypt. Any malformed input, unknown
// version, or key mismatch yields ErrCredentialDecrypt so callers can tell
// the operator to re-save the configuration.
func (c *Codec) Decrypt(encrypted string) (string, error) {
	if len(c.key) == 0 {
		return "", domain.ErrEncryptionKeyMissing
	}
	if strings.TrimSpace(encrypted) == "" {
		return "", domain.ErrCredentialDecrypt
	}

	var payload encryptedPayload
	if err := json.Unmarshal([]byte(encrypted), &payload); err != nil {
		return "", domain.ErrCredentialDecrypt
	}
	if payload.Version != 1 {
		return "", domain.ErrCredentialDecrypt
	}

	nonce, err := base64.RawStdEncoding.DecodeString(payload.Nonce)
	if err != nil {
		return "", domain.ErrCredentialDecrypt
	}
	ciphertext, err := base64.RawStdEncoding.DecodeString(payload.Ciphertext)
	if err != nil {
		return "", domain.ErrCredentialDecrypt
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}
	plain, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", domain.ErrCredentialDecrypt
	}

	return string(plain), nil
}
