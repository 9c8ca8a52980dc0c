// Package invite mints and validates the compact tokens embedded in
// queue invitation links.
//
// A token binds (queue id, creator id) without any stored lookup table:
// the pair is serialized as "<qid>:<cid>", padded to one AES block,
// encrypted under a process-wide key and rendered as 32 hex characters.
// This is obfuscation for tamper-evidence, not access control; callers
// must still compare the decoded creator id against the queue's stored
// creator before trusting a token.
package invite

import (
	"bytes"
	"crypto/aes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/vahe2002pog/tg-queue/internal/domain"
)

// TokenLength is the fixed length of an encoded token in hex characters.
// It covers exactly one AES block, which also caps the payload at 15
// bytes before padding.
const TokenLength = 2 * aes.BlockSize

// LinkPrefix precedes the token in the deep-link start payload.
const LinkPrefix = "join_"

// Codec encrypts and decrypts invite tokens under a fixed secret.
type Codec struct {
	key [32]byte
}

// NewCodec derives the cipher key from the configured secret. Any
// non-empty secret is accepted.
func NewCodec(secret []byte) (*Codec, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("invite: empty secret")
	}
	return &Codec{key: sha256.Sum256(secret)}, nil
}

// Encode returns the token for the (queueID, creatorID) pair.
func (c *Codec) Encode(queueID, creatorID int64) (string, error) {
	plain := []byte(strconv.FormatInt(queueID, 10) + ":" + strconv.FormatInt(creatorID, 10))
	if len(plain) >= aes.BlockSize {
		// Padding would spill into a second block, which the fixed-length
		// token cannot carry.
		return "", fmt.Errorf("invite: payload %q does not fit one block", plain)
	}

	padLen := aes.BlockSize - len(plain)
	padded := append(plain, bytes.Repeat([]byte{byte(padLen)}, padLen)...)

	block, err := aes.NewCipher(c.key[:])
	if err != nil {
		return "", fmt.Errorf("invite: init cipher: %w", err)
	}
	out := make([]byte, aes.BlockSize)
	block.Encrypt(out, padded)

	return hex.EncodeToString(out), nil
}

// Decode reverses Encode. Any malformed input — wrong length, bad hex,
// garbled padding, or a payload that is not exactly two integers —
// yields domain.ErrInvalidToken.
func (c *Codec) Decode(token string) (queueID, creatorID int64, err error) {
	if len(token) != TokenLength {
		return 0, 0, domain.ErrInvalidToken
	}
	raw, err := hex.DecodeString(token)
	if err != nil {
		return 0, 0, domain.ErrInvalidToken
	}

	block, err := aes.NewCipher(c.key[:])
	if err != nil {
		return 0, 0, fmt.Errorf("invite: init cipher: %w", err)
	}
	plain := make([]byte, aes.BlockSize)
	block.Decrypt(plain, raw)

	padLen := int(plain[len(plain)-1])
	if padLen < 1 || padLen >= aes.BlockSize {
		return 0, 0, domain.ErrInvalidToken
	}
	for _, b := range plain[len(plain)-padLen:] {
		if int(b) != padLen {
			return 0, 0, domain.ErrInvalidToken
		}
	}
	payload := plain[:len(plain)-padLen]
	if !utf8.Valid(payload) {
		return 0, 0, domain.ErrInvalidToken
	}

	qidStr, cidStr, ok := strings.Cut(string(payload), ":")
	if !ok {
		return 0, 0, domain.ErrInvalidToken
	}
	queueID, err = strconv.ParseInt(qidStr, 10, 64)
	if err != nil {
		return 0, 0, domain.ErrInvalidToken
	}
	creatorID, err = strconv.ParseInt(cidStr, 10, 64)
	if err != nil {
		return 0, 0, domain.ErrInvalidToken
	}
	return queueID, creatorID, nil
}
