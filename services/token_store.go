package services

import (
	"context"
	"crypto/md5"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"

	"chainside-gateway/repository"

	"github.com/google/uuid"
)

const (
	tokenMetaKey = "token"
	tokenLength  = 15
	tokenCharset = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// TokenStore mints and persists the per-order callback token. The stored
// hash itself is the shared secret compared on every callback; issuing a
// new token for an order replaces the previous one.
type TokenStore struct {
	repo repository.OrderRepository
}

func NewTokenStore(repo repository.OrderRepository) *TokenStore {
	return &TokenStore{repo: repo}
}

// IssueToken generates a random alphanumeric string, hashes it and stores
// the hash as the order's callback secret. Returns the hash, which is
// embedded in the callback URL.
func (s *TokenStore) IssueToken(ctx context.Context, orderID uuid.UUID) (string, error) {
	raw := make([]byte, tokenLength)
	max := big.NewInt(int64(len(tokenCharset)))
	for i := range raw {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate callback token: %w", err)
		}
		raw[i] = tokenCharset[n.Int64()]
	}

	sum := md5.Sum(raw)
	token := hex.EncodeToString(sum[:])

	if err := s.repo.SetMeta(ctx, orderID, tokenMetaKey, token); err != nil {
		return "", fmt.Errorf("store callback token: %w", err)
	}
	return token, nil
}

// StoredToken returns the callback token currently bound to the order.
func (s *TokenStore) StoredToken(ctx context.Context, orderID uuid.UUID) (string, error) {
	return s.repo.GetMeta(ctx, orderID, tokenMetaKey)
}
