package services_test

import (
	"context"
	"regexp"
	"testing"

	"chainside-gateway/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

var md5HexPattern = regexp.MustCompile(`^[0-9a-f]{32}$`)

func TestIssueToken_Format(t *testing.T) {
	repo := newMockOrderRepo()
	store := services.NewTokenStore(repo)
	orderID := uuid.New()

	token, err := store.IssueToken(context.Background(), orderID)

	assert.NoError(t, err)
	assert.Regexp(t, md5HexPattern, token)
}

func TestIssueToken_OverwritesPrevious(t *testing.T) {
	repo := newMockOrderRepo()
	store := services.NewTokenStore(repo)
	orderID := uuid.New()

	first, err := store.IssueToken(context.Background(), orderID)
	assert.NoError(t, err)
	second, err := store.IssueToken(context.Background(), orderID)
	assert.NoError(t, err)

	assert.NotEqual(t, first, second)

	stored, err := store.StoredToken(context.Background(), orderID)
	assert.NoError(t, err)
	assert.Equal(t, second, stored)
}

func TestStoredToken_NoneIssued(t *testing.T) {
	repo := newMockOrderRepo()
	store := services.NewTokenStore(repo)

	_, err := store.StoredToken(context.Background(), uuid.New())
	assert.Error(t, err)
}
