package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zoernert/rhajaina-dal/store"
)

func pgError(code string) error {
	return fmt.Errorf("exec: %w", &pgconn.PgError{Code: code, Message: "driver detail", TableName: "documents"})
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(t *testing.T, got error)
	}{
		{
			name: "unique violation",
			err:  pgError(codeUniqueViolation),
			check: func(t *testing.T, got error) {
				var dup *store.DuplicateKeyError
				require.True(t, errors.As(got, &dup))
				assert.Equal(t, "documents", dup.Collection)
			},
		},
		{
			name: "serialization failure",
			err:  pgError(codeSerializationFail),
			check: func(t *testing.T, got error) {
				var conflict *store.ConflictError
				assert.True(t, errors.As(got, &conflict))
			},
		},
		{
			name: "deadlock",
			err:  pgError(codeDeadlockDetected),
			check: func(t *testing.T, got error) {
				var conflict *store.ConflictError
				assert.True(t, errors.As(got, &conflict))
			},
		},
		{
			name: "too many connections",
			err:  pgError(codeTooManyConnections),
			check: func(t *testing.T, got error) {
				assert.True(t, errors.Is(got, store.ErrPoolExhausted))
			},
		},
		{
			name: "statement timeout",
			err:  pgError(codeStatementTimeout),
			check: func(t *testing.T, got error) {
				assert.Contains(t, got.Error(), "timeout")
			},
		},
		{
			name: "invalid password",
			err:  pgError(codeInvalidPassword),
			check: func(t *testing.T, got error) {
				assert.Contains(t, got.Error(), "authentication")
			},
		},
		{
			name: "undefined table",
			err:  pgError(codeUndefinedTable),
			check: func(t *testing.T, got error) {
				assert.Contains(t, got.Error(), "index")
			},
		},
		{
			name: "passthrough",
			err:  errors.New("plain error"),
			check: func(t *testing.T, got error) {
				assert.EqualError(t, got, "plain error")
			},
		},
		{
			name: "nil",
			err:  nil,
			check: func(t *testing.T, got error) {
				assert.NoError(t, got)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, mapError(tt.err))
		})
	}
}

func TestStore_NotConnected(t *testing.T) {
	s := New("docs", Config{URL: "postgres://localhost/test"})

	err := s.HealthCheck(context.Background())
	assert.ErrorIs(t, err, store.ErrNotConnected)

	_, err = s.Get(context.Background(), "chats", "c1")
	assert.ErrorIs(t, err, store.ErrNotConnected)

	err = s.WithTransaction(context.Background(), func(ctx context.Context) error { return nil })
	assert.ErrorIs(t, err, store.ErrNotConnected)
}

func TestStore_DisconnectIdempotent(t *testing.T) {
	s := New("docs", Config{URL: "postgres://localhost/test"})

	require.NoError(t, s.Disconnect(context.Background()))
	require.NoError(t, s.Disconnect(context.Background()))
}

func TestConfig_Defaults(t *testing.T) {
	cfg := Config{}.withDefaults()

	assert.Equal(t, 10, cfg.MaxConns)
	assert.Equal(t, 2, cfg.MinConns)
	assert.NotZero(t, cfg.ConnectTimeout)
}

func TestTxFromContext_Empty(t *testing.T) {
	assert.Nil(t, txFromContext(context.Background()))
}
