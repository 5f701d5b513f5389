package common

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStoreOpenError_UnwrapAndRetryable(t *testing.T) {
	inner := errors.New("database is locked")
	err := fmt.Errorf("acquire: %w", &StoreOpenError{Path: "a.db", Kind: StoreBusy, Err: inner})

	var soe *StoreOpenError
	require.ErrorAs(t, err, &soe)
	require.True(t, soe.Retryable())
	require.ErrorIs(t, err, inner)
	require.Contains(t, err.Error(), "a.db")

	soe.Kind = StoreMigrationFail
	require.False(t, soe.Retryable())
}

func TestRemoteRequestError_Messages(t *testing.T) {
	tests := []struct {
		name string
		err  *RemoteRequestError
		want string
	}{
		{"transport", &RemoteRequestError{Op: "GET /lists", Err: context.DeadlineExceeded}, "GET /lists: context deadline exceeded"},
		{"status", &RemoteRequestError{Op: "PUT /cards", Status: 500, Message: "boom"}, "PUT /cards: status 500: boom"},
		{"envelope", &RemoteRequestError{Op: "POST /lists", Message: "duplicate"}, "POST /lists: duplicate"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, tc.err.Error())
		})
	}

	wrapped := fmt.Errorf("push: %w", &RemoteRequestError{Op: "x", Err: context.Canceled})
	require.ErrorIs(t, wrapped, context.Canceled)
}
