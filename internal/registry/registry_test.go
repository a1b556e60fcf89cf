package registry

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoicable/internal/billing"
)

func TestResolve(t *testing.T) {
	reg := New()
	reg.Register("customer", func(ctx context.Context, id string) (any, error) {
		if id != "c-1" {
			return nil, fmt.Errorf("customer %s: %w", id, billing.ErrNotFound)
		}
		return map[string]string{"id": id}, nil
	})

	record, err := reg.Resolve(context.Background(), Ref{Type: "customer", ID: "c-1"})
	require.NoError(t, err)
	assert.NotNil(t, record)

	_, err = reg.Resolve(context.Background(), Ref{Type: "customer", ID: "missing"})
	assert.ErrorIs(t, err, billing.ErrNotFound)
}

func TestResolveUnknownType(t *testing.T) {
	reg := New()

	_, err := reg.Resolve(context.Background(), Ref{Type: "spaceship", ID: "1"})
	assert.ErrorIs(t, err, billing.ErrUnknownRecordType)
	assert.False(t, reg.Knows("spaceship"))
}

func TestLastRegistrationWins(t *testing.T) {
	reg := New()
	reg.Register("product", func(ctx context.Context, id string) (any, error) { return "old", nil })
	reg.Register("product", func(ctx context.Context, id string) (any, error) { return "new", nil })

	record, err := reg.Resolve(context.Background(), Ref{Type: "product", ID: "1"})
	require.NoError(t, err)
	assert.Equal(t, "new", record)
}
