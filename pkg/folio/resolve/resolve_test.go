package resolve

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/folio/pkg/folio/internalerr"
	"github.com/cognicore/folio/pkg/folio/store"
	"github.com/cognicore/folio/pkg/folio/store/memstore"
)

type failingFinder struct{}

func (failingFinder) FindByAccession(context.Context, string) (string, bool, error) {
	return "", false, internalerr.ErrStoreUnavailable
}

func TestResolveFound(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	id, err := s.CreateObject(ctx, store.Object{Index: map[string][]string{store.AccessionField: {"P-1"}}})
	require.NoError(t, err)

	got, ok, err := New(s).Resolve(ctx, []string{"P-1"})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, id, got)
}

func TestResolveUsesFirstElementOnly(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	_, err := s.CreateObject(ctx, store.Object{Index: map[string][]string{store.AccessionField: {"second"}}})
	require.NoError(t, err)

	_, ok, err := New(s).Resolve(ctx, []string{"first", "second"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestResolveMissIsNotError(t *testing.T) {
	r := New(memstore.New())

	_, ok, err := r.Resolve(context.Background(), []string{"nope"})
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = r.Resolve(context.Background(), nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestResolvePropagatesStoreFailure(t *testing.T) {
	_, _, err := New(failingFinder{}).Resolve(context.Background(), []string{"P-1"})
	assert.True(t, errors.Is(err, internalerr.ErrStoreUnavailable))
}
