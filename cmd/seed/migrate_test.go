package main

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMigrator struct {
	calls   []string
	steps   int
	version int64
	applied int
	err     error
}

func (f *fakeMigrator) Up(_ context.Context, steps int) (int, error) {
	f.calls = append(f.calls, "up")
	f.steps = steps
	return 1, f.err
}

func (f *fakeMigrator) Down(_ context.Context, steps int) (int, error) {
	f.calls = append(f.calls, "down")
	f.steps = steps
	return 1, f.err
}

func (f *fakeMigrator) Status(context.Context) (int64, int, error) {
	f.calls = append(f.calls, "status")
	return f.version, f.applied, f.err
}

func TestRunMigrations_Modos(t *testing.T) {
	ctx := context.Background()

	m := &fakeMigrator{}
	summary, seed, err := runMigrations(ctx, m, migrateUp, 0)
	require.NoError(t, err)
	assert.True(t, seed)
	assert.Equal(t, "1 migraciones aplicadas", summary)

	m = &fakeMigrator{}
	summary, seed, err = runMigrations(ctx, m, migrateDown, 2)
	require.NoError(t, err)
	assert.False(t, seed, "down no carga datos")
	assert.Equal(t, []string{"down"}, m.calls)
	assert.Equal(t, 2, m.steps)
	assert.Equal(t, "1 migraciones revertidas", summary)

	m = &fakeMigrator{version: 1, applied: 1}
	summary, seed, err = runMigrations(ctx, m, migrateStatus, 0)
	require.NoError(t, err)
	assert.False(t, seed)
	assert.Equal(t, "versión 1, 1 migraciones aplicadas", summary)
}

func TestRunMigrations_Errores(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")

	for _, mode := range []string{migrateUp, migrateDown, migrateStatus} {
		_, seed, err := runMigrations(ctx, &fakeMigrator{err: boom}, mode, 0)
		assert.ErrorIs(t, err, boom, mode)
		assert.False(t, seed)
	}

	m := &fakeMigrator{}
	_, _, err := runMigrations(ctx, m, "sideways", 0)
	assert.Error(t, err)
	assert.Empty(t, m.calls)
}
