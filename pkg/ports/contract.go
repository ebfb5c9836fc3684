package ports

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aretw0/machine/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunJournalContract runs a suite of tests to verify that a Journal implementation
// adheres to the defined interface contract.
func RunJournalContract(t *testing.T, journal Journal) {
	ctx := context.Background()
	execID := "contract-test-exec-" + time.Now().Format("20060102150405")
	startedAt := time.Now().UTC().Truncate(time.Millisecond)

	t.Run("Record and Get", func(t *testing.T) {
		rec := domain.NewRecord(execID, "add", domain.Succeeded(3), startedAt, 15*time.Millisecond)

		err := journal.Record(ctx, rec)
		require.NoError(t, err, "Record should not return error")

		loaded, err := journal.Get(ctx, execID)
		require.NoError(t, err, "Get should not return error")
		assert.Equal(t, rec.ID, loaded.ID)
		assert.Equal(t, "add", loaded.Identity)
		assert.Equal(t, domain.ExitSuccess, loaded.Exit)
		assert.True(t, loaded.OK())
		assert.True(t, startedAt.Equal(loaded.StartedAt))
		assert.Equal(t, 15*time.Millisecond, loaded.Duration)
		// JSON persistence turns numbers into float64; only check presence.
		assert.NotNil(t, loaded.Result)
	})

	t.Run("Record Exception", func(t *testing.T) {
		id := execID + "-exc"
		exc := domain.NewException("findUser", "notFound", "`findUser` triggered its `notFound` exit", nil, nil, nil)
		rec := domain.NewRecord(id, "findUser", domain.Failed("notFound", exc), startedAt, time.Millisecond)
		require.NoError(t, journal.Record(ctx, rec))
		defer func() { _ = journal.Delete(ctx, id) }()

		loaded, err := journal.Get(ctx, id)
		require.NoError(t, err)
		assert.False(t, loaded.OK())
		assert.Equal(t, "Exception", loaded.Kind)
		assert.Equal(t, "notFound", loaded.Code)
		assert.Equal(t, exc.Error(), loaded.Error)
	})

	t.Run("Get Non-Existent", func(t *testing.T) {
		_, err := journal.Get(ctx, "non-existent-"+execID)
		assert.True(t, errors.Is(err, domain.ErrRecordNotFound), "expected ErrRecordNotFound, got %v", err)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, journal.Record(ctx, domain.NewRecord(execID, "add", domain.Succeeded(nil), startedAt, 0)))

		err := journal.Delete(ctx, execID)
		require.NoError(t, err, "Delete should not return error")

		_, err = journal.Get(ctx, execID)
		assert.ErrorIs(t, err, domain.ErrRecordNotFound, "Get after Delete should return ErrRecordNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := execID + "-1"
		id2 := execID + "-2"
		_ = journal.Record(ctx, domain.NewRecord(id1, "add", domain.Succeeded(nil), startedAt, 0))
		_ = journal.Record(ctx, domain.NewRecord(id2, "add", domain.Succeeded(nil), startedAt.Add(time.Second), 0))

		defer func() {
			_ = journal.Delete(ctx, id1)
			_ = journal.Delete(ctx, id2)
		}()

		ids, err := journal.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, id1)
		assert.Contains(t, ids, id2)
	})
}
