package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/machine/pkg/adapters/memory"
	"github.com/aretw0/machine/pkg/domain"
	"github.com/aretw0/machine/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryJournal_Contract(t *testing.T) {
	ports.RunJournalContract(t, memory.NewJournal())
}

func TestMemoryJournal_ListOrder(t *testing.T) {
	j := memory.NewJournal()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, j.Record(ctx, domain.Record{ID: "b", StartedAt: now.Add(time.Second)}))
	require.NoError(t, j.Record(ctx, domain.Record{ID: "c", StartedAt: now}))
	require.NoError(t, j.Record(ctx, domain.Record{ID: "a", StartedAt: now}))

	ids, err := j.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c", "b"}, ids)
}
