package store_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"record-ingest-backend/internal/model"
	"record-ingest-backend/internal/store"
)

func TestLogBuffer_ListKeepsAppendOrder(t *testing.T) {
	buf := store.NewInMemoryLogBuffer()
	buf.Append(model.NewSuccessEntry("first"))
	buf.Append(model.NewErrorEntry("second"))
	buf.Append(model.NewSuccessEntry("third"))

	all := buf.List("")
	require.Len(t, all, 3)
	assert.Equal(t, "first", all[0].Message)
	assert.Equal(t, "second", all[1].Message)
	assert.Equal(t, "third", all[2].Message)
}

func TestLogBuffer_ListFiltersByType(t *testing.T) {
	buf := store.NewInMemoryLogBuffer()
	buf.Append(model.NewErrorEntry("e1"))
	buf.Append(model.NewSuccessEntry("s1"))
	buf.Append(model.NewErrorEntry("e2"))

	errs := buf.List(model.LogTypeError)
	assert.Equal(t, []model.LogEntry{model.NewErrorEntry("e1"), model.NewErrorEntry("e2")}, errs)

	unknown := buf.List("warning")
	assert.NotNil(t, unknown)
	assert.Empty(t, unknown)
}

func TestLogBuffer_EmptyListIsNotNil(t *testing.T) {
	buf := store.NewInMemoryLogBuffer()
	assert.NotNil(t, buf.List(""))
	assert.Equal(t, 0, buf.Len())
}

func TestLogBuffer_ListReturnsCopy(t *testing.T) {
	buf := store.NewInMemoryLogBuffer()
	buf.Append(model.NewSuccessEntry("original"))

	got := buf.List("")
	got[0].Message = "changed"

	assert.Equal(t, "original", buf.List("")[0].Message)
}

func TestLogBuffer_ConcurrentAppend(t *testing.T) {
	buf := store.NewInMemoryLogBuffer()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			buf.Append(model.NewSuccessEntry(fmt.Sprintf("entry-%d", i)))
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 50, buf.Len())
}
