package id

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	gen := NewGenerator()

	id1 := gen.Generate()
	id2 := gen.Generate()

	assert.NotEqual(t, id1.String(), id2.String())
	assert.Len(t, gen.GenerateString(), 26)
}

func TestGenerateWithPrefix(t *testing.T) {
	gen := NewGenerator()

	for _, prefix := range []string{SandboxPrefix, QuizPrefix, EntryPrefix} {
		id := gen.GenerateWithPrefix(prefix)

		require.True(t, strings.HasPrefix(id, prefix+"_"), "got %s", id)
		assert.True(t, IsValidPrefixed(id, prefix))
		assert.False(t, IsValidPrefixed(id, "other"))
	}
}

func TestTypedGenerators(t *testing.T) {
	sbx := NewSandboxID()
	quiz := NewQuizID()

	assert.Equal(t, SandboxPrefix, sbx.Prefix())
	assert.Equal(t, QuizPrefix, quiz.Prefix())
	assert.Equal(t, "", WidgetID("plain").Prefix())
	assert.True(t, strings.HasPrefix(NewEntryID().String(), EntryPrefix+"_"))
}

func TestTimestamp(t *testing.T) {
	before := time.Now().Add(-time.Second)
	id := NewSandboxID()

	ts, err := Timestamp(id.String())
	require.NoError(t, err)
	assert.True(t, ts.After(before))

	_, err = Timestamp("sbx_not-a-ulid")
	assert.Error(t, err)
}

func TestConcurrentGeneration(t *testing.T) {
	const workers = 8
	const perWorker = 200

	var (
		mu   sync.Mutex
		seen = make(map[WidgetID]bool)
		wg   sync.WaitGroup
	)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				id := NewQuizID()
				mu.Lock()
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, workers*perWorker)
}
