package profiler

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeUnit is a test stand-in for a host runtime's code unit. A unit with
// a baseline set is a physical variant that canonicalizes to it.
type fakeUnit struct {
	name     string
	baseline *fakeUnit
	fields   map[string]any
}

func (u *fakeUnit) Canonical() CodeUnit {
	if u.baseline != nil {
		return u.baseline
	}
	return u
}

func (u *fakeUnit) Name() string { return u.name }

func (u *fakeUnit) DocumentFields() map[string]any { return u.fields }

func TestDatabase_EnsureBytecodes(t *testing.T) {
	db := New("testvm")

	u1 := &fakeUnit{name: "main"}
	u2 := &fakeUnit{name: "helper"}

	b1 := db.EnsureBytecodes(u1)
	require.NotNil(t, b1)
	assert.Equal(t, 0, b1.Index())
	assert.Same(t, CodeUnit(u1), b1.Unit())

	// Same handle resolves to the same record.
	assert.Same(t, b1, db.EnsureBytecodes(u1))

	b2 := db.EnsureBytecodes(u2)
	assert.Equal(t, 1, b2.Index())
	assert.NotSame(t, b1, b2)
}

func TestDatabase_EnsureBytecodes_CanonicalizesVariants(t *testing.T) {
	db := New("testvm")

	base := &fakeUnit{name: "hot_loop"}
	variant := &fakeUnit{name: "hot_loop [tier2]", baseline: base}

	b1 := db.EnsureBytecodes(base)
	b2 := db.EnsureBytecodes(variant)
	assert.Same(t, b1, b2, "variants of one unit must share a record")

	doc := db.ToDocument()
	assert.Len(t, doc.Bytecodes, 1)
}

func TestDatabase_EnsureBytecodes_Concurrent(t *testing.T) {
	db := New("testvm")
	unit := &fakeUnit{name: "contended"}

	const workers = 32
	results := make([]*Bytecodes, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = db.EnsureBytecodes(unit)
		}(i)
	}
	wg.Wait()

	for i := 1; i < workers; i++ {
		require.Same(t, results[0], results[i], "worker %d got a different record", i)
	}
	assert.Len(t, db.ToDocument().Bytecodes, 1)
}

func TestDatabase_NotifyDestruction(t *testing.T) {
	db := New("testvm")
	unit := &fakeUnit{name: "recycled"}

	first := db.EnsureBytecodes(unit)
	assert.Equal(t, 0, first.Index())

	db.NotifyDestruction(unit)

	// Reusing the handle creates a fresh record with the next index; the
	// historical one stays in the collection.
	second := db.EnsureBytecodes(unit)
	assert.NotSame(t, first, second)
	assert.Equal(t, 1, second.Index())
	assert.Len(t, db.ToDocument().Bytecodes, 2)
}

func TestDatabase_NotifyDestruction_UnknownHandle(t *testing.T) {
	db := New("testvm")

	// Never-indexed handles are a documented no-op.
	db.NotifyDestruction(&fakeUnit{name: "stranger"})
	assert.Empty(t, db.ToDocument().Bytecodes)
}

func TestDatabase_AddCompilation_LatestWins(t *testing.T) {
	db := New("testvm")
	ctx := context.Background()
	unit := &fakeUnit{name: "tiered"}

	c1 := db.AddCompilation(ctx, unit, map[string]any{"tier": 1})
	c2 := db.AddCompilation(ctx, unit, map[string]any{"tier": 2})
	assert.Equal(t, 0, c1.Index())
	assert.Equal(t, 1, c2.Index())

	// Both records stay in the collection.
	doc := db.ToDocument()
	require.Len(t, doc.Compilations, 2)

	// Events resolve the latest compilation.
	db.LogEvent(unit, "osr", "entry")
	doc = db.ToDocument()
	require.Len(t, doc.Events, 1)
	require.NotNil(t, doc.Events[0].Compilation)
	assert.Equal(t, c2.Index(), *doc.Events[0].Compilation)
}

func TestDatabase_AddCompilation_PanicsOnCompilationWorker(t *testing.T) {
	db := New("testvm")
	ctx := WithCompilationWorker(context.Background())

	assert.Panics(t, func() {
		db.AddCompilation(ctx, &fakeUnit{name: "bg"}, nil)
	})
}

func TestDatabase_LogEvent_Scenario(t *testing.T) {
	db := New("testvm")
	unit := &fakeUnit{name: "fib", fields: map[string]any{"sourceLength": 120}}

	b := db.EnsureBytecodes(unit)
	require.Equal(t, 0, b.Index())

	payload := map[string]any{"tier": 2, "result": "success"}
	db.AddCompilation(context.Background(), unit, payload)
	db.LogEvent(unit, "optimized", "tier2")

	doc := db.ToDocument()
	require.Len(t, doc.Bytecodes, 1)
	require.Len(t, doc.Compilations, 1)
	require.Len(t, doc.Events, 1)

	entry := doc.Bytecodes[0]
	assert.Equal(t, 0, entry["bytecodesID"])
	assert.Equal(t, "fib", entry["name"])
	assert.Equal(t, 120, entry["sourceLength"])
	assert.NotEmpty(t, entry["hash"])

	assert.Equal(t, payload, doc.Compilations[0])

	ev := doc.Events[0]
	assert.Equal(t, "optimized", ev.Summary)
	assert.Equal(t, "tier2", ev.Detail)
	assert.Equal(t, 0, ev.Bytecodes)
	require.NotNil(t, ev.Compilation)
	assert.Equal(t, 0, *ev.Compilation)
	assert.Greater(t, ev.Time, float64(0))
}

func TestDatabase_LogEvent_WithoutCompilation(t *testing.T) {
	db := New("testvm")
	unit := &fakeUnit{name: "interp_only"}

	db.LogEvent(unit, "executed", "baseline")

	doc := db.ToDocument()
	require.Len(t, doc.Events, 1)
	assert.Nil(t, doc.Events[0].Compilation)

	// The compilation reference is omitted from the JSON entirely.
	text, err := db.ToJSON()
	require.NoError(t, err)
	assert.NotContains(t, text, `"compilation"`)
}

func TestDatabase_LogEvent_TimestampsOrdered(t *testing.T) {
	db := New("testvm")
	unit := &fakeUnit{name: "ticker"}

	for i := 0; i < 10; i++ {
		db.LogEvent(unit, "tick", fmt.Sprintf("%d", i))
	}

	doc := db.ToDocument()
	require.Len(t, doc.Events, 10)
	for i := 1; i < len(doc.Events); i++ {
		assert.GreaterOrEqual(t, doc.Events[i].Time, doc.Events[i-1].Time)
	}
}

func TestDatabase_ToJSON_TopLevelShape(t *testing.T) {
	db := New("testvm")
	unit := &fakeUnit{name: "shape"}
	db.AddCompilation(context.Background(), unit, "payload")
	db.LogEvent(unit, "logged", "detail")

	text, err := db.ToJSON()
	require.NoError(t, err)
	require.True(t, json.Valid([]byte(text)))

	// The three array fields appear in fixed order.
	bi := strings.Index(text, `"bytecodes"`)
	ci := strings.Index(text, `"compilations"`)
	ei := strings.Index(text, `"events"`)
	require.NotEqual(t, -1, bi)
	require.NotEqual(t, -1, ci)
	require.NotEqual(t, -1, ei)
	assert.Less(t, bi, ci)
	assert.Less(t, ci, ei)

	// And the output round-trips through the parser cleanly.
	doc, err := ParseDocument([]byte(text))
	require.NoError(t, err)
	require.NoError(t, doc.Validate())
	assert.Len(t, doc.Bytecodes, 1)
	assert.Len(t, doc.Compilations, 1)
	assert.Len(t, doc.Events, 1)
}

func TestDatabase_ToJSON_EmptyCollectionsAreArrays(t *testing.T) {
	db := New("testvm")

	text, err := db.ToJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"bytecodes":[],"compilations":[],"events":[]}`, text)
}

func TestDatabase_Save(t *testing.T) {
	db := New("testvm")
	unit := &fakeUnit{name: "saved"}
	db.LogEvent(unit, "executed", "once")

	path := filepath.Join(t.TempDir(), "profile.json")
	require.NoError(t, db.Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	doc, err := ParseDocument(data)
	require.NoError(t, err)
	require.NoError(t, doc.Validate())
	assert.Len(t, doc.Events, 1)

	// The database stays usable after a save.
	db.LogEvent(unit, "executed", "twice")
	require.NoError(t, db.Save(path))
}

func TestDatabase_Save_OpenFailure(t *testing.T) {
	db := New("testvm")
	db.LogEvent(&fakeUnit{name: "doomed"}, "executed", "never saved")

	path := filepath.Join(t.TempDir(), "missing", "out.json")
	err := db.Save(path)
	require.Error(t, err)
	assert.NoFileExists(t, path)

	// The in-memory database is untouched and callable again.
	assert.Len(t, db.ToDocument().Events, 1)
}

func TestDatabase_IDsAreUnique(t *testing.T) {
	a := New("testvm")
	b := New("testvm")
	c := New("testvm")

	assert.NotEqual(t, a.ID(), b.ID())
	assert.NotEqual(t, b.ID(), c.ID())
	assert.Greater(t, b.ID(), a.ID())
	assert.Greater(t, c.ID(), b.ID())
	assert.NotEqual(t, a.Session(), b.Session())
	assert.Equal(t, "testvm", a.Host())
}
