package store

import (
	"sync"
	"testing"

	"github.com/dmitrijs2005/mcpanel/internal/client/models"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func servers(ss ...models.Server) []models.Server { return ss }

func s1() models.Server {
	return models.Server{
		ID:        "s1",
		Name:      "Alpha",
		Status:    models.ServerOnline,
		Players:   models.Players{Current: 2, Max: 20},
		IPAddress: "10.0.0.1",
		Port:      25565,
		Settings:  map[string]any{"pvp": true},
	}
}

func TestReplaceAll_KeepsServerOrderAndScope(t *testing.T) {
	st := New[models.Server]("servers")
	st.ReplaceAll("", servers(models.Server{ID: "b"}, models.Server{ID: "a"}, models.Server{ID: "c"}))

	var ids []string
	for _, s := range st.List() {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []string{"b", "a", "c"}, ids)

	st.ReplaceAll("s9", servers(models.Server{ID: "z"}))
	assert.Equal(t, 1, st.Len())
	assert.Equal(t, "s9", st.Scope())
}

func TestReplaceAll_DeduplicatesByID(t *testing.T) {
	st := New[models.Server]("servers")
	st.ReplaceAll("", servers(models.Server{ID: "a", Name: "old"}, models.Server{ID: "a", Name: "new"}))

	require.Equal(t, 1, st.Len())
	got, _ := st.Get("a")
	assert.Equal(t, "new", got.Name)
}

func TestMerge_UpdatesCollectionAndCurrentTogether(t *testing.T) {
	st := New[models.Server]("servers")
	st.ReplaceAll("", servers(s1()))
	cur := s1()
	st.SetCurrent(&cur)

	found, err := st.Merge("s1", []byte(`{"status":"offline"}`))
	require.NoError(t, err)
	require.True(t, found)

	listed, _ := st.Get("s1")
	current := st.Current()
	require.NotNil(t, current)

	assert.Equal(t, models.ServerOffline, listed.Status)
	assert.Equal(t, models.ServerOffline, current.Status)
	assert.Equal(t, "Alpha", listed.Name, "fields absent from the patch survive")
	assert.Equal(t, 20, current.Players.Max)
	if diff := cmp.Diff(listed, *current); diff != "" {
		t.Fatalf("collection and current diverged (-list +current):\n%s", diff)
	}
}

func TestMerge_CurrentOnly(t *testing.T) {
	st := New[models.Server]("servers")
	cur := s1()
	st.SetCurrent(&cur)

	found, err := st.Merge("s1", []byte(`{"players":{"current":7,"max":30}}`))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, models.Players{Current: 7, Max: 30}, st.Current().Players)
	assert.Equal(t, "Alpha", st.Current().Name)
	assert.Equal(t, 0, st.Len())
}

func TestMerge_UnseenIDIsDropped(t *testing.T) {
	st := New[models.Server]("servers")
	st.ReplaceAll("", servers(s1()))

	found, err := st.Merge("s2", []byte(`{"status":"offline"}`))
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, 1, st.Len())
	_, ok := st.Get("s2")
	assert.False(t, ok)
}

func TestMerge_IgnoresIDInPatch(t *testing.T) {
	st := New[models.Server]("servers")
	st.ReplaceAll("", servers(s1()))

	_, err := st.Merge("s1", []byte(`{"id":"hijack","name":"Beta"}`))
	require.NoError(t, err)

	got, ok := st.Get("s1")
	require.True(t, ok)
	assert.Equal(t, "Beta", got.Name)

	_, err = st.Merge("s1", []byte(`{"ID":"hijack"}`))
	require.NoError(t, err)
	_, ok = st.Get("s1")
	assert.True(t, ok)
}

func TestMerge_NestedFieldsAreReplacedWhole(t *testing.T) {
	st := New[models.Server]("servers")
	srv := s1()
	srv.Settings = map[string]any{"pvp": true, "motd": "hi"}
	st.ReplaceAll("", servers(srv))

	_, err := st.Merge("s1", []byte(`{"settings":{"pvp":false},"players":{"current":3}}`))
	require.NoError(t, err)

	got, _ := st.Get("s1")
	assert.Equal(t, map[string]any{"pvp": false}, got.Settings)
	assert.Equal(t, models.Players{Current: 3}, got.Players)
	assert.Equal(t, "Alpha", got.Name)
	assert.Equal(t, 25565, got.Port)
}

func TestMerge_RejectedPatchChangesNothing(t *testing.T) {
	st := New[models.Server]("servers")
	st.ReplaceAll("", servers(s1()))
	cur := s1()
	st.SetCurrent(&cur)

	notified := 0
	cancel := st.Subscribe(func(Change) { notified++ })
	defer cancel()

	found, err := st.Merge("s1", []byte(`{"status":5,"name":"renamed"}`))
	require.Error(t, err)
	assert.False(t, found)

	got, _ := st.Get("s1")
	assert.Equal(t, "Alpha", got.Name)
	assert.Equal(t, models.ServerOnline, got.Status)
	assert.Equal(t, "Alpha", st.Current().Name)
	assert.Zero(t, notified)
}

func TestMerge_PatchKeyCaseDoesNotShadow(t *testing.T) {
	st := New[models.Server]("servers")
	st.ReplaceAll("", servers(s1()))

	_, err := st.Merge("s1", []byte(`{"Status":"offline"}`))
	require.NoError(t, err)

	got, _ := st.Get("s1")
	assert.Equal(t, models.ServerOffline, got.Status)
}

func TestMerge_BadPatch(t *testing.T) {
	st := New[models.Server]("servers")
	st.ReplaceAll("", servers(s1()))

	_, err := st.Merge("s1", []byte(`[1,2]`))
	require.Error(t, err)
}

func TestSetCurrent_SharesWithCollectionEntry(t *testing.T) {
	st := New[models.Server]("servers")
	st.ReplaceAll("", servers(s1()))

	fresh := s1()
	fresh.Name = "Renamed"
	st.SetCurrent(&fresh)

	listed, _ := st.Get("s1")
	assert.Equal(t, "Renamed", listed.Name)

	st.Update("s1", func(s *models.Server) { s.Port = 25570 })
	assert.Equal(t, 25570, st.Current().Port)
	listed, _ = st.Get("s1")
	assert.Equal(t, 25570, listed.Port)
}

func TestReplaceAll_RefreshesCurrentValues(t *testing.T) {
	st := New[models.Server]("servers")
	cur := s1()
	st.SetCurrent(&cur)

	next := s1()
	next.Status = models.ServerStopping
	st.ReplaceAll("", servers(next))

	assert.Equal(t, models.ServerStopping, st.Current().Status)

	_, err := st.Merge("s1", []byte(`{"status":"offline"}`))
	require.NoError(t, err)
	listed, _ := st.Get("s1")
	assert.Equal(t, models.ServerOffline, listed.Status)
	assert.Equal(t, models.ServerOffline, st.Current().Status)
}

func TestAppend_AdoptsCurrentAndOverwritesDuplicates(t *testing.T) {
	st := New[models.Server]("servers")
	cur := s1()
	st.SetCurrent(&cur)

	st.Append(s1())
	st.Append(models.Server{ID: "s2"})
	updated := s1()
	updated.Name = "Again"
	st.Append(updated)

	require.Equal(t, 2, st.Len())
	assert.Equal(t, "Again", st.Current().Name)

	_, err := st.Merge("s1", []byte(`{"port":1}`))
	require.NoError(t, err)
	listed, _ := st.Get("s1")
	assert.Equal(t, 1, listed.Port)
	assert.Equal(t, 1, st.Current().Port)
}

func TestRemove_FiltersCollectionAndCurrent(t *testing.T) {
	st := New[models.Server]("servers")
	st.ReplaceAll("", servers(s1(), models.Server{ID: "s2"}))
	cur := s1()
	st.SetCurrent(&cur)

	assert.True(t, st.Remove("s1"))
	assert.Nil(t, st.Current())
	assert.Equal(t, 1, st.Len())
	assert.False(t, st.Remove("s1"))
}

func TestSnapshotsDoNotAlias(t *testing.T) {
	st := New[models.Server]("servers")
	st.ReplaceAll("", servers(s1()))

	snap := st.List()
	snap[0].Settings["pvp"] = false
	snap[0].Name = "changed"

	got, _ := st.Get("s1")
	assert.Equal(t, true, got.Settings["pvp"])
	assert.Equal(t, "Alpha", got.Name)
}

func TestTrack_OverlappingFetches(t *testing.T) {
	st := New[models.Server]("servers")

	done1 := st.Track(FlagList)
	done2 := st.Track(FlagList)
	assert.True(t, st.IsLoading(FlagList))
	assert.False(t, st.IsLoading(FlagCurrent))

	done1()
	done1()
	assert.True(t, st.IsLoading(FlagList), "second fetch still running")
	done2()
	assert.False(t, st.IsLoading(FlagList))
}

func TestLastCompletedFetchWins(t *testing.T) {
	st := New[models.Server]("servers")

	// Two fetches started in order A, B; B resolves first, A last.
	doneA := st.Track(FlagList)
	doneB := st.Track(FlagList)

	st.ReplaceAll("", servers(models.Server{ID: "from-b"}))
	doneB()
	st.ReplaceAll("", servers(models.Server{ID: "from-a"}))
	doneA()

	list := st.List()
	require.Len(t, list, 1)
	assert.Equal(t, "from-a", list[0].ID)
	assert.False(t, st.IsLoading(FlagList))
}

func TestSubscribe(t *testing.T) {
	st := New[models.Server]("servers")

	var (
		mu  sync.Mutex
		ops []Op
	)
	cancel := st.Subscribe(func(c Change) {
		mu.Lock()
		ops = append(ops, c.Op)
		mu.Unlock()
	})

	st.ReplaceAll("", servers(s1()))
	_, _ = st.Merge("s1", []byte(`{"name":"x"}`))
	_, _ = st.Merge("nope", []byte(`{"name":"x"}`))
	st.Remove("s1")
	cancel()
	st.Append(s1())

	assert.Equal(t, []Op{OpReplace, OpMerge, OpRemove}, ops)
}

func TestConcurrentAccess(t *testing.T) {
	st := New[models.Server]("servers")
	st.ReplaceAll("", servers(s1()))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = st.Merge("s1", []byte(`{"settings":{"motd":"hi"}}`))
		}()
		go func() {
			defer wg.Done()
			_ = st.List()
			_ = st.Current()
		}()
	}
	wg.Wait()

	got, _ := st.Get("s1")
	assert.Equal(t, "hi", got.Settings["motd"])
}
