package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/dmitrijs2005/mcpanel/internal/client/client"
	"github.com/dmitrijs2005/mcpanel/internal/client/models"
	"github.com/dmitrijs2005/mcpanel/internal/client/store"
	"github.com/dmitrijs2005/mcpanel/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const s1JSON = `{"id":"s1","name":"Alpha","status":"online","minecraftVersion":"1.20.1",
"javaVersion":"17","players":{"current":3,"max":20},"resources":{"cpu":12.5,"ram":40,"storage":10},
"ipAddress":"10.0.0.1","port":25565}`

func newServers(t *testing.T) (*harness, ServerService) {
	t.Helper()
	h := newHarness(t)
	h.signIn(t)
	return h, NewServerService(h.api, nil)
}

func TestFetchServers_ReplacesCollection(t *testing.T) {
	h, svc := newServers(t)
	ctx := context.Background()
	h.backend.on(http.MethodGet, "/servers", http.StatusOK, `[`+s1JSON+`,{"id":"s2","name":"Beta"}]`)

	svc.FetchServers(ctx)

	list := svc.Store().List()
	require.Len(t, list, 2)
	assert.Equal(t, "s1", list[0].ID)
	assert.Equal(t, 20, list[0].Players.Max)
	assert.False(t, svc.Store().IsLoading(store.FlagList))

	h.backend.on(http.MethodGet, "/servers", http.StatusOK, `[{"id":"s3"}]`)
	svc.FetchServers(ctx)
	list = svc.Store().List()
	require.Len(t, list, 1)
	assert.Equal(t, "s3", list[0].ID)
}

func TestFetchServers_ErrorKeepsCollection(t *testing.T) {
	h, svc := newServers(t)
	ctx := context.Background()
	h.backend.on(http.MethodGet, "/servers", http.StatusOK, `[`+s1JSON+`]`)
	svc.FetchServers(ctx)

	h.backend.on(http.MethodGet, "/servers", http.StatusBadGateway, ``)
	svc.FetchServers(ctx)

	assert.Equal(t, 1, svc.Store().Len())
	assert.False(t, svc.Store().IsLoading(store.FlagList))
}

func TestFetchServerByID(t *testing.T) {
	h, svc := newServers(t)
	ctx := context.Background()
	h.backend.on(http.MethodGet, "/servers/s1", http.StatusOK, s1JSON)

	got := svc.FetchServerByID(ctx, "s1")
	require.NotNil(t, got)
	assert.Equal(t, "Alpha", got.Name)
	assert.Equal(t, "Alpha", svc.Store().Current().Name)

	h.backend.on(http.MethodGet, "/servers/s1", http.StatusNotFound, `{"error":"server not found"}`)
	assert.Nil(t, svc.FetchServerByID(ctx, "s1"))
	assert.Nil(t, svc.Store().Current(), "not found clears current")
}

func TestFetchServerByID_LastResolvedWins(t *testing.T) {
	h, svc := newServers(t)
	ctx := context.Background()

	var (
		mu      sync.Mutex
		n       int
		release = make(chan struct{})
		arrived = make(chan struct{})
	)
	h.backend.handle(http.MethodGet, "/servers/s1", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		n++
		first := n == 1
		mu.Unlock()

		if first {
			close(arrived)
			<-release
			_, _ = io.WriteString(w, `{"id":"s1","name":"issued-first"}`)
			return
		}
		_, _ = io.WriteString(w, `{"id":"s1","name":"issued-second"}`)
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		svc.FetchServerByID(ctx, "s1")
	}()
	<-arrived

	svc.FetchServerByID(ctx, "s1")
	assert.Equal(t, "issued-second", svc.Store().Current().Name)

	close(release)
	<-done

	// The response that resolved last wins, even though it was issued first.
	assert.Equal(t, "issued-first", svc.Store().Current().Name)
}

func TestApplyBroadcast_MergesStatusOnly(t *testing.T) {
	h, svc := newServers(t)
	ctx := context.Background()
	h.backend.on(http.MethodGet, "/servers", http.StatusOK, `[`+s1JSON+`]`)
	h.backend.on(http.MethodGet, "/servers/s1", http.StatusOK, s1JSON)
	svc.FetchServers(ctx)
	svc.FetchServerByID(ctx, "s1")
	before, _ := svc.Store().Get("s1")

	found, err := svc.ApplyBroadcast("s1", []byte(`{"id":"s1","status":"offline"}`))
	require.NoError(t, err)
	require.True(t, found)

	after := svc.Store().List()[0]
	assert.Equal(t, models.ServerOffline, after.Status)
	after.Status = before.Status
	assert.Equal(t, before, after, "all other fields unchanged")
	assert.Equal(t, models.ServerOffline, svc.Store().Current().Status)

	found, err = svc.ApplyBroadcast("ghost", []byte(`{"status":"offline"}`))
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, 1, svc.Store().Len())
}

func TestFetchSettings_NormalizesBooleans(t *testing.T) {
	h, svc := newServers(t)
	ctx := context.Background()
	h.backend.on(http.MethodGet, "/servers/s1", http.StatusOK, s1JSON)
	h.backend.on(http.MethodGet, "/servers/s1/settings", http.StatusOK,
		`{"pvp":"true","hardcore":"false","motd":"hello","max-players":"20"}`)
	svc.FetchServerByID(ctx, "s1")

	svc.FetchSettings(ctx, "s1")

	assert.Equal(t, map[string]any{
		"pvp": true, "hardcore": false, "motd": "hello", "max-players": "20",
	}, svc.Store().Current().Settings)
	assert.False(t, svc.Store().IsLoading(store.FlagSettings))
}

func TestFetchSettings_RequiresCurrent(t *testing.T) {
	h, svc := newServers(t)
	svc.FetchSettings(context.Background(), "s1")
	assert.Zero(t, h.backend.count(http.MethodGet, "/servers/s1/settings"))
}

func TestCreateServer_Appends(t *testing.T) {
	h, svc := newServers(t)
	ctx := context.Background()
	h.backend.on(http.MethodPost, "/servers", http.StatusCreated, `{"id":"s7","name":"New","status":"offline"}`)

	srv, err := svc.CreateServer(ctx, "New", "t1")
	require.NoError(t, err)
	assert.Equal(t, "s7", srv.ID)

	_, ok := svc.Store().Get("s7")
	assert.True(t, ok)

	c, _ := h.backend.last(http.MethodPost, "/servers")
	var sent models.NewServerRequest
	require.NoError(t, json.Unmarshal(c.Body, &sent))
	assert.Equal(t, models.NewServerRequest{Name: "New", TemplateID: "t1"}, sent)
}

func TestCreateServer_Failures(t *testing.T) {
	h, svc := newServers(t)
	ctx := context.Background()

	_, err := svc.CreateServer(ctx, "", "t1")
	require.ErrorIs(t, err, common.ErrorInvalidArgument)
	assert.Zero(t, h.backend.count(http.MethodPost, "/servers"))

	h.backend.on(http.MethodPost, "/servers", http.StatusBadRequest, `{"error":"template missing"}`)
	_, err = svc.CreateServer(ctx, "New", "t404")
	require.ErrorIs(t, err, client.ErrValidation)
	assert.Zero(t, svc.Store().Len())
}

func TestCreateServerFromUpload(t *testing.T) {
	h, svc := newServers(t)
	ctx := context.Background()

	var fields map[string]string
	var file string
	h.backend.handle(http.MethodPost, "/servers/upload", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		fields = map[string]string{}
		for k, v := range r.MultipartForm.Value {
			fields[k] = v[0]
		}
		f, _, err := r.FormFile("file")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		b, _ := io.ReadAll(f)
		file = string(b)
		_, _ = io.WriteString(w, `{"id":"s8","name":"Packed"}`)
	})

	srv, err := svc.CreateServerFromUpload(ctx, UploadRequest{
		Name: "Packed", JavaVersion: "21", MaxMemoryMB: 4096,
		Filename: "pack.zip", File: strings.NewReader("zipbytes"),
	})
	require.NoError(t, err)
	assert.Equal(t, "s8", srv.ID)
	assert.Equal(t, map[string]string{"name": "Packed", "javaVersion": "21", "maxMemoryMB": "4096"}, fields)
	assert.Equal(t, "zipbytes", file)
	assert.Equal(t, 1, svc.Store().Len())

	c, _ := h.backend.last(http.MethodPost, "/servers/upload")
	assert.True(t, strings.HasPrefix(c.Type, "multipart/form-data"))
	assert.Equal(t, "Bearer tok123", c.Auth)
}

func TestPerformAction(t *testing.T) {
	h, svc := newServers(t)
	ctx := context.Background()
	h.backend.on(http.MethodPost, "/servers/s1/action", http.StatusAccepted, `{}`)

	require.NoError(t, svc.PerformAction(ctx, "s1", models.ActionRestart))
	c, _ := h.backend.last(http.MethodPost, "/servers/s1/action")
	assert.JSONEq(t, `{"action":"restart"}`, string(c.Body))

	err := svc.PerformAction(ctx, "s1", "explode")
	require.ErrorIs(t, err, common.ErrorInvalidArgument)
	assert.Equal(t, 1, h.backend.count(http.MethodPost, "/servers/s1/action"))
}

func TestKickPlayer(t *testing.T) {
	h, svc := newServers(t)
	ctx := context.Background()
	h.backend.on(http.MethodPost, "/servers/s1/players/manage", http.StatusOK, `{}`)

	require.NoError(t, svc.KickPlayer(ctx, "s1", "Steve", "afk"))
	c, _ := h.backend.last(http.MethodPost, "/servers/s1/players/manage")
	assert.JSONEq(t, `{"action":"kick","player":"Steve","reason":"afk"}`, string(c.Body))

	require.ErrorIs(t, svc.KickPlayer(ctx, "s1", "", "x"), common.ErrorInvalidArgument)
}

func TestDeleteServer_FiltersImmediately(t *testing.T) {
	h, svc := newServers(t)
	ctx := context.Background()
	h.backend.on(http.MethodGet, "/servers", http.StatusOK, `[`+s1JSON+`,{"id":"s2"}]`)
	h.backend.on(http.MethodDelete, "/servers/s1", http.StatusNoContent, ``)
	svc.FetchServers(ctx)

	require.NoError(t, svc.DeleteServer(ctx, "s1"))

	for _, s := range svc.Store().List() {
		assert.NotEqual(t, "s1", s.ID)
	}
	assert.Equal(t, 1, h.backend.count(http.MethodGet, "/servers"), "no refetch")
}

func TestDeleteServer_ErrorKeepsEntry(t *testing.T) {
	h, svc := newServers(t)
	ctx := context.Background()
	h.backend.on(http.MethodGet, "/servers", http.StatusOK, `[`+s1JSON+`]`)
	h.backend.on(http.MethodDelete, "/servers/s1", http.StatusConflict, `{"error":"server running"}`)
	svc.FetchServers(ctx)

	require.ErrorIs(t, svc.DeleteServer(ctx, "s1"), client.ErrValidation)
	assert.Equal(t, 1, svc.Store().Len())
}

func TestSaveSettings_MergesInPlace(t *testing.T) {
	h, svc := newServers(t)
	ctx := context.Background()
	h.backend.on(http.MethodGet, "/servers", http.StatusOK, `[`+s1JSON+`]`)
	h.backend.on(http.MethodGet, "/servers/s1", http.StatusOK, s1JSON)
	h.backend.on(http.MethodGet, "/servers/s1/settings", http.StatusOK, `{"pvp":"true","motd":"hi"}`)
	h.backend.on(http.MethodPost, "/servers/s1/settings", http.StatusOK, `{}`)
	svc.FetchServers(ctx)
	svc.FetchServerByID(ctx, "s1")
	svc.FetchSettings(ctx, "s1")

	require.NoError(t, svc.SaveSettings(ctx, "s1", map[string]any{"pvp": "false"}))

	want := map[string]any{"pvp": false, "motd": "hi"}
	assert.Equal(t, want, svc.Store().Current().Settings)
	listed, _ := svc.Store().Get("s1")
	assert.Equal(t, want, listed.Settings)
}

func TestFileContent(t *testing.T) {
	h, svc := newServers(t)
	ctx := context.Background()
	h.backend.handle(http.MethodGet, "/servers/s1/files/content", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = io.WriteString(w, "path="+r.URL.Query().Get("path"))
	})

	text, err := svc.FetchFileContent(ctx, "s1", "config/a b.toml")
	require.NoError(t, err)
	assert.Equal(t, "path=config/a b.toml", text)

	got, ok := svc.FileContent()
	assert.True(t, ok)
	assert.Equal(t, text, got)
	assert.False(t, svc.Store().IsLoading(store.FlagFileContent))

	h.backend.on(http.MethodGet, "/servers/s1/files/content", http.StatusNotFound, `{"error":"no such file"}`)
	_, err = svc.FetchFileContent(ctx, "s1", "missing.txt")
	require.ErrorIs(t, err, client.ErrNotFound)
	_, ok = svc.FileContent()
	assert.False(t, ok)
}

func TestUpdateFileContent(t *testing.T) {
	h, svc := newServers(t)
	ctx := context.Background()
	h.backend.on(http.MethodPost, "/servers/s1/files/update", http.StatusOK, `{}`)

	require.NoError(t, svc.UpdateFileContent(ctx, "s1", "server.properties", "pvp=true"))
	c, _ := h.backend.last(http.MethodPost, "/servers/s1/files/update")
	assert.JSONEq(t, `{"path":"server.properties","content":"pvp=true"}`, string(c.Body))
}

func TestNormalizeSettings(t *testing.T) {
	in := map[string]any{"a": "true", "b": "false", "c": "TRUE", "d": 3.0, "e": true}
	assert.Equal(t, map[string]any{"a": true, "b": false, "c": "TRUE", "d": 3.0, "e": true}, normalizeSettings(in))
}
