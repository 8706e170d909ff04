package crisisctl

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI serves the resource endpoints the seeder touches.
type fakeAPI struct {
	mu        sync.Mutex
	resources []map[string]any
	created   []map[string]any
	updated   map[string]string
	actors    []string
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/resources", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		f.mu.Lock()
		defer f.mu.Unlock()
		json.NewEncoder(w).Encode(map[string]any{"items": f.resources, "count": len(f.resources)})
	})
	mux.HandleFunc("POST /api/v1/resources", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		if body["category"] == "boat" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"validation error"}`))
			return
		}
		f.mu.Lock()
		f.created = append(f.created, body)
		f.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{"id": "res_new0000001", "name": body["name"]})
	})
	mux.HandleFunc("PUT /api/v1/resources/{id}/availability", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		f.updated[r.PathValue("id")] = body["availability"]
		f.mu.Unlock()
		json.NewEncoder(w).Encode(map[string]any{"id": r.PathValue("id")})
	})
	return mux
}

func (f *fakeAPI) record(r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.actors = append(f.actors, r.Header.Get("X-Actor-ID")+"/"+r.Header.Get("X-Actor-Role"))
}

func TestSeed_CreatesAndReconciles(t *testing.T) {
	api := &fakeAPI{
		updated: map[string]string{},
		resources: []map[string]any{
			{"id": "res_engine0001", "name": "Engine 1", "availability": "available"},
			{"id": "res_ladder0001", "name": "Ladder 1", "availability": "available"},
			{"id": "res_medic00001", "name": "Medic 1", "availability": "in_use"},
		},
	}
	srv := httptest.NewServer(api.handler())
	defer srv.Close()

	cfg := &SeedConfig{
		APIURL:  srv.URL,
		ActorID: "ops-admin",
		Resources: []ResourceDef{
			{Name: "Engine 1", Category: "vehicle"},
			{Name: "Ladder 1", Category: "vehicle", Availability: "maintenance"},
			{Name: "Medic 1", Category: "vehicle", Availability: "unavailable"},
			{Name: "Generator 4", Category: "equipment", Location: "Depot B"},
		},
	}

	var out bytes.Buffer
	require.NoError(t, Seed(context.Background(), cfg, &out))

	require.Len(t, api.created, 1)
	assert.Equal(t, "Generator 4", api.created[0]["name"])
	assert.Equal(t, "Depot B", api.created[0]["location"])
	assert.Equal(t, map[string]string{"res_ladder0001": "maintenance"}, api.updated)
	assert.Contains(t, out.String(), `Resource "Engine 1": exists`)
	assert.Contains(t, out.String(), `Resource "Medic 1": in use`)
	for _, a := range api.actors {
		assert.Equal(t, "ops-admin/admin", a)
	}
}

func TestSeed_APIError(t *testing.T) {
	api := &fakeAPI{updated: map[string]string{}}
	srv := httptest.NewServer(api.handler())
	defer srv.Close()

	cfg := &SeedConfig{
		APIURL:    srv.URL,
		ActorID:   "ops-admin",
		Resources: []ResourceDef{{Name: "Dinghy", Category: "boat"}},
	}

	err := Seed(context.Background(), cfg, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `create resource "Dinghy"`)
	assert.Contains(t, err.Error(), "status 400")
}

func writeSeedFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "resources.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadSeedConfig(t *testing.T) {
	path := writeSeedFile(t, strings.TrimSpace(`
actor_id: ops-admin
resources:
  - name: Engine 1
    category: vehicle
    location: Station 4
  - name: Thermal camera
    category: equipment
    availability: maintenance
`))

	cfg, err := LoadSeedConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8090", cfg.APIURL)
	assert.Equal(t, "ops-admin", cfg.ActorID)
	require.Len(t, cfg.Resources, 2)
	assert.Equal(t, "Station 4", cfg.Resources[0].Location)
	assert.Equal(t, "maintenance", cfg.Resources[1].Availability)
}

func TestLoadSeedConfig_ActorFromEnv(t *testing.T) {
	t.Setenv("CRISIS_ACTOR_ID", "env-admin")
	cfg, err := LoadSeedConfig(writeSeedFile(t, "resources: []\n"))
	require.NoError(t, err)
	assert.Equal(t, "env-admin", cfg.ActorID)
}

func TestLoadSeedConfig_Errors(t *testing.T) {
	t.Setenv("CRISIS_ACTOR_ID", "")

	_, err := LoadSeedConfig(writeSeedFile(t, "resources: []\n"))
	assert.ErrorContains(t, err, "no actor")

	_, err = LoadSeedConfig(writeSeedFile(t, "actor_id: a\nresources:\n  - category: vehicle\n"))
	assert.ErrorContains(t, err, "name is required")

	_, err = LoadSeedConfig(writeSeedFile(t, "actor_id: a\nresources:\n  - name: X\n  - name: X\n"))
	assert.ErrorContains(t, err, "listed twice")

	_, err = LoadSeedConfig(writeSeedFile(t, "actor_id: [\n"))
	assert.ErrorContains(t, err, "parse config")

	_, err = LoadSeedConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "read config")
}
