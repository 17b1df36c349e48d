package api

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/tradewinds/internal/engine"
	"github.com/talgya/tradewinds/internal/events"
	"github.com/talgya/tradewinds/internal/persistence"
	"github.com/talgya/tradewinds/internal/trade"
	"github.com/talgya/tradewinds/internal/weather"
	"github.com/talgya/tradewinds/internal/world"
)

func testServer(t *testing.T) *Server {
	t.Helper()

	g := world.NewGrid(8, 4)
	g.ForEach(func(tile *world.Tile) {
		tile.SetTerrain(world.TerrainPlains)
		tile.MovementCost = 1
	})

	place := func(x, y int, id world.SettlementID, name string) *world.Tile {
		tile := g.At(x, y)
		tile.SetTerrain(world.TerrainSettlement)
		tile.Attach(&world.Economy{
			ID:         id,
			Name:       name,
			Types:      []string{"farming_village"},
			Population: 100,
			Supplies:   200,
			Wealth:     75,
			Prosperity: 110,
			PriceIndex: 1,
			Stock:      map[world.Commodity]float64{world.CommodityGrain: 4},
		})
		return tile
	}
	a := place(1, 1, 1, "Eastmarch")
	b := place(6, 1, 2, "Westhollow")

	ix := world.NewIndex(g)
	sim := engine.NewSimulation(g, ix, weather.NewModel(1), rand.New(rand.NewSource(1)))
	sim.TickMinute(4242)

	path := []*world.Tile{a, g.At(2, 1), g.At(3, 1), g.At(4, 1), g.At(5, 1), b}
	graph := trade.Graph{
		1: {{Partner: 2, Value: 18, Risk: 1.5, Path: path}},
		2: {{Partner: 1, Value: 18, Risk: 1.5, Path: path}},
	}
	sim.Store.Replace(&graph)

	return &Server{
		Sim:     sim,
		Eng:     engine.NewEngine(),
		WorldID: "test-world",
	}
}

func get(t *testing.T, handler http.HandlerFunc, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	handler(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestHandleStatus(t *testing.T) {
	s := testServer(t)
	w := get(t, s.handleStatus, "/api/v1/status")
	require.Equal(t, http.StatusOK, w.Code)

	var status map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, "test-world", status["world_id"])
	assert.EqualValues(t, 4242, status["tick"])
	assert.EqualValues(t, 2, status["settlements"])
	assert.EqualValues(t, 200, status["population"])
	assert.EqualValues(t, 2, status["trade_links"])
}

func TestHandleSettlements(t *testing.T) {
	s := testServer(t)
	w := get(t, s.handleSettlements, "/api/v1/settlements")
	require.Equal(t, http.StatusOK, w.Code)

	var result []struct {
		ID         uint64   `json:"id"`
		Name       string   `json:"name"`
		X          int      `json:"x"`
		Population int      `json:"population"`
		Types      []string `json:"types"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	require.Len(t, result, 2)
	assert.Equal(t, "Eastmarch", result[0].Name)
	assert.Equal(t, 1, result[0].X)
	assert.Equal(t, []string{"farming_village"}, result[0].Types)
	assert.Equal(t, "Westhollow", result[1].Name)
}

func TestHandleSettlementDetail(t *testing.T) {
	s := testServer(t)

	w := get(t, s.handleSettlementDetail, "/api/v1/settlement/1")
	require.Equal(t, http.StatusOK, w.Code)

	var detail struct {
		Name  string             `json:"name"`
		Stock map[string]float64 `json:"stock"`
		Links []struct {
			Partner     uint64  `json:"partner"`
			PartnerName string  `json:"partner_name"`
			Value       float64 `json:"value"`
			Hops        int     `json:"hops"`
		} `json:"links"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	assert.Equal(t, "Eastmarch", detail.Name)
	assert.InDelta(t, 4, detail.Stock["grain"], 1e-9)
	require.Len(t, detail.Links, 1)
	assert.Equal(t, uint64(2), detail.Links[0].Partner)
	assert.Equal(t, "Westhollow", detail.Links[0].PartnerName)
	assert.Equal(t, 6, detail.Links[0].Hops)

	assert.Equal(t, http.StatusNotFound, get(t, s.handleSettlementDetail, "/api/v1/settlement/99").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, s.handleSettlementDetail, "/api/v1/settlement/abc").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, s.handleSettlementDetail, "/api/v1/settlement/").Code)
}

func TestHandleTrade(t *testing.T) {
	s := testServer(t)
	w := get(t, s.handleTrade, "/api/v1/trade")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Links []struct {
			Settlement uint64  `json:"settlement"`
			Partner    uint64  `json:"partner"`
			Value      float64 `json:"value"`
		} `json:"links"`
		TotalLinks int     `json:"total_links"`
		TotalValue float64 `json:"total_value"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.TotalLinks)
	assert.InDelta(t, 36, resp.TotalValue, 1e-9)
	require.Len(t, resp.Links, 2)
	assert.Equal(t, uint64(1), resp.Links[0].Settlement)
	assert.Equal(t, uint64(2), resp.Links[1].Settlement)
}

func TestHandleMap(t *testing.T) {
	s := testServer(t)
	w := get(t, s.handleMap, "/api/v1/map")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Width  int `json:"width"`
		Height int `json:"height"`
		Tiles  []struct {
			Terrain string `json:"terrain"`
		} `json:"tiles"`
		Settlements []struct {
			Name string `json:"name"`
		} `json:"settlements"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 8, resp.Width)
	assert.Equal(t, 4, resp.Height)
	assert.Len(t, resp.Tiles, 32)
	require.Len(t, resp.Settlements, 2)
	assert.Equal(t, "Eastmarch", resp.Settlements[0].Name)
}

func TestHandleEvents(t *testing.T) {
	s := testServer(t)

	w := get(t, s.handleEvents, "/api/v1/events")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code, "no database wired")

	db, err := persistence.Open(filepath.Join(t.TempDir(), "world.db"))
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.JournalEvents(1440, []events.Fired{
		{X: 1, Y: 1, Name: "drought"},
		{X: 2, Y: 2, Name: "forest_bloom"},
	}))
	s.DB = db

	w = get(t, s.handleEvents, "/api/v1/events?limit=1")
	require.Equal(t, http.StatusOK, w.Code)

	var rows []persistence.EventRow
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "forest_bloom", rows[0].Name)
}

func TestHandleSpeedAdminGate(t *testing.T) {
	s := testServer(t)
	handler := s.adminOnly(s.handleSpeed)

	post := func(auth string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/api/v1/speed", strings.NewReader(`{"speed": 5}`))
		if auth != "" {
			r.Header.Set("Authorization", auth)
		}
		handler(w, r)
		return w
	}

	assert.Equal(t, http.StatusForbidden, post("").Code, "admin disabled without a key")

	s.AdminKey = "sesame"
	assert.Equal(t, http.StatusUnauthorized, post("").Code)
	assert.Equal(t, http.StatusUnauthorized, post("Bearer wrong").Code)

	w := post("Bearer sesame")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5.0, s.Eng.Speed)

	w = get(t, handler, "/api/v1/speed")
	require.Equal(t, http.StatusOK, w.Code, "GET passes through without auth")

	var resp map[string]float64
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 5.0, resp["speed"])
}
