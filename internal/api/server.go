// Package api provides the HTTP API for querying world state.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token (admin control plane).
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/talgya/tradewinds/internal/engine"
	"github.com/talgya/tradewinds/internal/persistence"
	"github.com/talgya/tradewinds/internal/world"
)

// Server serves the world state over HTTP.
type Server struct {
	Sim      *engine.Simulation
	Eng      *engine.Engine
	DB       *persistence.DB
	Addr     string // Listen address, e.g. ":8080"
	WorldID  string
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	// The events endpoint hits SQLite on every request.
	eventsLimiter := NewRateLimiter(600, time.Hour)

	mux := http.NewServeMux()

	// Public endpoints (GET, read-only — anyone can check in on the world).
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/settlements", s.handleSettlements)
	mux.HandleFunc("/api/v1/settlement/", s.handleSettlementDetail)
	mux.HandleFunc("/api/v1/trade", s.handleTrade)
	mux.HandleFunc("/api/v1/map", s.handleMap)
	mux.HandleFunc("/api/v1/events", RateLimitMiddleware(eventsLimiter, s.handleEvents))

	// Admin endpoints (POST, require bearer token).
	mux.HandleFunc("/api/v1/speed", s.adminOnly(s.handleSpeed))

	slog.Info("HTTP API starting", "addr", s.Addr, "admin_auth", s.AdminKey != "")

	go func() {
		handler := corsMiddleware(mux)
		if err := http.ListenAndServe(s.Addr, handler); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Set CORS_ORIGINS env var to a comma-separated list of allowed origins.
// Localhost dev servers are always allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:4173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require bearer token auth on POST requests.
// GET requests pass through (for endpoints that support both GET and POST).
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if s.AdminKey == "" {
				http.Error(w, "admin endpoints disabled (no WORLDSIM_ADMIN_KEY set)", http.StatusForbidden)
				return
			}

			if !s.checkBearerToken(r) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}

		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	towns := s.Sim.Index.WithSystem(world.SystemEconomy)

	var pop int
	var wealth, supplies float64
	for _, t := range towns {
		econ := t.Economy()
		pop += econ.Population
		wealth += econ.Wealth
		supplies += econ.Supplies
	}

	links := 0
	if g := s.Sim.Store.Current(); g != nil {
		links = g.TotalLinks()
	}

	status := map[string]any{
		"world_id":       s.WorldID,
		"tick":           s.Sim.CurrentTick(),
		"sim_time":       engine.SimTime(s.Sim.CurrentTick()),
		"speed":          s.Eng.Speed,
		"running":        s.Eng.Running,
		"settlements":    len(towns),
		"population":     pop,
		"total_wealth":   wealth,
		"total_supplies": supplies,
		"trade_links":    links,
	}
	writeJSON(w, status)
}

func (s *Server) handleSettlements(w http.ResponseWriter, r *http.Request) {
	type settlementSummary struct {
		ID         world.SettlementID `json:"id"`
		Name       string             `json:"name"`
		X          int                `json:"x"`
		Y          int                `json:"y"`
		Population int                `json:"population"`
		Supplies   float64            `json:"supplies"`
		Wealth     float64            `json:"wealth"`
		Prosperity float64            `json:"prosperity"`
		Types      []string           `json:"types"`
		Tags       []string           `json:"tags"`
	}

	var result []settlementSummary
	for _, t := range s.Sim.Index.WithSystem(world.SystemEconomy) {
		econ := t.Economy()
		result = append(result, settlementSummary{
			ID:         econ.ID,
			Name:       econ.Name,
			X:          t.X,
			Y:          t.Y,
			Population: econ.Population,
			Supplies:   econ.Supplies,
			Wealth:     econ.Wealth,
			Prosperity: econ.Prosperity,
			Types:      econ.Types,
			Tags:       t.Tags(),
		})
	}
	writeJSON(w, result)
}

func (s *Server) handleSettlementDetail(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(r.URL.Path, "/")
	if len(parts) < 5 || parts[4] == "" {
		http.Error(w, "missing settlement id", http.StatusBadRequest)
		return
	}
	id, err := strconv.ParseUint(parts[4], 10, 64)
	if err != nil {
		http.Error(w, "invalid settlement id", http.StatusBadRequest)
		return
	}

	byID := make(map[world.SettlementID]*world.Tile)
	for _, t := range s.Sim.Index.WithSystem(world.SystemEconomy) {
		byID[t.Economy().ID] = t
	}

	tile, ok := byID[world.SettlementID(id)]
	if !ok {
		http.Error(w, "settlement not found", http.StatusNotFound)
		return
	}
	econ := tile.Economy()

	stock := make(map[string]float64, len(econ.Stock))
	for c, qty := range econ.Stock {
		stock[c.String()] = qty
	}

	type linkEntry struct {
		Partner     world.SettlementID `json:"partner"`
		PartnerName string             `json:"partner_name"`
		Value       float64            `json:"value"`
		Risk        float64            `json:"risk"`
		Hops        int                `json:"hops"`
	}
	var links []linkEntry
	if g := s.Sim.Store.Current(); g != nil {
		for _, l := range (*g)[econ.ID] {
			name := ""
			if pt, ok := byID[l.Partner]; ok {
				name = pt.Economy().Name
			}
			links = append(links, linkEntry{
				Partner:     l.Partner,
				PartnerName: name,
				Value:       l.Value,
				Risk:        l.Risk,
				Hops:        len(l.Path),
			})
		}
	}

	writeJSON(w, map[string]any{
		"id":             econ.ID,
		"name":           econ.Name,
		"x":              tile.X,
		"y":              tile.Y,
		"types":          econ.Types,
		"population":     econ.Population,
		"supplies":       econ.Supplies,
		"wealth":         econ.Wealth,
		"prosperity":     econ.Prosperity,
		"purchase_power": econ.PurchasePower,
		"production":     econ.Production,
		"consumption":    econ.Consumption,
		"price_index":    econ.PriceIndex,
		"stock":          stock,
		"tags":           tile.Tags(),
		"links":          links,
	})
}

func (s *Server) handleTrade(w http.ResponseWriter, r *http.Request) {
	type flow struct {
		Settlement world.SettlementID `json:"settlement"`
		Partner    world.SettlementID `json:"partner"`
		Value      float64            `json:"value"`
		Risk       float64            `json:"risk"`
		Hops       int                `json:"hops"`
	}

	var flows []flow
	var totalValue float64
	if g := s.Sim.Store.Current(); g != nil {
		for sid, links := range *g {
			for _, l := range links {
				flows = append(flows, flow{
					Settlement: sid,
					Partner:    l.Partner,
					Value:      l.Value,
					Risk:       l.Risk,
					Hops:       len(l.Path),
				})
				totalValue += l.Value
			}
		}
	}
	sort.Slice(flows, func(i, j int) bool {
		if flows[i].Settlement != flows[j].Settlement {
			return flows[i].Settlement < flows[j].Settlement
		}
		return flows[i].Partner < flows[j].Partner
	})

	writeJSON(w, map[string]any{
		"links":       flows,
		"total_links": len(flows),
		"total_value": totalValue,
	})
}

// handleMap returns the full grid for the map renderer.
func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	type tileEntry struct {
		X         int     `json:"x"`
		Y         int     `json:"y"`
		Terrain   string  `json:"terrain"`
		Biome     string  `json:"biome"`
		Elevation float64 `json:"elevation"`
	}

	type settlementEntry struct {
		ID         world.SettlementID `json:"id"`
		Name       string             `json:"name"`
		X          int                `json:"x"`
		Y          int                `json:"y"`
		Population int                `json:"population"`
	}

	grid := s.Sim.Index.Grid()
	tiles := make([]tileEntry, 0, grid.Width*grid.Height)
	grid.ForEach(func(t *world.Tile) {
		tiles = append(tiles, tileEntry{
			X:         t.X,
			Y:         t.Y,
			Terrain:   t.Terrain.String(),
			Biome:     t.Biome.String(),
			Elevation: t.Elevation,
		})
	})

	var settlements []settlementEntry
	for _, t := range s.Sim.Index.WithSystem(world.SystemEconomy) {
		econ := t.Economy()
		settlements = append(settlements, settlementEntry{
			ID:         econ.ID,
			Name:       econ.Name,
			X:          t.X,
			Y:          t.Y,
			Population: econ.Population,
		})
	}

	writeJSON(w, map[string]any{
		"width":       grid.Width,
		"height":      grid.Height,
		"tiles":       tiles,
		"settlements": settlements,
	})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}

	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	rows, err := s.DB.RecentEvents(limit)
	if err != nil {
		slog.Error("event query failed", "error", err)
		http.Error(w, "event query failed", http.StatusInternalServerError)
		return
	}
	if rows == nil {
		rows = []persistence.EventRow{}
	}
	writeJSON(w, rows)
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		var req struct {
			Speed float64 `json:"speed"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.Speed < 0 || req.Speed > 1000 {
			http.Error(w, "speed must be 0-1000", http.StatusBadRequest)
			return
		}
		s.Eng.Speed = req.Speed
		slog.Info("speed changed", "speed", req.Speed)
	}

	writeJSON(w, map[string]float64{"speed": s.Eng.Speed})
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
