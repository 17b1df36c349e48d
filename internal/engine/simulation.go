// Simulation ties together all world systems and runs them each tick.
package engine

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sort"

	"github.com/talgya/tradewinds/internal/eco"
	"github.com/talgya/tradewinds/internal/economy"
	"github.com/talgya/tradewinds/internal/events"
	"github.com/talgya/tradewinds/internal/persistence"
	"github.com/talgya/tradewinds/internal/social"
	"github.com/talgya/tradewinds/internal/trade"
	"github.com/talgya/tradewinds/internal/weather"
	"github.com/talgya/tradewinds/internal/world"
)

// Simulation holds the complete world state and wires systems together.
type Simulation struct {
	Grid    *world.Grid
	Index   *world.Index
	Store   *trade.Store
	Params  trade.Params
	Weather *weather.Model
	Rng     *rand.Rand

	// Persistence sinks, optional. A nil DB or TradeLog disables the
	// corresponding writes so tests can run purely in memory.
	DB       *persistence.DB
	TradeLog *persistence.TradeLog

	Events   []Event // Recent events (ring buffer, trimmed weekly)
	LastTick uint64  // Most recent tick processed
}

// CurrentTick returns the most recently processed tick number.
func (s *Simulation) CurrentTick() uint64 {
	return s.LastTick
}

// Event is a notable occurrence in the world.
type Event struct {
	Tick        uint64 `json:"tick"`
	Description string `json:"description"`
	Category    string `json:"category"` // "ecology", "banditry", etc.
}

// EmitEvent records a notable occurrence in the in-memory ring.
func (s *Simulation) EmitEvent(e Event) {
	s.Events = append(s.Events, e)
}

// NewSimulation creates a Simulation from generated components.
func NewSimulation(grid *world.Grid, ix *world.Index, wm *weather.Model, rng *rand.Rand) *Simulation {
	return &Simulation{
		Grid:    grid,
		Index:   ix,
		Store:   &trade.Store{},
		Params:  trade.DefaultParams(),
		Weather: wm,
		Rng:     rng,
	}
}

// TickMinute runs every tick (1 sim-minute): counter bookkeeping only,
// all systems run on coarser layers.
func (s *Simulation) TickMinute(tick uint64) {
	s.LastTick = tick
}

// TickHour runs every sim-hour: weather advances across the grid.
func (s *Simulation) TickHour(tick uint64) {
	s.Weather.Step(s.Index, int(tick/TicksPerSimHour))
}

// TickDay runs every sim-day: economy, ecology, events, trade settlement.
func (s *Simulation) TickDay(tick uint64) {
	day := int(tick / TicksPerSimDay)

	economy.SimulateTick(s.Index)
	economy.Perturb(s.Index, s.Rng)
	events.TickAll(s.Index)

	// Ecology moves on a slower clock than the markets.
	if day%2 == 0 {
		eco.SimulateTick(s.Index, day, s.Rng)
		s.journal(tick, eco.CheckEvents(s.Index), "ecology")
		s.journal(tick, events.SpawnBandits(s.Index, s.Rng), "banditry")
	}

	// Re-score standing routes against today's conditions before the
	// routes pay out.
	s.Store.RefreshRisks()
	trade.ApplyEffects(s.Index, s.Store)

	if s.DB != nil {
		towns := s.Index.WithSystem(world.SystemEconomy)
		if err := s.DB.SaveSnapshots(tick, day, towns); err != nil {
			slog.Error("snapshot save failed", "error", err)
		}
	}

	s.dailyReport(tick)
}

// TickWeek runs every sim-week: relation drift, then the network rebuild.
func (s *Simulation) TickWeek(tick uint64) {
	// Drift observes the outgoing network before it is replaced.
	if g := s.Store.Current(); g != nil {
		social.DriftTick(s.Index, *g)
	}

	next := trade.Synthesize(s.Grid, s.Index, s.Params)
	s.Store.Replace(next)

	if s.TradeLog != nil {
		if err := s.TradeLog.Append(tradeRows(tick, next)); err != nil {
			slog.Error("trade journal failed", "error", err)
		}
	}

	slog.Info("weekly summary",
		"tick", tick,
		"time", SimTime(tick),
		"trade_links", next.TotalLinks(),
		"events_this_week", len(s.Events),
	)
	// Trim old events to prevent unbounded growth (keep last 1000).
	if len(s.Events) > 1000 {
		s.Events = s.Events[len(s.Events)-1000:]
	}
}

// journal persists fired events and mirrors them into the ring.
func (s *Simulation) journal(tick uint64, fired []events.Fired, category string) {
	if len(fired) == 0 {
		return
	}
	if s.DB != nil {
		if err := s.DB.JournalEvents(tick, fired); err != nil {
			slog.Error("event journal failed", "error", err)
		}
	}
	for _, f := range fired {
		s.Events = append(s.Events, Event{
			Tick:        tick,
			Description: fmt.Sprintf("%s at (%d, %d)", f.Name, f.X, f.Y),
			Category:    category,
		})
	}
}

func (s *Simulation) dailyReport(tick uint64) {
	var pop int
	var wealth, supplies float64
	towns := s.Index.WithSystem(world.SystemEconomy)
	for _, t := range towns {
		econ := t.Economy()
		pop += econ.Population
		wealth += econ.Wealth
		supplies += econ.Supplies
	}

	links := 0
	if g := s.Store.Current(); g != nil {
		links = g.TotalLinks()
	}

	eventCounts := make(map[string]int)
	for _, e := range s.Events {
		eventCounts[e.Category]++
	}

	slog.Info("daily report",
		"tick", tick,
		"time", SimTime(tick),
		"settlements", len(towns),
		"population", pop,
		"total_wealth", fmt.Sprintf("%.1f", wealth),
		"total_supplies", fmt.Sprintf("%.1f", supplies),
		"trade_links", links,
		"events_ecology", eventCounts["ecology"],
		"events_banditry", eventCounts["banditry"],
	)
}

// tradeRows flattens a network into journal rows, ordered for stable
// output.
func tradeRows(tick uint64, g *trade.Graph) []persistence.TradeRow {
	rows := make([]persistence.TradeRow, 0, g.TotalLinks())
	for sid, links := range *g {
		for _, l := range links {
			rows = append(rows, persistence.TradeRow{
				Tick:       tick,
				Settlement: sid,
				Partner:    l.Partner,
				Value:      l.Value,
				Risk:       l.Risk,
				Hops:       len(l.Path),
			})
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Settlement != rows[j].Settlement {
			return rows[i].Settlement < rows[j].Settlement
		}
		return rows[i].Partner < rows[j].Partner
	})
	return rows
}
