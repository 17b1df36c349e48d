package world

// SettlementID identifies a settlement across the whole world.
type SettlementID uint64

// SystemKind enumerates the per-tile subsystem slots.
type SystemKind uint8

const (
	SystemEconomy SystemKind = iota
	SystemWeather
	SystemHumidity
	SystemSoil
	SystemEco
	SystemEcoRisk
	SystemRelations
	SystemPersonality
	SystemEvents
	systemKindCount
)

var systemKindNames = [...]string{
	SystemEconomy:     "economy",
	SystemWeather:     "weather",
	SystemHumidity:    "humidity",
	SystemSoil:        "soil",
	SystemEco:         "ecosystem",
	SystemEcoRisk:     "eco_risk",
	SystemRelations:   "relations",
	SystemPersonality: "personality",
	SystemEvents:      "events",
}

func (k SystemKind) String() string {
	if int(k) < len(systemKindNames) {
		return systemKindNames[k]
	}
	return "unknown"
}

// SystemKindByName resolves an API name back to a kind.
func SystemKindByName(name string) (SystemKind, bool) {
	for i, n := range systemKindNames {
		if n == name {
			return SystemKind(i), true
		}
	}
	return 0, false
}

// System is the common interface of every tile subsystem record.
type System interface {
	Kind() SystemKind
}

// Economy is the settlement state attached to settlement tiles.
type Economy struct {
	ID            SettlementID
	Name          string
	Types         []string
	Population    int
	Supplies      float64
	Wealth        float64
	Prosperity    float64
	PurchasePower float64
	Production    float64
	Consumption   float64
	PriceIndex    float64
	Stock         map[Commodity]float64
}

func (*Economy) Kind() SystemKind { return SystemEconomy }

// HasType reports whether the settlement carries the given archetype.
func (e *Economy) HasType(name string) bool {
	for _, t := range e.Types {
		if t == name {
			return true
		}
	}
	return false
}

// Weather is the rolling local weather on a tile.
type Weather struct {
	State     WeatherState
	Intensity float64
}

func (*Weather) Kind() SystemKind { return SystemWeather }

// Humidity tracks a tile's moisture around a climate baseline.
type Humidity struct {
	Base    float64
	Current float64
}

func (*Humidity) Kind() SystemKind { return SystemHumidity }

// Soil carries terrain fertility in [0,1].
type Soil struct {
	Fertility float64
}

func (*Soil) Kind() SystemKind { return SystemSoil }

// Eco is the three-level food web population on a wilderness tile.
type Eco struct {
	Producers  float64
	Herbivores float64
	Carnivores float64
}

func (*Eco) Kind() SystemKind { return SystemEco }

// EcoRisk is the derived hazard score of a tile's ecosystem.
type EcoRisk struct {
	Value float64
}

func (*EcoRisk) Kind() SystemKind { return SystemEcoRisk }

// Relation is one settlement's stance toward another.
type Relation struct {
	Valence  float64
	Security float64
}

// Relations is the stance table a settlement keeps about its peers.
type Relations struct {
	Table map[SettlementID]*Relation
}

func (*Relations) Kind() SystemKind { return SystemRelations }

// Get returns the stance toward id, or neutral zeros when unknown.
func (r *Relations) Get(id SettlementID) Relation {
	if rel, ok := r.Table[id]; ok {
		return *rel
	}
	return Relation{}
}

// Observe folds a new valence observation into the stance toward id.
func (r *Relations) Observe(id SettlementID, valence, security float64) {
	if r.Table == nil {
		r.Table = make(map[SettlementID]*Relation)
	}
	rel, ok := r.Table[id]
	if !ok {
		rel = &Relation{}
		r.Table[id] = rel
	}
	rel.Valence = clampSigned(0.9*rel.Valence + 0.1*valence)
	rel.Security = clampSigned(0.9*rel.Security + 0.1*security)
}

func clampSigned(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}

// Personality trait names shared across subsystems.
const (
	TraitDominance     = "dominance"
	TraitAgreeableness = "agreeableness"
	TraitAnxiety       = "anxiety_sensitivity"
	TraitNovelty       = "novelty_seek"
	TraitSelfWorth     = "self_worth"
)

// Personality holds a settlement's behavioural traits, each in [0,1].
type Personality struct {
	Traits map[string]float64
}

func (*Personality) Kind() SystemKind { return SystemPersonality }

// Trait returns the named trait, defaulting to 0.5 when unset.
func (p *Personality) Trait(name string) float64 {
	if v, ok := p.Traits[name]; ok {
		return v
	}
	return 0.5
}

// EventTimer tracks one active event's countdown on a tile.
type EventTimer struct {
	Remaining int
	Duration  int
}

// ActiveEvents is the set of events currently running on a tile.
type ActiveEvents struct {
	Timers map[string]*EventTimer
}

func (*ActiveEvents) Kind() SystemKind { return SystemEvents }

// Active reports whether the named event is currently running.
func (a *ActiveEvents) Active(name string) bool {
	_, ok := a.Timers[name]
	return ok
}
