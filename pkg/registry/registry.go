// Package registry holds the airports read from apt.dat around the current
// observer position and answers the two questions asked per tracking update:
// onto which taxiway does this position report snap, and which runway is
// this aircraft about to land on. Airports come and go as the observer
// moves; a background refresh keeps the set current.
package registry

import (
	"context"
	"io"
	"math"
	"sync"

	"github.com/labstack/gommon/log"
	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"
	"github.com/tidwall/rtree"
	"golang.org/x/sync/semaphore"

	"github.com/classicvalues/LiveTraffic/pkg/geo"
	"github.com/classicvalues/LiveTraffic/pkg/taxi"
)

// AircraftState is the aircraft data runway selection works on.
type AircraftState struct {
	// Pos is the aircraft's last known go-to position.
	Pos taxi.Position
	// SpeedMS is the ground speed in meters per second.
	SpeedMS float64
	// Model supplies the aircraft-type performance numbers.
	Model taxi.FlightModel
}

// Registry is the set of currently loaded airports, indexed by id and, for
// point queries, by bounding box. All methods are safe for concurrent use.
type Registry struct {
	cfg *taxi.Config
	log *log.Logger
	// root is the simulator installation the scenery scan starts from.
	root string

	mu    sync.Mutex
	apts  map[string]*taxi.Airport
	index rtree.RTreeG[string]
	// aptsAdded is set on every insert; it tells the host an altitude
	// pass with its terrain probe is due.
	aptsAdded bool

	// refreshSem admits one background scan at a time.
	refreshSem  *semaphore.Weighted
	lastScan    orb.Point
	hasLastScan bool

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates an empty registry for the simulator installation at root.
// A nil logger disables logging.
func New(root string, cfg *taxi.Config, logger *log.Logger) *Registry {
	if cfg == nil {
		cfg = taxi.DefaultConfig()
	}
	if logger == nil {
		logger = log.New("registry")
		logger.SetOutput(io.Discard)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Registry{
		cfg:        cfg,
		log:        logger,
		root:       root,
		apts:       make(map[string]*taxi.Airport),
		refreshSem: semaphore.NewWeighted(1),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Close stops a running background refresh and waits for it to finish.
func (r *Registry) Close() {
	r.cancel()
	// The semaphore drains once the refresh goroutine is done.
	if err := r.refreshSem.Acquire(context.Background(), 1); err == nil {
		r.refreshSem.Release(1)
	}
}

// Len returns the number of loaded airports.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.apts)
}

// Has reports whether an airport id is loaded.
func (r *Registry) Has(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.apts[id]
	return ok
}

// Insert adds an airport, replacing a previous one with the same id.
func (r *Registry) Insert(a *taxi.Airport) {
	b := a.Bounds()
	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.apts[a.ID]; ok {
		ob := old.Bounds()
		r.index.Delete([2]float64(ob.Min), [2]float64(ob.Max), old.ID)
	}
	r.apts[a.ID] = a
	r.index.Insert([2]float64(b.Min), [2]float64(b.Max), a.ID)
	r.aptsAdded = true
}

// Purge drops all airports whose bounds do not intersect the given region.
func (r *Registry) Purge(keep orb.Bound) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, a := range r.apts {
		b := a.Bounds()
		if b.Intersects(keep) {
			continue
		}
		r.index.Delete([2]float64(b.Min), [2]float64(b.Max), id)
		delete(r.apts, id)
		r.log.Debugf("removed %s at %v", id, b)
	}
	r.log.Debugf("done purging, %d airports left", len(r.apts))
}

// findContaining returns a loaded airport whose bounds contain the point,
// or nil. Caller must hold r.mu.
func (r *Registry) findContaining(p orb.Point) *taxi.Airport {
	var found *taxi.Airport
	r.index.Search([2]float64(p), [2]float64(p),
		func(min, max [2]float64, id string) bool {
			if a := r.apts[id]; a.Contains(p) {
				found = a
				return false
			}
			return true
		})
	return found
}

// Find returns a loaded airport whose bounds contain the point, or nil.
// The airport is shared; treat it as read-only and go through Snap for
// position processing.
func (r *Registry) Find(p orb.Point) *taxi.Airport {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.findContaining(p)
}

// Snap snaps a position report onto the taxi network of whichever loaded
// airport contains it; see taxi.Airport.Snap for the contract. It reports
// false, with the position tagged unavailable, when no airport matches.
func (r *Registry) Snap(pos, prev *taxi.Position, mdl taxi.FlightModel) ([]taxi.Position, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a := r.findContaining(pos.Point())
	if a == nil {
		pos.EdgeIdx = taxi.EdgeUnavail
		return nil, false
	}
	origLat, origLon := pos.Lat, pos.Lon
	inserted, ok := a.Snap(pos, prev, mdl)
	if ok {
		r.log.Debugf("%s: snapped (%.7f, %.7f) to (%.7f, %.7f)",
			a.ID, origLat, origLon, pos.Lat, pos.Lon)
	}
	return inserted, ok
}

// FindRunway selects the runway endpoint the aircraft is most plausibly
// about to land on, across all loaded airports, and returns the touchdown
// position with an estimated arrival time.
//
// A runway qualifies when its direction is within the configured tolerance
// of the aircraft's heading, the bearing to its endpoint requires the least
// turn among all candidates, and reaching it at approach speed implies a
// vertical speed within the model's plausible descent band. Runway ends
// without a probed altitude cannot be evaluated and are skipped.
func (r *Registry) FindRunway(state AircraftState) (taxi.Position, bool) {
	mdl := state.Model
	vsiMin := mdl.VSIFinalFpm * r.cfg.RwyVSIBandF * taxi.MSPerFpm
	vsiMax := mdl.VSIFinalFpm / r.cfg.RwyVSIBandF * taxi.MSPerFpm

	from := state.Pos
	headSearch := geo.HalfNormalizeHeading(from.Heading)
	inverted := geo.NormalizeHeading(from.Heading) >= 180

	speed := math.Min(state.SpeedMS,
		mdl.FlapsDownSpeedKt*r.cfg.ApproachSpeedF/taxi.KtPerMS)

	var (
		bestApt   *taxi.Airport
		bestEnd   *taxi.RwyEnd
		bestAngle float64
		bestDTs   float64
	)
	bestHeadingDiff := r.cfg.RwyMaxHeadingDiffDeg

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.apts {
		for _, eIdx := range a.FindEdgesForHeading(headSearch, r.cfg.RwyMaxHeadingDiffDeg, taxi.Runway) {
			e := &a.Edges[eIdx]
			ep := a.RwyEndA(e)
			if inverted {
				ep = a.RwyEndB(e)
			}
			if math.IsNaN(ep.AltM) {
				continue
			}

			// Of several candidates, prefer the one requiring the
			// least turn from the current heading.
			brng := orbgeo.Bearing(from.Point(), ep.Point())
			headingDiff := math.Abs(geo.HeadingDiff(from.Heading, brng))
			if headingDiff > bestHeadingDiff {
				continue
			}

			dist := orbgeo.Distance(from.Point(), ep.Point())
			dTs := dist / speed
			vsi := (ep.AltM - from.AltM) / dTs
			if vsi < vsiMin || vsi > vsiMax {
				continue
			}

			bestApt = a
			bestEnd = ep
			bestAngle = e.Angle
			bestDTs = dTs
			bestHeadingDiff = headingDiff
		}
	}

	if bestEnd == nil {
		r.log.Debugf("no runway for heading %.0f at (%.5f, %.5f)",
			from.Heading, from.Lat, from.Lon)
		return taxi.Position{}, false
	}

	ret := taxi.Position{
		Lat:     bestEnd.Lat,
		Lon:     bestEnd.Lon,
		AltM:    bestEnd.AltM,
		TS:      from.TS.Add(durSecs(bestDTs)),
		Heading: bestAngle,
		Phase:   taxi.PhaseTouchDown,
		EdgeIdx: taxi.EdgeUnavail,
	}
	if inverted {
		ret.Heading = geo.NormalizeHeading(bestAngle + 180)
	}
	r.log.Debugf("found runway %s/%s for heading %.0f", bestApt.ID, bestEnd.ID, from.Heading)
	return ret, true
}

// NeedsAltitudes reports whether airports were inserted since the last
// altitude pass.
func (r *Registry) NeedsAltitudes() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.aptsAdded
}

// UpdateAltitudes runs the host's terrain probe over all loaded airports,
// filling in still-unknown ground altitudes. Call when NeedsAltitudes
// reports true; the probe typically only works on the host's main thread.
func (r *Registry) UpdateAltitudes(probe taxi.AltitudeProbe) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.apts {
		a.UpdateAltitudes(probe)
	}
	r.aptsAdded = false
	r.log.Debugf("finished updating ground altitudes")
}
