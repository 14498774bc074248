// Package aptdat reads X-Plane `apt.dat` files and builds taxi networks
// from them. Only four record types matter here: airport headers (1),
// runways (100), taxi centerlines (120 with 111-116 nodes), and taxi route
// networks (1201/1202). Everything else is skipped. Airports are emitted
// through a callback as soon as they are complete, so a caller can stream
// the multi-hundred-megabyte default file without holding it in memory.
package aptdat

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/labstack/gommon/log"
	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"

	"github.com/classicvalues/LiveTraffic/pkg/geo"
	"github.com/classicvalues/LiveTraffic/pkg/taxi"
)

// coordEps is the epsilon below which two subsequent centerline nodes count
// as the same point. Real files carry plenty of exactly repeated nodes.
const coordEps = 1e-6

// maxRouteNodeIdx caps the node indices accepted from 1201 records, so a
// corrupt file cannot make the node store balloon.
const maxRouteNodeIdx = 1_000_000

// Options configures a parse run.
type Options struct {
	// Box is the acceptance area: an airport is only kept if its first
	// runway lies inside. A zero box disables the filter.
	Box orb.Bound
	// Known reports whether an airport id is already held elsewhere and
	// can be skipped. May be nil.
	Known func(id string) bool
	// Config supplies the network tolerances; nil for defaults.
	Config *taxi.Config
	// Log receives per-airport debug output. May be nil.
	Log *log.Logger
}

// EmitFunc receives each finalized airport.
type EmitFunc func(*taxi.Airport)

// ParseFile opens one apt.dat file and parses it. A missing file is the
// caller's to detect via os.IsNotExist on the returned error; scenery packs
// routinely list packs without their own apt.dat.
func ParseFile(ctx context.Context, path string, opts Options, emit EmitFunc) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := Parse(ctx, f, opts, emit); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// netwType tracks which kind of taxi network an airport's records carry.
// Centerlines win over route networks: once centerline edges exist, 1201 and
// 1202 records are ignored, and the other way round.
type netwType uint8

const (
	netwUnknown netwType = iota
	netwCenterlines
	netwRoutes
)

type parser struct {
	sc   *bufio.Scanner
	lnNr int

	box    orb.Bound
	useBox bool
	known  func(string) bool
	cfg    *taxi.Config
	log    *log.Logger
	emit   EmitFunc

	// Ids emitted during this run; duplicate definitions further down the
	// file (or in later files of the same run) lose.
	seen map[string]bool
}

// Parse reads one apt.dat stream and emits every airport that ends up with
// an id, runways, and taxi edges. Invalid or filtered airports are dropped
// silently. The context is polled between lines.
func Parse(ctx context.Context, r io.Reader, opts Options, emit EmitFunc) error {
	if opts.Config == nil {
		opts.Config = taxi.DefaultConfig()
	}
	if opts.Log == nil {
		opts.Log = log.New("aptdat")
		opts.Log.SetOutput(io.Discard)
	}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	p := &parser{
		sc:     sc,
		box:    opts.Box,
		useBox: opts.Box.Min != opts.Box.Max,
		known:  opts.Known,
		cfg:    opts.Config,
		log:    opts.Log,
		emit:   emit,
		seen:   make(map[string]bool),
	}
	if err := p.run(ctx); err != nil {
		return err
	}
	return sc.Err()
}

// bearing returns the initial bearing from point 1 to point 2.
func bearing(lat1, lon1, lat2, lon2 float64) float64 {
	return orbgeo.Bearing(orb.Point{lon1, lat1}, orb.Point{lon2, lat2})
}

func (p *parser) nextLine() (string, bool) {
	if !p.sc.Scan() {
		return "", false
	}
	p.lnNr++
	return p.sc.Text(), true
}

func isSep(c byte) bool { return c == ' ' || c == '\t' }

func (p *parser) run(ctx context.Context) error {
	// An airport currently being collected; nil while skipping an airport
	// that is known, duplicate, or out of area.
	var apt *taxi.Airport
	netw := netwUnknown

	var ln string
	held := false // ln was handed back by the centerline reader
	for {
		if held {
			held = false
		} else {
			var more bool
			if ln, more = p.nextLine(); !more {
				break
			}
		}
		if p.lnNr%512 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if ln == "" {
			continue
		}

		switch {
		// Airport header: "1  elev  rowcode  deprecated  id  name..."
		case len(ln) > 10 && ln[0] == '1' && isSep(ln[1]):
			p.finishAirport(apt)
			apt = nil
			netw = netwUnknown
			fields := strings.Fields(ln)
			if len(fields) >= 5 {
				id := fields[4]
				if !p.seen[id] && (p.known == nil || !p.known(id)) {
					apt = taxi.NewAirport(id, p.cfg)
				}
			}

		// Runway: location info, and the area filter for new airports.
		case apt != nil && len(ln) > 20 && strings.HasPrefix(ln, "100") && isSep(ln[3]):
			if !p.readRunway(apt, ln) {
				apt = nil
			}

		// Taxi records only count once runways are known.
		case apt != nil && apt.HasRwyEnds() && strings.HasPrefix(ln, "120"):
			if netw != netwRoutes && (len(ln) == 3 || isSep(ln[3])) {
				// A 120 header opens a block of 111-116 centerline
				// nodes; the reader hands back the first line that no
				// longer belongs to the block.
				var more bool
				ln, more = p.readCenterline(apt)
				held = more
				if apt.HasEdges() {
					netw = netwCenterlines
				}
			} else if netw != netwCenterlines {
				p.readRouteRecord(apt, ln, &netw)
			}
		}
	}

	p.finishAirport(apt)
	return nil
}

// readRunway handles a "100" record. It reports false if the runway proves
// the airport to be outside the acceptance area, which discards the airport.
func (p *parser) readRunway(apt *taxi.Airport, ln string) bool {
	fields := strings.Fields(ln)
	if len(fields) != 26 {
		return true
	}
	lat1, err1 := strconv.ParseFloat(fields[9], 64)
	lon1, err2 := strconv.ParseFloat(fields[10], 64)
	if err1 != nil || err2 != nil ||
		lat1 < -90 || lat1 > 90 || lon1 < -180 || lon1 >= 180 {
		return true
	}

	// The first runway decides whether the airport is of interest; once
	// edges exist the airport is accepted for good.
	if !apt.HasEdges() && p.useBox && !p.box.Contains(orb.Point{lon1, lat1}) {
		return false
	}

	disp1, err1 := strconv.ParseFloat(fields[11], 64)
	lat2, err2 := strconv.ParseFloat(fields[18], 64)
	lon2, err3 := strconv.ParseFloat(fields[19], 64)
	disp2, err4 := strconv.ParseFloat(fields[20], 64)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		return true
	}
	apt.AddRunway(lat1, lon1, disp1, fields[8], lat2, lon2, disp2, fields[17])
	return true
}

// readRouteRecord handles 1201 (route node) and 1202 (route edge) records.
func (p *parser) readRouteRecord(apt *taxi.Airport, ln string, netw *netwType) {
	fields := strings.Fields(ln)
	switch fields[0] {
	case "1201":
		if len(fields) < 5 {
			return
		}
		lat, err1 := strconv.ParseFloat(fields[1], 64)
		lon, err2 := strconv.ParseFloat(fields[2], 64)
		idx, err3 := strconv.Atoi(fields[4])
		if err1 != nil || err2 != nil || err3 != nil ||
			lat < -90 || lat > 90 || lon < -180 || lon >= 180 {
			return
		}
		if idx < 0 || idx > maxRouteNodeIdx {
			p.log.Warnf("apt.dat line %d: route node index %d out of range", p.lnNr, idx)
			return
		}
		*netw = netwRoutes
		apt.AddNodeAt(lat, lon, idx)

	case "1202":
		if len(fields) < 3 {
			return
		}
		n1, err1 := strconv.Atoi(fields[1])
		n2, err2 := strconv.Atoi(fields[2])
		if err1 != nil || err2 != nil {
			return
		}
		if _, ok := apt.AddEdge(n1, n2, math.NaN()); !ok {
			p.log.Debugf("apt.dat line %d: route edge %d-%d references undefined nodes",
				p.lnNr, n1, n2)
		}
	}
}

// readCenterline reads the 111-116 node lines following a "120" header and
// adds the resulting taxiway segments to the airport. It returns the first
// line that does not belong to the block, to be processed by the caller, and
// whether such a line exists.
//
// Nodes are collected raw first, then thinned: subsequent nodes are combined
// into one edge until the centerline turns too far from the edge's first
// heading or the chord grows too long. Real files describe curves with
// nodes every few meters; snapping does not need that resolution.
func (p *parser) readCenterline(apt *taxi.Airport) (string, bool) {
	type latLon struct{ lat, lon float64 }
	var nodes []latLon

	var ln string
	var more bool
loop:
	for {
		if ln, more = p.nextLine(); !more {
			break
		}
		if ln == "" {
			continue
		}
		fields := strings.Fields(ln)
		if len(fields) < 3 {
			break
		}
		code, err := strconv.Atoi(fields[0])
		if err != nil || code < 111 || code > 116 {
			break
		}

		// The line-type code sits in different fields depending on the
		// node code; 115/116 carry none and count as centerline.
		typeCode := 1
		switch {
		case (code == 111 || code == 113) && len(fields) >= 4:
			typeCode, err = strconv.Atoi(fields[3])
		case (code == 112 || code == 114) && len(fields) >= 6:
			typeCode, err = strconv.Atoi(fields[5])
		}
		switch {
		case err != nil:
			break loop
		case typeCode == 1, typeCode == 7, typeCode == 51, typeCode == 57:
			// taxiway centerline, with or without lights
		default:
			break loop
		}

		lat, err1 := strconv.ParseFloat(fields[1], 64)
		lon, err2 := strconv.ParseFloat(fields[2], 64)
		if err1 != nil || err2 != nil {
			break
		}
		if n := len(nodes); n == 0 ||
			math.Abs(nodes[n-1].lat-lat) >= coordEps ||
			math.Abs(nodes[n-1].lon-lon) >= coordEps {
			nodes = append(nodes, latLon{lat, lon})
		}
	}

	if len(nodes) < 2 {
		return ln, more
	}

	// Thinning: walk the raw nodes and only materialize an edge once the
	// next leg turns away from the edge's reference heading or the chord
	// from the edge's start grows too long.
	idxFirst := apt.AddNode(nodes[0].lat, nodes[0].lon, taxi.NodeNone)
	idxA := idxFirst
	firstAngle := math.NaN()
	maxEdge2 := p.cfg.MaxEdgeLenM * p.cfg.MaxEdgeLenM
	for i := 0; i+1 < len(nodes); i++ {
		b, c := nodes[i], nodes[i+1]
		bcAngle := geo.NormalizeHeading(bearing(b.lat, b.lon, c.lat, c.lon))
		if math.IsNaN(firstAngle) {
			firstAngle = bcAngle
			continue
		}
		a := &apt.Nodes[idxA]
		if geo.DistSqr(a.Lat, a.Lon, c.lat, c.lon) > maxEdge2 ||
			math.Abs(geo.HeadingDiff(firstAngle, bcAngle)) > p.cfg.MaxSegmentTurnDeg {
			idxB := apt.AddNode(b.lat, b.lon, taxi.NodeNone)
			if idxA != idxB {
				apt.AddEdge(idxA, idxB, math.NaN())
				idxA = idxB
				firstAngle = math.NaN()
			}
		}
	}

	// The last raw node always becomes a network node. Never merging it
	// with the very first one guarantees at least one edge per block.
	idxB := apt.AddNode(nodes[len(nodes)-1].lat, nodes[len(nodes)-1].lon, idxFirst)
	if idxA != idxB {
		apt.AddEdge(idxA, idxB, math.NaN())
	}
	return ln, more
}

// finishAirport finalizes and emits a completely read airport; incomplete
// ones are dropped.
func (p *parser) finishAirport(apt *taxi.Airport) {
	if apt == nil {
		return
	}
	if !apt.Valid() {
		if apt.HasID() {
			p.log.Debugf("apt.dat: dropping %s, no usable taxi network", apt.ID)
		}
		return
	}
	apt.Finalize()
	p.seen[apt.ID] = true
	p.log.Debugf("apt.dat: adding %s with %d nodes, %d edges, runways %s",
		apt.ID, len(apt.Nodes), len(apt.Edges), apt.RwysString())
	p.emit(apt)
}
