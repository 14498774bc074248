package registry

import (
	"math"
	"testing"
	"time"

	"github.com/paulmach/orb"

	"github.com/classicvalues/LiveTraffic/pkg/taxi"
)

var testT0 = time.Date(2025, 3, 14, 15, 0, 0, 0, time.UTC)

// testAirport builds an airport with one west-east runway starting at
// (lat, lon) and a short taxiway north of it.
func testAirport(t *testing.T, id string, lat, lon float64) *taxi.Airport {
	t.Helper()
	a := taxi.NewAirport(id, nil)
	a.AddRunway(lat, lon, 0, "09", lat, lon+0.01, 0, "27")
	n1 := a.AddNode(lat+0.0005, lon+0.011, taxi.NodeNone)
	n2 := a.AddNode(lat+0.0005, lon+0.015, taxi.NodeNone)
	if _, ok := a.AddEdge(n1, n2, math.NaN()); !ok {
		t.Fatal("AddEdge failed")
	}
	a.Finalize()
	return a
}

type fixedProbe float64

func (p fixedProbe) GroundAltM(lat, lon float64) (float64, error) { return float64(p), nil }

func TestInsertHasPurge(t *testing.T) {
	r := New(t.TempDir(), nil, nil)
	defer r.Close()

	r.Insert(testAirport(t, "AAAA", 0, 0))
	r.Insert(testAirport(t, "BBBB", 2, 2))
	if r.Len() != 2 || !r.Has("AAAA") || !r.Has("BBBB") {
		t.Fatalf("Len = %d, Has(AAAA) = %v, Has(BBBB) = %v",
			r.Len(), r.Has("AAAA"), r.Has("BBBB"))
	}

	// Re-inserting an id replaces, not duplicates.
	r.Insert(testAirport(t, "AAAA", 0, 0))
	if r.Len() != 2 {
		t.Errorf("Len = %d after re-insert, want 2", r.Len())
	}

	if a := r.Find(orb.Point{0.005, 0}); a == nil || a.ID != "AAAA" {
		t.Errorf("Find inside AAAA = %v", a)
	}
	if a := r.Find(orb.Point{1, 1}); a != nil {
		t.Errorf("Find in empty area = %v", a)
	}

	// A region overlapping only AAAA's bounds keeps AAAA.
	r.Purge(orb.Bound{Min: orb.Point{-0.1, -0.1}, Max: orb.Point{0.1, 0.1}})
	if r.Len() != 1 || !r.Has("AAAA") || r.Has("BBBB") {
		t.Errorf("after purge: Len = %d, Has(AAAA) = %v, Has(BBBB) = %v",
			r.Len(), r.Has("AAAA"), r.Has("BBBB"))
	}
}

func TestSnapFindsContainingAirport(t *testing.T) {
	r := New(t.TempDir(), nil, nil)
	defer r.Close()
	r.Insert(testAirport(t, "AAAA", 0, 0))

	// On the taxiway, a couple of meters off.
	pos := taxi.NewPosition(0.00052, 0.0120, 100, testT0, 90)
	if _, ok := r.Snap(&pos, nil, taxi.DefaultFlightModel()); !ok {
		t.Fatal("Snap found no edge inside the airport")
	}
	if math.Abs(pos.Lat-0.0005) > 1e-7 {
		t.Errorf("snapped lat = %v, want 0.0005", pos.Lat)
	}

	// Far away from any loaded airport.
	pos = taxi.NewPosition(1, 1, 100, testT0, 90)
	if _, ok := r.Snap(&pos, nil, taxi.DefaultFlightModel()); ok {
		t.Error("Snap matched outside all airports")
	}
	if pos.EdgeIdx != taxi.EdgeUnavail {
		t.Errorf("EdgeIdx = %d, want EdgeUnavail", pos.EdgeIdx)
	}
}

func TestNeedsAltitudes(t *testing.T) {
	r := New(t.TempDir(), nil, nil)
	defer r.Close()

	if r.NeedsAltitudes() {
		t.Error("empty registry wants altitudes")
	}
	r.Insert(testAirport(t, "AAAA", 0, 0))
	if !r.NeedsAltitudes() {
		t.Fatal("insert did not request an altitude pass")
	}
	r.UpdateAltitudes(fixedProbe(10))
	if r.NeedsAltitudes() {
		t.Error("altitude pass did not clear the request")
	}
}

func TestFindRunway(t *testing.T) {
	r := New(t.TempDir(), nil, nil)
	defer r.Close()
	apt := testAirport(t, "AAAA", 0, 0)
	r.Insert(apt)
	r.UpdateAltitudes(fixedProbe(10))

	// ~5.5km west of the runway, heading east, descending from 300m.
	state := AircraftState{
		Pos:     taxi.NewPosition(0, -0.05, 300, testT0, 90),
		SpeedMS: 70,
		Model:   taxi.DefaultFlightModel(),
	}
	got, ok := r.FindRunway(state)
	if !ok {
		t.Fatal("FindRunway found nothing")
	}
	want := &apt.RwyEnds[0]
	if want.ID != "09" {
		t.Fatalf("test setup: RwyEnds[0] is %q", want.ID)
	}
	if got.Lat != want.Lat || got.Lon != want.Lon {
		t.Errorf("touchdown at (%v, %v), want runway end 09 (%v, %v)",
			got.Lat, got.Lon, want.Lat, want.Lon)
	}
	if got.AltM != 10 {
		t.Errorf("AltM = %v, want 10", got.AltM)
	}
	if got.Phase != taxi.PhaseTouchDown {
		t.Errorf("Phase = %v, want PhaseTouchDown", got.Phase)
	}
	if math.Abs(got.Heading-90) > 1 {
		t.Errorf("Heading = %v, want ~90", got.Heading)
	}
	if !got.TS.After(state.Pos.TS) {
		t.Errorf("arrival %v not after %v", got.TS, state.Pos.TS)
	}

	// Opposite direction lands on the reciprocal end.
	state.Pos = taxi.NewPosition(0, 0.06, 300, testT0, 270)
	got, ok = r.FindRunway(state)
	if !ok {
		t.Fatal("FindRunway found nothing for the reciprocal")
	}
	if rev := &apt.RwyEnds[1]; got.Lat != rev.Lat || got.Lon != rev.Lon {
		t.Errorf("touchdown at (%v, %v), want runway end 27", got.Lat, got.Lon)
	}
	if math.Abs(got.Heading-270) > 1 {
		t.Errorf("Heading = %v, want ~270", got.Heading)
	}
}

func TestFindRunwayRejects(t *testing.T) {
	r := New(t.TempDir(), nil, nil)
	defer r.Close()
	r.Insert(testAirport(t, "AAAA", 0, 0))

	mdl := taxi.DefaultFlightModel()

	// Runway altitudes not probed yet: no candidate can be evaluated.
	state := AircraftState{
		Pos:     taxi.NewPosition(0, -0.05, 300, testT0, 90),
		SpeedMS: 70,
		Model:   mdl,
	}
	if _, ok := r.FindRunway(state); ok {
		t.Error("FindRunway matched a runway without altitude")
	}
	r.UpdateAltitudes(fixedProbe(10))

	// Heading across the runway direction.
	state.Pos = taxi.NewPosition(0, -0.05, 300, testT0, 0)
	if _, ok := r.FindRunway(state); ok {
		t.Error("FindRunway matched despite 90 deg heading difference")
	}

	// Level flight: implied VSI outside the descent band.
	state.Pos = taxi.NewPosition(0, -0.05, 10, testT0, 90)
	if _, ok := r.FindRunway(state); ok {
		t.Error("FindRunway matched without plausible descent")
	}
}
