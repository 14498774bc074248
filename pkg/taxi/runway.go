package taxi

import (
	"math"

	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"
)

// AddRunway adds both endpoints of a runway as read from a `100` record,
// plus the runway edge between them.
//
// The stored endpoints are not the physical pavement ends but the landing
// aim points: each end is moved inward by its displaced threshold and then
// by the configured fraction of the remaining length, and the stored runway
// length shrinks accordingly.
func (a *Airport) AddRunway(lat1, lon1, displaced1 float64, id1 string,
	lat2, lon2, displaced2 float64, id2 string) {

	p1 := orb.Point{lon1, lat1}
	p2 := orb.Point{lon2, lat2}
	angle := orbgeo.Bearing(p1, p2)
	dist := orbgeo.Distance(p1, p2)

	dist -= displaced1 + displaced2
	inset := dist * a.cfg.RwyTouchdownFrac
	p1 = orbgeo.PointAtBearingAndDistance(p1, angle, displaced1+inset)
	p2 = orbgeo.PointAtBearingAndDistance(p2, angle+180, displaced2+inset)
	dist *= 1 - 2*a.cfg.RwyTouchdownFrac

	a.extendBounds(p1.Lat(), p1.Lon())
	a.RwyEnds = append(a.RwyEnds, RwyEnd{
		TaxiNode: TaxiNode{Lat: p1.Lat(), Lon: p1.Lon()},
		ID:       id1,
		AltM:     math.NaN(),
	})
	a.extendBounds(p2.Lat(), p2.Lon())
	a.RwyEnds = append(a.RwyEnds, RwyEnd{
		TaxiNode: TaxiNode{Lat: p2.Lat(), Lon: p2.Lon()},
		ID:       id2,
		AltM:     math.NaN(),
	})

	e := Edge{
		Type:  Runway,
		A:     len(a.RwyEnds) - 2,
		B:     len(a.RwyEnds) - 1,
		Angle: coordAngle(p1.Lat(), p1.Lon(), p2.Lat(), p2.Lon()),
		LenM:  dist,
	}
	e.normalize()
	a.Edges = append(a.Edges, e)
}

// AltitudeProbe resolves ground altitude at a location. The implementation
// is injected by the host (typically a simulator terrain probe) and is only
// usable on the foreground thread, which is why parsing leaves altitudes
// unresolved.
type AltitudeProbe interface {
	GroundAltM(lat, lon float64) (float64, error)
}

// UpdateAltitudes fills in the airport's and its runway endpoints' ground
// altitudes where still unknown. Probe failures leave the altitude NaN for a
// later pass.
func (a *Airport) UpdateAltitudes(probe AltitudeProbe) {
	if math.IsNaN(a.AltM) && a.hasBounds {
		c := a.bounds.Center()
		if alt, err := probe.GroundAltM(c.Lat(), c.Lon()); err == nil {
			a.AltM = alt
		}
	}
	for i := range a.RwyEnds {
		re := &a.RwyEnds[i]
		if math.IsNaN(re.AltM) {
			if alt, err := probe.GroundAltM(re.Lat, re.Lon); err == nil {
				re.AltM = alt
			}
		}
	}
}
