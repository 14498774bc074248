package registry

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"

	"github.com/classicvalues/LiveTraffic/pkg/aptdat"
)

const metersPerNM = 1852.0

// Refresh makes sure the loaded airports cover the surroundings of the
// observer. If the observer moved at least radiusM since the last scan, a
// background scan over twice that radius starts and Refresh reports true.
// Nothing happens while a previous scan is still running or the observer
// hasn't moved far enough.
//
// Call it periodically from the host's update loop; it never blocks.
func (r *Registry) Refresh(observer orb.Point, radiusM float64) bool {
	if !r.refreshSem.TryAcquire(1) {
		return false
	}
	if r.hasLastScan && orbgeo.Distance(r.lastScan, observer) < radiusM {
		r.refreshSem.Release(1)
		return false
	}
	r.lastScan = observer
	r.hasLastScan = true
	go r.load(observer, radiusM*2)
	return true
}

// load purges out-of-range airports and reads all apt.dat files of the
// installation, filtered to the search box. Runs on its own goroutine,
// holding the refresh slot.
func (r *Registry) load(center orb.Point, radiusM float64) {
	defer r.refreshSem.Release(1)

	box := orbgeo.NewBoundAroundPoint(center, radiusM)
	r.log.Debugf("reading apt.dat for airports %.1fnm around (%.5f, %.5f)",
		radiusM/metersPerNM, center.Lat(), center.Lon())
	r.Purge(box)

	opts := aptdat.Options{
		Box:    box,
		Known:  r.Has,
		Config: r.cfg,
		Log:    r.log,
	}
	opened := 0
	for _, path := range aptdat.SceneryAptDats(r.root) {
		if r.ctx.Err() != nil {
			return
		}
		err := aptdat.ParseFile(r.ctx, path, opts, r.Insert)
		switch {
		case err == nil:
			r.log.Debugf("read apt.dat from %s", path)
			opened++
		case os.IsNotExist(err):
			// Scenery packs without their own apt.dat are common.
		case errors.Is(err, context.Canceled):
			return
		default:
			r.log.Errorf("reading %s: %v", path, err)
		}
	}

	if opened == 0 {
		r.log.Warnf("could not open any apt.dat file under %s", r.root)
		return
	}
	r.log.Debugf("done reading %d apt.dat files, %d airports loaded", opened, r.Len())
}

func durSecs(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
