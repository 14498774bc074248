// Command aptdump reads apt.dat files and dumps the resulting taxi networks
// for visual inspection: CSV for GPS Visualizer, or OSM XML for JOSM and
// friends. Point it at a single file or at a full X-Plane installation.
package main

import (
	"context"
	"encoding/csv"
	"encoding/xml"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/labstack/gommon/log"
	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"
	"github.com/paulmach/osm"

	"github.com/classicvalues/LiveTraffic/pkg/aptdat"
	"github.com/classicvalues/LiveTraffic/pkg/taxi"
)

const metersPerNM = 1852.0

func main() {
	aptFile := flag.String("apt", "", "path to a single apt.dat file")
	root := flag.String("root", "", "X-Plane installation root; reads the whole scenery stack")
	airport := flag.String("airport", "", "only dump the airport with this id")
	center := flag.String("center", "", "lat,lon acceptance center (default: accept everything)")
	radius := flag.Float64("radius", 50, "acceptance radius around -center in nm")
	format := flag.String("format", "csv", "output format: csv or osm")
	outDir := flag.String("out", ".", "output directory")
	flag.Parse()

	logger := log.New("aptdump")
	logger.SetLevel(log.INFO)

	if (*aptFile == "") == (*root == "") {
		fmt.Fprintln(os.Stderr, "Usage: aptdump (-apt <apt.dat> | -root <X-Plane dir>) [-airport ID] [-center lat,lon [-radius nm]] [-format csv|osm] [-out dir]")
		os.Exit(1)
	}
	if *format != "csv" && *format != "osm" {
		logger.Fatalf("unknown format %q", *format)
	}

	opts := aptdat.Options{Config: taxi.DefaultConfig(), Log: logger}
	if *center != "" {
		var lat, lon float64
		if _, err := fmt.Sscanf(*center, "%f,%f", &lat, &lon); err != nil {
			logger.Fatalf("invalid -center (expected lat,lon): %v", err)
		}
		opts.Box = orbgeo.NewBoundAroundPoint(orb.Point{lon, lat}, *radius*metersPerNM)
	}

	paths := []string{*aptFile}
	if *root != "" {
		paths = aptdat.SceneryAptDats(*root)
	}

	dumped := 0
	emit := func(a *taxi.Airport) {
		if *airport != "" && a.ID != *airport {
			return
		}
		name := filepath.Join(*outDir, a.ID+"."+*format)
		if err := dump(a, name, *format); err != nil {
			logger.Fatalf("writing %s: %v", name, err)
		}
		logger.Infof("%s: %d nodes, %d edges, runways %s -> %s",
			a.ID, len(a.Nodes), len(a.Edges), a.RwysString(), name)
		dumped++
	}

	for _, path := range paths {
		err := aptdat.ParseFile(context.Background(), path, opts, emit)
		if err != nil && !os.IsNotExist(err) {
			logger.Fatalf("%v", err)
		}
	}
	if dumped == 0 {
		logger.Warnf("no matching airport found")
	}
}

func dump(a *taxi.Airport, name, format string) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer f.Close()
	if format == "osm" {
		return dumpOSM(a, f)
	}
	return dumpCSV(a, f)
}

// nodeSymbol picks a GPS-Visualizer waypoint symbol by connectivity, so
// dead ends and junctions are visually distinct.
func nodeSymbol(edges int) string {
	switch edges {
	case 0:
		return "pin"
	case 1:
		return "circle"
	case 2:
		return "square"
	case 3:
		return "triangle"
	case 4:
		return "diamond"
	default:
		return "star"
	}
}

func coord(v float64) string { return strconv.FormatFloat(v, 'f', 8, 64) }

// dumpCSV writes the network in GPS-Visualizer's CSV dialect: every node a
// waypoint, every edge a two-point track.
func dumpCSV(a *taxi.Airport, f *os.File) error {
	w := csv.NewWriter(f)
	if err := w.Write([]string{"type", "BOT", "symbol", "latitude", "longitude", "time", "speed", "course", "name", "desc"}); err != nil {
		return err
	}

	for i := range a.Nodes {
		n := &a.Nodes[i]
		rec := []string{"W", "", nodeSymbol(len(n.Edges)),
			coord(n.Lat), coord(n.Lon), "", "", "",
			"Node " + strconv.Itoa(i),
			strconv.Itoa(len(n.Edges)) + " edges"}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	for i := range a.RwyEnds {
		re := &a.RwyEnds[i]
		rec := []string{"W", "", "pin",
			coord(re.Lat), coord(re.Lon), "", "", "",
			"Rwy " + re.ID, ""}
		if err := w.Write(rec); err != nil {
			return err
		}
	}

	for i := range a.Edges {
		e := &a.Edges[i]
		na, nb := a.NodeA(e), a.NodeB(e)
		start := []string{"T", "1", "",
			coord(na.Lat), coord(na.Lon), "", "",
			strconv.FormatFloat(e.Angle, 'f', 1, 64),
			fmt.Sprintf("%s %d", e.Type, i),
			fmt.Sprintf("nodes %d-%d", e.A, e.B)}
		end := []string{"T", "0", "",
			coord(nb.Lat), coord(nb.Lon), "", "", "", "", ""}
		if err := w.Write(start); err != nil {
			return err
		}
		if err := w.Write(end); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// dumpOSM writes the network as OSM XML: taxi nodes and runway ends become
// OSM nodes, edges become tagged ways, so any OSM editor can render it.
func dumpOSM(a *taxi.Airport, f *os.File) error {
	o := &osm.OSM{}

	// OSM ids are 1-based; runway-end ids follow the taxi nodes.
	rwyBase := int64(len(a.Nodes)) + 1
	for i := range a.Nodes {
		n := &a.Nodes[i]
		o.Nodes = append(o.Nodes, &osm.Node{
			ID: osm.NodeID(int64(i) + 1), Lat: n.Lat, Lon: n.Lon,
		})
	}
	for i := range a.RwyEnds {
		re := &a.RwyEnds[i]
		o.Nodes = append(o.Nodes, &osm.Node{
			ID: osm.NodeID(rwyBase + int64(i)), Lat: re.Lat, Lon: re.Lon,
			Tags: osm.Tags{{Key: "ref", Value: re.ID}},
		})
	}

	for i := range a.Edges {
		e := &a.Edges[i]
		aID := int64(e.A) + 1
		bID := int64(e.B) + 1
		aeroway := "taxiway"
		if e.Type == taxi.Runway {
			aID = rwyBase + int64(e.A)
			bID = rwyBase + int64(e.B)
			aeroway = "runway"
		}
		o.Ways = append(o.Ways, &osm.Way{
			ID: osm.WayID(int64(i) + 1),
			Nodes: osm.WayNodes{
				{ID: osm.NodeID(aID)},
				{ID: osm.NodeID(bID)},
			},
			Tags: osm.Tags{{Key: "aeroway", Value: aeroway}},
		})
	}

	data, err := xml.MarshalIndent(o, "", "  ")
	if err != nil {
		return err
	}
	if _, err := f.WriteString(xml.Header); err != nil {
		return err
	}
	_, err = f.Write(data)
	return err
}
