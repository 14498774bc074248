package aptdat

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

const (
	// sceneryPacksIni lists the installed scenery packs in priority order.
	sceneryPacksIni = "Custom Scenery/scenery_packs.ini"
	// sceneryLnBegin starts every active pack line; disabled packs use
	// SCENERY_PACK_DISABLED and fall through the prefix check.
	sceneryLnBegin = "SCENERY_PACK "
	// aptDatLoc is the apt.dat location below a scenery pack.
	aptDatLoc = "Earth nav data/apt.dat"
	// resourcesDefault is the pack holding the global default apt.dat.
	resourcesDefault = "Resources/default scenery/default apt dat"
)

// SceneryAptDats returns the paths of all apt.dat files to read for an
// X-Plane installation at root, in scenery priority order: the active packs
// from scenery_packs.ini first, the global default file last. Paths are not
// checked for existence; packs without their own apt.dat are common and the
// reader skips them.
func SceneryAptDats(root string) []string {
	var paths []string

	f, err := os.Open(filepath.Join(root, filepath.FromSlash(sceneryPacksIni)))
	if err == nil {
		defer f.Close()
		sc := bufio.NewScanner(f)
		for sc.Scan() {
			ln := sc.Text()
			if len(ln) <= len(sceneryLnBegin) || !strings.HasPrefix(ln, sceneryLnBegin) {
				continue
			}
			pack := filepath.FromSlash(strings.TrimSpace(ln[len(sceneryLnBegin):]))
			if !filepath.IsAbs(pack) {
				pack = filepath.Join(root, pack)
			}
			paths = append(paths, filepath.Join(pack, filepath.FromSlash(aptDatLoc)))
		}
	}

	return append(paths,
		filepath.Join(root, filepath.FromSlash(resourcesDefault), filepath.FromSlash(aptDatLoc)))
}
