package taxi

import "time"

// Config bundles all tolerances and thresholds of the taxi-network code.
// One instance is created at startup and handed to every component that
// needs it; there is no package-level configuration state.
type Config struct {
	// NodeMergeDistM is the distance below which two nodes are considered
	// the same location and merged while building the network.
	NodeMergeDistM float64

	// MaxSegmentTurnDeg limits how far a centerline may curve away from its
	// first heading before the thinning step cuts a new edge.
	MaxSegmentTurnDeg float64
	// MaxEdgeLenM caps the chord length of a thinned centerline edge.
	MaxEdgeLenM float64

	// JoinMaxDistM is how far a dangling node may be from an edge and still
	// be joined onto it.
	JoinMaxDistM float64
	// JoinAngleTolDeg is the preferred heading tolerance of the join search.
	JoinAngleTolDeg float64
	// JoinAngleTolExtDeg is the second-tier heading tolerance of the join
	// search.
	JoinAngleTolExtDeg float64

	// SnapMaxDistM is the maximum distance a position report may be moved
	// onto an edge. Zero or negative disables snapping.
	SnapMaxDistM float64
	// SnapAngleTolDeg is the preferred heading tolerance of the snap search.
	SnapAngleTolDeg float64
	// SnapAngleTolExtDeg is the second-tier heading tolerance of the snap
	// search.
	SnapAngleTolExtDeg float64
	// SnapExtPenaltyM: a second-tier candidate must be about this much
	// closer than a first-tier one to win.
	SnapExtPenaltyM float64

	// RwyTouchdownFrac is the fraction of remaining runway length (after
	// displaced thresholds) by which the stored touchdown point is inset
	// from each end.
	RwyTouchdownFrac float64
	// RwyMaxHeadingDiffDeg is the maximum deviation between aircraft
	// heading and runway direction when selecting a landing runway.
	RwyMaxHeadingDiffDeg float64
	// RwyVSIBandF widens the acceptable descent-rate band around the
	// model's final-approach VSI (band is [VSI*F, VSI/F]).
	RwyVSIBandF float64
	// ApproachSpeedF caps the speed used for arrival-time estimates at
	// flaps-down speed times this factor.
	ApproachSpeedF float64

	// TaxiSpeedSlackF scales the model's taxi speed when computing the
	// maximum plausible path length between two reports.
	TaxiSpeedSlackF float64
	// MinTimeGap is the smallest timestamp spacing between a runway
	// position and the first synthesized taxi position after it.
	MinTimeGap time.Duration
}

// DefaultConfig returns the standard tolerances. Distances in meters,
// angles in degrees.
func DefaultConfig() *Config {
	return &Config{
		NodeMergeDistM:       2,
		MaxSegmentTurnDeg:    15,
		MaxEdgeLenM:          100,
		JoinMaxDistM:         15,
		JoinAngleTolDeg:      15,
		JoinAngleTolExtDeg:   30,
		SnapMaxDistM:         15,
		SnapAngleTolDeg:      30,
		SnapAngleTolExtDeg:   80,
		SnapExtPenaltyM:      5,
		RwyTouchdownFrac:     0.10,
		RwyMaxHeadingDiffDeg: 15,
		RwyVSIBandF:          2,
		ApproachSpeedF:       1.3,
		TaxiSpeedSlackF:      1.5,
		MinTimeGap:           3 * time.Second,
	}
}
