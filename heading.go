package qmc5883l

import (
	"math"

	"github.com/viam-labs/qmc5883l/utils"
)

// ComputeHeading converts raw X and Y axis counts into a compass heading in
// degrees, in [0, 360). declinationDegrees is the local magnetic declination,
// added so the result points at true north rather than magnetic north; 0 is
// north, 90 east.
//
// The (0, 0) input has no defined direction, so it reports 0 by convention for
// any declination rather than leaking atan2's implementation-defined result.
func ComputeHeading(x, y int16, declinationDegrees float64) float64 {
	if x == 0 && y == 0 {
		return 0
	}
	heading := math.Atan2(float64(y), float64(x)) + utils.DegToRad(declinationDegrees)
	// Fold into [0, 360): the mod-add-mod handles negative atan2 output and
	// declinations of any magnitude or sign alike.
	return math.Mod(math.Mod(utils.RadToDeg(heading), 360)+360, 360)
}
