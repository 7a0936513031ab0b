// Package compass derives navigational headings from a magnetometer.
package compass

import (
	"context"
	"math"

	movingaverage "github.com/RobinUS2/golang-moving-average"

	"github.com/viam-labs/qmc5883l"
	"github.com/viam-labs/qmc5883l/utils"
)

// A Compass reports a heading in degrees in [0, 360), where 0 is north and 90
// is east.
type Compass interface {
	Heading(ctx context.Context) (float64, error)
}

// FromDriver adapts a magnetometer driver into a Compass. declinationDegrees
// is the local magnetic declination applied to every heading.
func FromDriver(d *qmc5883l.Driver, declinationDegrees float64) Compass {
	return &driverCompass{driver: d, declination: declinationDegrees}
}

type driverCompass struct {
	driver      *qmc5883l.Driver
	declination float64
}

func (c *driverCompass) Heading(ctx context.Context) (float64, error) {
	// Wait for a fresh sample rather than taking whatever is in the data
	// registers; a stale pair of axis counts makes for a stale heading.
	r, err := c.driver.WaitForData(ctx)
	if err != nil {
		return math.NaN(), err
	}
	return qmc5883l.ComputeHeading(r.X, r.Y, c.declination), nil
}

// MedianHeading returns the median of successive headings from the given
// compass, discarding outlier samples.
func MedianHeading(ctx context.Context, device Compass) (float64, error) {
	var headings []float64
	numReadings := 5
	for i := 0; i < numReadings; i++ {
		heading, err := device.Heading(ctx)
		if err != nil {
			return 0, err
		}
		headings = append(headings, heading)
	}
	return utils.Median(headings...), nil
}

// Smoothed wraps a compass with a moving average over the last window
// headings, damping jitter from a noisy sensor.
func Smoothed(c Compass, window int) Compass {
	return &smoothedCompass{compass: c, avg: movingaverage.New(window)}
}

type smoothedCompass struct {
	compass Compass
	avg     *movingaverage.MovingAverage
}

func (s *smoothedCompass) Heading(ctx context.Context) (float64, error) {
	heading, err := s.compass.Heading(ctx)
	if err != nil {
		return math.NaN(), err
	}
	s.avg.Add(heading)
	return s.avg.Avg(), nil
}

// The 16 compass points, clockwise from north at 22.5 degree spacing.
var points = [16]string{
	"N", "NNE", "NE", "ENE",
	"E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW",
	"W", "WNW", "NW", "NNW",
}

// Point returns the compass point nearest to the given heading in degrees.
// Each point owns a 22.5 degree slice centered on it, so anything within
// 11.25 degrees of due north is "N".
func Point(heading float64) string {
	heading = math.Mod(math.Mod(heading, 360)+360, 360)
	return points[int((heading+11.25)/22.5)%16]
}
