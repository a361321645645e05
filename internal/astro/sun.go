package astro

import (
	"fmt"
	"math"
	"time"
)

// Twilight elevation thresholds in degrees.
//
// These are the conventional definitions: conditions are darker than the
// named twilight when the sun's elevation is below the threshold.
const (
	// CivilTwilight is the elevation below which civil twilight ends.
	CivilTwilight = -6.0

	// NauticalTwilight is the elevation below which nautical twilight ends.
	NauticalTwilight = -12.0

	// AstronomicalTwilight is the elevation below which the sky is fully dark.
	AstronomicalTwilight = -18.0
)

// Coordinate bounds for validation.
const (
	maxLatitude  = 90.0
	maxLongitude = 180.0
)

// unixEpochJulianDay is the Julian day number of the Unix epoch.
const unixEpochJulianDay = 2440587.5

// Elevation returns the sun's elevation above the horizon in degrees for
// an observer at the given location and instant.
//
// Positive values mean the sun is above the horizon, negative below.
// Longitude is positive east of Greenwich. The result includes the
// standard atmospheric refraction correction, so it matches what an
// observer would actually see near the horizon.
//
// The calculation follows the NOAA solar position algorithm, accurate to
// well under a tenth of a degree for dates in the current era - far
// tighter than any sensible twilight threshold requires.
//
// Parameters:
//   - latitude: Observer latitude in degrees (-90 to +90)
//   - longitude: Observer longitude in degrees (-180 to +180, east positive)
//   - t: The instant to evaluate (converted to UTC internally)
//
// Returns:
//   - float64: Solar elevation in degrees
//   - error: If the coordinates are out of range
func Elevation(latitude, longitude float64, t time.Time) (float64, error) {
	if math.IsNaN(latitude) || latitude < -maxLatitude || latitude > maxLatitude {
		return 0, fmt.Errorf("%w: latitude %v", ErrInvalidCoordinates, latitude)
	}
	if math.IsNaN(longitude) || longitude < -maxLongitude || longitude > maxLongitude {
		return 0, fmt.Errorf("%w: longitude %v", ErrInvalidCoordinates, longitude)
	}

	utc := t.UTC()

	// Julian centuries since J2000.0
	jd := julianDay(utc)
	jc := (jd - 2451545.0) / 36525.0

	// Solar coordinates
	geomMeanLong := math.Mod(280.46646+jc*(36000.76983+jc*0.0003032), 360)
	geomMeanAnom := 357.52911 + jc*(35999.05029-0.0001537*jc)
	eccentricity := 0.016708634 - jc*(0.000042037+0.0000001267*jc)

	eqOfCentre := math.Sin(radians(geomMeanAnom))*(1.914602-jc*(0.004817+0.000014*jc)) +
		math.Sin(radians(2*geomMeanAnom))*(0.019993-0.000101*jc) +
		math.Sin(radians(3*geomMeanAnom))*0.000289

	trueLong := geomMeanLong + eqOfCentre
	apparentLong := trueLong - 0.00569 - 0.00478*math.Sin(radians(125.04-1934.136*jc))

	meanObliquity := 23 + (26+(21.448-jc*(46.815+jc*(0.00059-jc*0.001813)))/60)/60
	obliquity := meanObliquity + 0.00256*math.Cos(radians(125.04-1934.136*jc))

	declination := degrees(math.Asin(math.Sin(radians(obliquity)) * math.Sin(radians(apparentLong))))

	// Equation of time in minutes
	varY := math.Tan(radians(obliquity / 2))
	varY *= varY
	eqOfTime := 4 * degrees(varY*math.Sin(2*radians(geomMeanLong))-
		2*eccentricity*math.Sin(radians(geomMeanAnom))+
		4*eccentricity*varY*math.Sin(radians(geomMeanAnom))*math.Cos(2*radians(geomMeanLong))-
		0.5*varY*varY*math.Sin(4*radians(geomMeanLong))-
		1.25*eccentricity*eccentricity*math.Sin(2*radians(geomMeanAnom)))

	// Hour angle of the sun for this observer
	minutesUTC := float64(utc.Hour())*60 + float64(utc.Minute()) + float64(utc.Second())/60
	trueSolarTime := math.Mod(minutesUTC+eqOfTime+4*longitude+1440, 1440)

	hourAngle := trueSolarTime/4 - 180
	if trueSolarTime/4 < 0 {
		hourAngle = trueSolarTime/4 + 180
	}

	// Zenith angle and geometric elevation
	zenith := degrees(math.Acos(
		math.Sin(radians(latitude))*math.Sin(radians(declination)) +
			math.Cos(radians(latitude))*math.Cos(radians(declination))*math.Cos(radians(hourAngle)),
	))
	elevation := 90 - zenith

	return elevation + refractionCorrection(elevation), nil
}

// julianDay converts a UTC instant to a Julian day number.
func julianDay(t time.Time) float64 {
	return float64(t.UnixNano())/float64(24*time.Hour) + unixEpochJulianDay
}

// refractionCorrection returns the atmospheric refraction correction in
// degrees for a geometric elevation, per the NOAA algorithm.
//
// Refraction lifts the apparent sun by about half a degree at the
// horizon and is negligible high in the sky.
func refractionCorrection(elevation float64) float64 {
	var correction float64 // arcseconds

	switch {
	case elevation > 85:
		correction = 0
	case elevation > 5:
		tanElev := math.Tan(radians(elevation))
		correction = 58.1/tanElev - 0.07/math.Pow(tanElev, 3) + 0.000086/math.Pow(tanElev, 5)
	case elevation > -0.575:
		correction = 1735 + elevation*(-518.2+elevation*(103.4+elevation*(-12.79+elevation*0.711)))
	default:
		correction = -20.772 / math.Tan(radians(elevation))
	}

	return correction / 3600
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

func degrees(rad float64) float64 { return rad * 180 / math.Pi }
