package dto

import "math"

// Round to a fixed number of decimal places for presentation.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// LatLon converts [lon, lat] route points to [lat, lon] pairs for map clients.
func LatLon(lon, lat float64) [2]float64 { return [2]float64{lat, lon} }
