package geo

import "math"

// EarthRadiusKM is Earth's radius in kilometers for Haversine calculation.
const EarthRadiusKM = 6371.0088

// HaversineKM calculates the great-circle distance between two points
// on Earth in kilometers using the Haversine formula.
func HaversineKM(lat1, lng1, lat2, lng2 float64) float64 {
	const degToRad = math.Pi / 180
	dLat := (lat2 - lat1) * degToRad
	dLng := (lng2 - lng1) * degToRad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1*degToRad)*math.Cos(lat2*degToRad)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusKM * c
}

// IsWithinRadiusKM checks if two coordinates are within the specified radius in kilometers.
func IsWithinRadiusKM(lat1, lng1, lat2, lng2, radiusKM float64) bool {
	return HaversineKM(lat1, lng1, lat2, lng2) <= radiusKM
}
