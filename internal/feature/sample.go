package feature

import "strconv"

type place struct {
	name     string
	lat, lon float64
}

// Ten large Indian cities, five Indian extremes and five neighbouring cities
// where AQI often exceeds 100.
var defaultCities = []place{
	{"Delhi", 28.6139, 77.2090},
	{"Mumbai", 19.0760, 72.8777},
	{"Bengaluru", 12.9716, 77.5946},
	{"Kolkata", 22.5726, 88.3639},
	{"Chennai", 13.0827, 80.2707},
	{"Hyderabad", 17.3850, 78.4867},
	{"Pune", 18.5204, 73.8567},
	{"Ahmedabad", 23.0225, 72.5714},
	{"Jaipur", 26.9124, 75.7873},
	{"Lucknow", 26.8467, 80.9462},
	{"Varanasi", 25.3176, 82.9739},
	{"Kanpur", 26.4499, 80.3319},
	{"Gurugram", 28.4595, 77.0266},
	{"Shimla", 31.1048, 77.1734},
	{"Gangtok", 27.3389, 88.6065},
	{"Karachi, Pakistan", 24.8607, 67.0011},
	{"Dhaka, Bangladesh", 23.8103, 90.4125},
	{"Kathmandu, Nepal", 27.7172, 85.3240},
	{"Colombo, Sri Lanka", 6.9271, 79.8612},
	{"Thimphu, Bhutan", 27.4728, 89.6390},
}

var sampleStops = []place{
	{"Market St & 5th St", 37.7840, -122.4070},
	{"Geary Blvd & 33rd Ave", 37.7800, -122.4920},
	{"Mission St & 16th St", 37.7650, -122.4190},
	{"Van Ness Ave & O’Farrell St", 37.7850, -122.4200},
	{"Fulton St & 8th Ave", 37.7760, -122.4650},
	{"Powell St & Geary St", 37.7870, -122.4080},
	{"19th Ave & Holloway Ave", 37.7210, -122.4750},
	{"Lombard St & Fillmore St", 37.7990, -122.4350},
	{"Embarcadero & Folsom St", 37.7900, -122.3910},
	{"Balboa St & 25th Ave", 37.7765, -122.4840},
	{"Divisadero St & Sutter St", 37.7855, -122.4400},
	{"Castro St & 24th St", 37.7510, -122.4350},
}

// DefaultCities returns the built-in AQI city list in display order.
func DefaultCities() []Feature {
	return placesToFeatures(defaultCities)
}

// SampleStops returns twelve San Francisco bus stops.
func SampleStops() []Feature {
	return placesToFeatures(sampleStops)
}

func placesToFeatures(places []place) []Feature {
	out := make([]Feature, len(places))
	for i, p := range places {
		out[i] = NewPoint(strconv.Itoa(i+1), p.name, p.lat, p.lon)
	}
	return out
}
