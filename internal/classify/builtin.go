package classify

// Built-in table names.
const (
	TableElevation = "elevation"
	TableAQI       = "aqi"
)

// Elevation splits mean elevation (meters) at 1500.
func Elevation() *Table {
	return MustTable(TableElevation,
		Bucket{Upper: 1500, Label: "Low", Color: "red"},
		Bucket{Upper: Unbounded, Label: "High", Color: "green"},
	)
}

// AQI is the six-band US EPA air quality index scale.
func AQI() *Table {
	return MustTable(TableAQI,
		Bucket{Upper: 50, Label: "Good", Color: "green"},
		Bucket{Upper: 100, Label: "Moderate", Color: "yellow"},
		Bucket{Upper: 150, Label: "Unhealthy for Sensitive Groups", Color: "orange"},
		Bucket{Upper: 200, Label: "Unhealthy", Color: "red"},
		Bucket{Upper: 300, Label: "Very Unhealthy", Color: "purple"},
		Bucket{Upper: Unbounded, Label: "Hazardous", Color: "darkred"},
	)
}
