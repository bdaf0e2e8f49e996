package nasa

import "encoding/json"

// APOD is the Astronomy Picture of the Day as returned by planetary/apod
type APOD struct {
	Title       string `json:"title"`
	Explanation string `json:"explanation"`
	URL         string `json:"url"`
	HDURL       string `json:"hdurl"`
	MediaType   string `json:"media_type"` // "image" or "video"
	Date        string `json:"date"`
	Copyright   string `json:"copyright"`
}

// NEOFeed is the neo/rest/v1/feed response; objects are keyed by date
type NEOFeed struct {
	ElementCount     int                         `json:"element_count"`
	NearEarthObjects map[string][]NearEarthObject `json:"near_earth_objects"`
}

type NearEarthObject struct {
	ID                             string            `json:"id"`
	Name                           string            `json:"name"`
	AbsoluteMagnitudeH             float64           `json:"absolute_magnitude_h"`
	EstimatedDiameter              EstimatedDiameter `json:"estimated_diameter"`
	IsPotentiallyHazardousAsteroid bool              `json:"is_potentially_hazardous_asteroid"`
	CloseApproachData              []CloseApproach   `json:"close_approach_data"`
}

type EstimatedDiameter struct {
	Kilometers DiameterRange `json:"kilometers"`
}

type DiameterRange struct {
	Min float64 `json:"estimated_diameter_min"`
	Max float64 `json:"estimated_diameter_max"`
}

// CloseApproach carries velocity and distance as decimal strings
type CloseApproach struct {
	CloseApproachDate string `json:"close_approach_date"`
	RelativeVelocity  struct {
		KilometersPerSecond string `json:"kilometers_per_second"`
	} `json:"relative_velocity"`
	MissDistance struct {
		Kilometers string `json:"kilometers"`
	} `json:"miss_distance"`
}

// LinkedEvent references another DONKI activity
type LinkedEvent struct {
	ActivityID string `json:"activityID"`
}

// SolarFlare is a DONKI FLR record
type SolarFlare struct {
	FlrID           string        `json:"flrID"`
	BeginTime       string        `json:"beginTime"`
	PeakTime        string        `json:"peakTime"`
	EndTime         *string       `json:"endTime"`
	ClassType       string        `json:"classType"`
	SourceLocation  string        `json:"sourceLocation"`
	ActiveRegionNum *int          `json:"activeRegionNum"`
	LinkedEvents    []LinkedEvent `json:"linkedEvents"`
}

// GeomagneticStorm is a DONKI GST record
type GeomagneticStorm struct {
	GstID        string        `json:"gstID"`
	StartTime    string        `json:"startTime"`
	AllKpIndex   []KpIndex     `json:"allKpIndex"`
	LinkedEvents []LinkedEvent `json:"linkedEvents"`
}

type KpIndex struct {
	ObservedTime string  `json:"observedTime"`
	KpIndex      float64 `json:"kpIndex"`
	Source       string  `json:"source"`
}

// CoronalMassEjection is a DONKI CME record
type CoronalMassEjection struct {
	ActivityID     string        `json:"activityID"`
	StartTime      string        `json:"startTime"`
	SourceLocation string        `json:"sourceLocation"`
	Note           string        `json:"note"`
	LinkedEvents   []LinkedEvent `json:"linkedEvents"`
}

// EONETResponse is the EONET v3 events listing
type EONETResponse struct {
	Title  string       `json:"title"`
	Events []EONETEvent `json:"events"`
}

type EONETEvent struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description *string         `json:"description"`
	Link        string          `json:"link"`
	Categories  []EONETCategory `json:"categories"`
	Geometry    []EONETGeometry `json:"geometry"`
}

type EONETCategory struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// EONETGeometry keeps coordinates raw: points and polygons nest differently
type EONETGeometry struct {
	MagnitudeValue *float64        `json:"magnitudeValue"`
	MagnitudeUnit  *string         `json:"magnitudeUnit"`
	Date           string          `json:"date"`
	Type           string          `json:"type"`
	Coordinates    json.RawMessage `json:"coordinates"`
}
