package n2yo

type response struct {
	Error string `json:"error"`
}

type Info struct {
	SatID             int    `json:"satid"`
	SatName           string `json:"satname"`
	TransactionsCount int    `json:"transactionscount"`
	PassesCount       int    `json:"passescount"`
	SatCount          int    `json:"satcount"`
	Category          string `json:"category"`
}

type PositionsResponse struct {
	response
	Info      Info       `json:"info"`
	Positions []Position `json:"positions"`
}

type Position struct {
	SatLatitude  float64 `json:"satlatitude"`
	SatLongitude float64 `json:"satlongitude"`
	SatAltitude  float64 `json:"sataltitude"` // km
	Azimuth      float64 `json:"azimuth"`
	Elevation    float64 `json:"elevation"`
	Timestamp    int64   `json:"timestamp"` // unix seconds
}

type PassesResponse struct {
	response
	Info   Info   `json:"info"`
	Passes []Pass `json:"passes"`
}

type Pass struct {
	StartAz  float64 `json:"startAz"`
	StartUTC int64   `json:"startUTC"`
	MaxEl    float64 `json:"maxEl"`
	MaxUTC   int64   `json:"maxUTC"`
	EndAz    float64 `json:"endAz"`
	EndUTC   int64   `json:"endUTC"`
	Mag      float64 `json:"mag"`
	Duration int     `json:"duration"` // seconds
}

type AboveResponse struct {
	response
	Info  Info        `json:"info"`
	Above []Satellite `json:"above"`
}

type Satellite struct {
	SatID      int     `json:"satid"`
	SatName    string  `json:"satname"`
	IntDesign  string  `json:"intDesignator"`
	LaunchDate string  `json:"launchDate"`
	SatLat     float64 `json:"satlat"`
	SatLng     float64 `json:"satlng"`
	SatAlt     float64 `json:"satalt"`
}
