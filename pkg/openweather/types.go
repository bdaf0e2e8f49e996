package openweather

type Condition struct {
	ID          int    `json:"id"`
	Main        string `json:"main"` // "Clear", "Clouds", ...
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type Main struct {
	Temp      float64 `json:"temp"`
	FeelsLike float64 `json:"feels_like"`
	Pressure  float64 `json:"pressure"`
	Humidity  float64 `json:"humidity"`
}

type Clouds struct {
	All int `json:"all"` // percent
}

type Wind struct {
	Speed float64 `json:"speed"`
	Deg   float64 `json:"deg"`
}

type Current struct {
	Name       string      `json:"name"`
	Weather    []Condition `json:"weather"`
	Main       Main        `json:"main"`
	Visibility int         `json:"visibility"` // meters
	Wind       Wind        `json:"wind"`
	Clouds     Clouds      `json:"clouds"`
	Dt         int64       `json:"dt"`
}

type Forecast struct {
	Cnt  int            `json:"cnt"`
	List []ForecastSlot `json:"list"`
}

type ForecastSlot struct {
	Dt         int64       `json:"dt"`
	DtTxt      string      `json:"dt_txt"` // "2024-01-01 21:00:00", UTC
	Main       Main        `json:"main"`
	Weather    []Condition `json:"weather"`
	Clouds     Clouds      `json:"clouds"`
	Wind       Wind        `json:"wind"`
	Visibility int         `json:"visibility"`
}

// Date returns the UTC calendar day of the slot
func (s ForecastSlot) Date() string {
	if len(s.DtTxt) >= 10 {
		return s.DtTxt[:10]
	}
	return ""
}
