package models

// Bounds on a day's weather readings.
const (
	MinTemperatureHighest = -10
	MaxTemperatureHighest = 45
	MinTemperatureLowest  = -20
	MaxTemperatureLowest  = 35
	MinRainyPercent       = 0
	MaxRainyPercent       = 100
)

// Weather holds one day's readings. A user has at most one per day.
type Weather struct {
	Record `yaml:",inline"`

	Date               Date `json:"date" yaml:"date"`
	TemperatureHighest int  `json:"temperature_highest" yaml:"temperature_highest"`
	TemperatureLowest  int  `json:"temperature_lowest" yaml:"temperature_lowest"`
	RainyPercent       int  `json:"rainy_percent" yaml:"rainy_percent"`
}

func (w *Weather) Validate() error {
	v := ValidationErrors{}
	if w.Date.IsZero() {
		v.Add("date", "this field is required")
	}
	v.between("temperature_highest", w.TemperatureHighest, MinTemperatureHighest, MaxTemperatureHighest)
	v.between("temperature_lowest", w.TemperatureLowest, MinTemperatureLowest, MaxTemperatureLowest)
	v.between("rainy_percent", w.RainyPercent, MinRainyPercent, MaxRainyPercent)
	return v.Err()
}
