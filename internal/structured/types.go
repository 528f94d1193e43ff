package structured

// ActorFilms lists an actor's filmography.
type ActorFilms struct {
	Actor  string   `json:"actor"`
	Movies []string `json:"movies"`
}

// WeatherReport describes average weather for a city in a given month.
type WeatherReport struct {
	City               string  `json:"city"`
	Month              string  `json:"month"`
	AverageTemperature float64 `json:"averageTemperature"`
	Description        string  `json:"description"`
}
