package domain

import (
	"context"
	"errors"
)

var ErrWeatherUnavailable = errors.New("weather provider not configured")

// WeatherData is the flattened shape served to clients, independent of the
// upstream provider's response format.
type WeatherData struct {
	Location    string            `json:"location"`
	Temperature float64           `json:"temperature"`
	Condition   string            `json:"condition"`
	Icon        string            `json:"icon"`
	Humidity    int               `json:"humidity"`
	WindSpeed   float64           `json:"windSpeed"`
	Date        string            `json:"date"`
	Forecast    []WeatherForecast `json:"forecast"`
}

type WeatherForecast struct {
	Date        string  `json:"date"`
	Temperature float64 `json:"temperature"`
	Condition   string  `json:"condition"`
	Icon        string  `json:"icon"`
}

// WeatherProvider fetches weather for a location query string
type WeatherProvider interface {
	CurrentWeather(ctx context.Context, location string) (*WeatherData, error)
	Forecast(ctx context.Context, location string) (*WeatherData, error)
}
