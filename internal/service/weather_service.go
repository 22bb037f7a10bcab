package service

import (
	"context"
	"time"

	"github.com/mobilefit/companion/internal/cache"
	"github.com/mobilefit/companion/internal/domain"
)

const (
	kindWeatherCurrent  = "weather-current"
	kindWeatherForecast = "weather-forecast"

	// Weather has no local mutation path, so entries refresh on a timer
	// instead of by tag invalidation.
	weatherTTL = 5 * time.Minute
)

// WeatherService serves current conditions and forecasts per location,
// cached for five minutes per (kind, location) pair.
type WeatherService struct {
	provider domain.WeatherProvider
	cache    *cache.ResourceCache
}

func NewWeatherService(provider domain.WeatherProvider, resourceCache *cache.ResourceCache) *WeatherService {
	return &WeatherService{
		provider: provider,
		cache:    resourceCache,
	}
}

func (s *WeatherService) CurrentWeather(ctx context.Context, location string) (*domain.WeatherData, error) {
	value, err := s.cache.Query(ctx, kindWeatherCurrent, location, weatherTTL, func(ctx context.Context) (interface{}, []cache.Tag, error) {
		data, err := s.provider.CurrentWeather(ctx, location)
		if err != nil {
			return nil, nil, err
		}
		return data, []cache.Tag{cache.WeatherTag(location)}, nil
	})
	if err != nil {
		return nil, err
	}
	return value.(*domain.WeatherData), nil
}

func (s *WeatherService) Forecast(ctx context.Context, location string) (*domain.WeatherData, error) {
	value, err := s.cache.Query(ctx, kindWeatherForecast, location, weatherTTL, func(ctx context.Context) (interface{}, []cache.Tag, error) {
		data, err := s.provider.Forecast(ctx, location)
		if err != nil {
			return nil, nil, err
		}
		return data, []cache.Tag{cache.WeatherForecastTag(location)}, nil
	})
	if err != nil {
		return nil, err
	}
	return value.(*domain.WeatherData), nil
}
