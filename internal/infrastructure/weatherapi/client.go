package weatherapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mobilefit/companion/internal/domain"
)

// Config holds weather provider configuration. An empty APIKey leaves the
// client in a degraded state where every call fails with
// domain.ErrWeatherUnavailable.
type Config struct {
	BaseURL string // e.g. "https://api.weatherapi.com/v1"
	APIKey  string
}

// Client talks to the weatherapi.com v1 endpoints
type Client struct {
	config     Config
	httpClient *http.Client
}

func NewClient(cfg Config) *Client {
	return &Client{
		config: cfg,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// currentResponse is the provider's shape for /current.json
type currentResponse struct {
	Location struct {
		Name      string `json:"name"`
		Region    string `json:"region"`
		Country   string `json:"country"`
		Localtime string `json:"localtime"`
	} `json:"location"`
	Current struct {
		TempC     float64 `json:"temp_c"`
		Condition struct {
			Text string `json:"text"`
			Icon string `json:"icon"`
		} `json:"condition"`
		Humidity int     `json:"humidity"`
		WindKph  float64 `json:"wind_kph"`
	} `json:"current"`
}

// forecastResponse is the provider's shape for /forecast.json
type forecastResponse struct {
	currentResponse
	Forecast struct {
		Forecastday []struct {
			Date string `json:"date"`
			Day  struct {
				AvgTempC  float64 `json:"avgtemp_c"`
				Condition struct {
					Text string `json:"text"`
					Icon string `json:"icon"`
				} `json:"condition"`
			} `json:"day"`
		} `json:"forecastday"`
	} `json:"forecast"`
}

func (c *Client) get(ctx context.Context, path string, params url.Values, dest interface{}) error {
	if c.config.APIKey == "" {
		return domain.ErrWeatherUnavailable
	}

	params.Set("key", c.config.APIKey)
	endpoint := strings.TrimRight(c.config.BaseURL, "/") + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("weather api error: status %d, body: %s", resp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, dest); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// CurrentWeather fetches current conditions flattened into WeatherData
func (c *Client) CurrentWeather(ctx context.Context, location string) (*domain.WeatherData, error) {
	params := url.Values{}
	params.Set("q", location)

	var resp currentResponse
	if err := c.get(ctx, "/current.json", params, &resp); err != nil {
		return nil, err
	}

	return &domain.WeatherData{
		Location:    resp.Location.Name,
		Temperature: resp.Current.TempC,
		Condition:   resp.Current.Condition.Text,
		Icon:        resp.Current.Condition.Icon,
		Humidity:    resp.Current.Humidity,
		WindSpeed:   resp.Current.WindKph,
		Date:        resp.Location.Localtime,
		Forecast:    []domain.WeatherForecast{},
	}, nil
}

// Forecast fetches a 5-day forecast flattened into WeatherData
func (c *Client) Forecast(ctx context.Context, location string) (*domain.WeatherData, error) {
	params := url.Values{}
	params.Set("q", location)
	params.Set("days", "5")

	var resp forecastResponse
	if err := c.get(ctx, "/forecast.json", params, &resp); err != nil {
		return nil, err
	}

	forecast := make([]domain.WeatherForecast, 0, len(resp.Forecast.Forecastday))
	for _, day := range resp.Forecast.Forecastday {
		forecast = append(forecast, domain.WeatherForecast{
			Date:        day.Date,
			Temperature: day.Day.AvgTempC,
			Condition:   day.Day.Condition.Text,
			Icon:        day.Day.Condition.Icon,
		})
	}

	return &domain.WeatherData{
		Location:    resp.Location.Name,
		Temperature: resp.Current.TempC,
		Condition:   resp.Current.Condition.Text,
		Icon:        resp.Current.Condition.Icon,
		Humidity:    resp.Current.Humidity,
		WindSpeed:   resp.Current.WindKph,
		Date:        time.Now().UTC().Format(time.RFC3339),
		Forecast:    forecast,
	}, nil
}
