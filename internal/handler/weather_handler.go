package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/mobilefit/companion/internal/domain"
	"github.com/mobilefit/companion/internal/service"
)

type WeatherHandler struct {
	weatherService *service.WeatherService
}

func NewWeatherHandler(weatherService *service.WeatherService) *WeatherHandler {
	return &WeatherHandler{weatherService: weatherService}
}

// CurrentWeather GET /v1/weather/current?location=
func (h *WeatherHandler) CurrentWeather(c *fiber.Ctx) error {
	location := c.Query("location")
	if location == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "location is required"})
	}

	data, err := h.weatherService.CurrentWeather(c.Context(), location)
	if err != nil {
		if errors.Is(err, domain.ErrWeatherUnavailable) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(data)
}

// Forecast GET /v1/weather/forecast?location=
func (h *WeatherHandler) Forecast(c *fiber.Ctx) error {
	location := c.Query("location")
	if location == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "location is required"})
	}

	data, err := h.weatherService.Forecast(c.Context(), location)
	if err != nil {
		if errors.Is(err, domain.ErrWeatherUnavailable) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(data)
}
