// Package weather fetches forecasts from Open-Meteo and caches them in the
// local key-value store.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	ForecastURL = "https://api.open-meteo.com/v1/forecast"
	GeocodeURL  = "https://geocoding-api.open-meteo.com/v1/search"
)

// ErrNoLocation is returned when geocoding finds nothing.
var ErrNoLocation = errors.New("location not found")

// Location is a named point.
type Location struct {
	Name    string  `json:"name"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Country string  `json:"country"`
}

// Paris is used when nothing else is configured.
var Paris = Location{Name: "Paris", Lat: 48.8566, Lon: 2.3522, Country: "France"}

type Current struct {
	Time                string  `json:"time"`
	Temperature         float64 `json:"temperature_2m"`
	Humidity            float64 `json:"relative_humidity_2m"`
	ApparentTemperature float64 `json:"apparent_temperature"`
	WeatherCode         int     `json:"weather_code"`
	WindSpeed           float64 `json:"wind_speed_10m"`
}

type Hourly struct {
	Time        []string  `json:"time"`
	Temperature []float64 `json:"temperature_2m"`
	WeatherCode []int     `json:"weather_code"`
}

type Daily struct {
	Time        []string  `json:"time"`
	WeatherCode []int     `json:"weather_code"`
	Max         []float64 `json:"temperature_2m_max"`
	Min         []float64 `json:"temperature_2m_min"`
}

// Forecast is the subset of the Open-Meteo answer the app displays.
type Forecast struct {
	Timezone string  `json:"timezone"`
	Current  Current `json:"current"`
	Hourly   Hourly  `json:"hourly"`
	Daily    Daily   `json:"daily"`
}

// Client talks to the Open-Meteo forecast and geocoding APIs.
type Client struct {
	http        *http.Client
	forecastURL string
	geocodeURL  string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithEndpoints overrides the API URLs, for tests and mirrors.
func WithEndpoints(forecast, geocode string) Option {
	return func(c *Client) {
		c.forecastURL = forecast
		c.geocodeURL = geocode
	}
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		http:        &http.Client{Timeout: 10 * time.Second},
		forecastURL: ForecastURL,
		geocodeURL:  GeocodeURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Forecast returns current conditions, hourly and daily values for a
// point, in the point's own timezone.
func (c *Client) Forecast(ctx context.Context, lat, lon float64) (*Forecast, error) {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("current", "temperature_2m,relative_humidity_2m,apparent_temperature,weather_code,wind_speed_10m")
	q.Set("hourly", "temperature_2m,weather_code")
	q.Set("daily", "weather_code,temperature_2m_max,temperature_2m_min")
	q.Set("timezone", "auto")

	var f Forecast
	if err := c.get(ctx, c.forecastURL+"?"+q.Encode(), &f); err != nil {
		return nil, fmt.Errorf("fetch forecast: %w", err)
	}
	return &f, nil
}

// Geocode resolves a place name to its best match.
func (c *Client) Geocode(ctx context.Context, query string) (*Location, error) {
	q := url.Values{}
	q.Set("name", query)
	q.Set("count", "1")
	q.Set("language", "fr")

	var res struct {
		Results []struct {
			Name      string  `json:"name"`
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
			Country   string  `json:"country"`
		} `json:"results"`
	}
	if err := c.get(ctx, c.geocodeURL+"?"+q.Encode(), &res); err != nil {
		return nil, fmt.Errorf("geocode %q: %w", query, err)
	}
	if len(res.Results) == 0 {
		return nil, fmt.Errorf("geocode %q: %w", query, ErrNoLocation)
	}
	g := res.Results[0]
	return &Location{Name: g.Name, Lat: g.Latitude, Lon: g.Longitude, Country: g.Country}, nil
}

func (c *Client) get(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
