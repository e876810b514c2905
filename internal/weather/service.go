package weather

import (
	"context"
	"fmt"
	"html"
	"math"
	"strings"
	"time"

	"homeboard/internal/config"
	"homeboard/internal/logger"
	"homeboard/internal/store"
	"homeboard/internal/store/local"
)

// CacheKey is where the last forecast is kept.
const CacheKey = local.WeatherCacheKey

// CacheTTL is how long a cached forecast is served.
const CacheTTL = 15 * time.Minute

// Payload is a forecast with the location it was fetched for.
type Payload struct {
	Loc  Location `json:"loc"`
	Data Forecast `json:"data"`
}

type cacheEntry struct {
	Timestamp int64   `json:"timestamp"`
	Payload   Payload `json:"payload"`
}

// Service serves forecasts for the configured location through a cache.
type Service struct {
	client *Client
	kv     store.KV
	loc    Location
	query  string
	now    func() time.Time
}

func NewService(client *Client, kv store.KV, cfg config.Weather) *Service {
	loc := Paris
	if cfg.City != "" {
		loc = Location{Name: cfg.City, Lat: cfg.Latitude, Lon: cfg.Longitude, Country: cfg.Country}
	}
	return &Service{client: client, kv: kv, loc: loc, query: strings.TrimSpace(cfg.Query), now: time.Now}
}

// Load returns the cached forecast while fresh. force skips the cache.
func (s *Service) Load(ctx context.Context, force bool) (*Payload, error) {
	now := s.now()
	if !force {
		var entry cacheEntry
		ok, err := s.kv.Get(CacheKey, &entry)
		if err != nil {
			logger.Debug("ignoring unreadable weather cache", "err", err)
		}
		if ok && err == nil && now.UnixMilli()-entry.Timestamp < CacheTTL.Milliseconds() {
			return &entry.Payload, nil
		}
	}

	loc := s.resolve(ctx)
	data, err := s.client.Forecast(ctx, loc.Lat, loc.Lon)
	if err != nil {
		return nil, err
	}
	payload := Payload{Loc: loc, Data: *data}
	if err := s.kv.Put(CacheKey, cacheEntry{Timestamp: now.UnixMilli(), Payload: payload}); err != nil {
		logger.Warn("weather cache write failed", "err", err)
	}
	return &payload, nil
}

func (s *Service) resolve(ctx context.Context) Location {
	if s.query == "" {
		return s.loc
	}
	found, err := s.client.Geocode(ctx, s.query)
	if err != nil {
		logger.Warn("geocoding failed, using configured location", "query", s.query, "err", err)
		return s.loc
	}
	return *found
}

// HourPoint is one slot of the hourly strip.
type HourPoint struct {
	Time        time.Time `json:"time"`
	Temperature float64   `json:"temperature"`
	WeatherCode int       `json:"weather_code"`
}

// NextHours returns up to n hourly values starting at the first hour not
// before now, or from the first hour when none is.
func NextHours(f Forecast, now time.Time, n int) []HourPoint {
	zone := time.UTC
	if f.Timezone != "" {
		if loc, err := time.LoadLocation(f.Timezone); err == nil {
			zone = loc
		}
	}
	// slot keeps the position in the hourly arrays so values stay paired
	// with their hour when an entry fails to parse.
	type slot struct {
		at  time.Time
		idx int
	}
	slots := make([]slot, 0, len(f.Hourly.Time))
	start := -1
	for i, raw := range f.Hourly.Time {
		t, err := time.ParseInLocation("2006-01-02T15:04", raw, zone)
		if err != nil {
			continue
		}
		if start < 0 && !t.Before(now) {
			start = len(slots)
		}
		slots = append(slots, slot{at: t, idx: i})
	}
	if start < 0 {
		start = 0
	}
	var points []HourPoint
	for _, sl := range slots[start:] {
		if len(points) >= n {
			break
		}
		p := HourPoint{Time: sl.at}
		if sl.idx < len(f.Hourly.Temperature) {
			p.Temperature = f.Hourly.Temperature[sl.idx]
		}
		if sl.idx < len(f.Hourly.WeatherCode) {
			p.WeatherCode = f.Hourly.WeatherCode[sl.idx]
		}
		points = append(points, p)
	}
	return points
}

// Report renders today and tomorrow as HTML for chat messages.
func Report(p Payload) string {
	c := p.Data.Current
	var sb strings.Builder

	place := html.EscapeString(p.Loc.Name)
	if p.Loc.Country != "" {
		place += ", " + html.EscapeString(p.Loc.Country)
	}
	sb.WriteString(fmt.Sprintf("%s <b>%s</b>\n", Icon(c.WeatherCode), place))
	sb.WriteString(fmt.Sprintf("Maintenant : %d°C · %s\n", round(c.Temperature), Describe(c.WeatherCode)))
	sb.WriteString(fmt.Sprintf("Ressenti %d°C · humidité %d%% · vent %d km/h\n",
		round(c.ApparentTemperature), round(c.Humidity), round(c.WindSpeed)))

	labels := []string{"Aujourd'hui", "Demain"}
	for i, label := range labels {
		if i >= len(p.Data.Daily.Max) || i >= len(p.Data.Daily.Min) || i >= len(p.Data.Daily.WeatherCode) {
			break
		}
		code := p.Data.Daily.WeatherCode[i]
		sb.WriteString(fmt.Sprintf("%s %s : %d° / %d° · %s\n",
			Icon(code), label, round(p.Data.Daily.Min[i]), round(p.Data.Daily.Max[i]), Describe(code)))
	}
	return strings.TrimSpace(sb.String())
}

func round(v float64) int {
	return int(math.Round(v))
}
