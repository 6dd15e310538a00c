package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-records/internal/weather"
)

// OpenMeteoProvider implements weather.Provider against the Open-Meteo
// hourly forecast. Its sky condition is the numeric WMO weather code,
// carried as a string token.
type OpenMeteoProvider struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenMeteoProvider(client *http.Client, baseURL, userAgent string) *OpenMeteoProvider {
	return &OpenMeteoProvider{
		name:    "open-meteo",
		baseURL: baseURL,
		httpCfg: HTTPClientConfig{
			Client:    client,
			UserAgent: userAgent,
		},
		circuit: newBreaker("openmeteo"),
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

func (p *OpenMeteoProvider) FetchSeries(ctx context.Context, lat, lon float64) ([]weather.HourlySample, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
		values.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
		values.Set("hourly", "temperature_2m,wind_speed_10m,relative_humidity_2m,weather_code")
		values.Set("timezone", "UTC")

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequest(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload struct {
		Hourly struct {
			Time             []string       `json:"time"`
			Temperature2m    []lenientFloat `json:"temperature_2m"`
			WindSpeed10m     []lenientFloat `json:"wind_speed_10m"`
			RelativeHumidity []lenientFloat `json:"relative_humidity_2m"`
			WeatherCode      []lenientFloat `json:"weather_code"`
		} `json:"hourly"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode open-meteo response: %w", err)
	}

	h := payload.Hourly
	series := make([]weather.HourlySample, 0, len(h.Time))
	for i, ts := range h.Time {
		s := weather.HourlySample{
			Time:        ts,
			Temperature: at(h.Temperature2m, i),
			WindSpeed:   at(h.WindSpeed10m, i),
			Humidity:    at(h.RelativeHumidity, i),
		}
		if code := at(h.WeatherCode, i); code != nil {
			sym := strconv.Itoa(int(*code))
			s.Symbol = &sym
		}
		series = append(series, s)
	}
	return series, nil
}

// at tolerates the column arrays being shorter than the time axis.
func at(col []lenientFloat, i int) *float64 {
	if i >= len(col) {
		return nil
	}
	return col[i].v
}
