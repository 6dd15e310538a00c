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

// MetNoProvider implements weather.Provider for the MET Norway
// Locationforecast 2.0 "compact" product. No API key is needed, but MET
// requires an identifying User-Agent.
type MetNoProvider struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewMetNoProvider(client *http.Client, baseURL, userAgent string) *MetNoProvider {
	return &MetNoProvider{
		name:    "met.no",
		baseURL: baseURL,
		httpCfg: HTTPClientConfig{
			Client:    client,
			UserAgent: userAgent,
		},
		circuit: newBreaker("metno"),
	}
}

func (p *MetNoProvider) Name() string {
	return p.name
}

type metNoResponse struct {
	Properties struct {
		Timeseries []metNoEntry `json:"timeseries"`
	} `json:"properties"`
}

type metNoEntry struct {
	Time string `json:"time"`
	Data struct {
		Instant struct {
			Details struct {
				AirTemperature   lenientFloat `json:"air_temperature"`
				WindSpeed        lenientFloat `json:"wind_speed"`
				RelativeHumidity lenientFloat `json:"relative_humidity"`
			} `json:"details"`
		} `json:"instant"`
		Next1Hours *struct {
			Summary *struct {
				SymbolCode string `json:"symbol_code"`
			} `json:"summary"`
		} `json:"next_1_hours"`
	} `json:"data"`
}

func (e metNoEntry) sample() weather.HourlySample {
	s := weather.HourlySample{
		Time:        e.Time,
		Temperature: e.Data.Instant.Details.AirTemperature.v,
		WindSpeed:   e.Data.Instant.Details.WindSpeed.v,
		Humidity:    e.Data.Instant.Details.RelativeHumidity.v,
	}
	if nx := e.Data.Next1Hours; nx != nil && nx.Summary != nil && nx.Summary.SymbolCode != "" {
		code := nx.Summary.SymbolCode
		s.Symbol = &code
	}
	return s
}

func (p *MetNoProvider) FetchSeries(ctx context.Context, lat, lon float64) ([]weather.HourlySample, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
		values.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequest(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload metNoResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode met.no response: %w", err)
	}

	series := make([]weather.HourlySample, 0, len(payload.Properties.Timeseries))
	for _, e := range payload.Properties.Timeseries {
		series = append(series, e.sample())
	}
	return series, nil
}
