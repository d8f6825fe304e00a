// Package weather is a thin client for the OpenWeatherMap current-weather
// endpoint. Failures map onto a small closed error set so callers can pick
// user-facing messaging without string matching.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	DefaultBaseURL = "https://api.openweathermap.org/data/2.5"
	DefaultLang    = "es"
	DefaultTimeout = 7 * time.Second

	defaultCacheSize = 128
	defaultCacheTTL  = 5 * time.Minute
)

var (
	ErrMissingKey   = errors.New("weather: api key is not configured")
	ErrEmptyCity    = errors.New("weather: city is required")
	ErrInvalidKey   = errors.New("weather: invalid api key")
	ErrCityNotFound = errors.New("weather: city not found")
	ErrTimeout      = errors.New("weather: request timed out")
	ErrOffline      = errors.New("weather: network unreachable")
)

// Current is the subset of the API response the application uses.
type Current struct {
	City        string  `json:"city"`
	Country     string  `json:"country"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
	Temp        float64 `json:"temp"`
	TempMin     float64 `json:"temp_min"`
	TempMax     float64 `json:"temp_max"`
	Humidity    int     `json:"humidity"`
	WindSpeed   float64 `json:"wind_speed"`
}

type Config struct {
	APIKey  string
	BaseURL string
	Lang    string
	Timeout time.Duration
	// CacheTTL bounds how long a city's reading is served from memory.
	CacheSize int
	CacheTTL  time.Duration
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	lang       string
	timeout    time.Duration
	cache      *expirable.LRU[string, Current]
}

func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	lang := cfg.Lang
	if lang == "" {
		lang = DefaultLang
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	cacheSize := cfg.CacheSize
	if cacheSize <= 0 {
		cacheSize = defaultCacheSize
	}
	cacheTTL := cfg.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = defaultCacheTTL
	}

	return &Client{
		httpClient: &http.Client{},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     cfg.APIKey,
		lang:       lang,
		timeout:    timeout,
		cache:      expirable.NewLRU[string, Current](cacheSize, nil, cacheTTL),
	}
}

// BuildURL assembles the request URL for a city query.
func BuildURL(baseURL, apiKey, city, lang string) string {
	q := url.Values{}
	q.Set("q", strings.TrimSpace(city))
	q.Set("appid", apiKey)
	q.Set("units", "metric")
	q.Set("lang", lang)
	return strings.TrimRight(baseURL, "/") + "/weather?" + q.Encode()
}

// CurrentByCity fetches the current weather for a city, serving recent
// readings from the cache.
func (c *Client) CurrentByCity(ctx context.Context, city string) (Current, error) {
	if c.apiKey == "" {
		return Current{}, ErrMissingKey
	}
	city = strings.TrimSpace(city)
	if city == "" {
		return Current{}, ErrEmptyCity
	}

	cacheKey := strings.ToLower(city) + "|" + c.lang
	if cur, ok := c.cache.Get(cacheKey); ok {
		return cur, nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, BuildURL(c.baseURL, c.apiKey, city, c.lang), nil)
	if err != nil {
		return Current{}, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Current{}, classifyTransportError(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return Current{}, ErrInvalidKey
	case resp.StatusCode == http.StatusNotFound:
		return Current{}, ErrCityNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return Current{}, fmt.Errorf("weather: unexpected status %d", resp.StatusCode)
	}

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Current{}, fmt.Errorf("weather: decode response: %w", err)
	}

	cur := Current{
		City:      body.Name,
		Country:   body.Sys.Country,
		Temp:      body.Main.Temp,
		TempMin:   body.Main.TempMin,
		TempMax:   body.Main.TempMax,
		Humidity:  body.Main.Humidity,
		WindSpeed: body.Wind.Speed,
	}
	if len(body.Weather) > 0 {
		cur.Description = body.Weather[0].Description
		cur.Icon = body.Weather[0].Icon
	}

	c.cache.Add(cacheKey, cur)
	return cur, nil
}

func classifyTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	var uerr *url.Error
	if errors.As(err, &uerr) && uerr.Timeout() {
		return ErrTimeout
	}
	return fmt.Errorf("%w: %v", ErrOffline, err)
}

// IconEmoji maps an OpenWeatherMap icon code to a display emoji.
func IconEmoji(icon string) string {
	switch {
	case icon == "":
		return "☁️"
	case strings.HasPrefix(icon, "01"):
		return "☀️"
	case strings.HasPrefix(icon, "02"):
		return "🌤️"
	case strings.HasPrefix(icon, "03"), strings.HasPrefix(icon, "04"):
		return "☁️"
	case strings.HasPrefix(icon, "09"), strings.HasPrefix(icon, "10"):
		return "🌧️"
	case strings.HasPrefix(icon, "11"):
		return "⛈️"
	case strings.HasPrefix(icon, "13"):
		return "❄️"
	case strings.HasPrefix(icon, "50"):
		return "🌫️"
	default:
		return "☁️"
	}
}

type apiResponse struct {
	Name string `json:"name"`
	Sys  struct {
		Country string `json:"country"`
	} `json:"sys"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Main struct {
		Temp     float64 `json:"temp"`
		TempMin  float64 `json:"temp_min"`
		TempMax  float64 `json:"temp_max"`
		Humidity int     `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}
