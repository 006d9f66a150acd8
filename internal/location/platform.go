package location

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/cloudy/internal/weather"
)

// Permission is the permission state a headless platform pretends the user
// chose. Answer is used when Status is notDetermined and a prompt is shown.
type Permission struct {
	Status AuthorizationStatus
	Answer AuthorizationStatus
}

type authorizer struct {
	mu     sync.Mutex
	status AuthorizationStatus
	answer AuthorizationStatus
}

func newAuthorizer(p Permission) *authorizer {
	if p.Status == "" {
		p.Status = StatusNotDetermined
	}
	if p.Answer == "" {
		p.Answer = StatusDenied
	}
	return &authorizer{status: p.Status, answer: p.Answer}
}

func (a *authorizer) AuthorizationStatus() AuthorizationStatus {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.status
}

func (a *authorizer) RequestAuthorization(ctx context.Context) AuthorizationStatus {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.status == StatusNotDetermined {
		a.status = a.answer
	}
	return a.status
}

// singleShot runs fetch once on its own goroutine and delivers its result.
// stop cancels the fetch; nothing is delivered after stop.
func singleShot(ctx context.Context, fetch func(ctx context.Context) Update) (<-chan Update, func()) {
	ctx, cancel := context.WithCancel(ctx)
	ch := make(chan Update, 1)

	go func() {
		defer close(ch)
		u := fetch(ctx)
		if ctx.Err() != nil {
			return
		}
		ch <- u
	}()

	var once sync.Once
	return ch, func() { once.Do(cancel) }
}

// DeniedPlatform has no location services; every cycle falls back.
type DeniedPlatform struct{}

func (DeniedPlatform) AuthorizationStatus() AuthorizationStatus { return StatusDenied }

func (DeniedPlatform) RequestAuthorization(context.Context) AuthorizationStatus { return StatusDenied }

func (DeniedPlatform) StartUpdates(context.Context) (<-chan Update, func()) {
	ch := make(chan Update)
	close(ch)
	return ch, func() {}
}

const DefaultIPLookupURL = "http://ip-api.com/json/?fields=status,message,lat,lon"

// IPPlatform approximates the device position from its public IP address.
type IPPlatform struct {
	*authorizer
	url    string
	client *http.Client
}

func NewIPPlatform(client *http.Client, url string, perm Permission) *IPPlatform {
	if url == "" {
		url = DefaultIPLookupURL
	}
	return &IPPlatform{
		authorizer: newAuthorizer(perm),
		url:        url,
		client:     client,
	}
}

type ipLookupResponse struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

func (p *IPPlatform) StartUpdates(ctx context.Context) (<-chan Update, func()) {
	return singleShot(ctx, p.lookup)
}

func (p *IPPlatform) lookup(ctx context.Context) Update {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return Update{Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return Update{Err: fmt.Errorf("ip lookup: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Update{Err: fmt.Errorf("ip lookup returned status %d", resp.StatusCode)}
	}

	var body ipLookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Update{Err: fmt.Errorf("decode ip lookup response: %w", err)}
	}
	if body.Status != "success" {
		// ip-api reports private or reserved ranges as a failed lookup with no position.
		if body.Message == "private range" || body.Message == "reserved range" {
			return Update{}
		}
		return Update{Err: fmt.Errorf("ip lookup failed: %s", body.Message)}
	}

	return Update{Locations: []weather.Coordinate{{Latitude: body.Lat, Longitude: body.Lon}}}
}

// AddressPlatform geocodes a fixed postal address with the Google
// Geocoding API. It suits stationary installs where the position is known.
type AddressPlatform struct {
	*authorizer
	address geocoder.Address
	geocode func(geocoder.Address) (geocoder.Location, error)
}

// NewAddressPlatform sets the package-level geocoder API key.
func NewAddressPlatform(apiKey string, address geocoder.Address, perm Permission) *AddressPlatform {
	geocoder.ApiKey = apiKey
	return &AddressPlatform{
		authorizer: newAuthorizer(perm),
		address:    address,
		geocode:    geocoder.Geocoding,
	}
}

func (p *AddressPlatform) StartUpdates(ctx context.Context) (<-chan Update, func()) {
	return singleShot(ctx, func(context.Context) Update {
		loc, err := p.geocode(p.address)
		if err != nil {
			return Update{Err: fmt.Errorf("geocode address: %w", err)}
		}
		return Update{Locations: []weather.Coordinate{{Latitude: loc.Latitude, Longitude: loc.Longitude}}}
	})
}
