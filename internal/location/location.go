// Package location resolves a single best-effort coordinate for the screen.
//
// A Platform stands in for the operating system's location services: it owns
// the permission state and produces location updates. The Resolver drives a
// platform through one resolution cycle and always yields exactly one
// coordinate, substituting the configured default when permission is denied
// or the fix fails.
package location

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/i474232898/cloudy/internal/weather"
)

var (
	ErrPermissionDenied = errors.New("location permission denied")
	ErrFixFailed        = errors.New("location fix failed")
	ErrFixEmpty         = errors.New("location fix returned no locations")
)

var validate = validator.New()

// AuthorizationStatus mirrors the permission states of mobile location services.
type AuthorizationStatus string

const (
	StatusNotDetermined       AuthorizationStatus = "notDetermined"
	StatusRestricted          AuthorizationStatus = "restricted"
	StatusDenied              AuthorizationStatus = "denied"
	StatusAuthorizedAlways    AuthorizationStatus = "authorizedAlways"
	StatusAuthorizedWhenInUse AuthorizationStatus = "authorizedWhenInUse"
)

// Authorized reports whether a fix may be requested.
func (s AuthorizationStatus) Authorized() bool {
	return s == StatusAuthorizedWhenInUse || s == StatusAuthorizedAlways
}

// ParseAuthorizationStatus accepts the status names plus the short forms
// "authorized", "allow" and "deny".
func ParseAuthorizationStatus(s string) (AuthorizationStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "notdetermined", "":
		return StatusNotDetermined, nil
	case "restricted":
		return StatusRestricted, nil
	case "denied", "deny":
		return StatusDenied, nil
	case "authorizedalways", "always":
		return StatusAuthorizedAlways, nil
	case "authorizedwheninuse", "authorized", "allow":
		return StatusAuthorizedWhenInUse, nil
	default:
		return StatusNotDetermined, fmt.Errorf("invalid authorization status %q", s)
	}
}

// Update is one delivery from a platform: either locations or an error.
type Update struct {
	Locations []weather.Coordinate
	Err       error
}

// Platform abstracts device location services.
type Platform interface {
	AuthorizationStatus() AuthorizationStatus
	// RequestAuthorization prompts for permission and returns the new status.
	RequestAuthorization(ctx context.Context) AuthorizationStatus
	// StartUpdates begins delivering updates. stop must be safe to call more
	// than once; after it returns no further updates are delivered.
	StartUpdates(ctx context.Context) (updates <-chan Update, stop func())
}

// Source says where a resolved coordinate came from.
type Source string

const (
	SourceFix     Source = "fix"
	SourceDefault Source = "default"
)

// Phase is reported while a resolution cycle progresses.
type Phase string

const (
	PhaseAwaitingPermission Phase = "awaitingPermission"
	PhaseAwaitingFix        Phase = "awaitingFix"
)

// Resolution is the single result of one resolution cycle.
type Resolution struct {
	Coordinate weather.Coordinate
	Source     Source
	// Reason is nil for a fix and one of the Err* sentinels (wrapped) otherwise.
	Reason error
}

// Resolver runs resolution cycles against a platform.
type Resolver struct {
	platform Platform
	fallback weather.Coordinate
	logger   *slog.Logger

	mu      sync.Mutex
	observe func(Phase)
}

func NewResolver(platform Platform, fallback weather.Coordinate, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		platform: platform,
		fallback: fallback,
		logger:   logger,
	}
}

// Observe registers fn to be told about phase changes. fn is called on the
// resolving goroutine.
func (r *Resolver) Observe(fn func(Phase)) {
	r.mu.Lock()
	r.observe = fn
	r.mu.Unlock()
}

func (r *Resolver) notify(p Phase) {
	r.mu.Lock()
	fn := r.observe
	r.mu.Unlock()
	if fn != nil {
		fn(p)
	}
}

// Default returns the fallback coordinate.
func (r *Resolver) Default() weather.Coordinate {
	return r.fallback
}

// Resolve blocks until the cycle produces a coordinate. It never fails;
// problems are reported through Resolution.Reason.
func (r *Resolver) Resolve(ctx context.Context) Resolution {
	status := r.platform.AuthorizationStatus()
	if status == StatusNotDetermined {
		r.notify(PhaseAwaitingPermission)
		status = r.platform.RequestAuthorization(ctx)
	}
	if !status.Authorized() {
		return r.useDefault(fmt.Errorf("%w: %s", ErrPermissionDenied, status))
	}

	r.notify(PhaseAwaitingFix)
	updates, stop := r.platform.StartUpdates(ctx)

	var u Update
	var ok bool
	select {
	case u, ok = <-updates:
	case <-ctx.Done():
		stop()
		return r.useDefault(fmt.Errorf("%w: %v", ErrFixFailed, ctx.Err()))
	}
	// Single shot: nothing after the first delivery is read.
	stop()

	switch {
	case !ok:
		return r.useDefault(fmt.Errorf("%w: updates ended without a result", ErrFixFailed))
	case u.Err != nil:
		return r.useDefault(fmt.Errorf("%w: %v", ErrFixFailed, u.Err))
	case len(u.Locations) == 0:
		return r.useDefault(ErrFixEmpty)
	}

	fix := u.Locations[0]
	if err := validate.Struct(fix); err != nil {
		return r.useDefault(fmt.Errorf("%w: invalid coordinate %s: %v", ErrFixFailed, fix, err))
	}

	r.logger.Debug("location fix", "coordinate", fix.String())
	return Resolution{Coordinate: fix, Source: SourceFix}
}

func (r *Resolver) useDefault(reason error) Resolution {
	r.logger.Info("falling back to default location",
		"coordinate", r.fallback.String(),
		"reason", reason,
	)
	return Resolution{Coordinate: r.fallback, Source: SourceDefault, Reason: reason}
}
