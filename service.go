package servicemonitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
)

// Fetcher retrieves the HTML of a status page.
//
// Implementations return an error matching one of [ErrConnectionFailure],
// [ErrTimeout], [ErrInvalidURL] or [ErrNoContent]. The default Fetcher is an
// HTTP client with a per-request timeout, see [WithRequestTimeout].
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// FetcherFunc adapts a plain function to [Fetcher].
type FetcherFunc func(ctx context.Context, url string) ([]byte, error)

// Fetch calls f(ctx, url).
func (f FetcherFunc) Fetch(ctx context.Context, url string) ([]byte, error) {
	return f(ctx, url)
}

// Service is one monitored status page.
//
// Services are created and updated by [Registry.Reconcile]; values returned
// from [Registry.Services] are copies.
type Service struct {
	kind Kind
	name string
	url  string
}

// NewService creates a [Service] for a supported kind.
//
// Returns an error matching [ErrUnrecognizedServiceKind] if the identifier
// is not supported, or an error if name is empty or the URL cannot be parsed.
// A URL without a scheme is accepted here and reported on every poll, the
// same way an unreachable host is.
func NewService(identifier, name, rawURL string) (Service, error) {
	kind, err := ParseKind(identifier)
	if err != nil {
		return Service{}, err
	}
	if name == "" {
		return Service{}, errors.New("service name cannot be empty")
	}
	if _, err := url.Parse(rawURL); err != nil {
		return Service{}, fmt.Errorf("invalid URL: %w", err)
	}
	return Service{kind: kind, name: name, url: rawURL}, nil
}

// Identifier returns the service's kind, which is also its config identifier.
func (s Service) Identifier() Kind {
	return s.kind
}

// Name returns the display name written into history lines.
func (s Service) Name() string {
	return s.name
}

// URL returns the status page address.
func (s Service) URL() string {
	return s.url
}

// Line is one poll result as handed to line callbacks.
type Line struct {
	// Service is the identifier of the polled service.
	Service Kind

	// Name is the service's display name.
	Name string

	// Text is the history line as appended to the registry.
	Text string

	// Err is the classified failure, nil when a status label was extracted.
	Err error

	// PolledAt is when the poll started.
	PolledAt time.Time
}

// Poll fetches the status page and returns one history line.
//
// Poll never fails: fetch errors, unusable responses, missing status
// elements and extractor panics all produce a line whose bracketed status is
// the error message. Poll does not touch any history; the caller appends the
// returned line.
func (s Service) Poll(ctx context.Context, fetcher Fetcher, at time.Time) string {
	return s.poll(ctx, fetcher, at, slog.Default()).Text
}

func (s Service) poll(ctx context.Context, fetcher Fetcher, at time.Time, logger *slog.Logger) Line {
	label, err := s.status(ctx, fetcher, logger)
	if err != nil {
		label = err.Error()
	}
	return Line{
		Service:  s.kind,
		Name:     s.name,
		Text:     FormatLine(s.name, at, label),
		Err:      err,
		PolledAt: at,
	}
}

// status returns the extracted label or the reason there is none.
func (s Service) status(ctx context.Context, fetcher Fetcher, logger *slog.Logger) (string, error) {
	body, err := fetcher.Fetch(ctx, s.url)
	if err != nil {
		return "", err
	}

	extractor, ok := extractorFor(s.kind)
	if !ok {
		// unreachable for services built by NewService or Reconcile
		return "", &UnrecognizedKindError{Identifier: string(s.kind), Supported: SupportedKinds()}
	}

	return safeExtract(extractor, body, logger)
}

// safeExtract calls the extractor with panic recovery.
// If the extractor panics, it logs the full stack trace with a correlation ID
// and returns a user-facing error containing the ID.
func safeExtract(extractor StatusExtractor, body []byte, logger *slog.Logger) (label string, err error) {
	defer func() {
		if r := recover(); r != nil {
			correlationID := uuid.NewString()

			logger.Error("extractor panic",
				"correlation_id", correlationID,
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
			)

			label = ""
			err = fmt.Errorf("extractor panic (correlation_id: %s)", correlationID)
		}
	}()
	return extractStatus(body, extractor)
}
