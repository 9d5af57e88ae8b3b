// Package translate runs the background pipeline turning translation
// requests into responses without ever holding up message delivery.
package translate

import (
	"context"
	"log/slog"
)

const queueSize = 256

// Request asks for one message to be translated. At most one outstanding
// request per message ID is policy enforced by the caller, not here.
type Request struct {
	MessageID      uint64
	Content        string
	TargetLanguage string
}

// Response carries one finished translation, correlated by MessageID.
type Response struct {
	MessageID   uint64
	Translation string
	Language    string
}

// InitFunc builds the shared translator. It runs at most once, on the first
// request, so startup cost is not paid when nobody ever translates.
type InitFunc func(ctx context.Context) (*Translator, error)

// Service owns the translation worker and its request/response queues.
//
// The pipeline is best-effort and at-most-once: a failed translation is
// logged and dropped, and the message simply stays untranslated until some
// policy (a language change) re-requests it.
type Service struct {
	requests  chan Request
	responses chan Response
	enabled   bool
	log       *slog.Logger
}

// NewService starts the worker goroutine. When enabled is false the worker
// exits before consuming anything; queued requests are never answered.
func NewService(ctx context.Context, enabled bool, init InitFunc, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}

	s := &Service{
		requests:  make(chan Request, queueSize),
		responses: make(chan Response, queueSize),
		enabled:   enabled,
		log:       log.With("component", "translate.worker"),
	}
	go s.worker(ctx, init)

	return s
}

// Enabled reports whether the pipeline answers requests at all.
func (s *Service) Enabled() bool {
	return s.enabled
}

// Request enqueues a translation request without blocking.
func (s *Service) Request(req Request) {
	select {
	case s.requests <- req:
	default:
		s.log.Warn("Request queue full, dropping translation request", "message_id", req.MessageID)
	}
}

// TryResponse returns the next finished translation without blocking.
func (s *Service) TryResponse() (Response, bool) {
	select {
	case response := <-s.responses:
		return response, true
	default:
		return Response{}, false
	}
}

func (s *Service) worker(ctx context.Context, init InitFunc) {
	if !s.enabled {
		s.log.Debug("Translation disabled")
		return
	}

	s.log.Debug("Translation worker started")

	var translator *Translator

	for {
		select {
		case <-ctx.Done():
			s.log.Debug("Translation worker stopped")
			return

		case req := <-s.requests:
			if translator == nil {
				built, err := init(ctx)
				if err != nil {
					s.log.Error("Failed to initialize translator", "error", err)
					return
				}
				translator = built
			}

			s.log.Debug("Processing translation request", "message_id", req.MessageID, "language", req.TargetLanguage)

			translation, err := translator.Translate(ctx, req.Content, req.TargetLanguage)
			if err != nil {
				s.log.Warn("Translation failed", "message_id", req.MessageID, "error", err)
				continue
			}

			select {
			case <-ctx.Done():
				return
			case s.responses <- Response{
				MessageID:   req.MessageID,
				Translation: translation,
				Language:    req.TargetLanguage,
			}:
			}
		}
	}
}
