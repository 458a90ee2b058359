package ai

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
)

// ErrCircuitOpen is returned when the circuit breaker rejects a request to
// prevent cascading failures while the LLM provider is down.
var ErrCircuitOpen = errors.New("llm circuit breaker is open")

// NewBreakerService wraps an LLMService with a circuit breaker. After three
// consecutive failures the circuit opens for 30 seconds; two successful
// half-open probes close it again.
func NewBreakerService(inner LLMService) LLMService {
	settings := gobreaker.Settings{
		Name:        "llm",
		MaxRequests: 2,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	}
	return &breakerService{
		inner:   inner,
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

type breakerService struct {
	inner   LLMService
	breaker *gobreaker.CircuitBreaker
}

func (s *breakerService) Chat(ctx context.Context, messages []Message) (string, error) {
	result, err := s.breaker.Execute(func() (interface{}, error) {
		return s.inner.Chat(ctx, messages)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", ErrCircuitOpen
		}
		return "", err
	}
	return result.(string), nil
}
