// Package accounts provisions users from identity-provider data and greets new ones.
package accounts

import (
	"context"
	"sync"
	"time"

	"threadcraft-api/internal/logging"
	"threadcraft-api/internal/store"

	"github.com/rs/zerolog/log"
)

const welcomeTimeout = 30 * time.Second

type UserUpserter interface {
	UpsertUser(ctx context.Context, externalID, email, name string) (store.UpsertResult, error)
}

type Welcomer interface {
	SendWelcome(ctx context.Context, to, name string) error
}

type Service struct {
	users    UserUpserter
	welcomer Welcomer
	wg       sync.WaitGroup
}

func NewService(users UserUpserter, welcomer Welcomer) *Service {
	return &Service{users: users, welcomer: welcomer}
}

// Upsert creates or reconciles the user. When the user is new to this identity
// a welcome email goes out in the background; its failure never fails the upsert.
func (s *Service) Upsert(ctx context.Context, externalID, email, name string) (store.UpsertResult, error) {
	res, err := s.users.UpsertUser(ctx, externalID, email, name)
	if err != nil {
		return res, err
	}

	logger := logging.FromContext(ctx)
	logger.Info().
		Str("external_id", externalID).
		Bool("created", res.Created).
		Bool("linked", res.Linked).
		Msg("User upserted")

	if res.Welcome() && s.welcomer != nil {
		s.notify(logging.RequestID(ctx), res.User.Email, res.User.Name)
	}
	return res, nil
}

func (s *Service) notify(requestID, to, name string) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), welcomeTimeout)
		defer cancel()
		ctx, _ = logging.WithRequestID(ctx, requestID)

		if err := s.welcomer.SendWelcome(ctx, to, name); err != nil {
			log.Error().Err(err).Str("request_id", requestID).Str("to", to).Msg("Failed to send welcome email")
			return
		}
		log.Info().Str("request_id", requestID).Str("to", to).Msg("Welcome email sent")
	}()
}

// Wait blocks until in-flight welcome emails finish.
func (s *Service) Wait() {
	s.wg.Wait()
}
