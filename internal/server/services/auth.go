package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/graphpass/internal/common"
	"github.com/dmitrijs2005/graphpass/internal/logging"
	"github.com/dmitrijs2005/graphpass/internal/server/blobs"
	"github.com/dmitrijs2005/graphpass/internal/server/models"
	"github.com/dmitrijs2005/graphpass/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/graphpass/internal/server/sequence"
)

// AuthService checks graphical passwords. No session is issued: every call
// is a single-shot credential check.
type AuthService struct {
	accounts accounts.Repository
	blobs    blobs.Store
	log      logging.Logger
}

// NewAuthService constructs an AuthService.
func NewAuthService(repo accounts.Repository, store blobs.Store, log logging.Logger) *AuthService {
	return &AuthService{
		accounts: repo,
		blobs:    store,
		log:      log.With("module", "auth"),
	}
}

// check compares submitted against the stored sequence of acc.
func (s *AuthService) check(ctx context.Context, acc *models.Account, submitted sequence.Sequence) error {
	stored, err := sequence.Decode(acc.GraphicalPassword)
	if err != nil {
		s.log.Error(ctx, "stored password sequence is corrupt", "account_id", acc.ID, "error", err)
		return err
	}
	if !sequence.Matches(stored, submitted) {
		return common.ErrorIncorrectPassword
	}
	return nil
}

// Login returns the account's firstname when submitted matches the stored
// sequence. A nil submitted sequence never matches.
func (s *AuthService) Login(ctx context.Context, email string, submitted sequence.Sequence) (string, error) {
	email = normalizeEmail(email)
	ctx = logging.ContextWith(ctx, "email", email)

	acc, err := s.accounts.Get(ctx, email)
	if err != nil {
		return "", err
	}

	if err := s.check(ctx, acc, submitted); err != nil {
		if errors.Is(err, common.ErrorIncorrectPassword) {
			s.log.Info(ctx, "login rejected")
		}
		return "", err
	}

	s.log.Info(ctx, "login succeeded")
	return acc.Firstname, nil
}

// GetImages returns the account's images with their content.
func (s *AuthService) GetImages(ctx context.Context, email string) ([]models.Image, error) {
	email = normalizeEmail(email)
	ctx = logging.ContextWith(ctx, "email", email)

	acc, err := s.accounts.Get(ctx, email)
	if err != nil {
		return nil, err
	}
	if len(acc.Images) == 0 {
		return nil, common.ErrorNoImagesFound
	}

	imgs, err := s.blobs.Resolve(ctx, acc.Images)
	if err != nil {
		if errors.Is(err, common.ErrorMalformedStoredData) {
			s.log.Error(ctx, "stored image is missing", "account_id", acc.ID, "error", err)
		}
		return nil, err
	}
	return imgs, nil
}

// VerifyPassword reports whether submitted matches the stored sequence. An
// account without a password is reported as not found.
func (s *AuthService) VerifyPassword(ctx context.Context, email string, submitted sequence.Sequence) (bool, error) {
	email = normalizeEmail(email)
	ctx = logging.ContextWith(ctx, "email", email)

	acc, err := s.accounts.Get(ctx, email)
	if err != nil {
		return false, err
	}
	if acc.GraphicalPassword == "" {
		return false, common.ErrorNotFound
	}

	if err := s.check(ctx, acc, submitted); err != nil {
		return false, err
	}
	return true, nil
}
