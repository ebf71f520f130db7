// Package services contains server-side business logic. This file implements
// SignupService, the three-step signup state machine
// (absent → pending → active).
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/graphpass/internal/common"
	"github.com/dmitrijs2005/graphpass/internal/logging"
	"github.com/dmitrijs2005/graphpass/internal/server/blobs"
	"github.com/dmitrijs2005/graphpass/internal/server/images"
	"github.com/dmitrijs2005/graphpass/internal/server/models"
	"github.com/dmitrijs2005/graphpass/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/graphpass/internal/server/sequence"
	"github.com/go-playground/validator/v10"
)

// basicInfo is the first signup step as validated input.
type basicInfo struct {
	Email     string `validate:"required,email"`
	Firstname string `validate:"required"`
}

// normalizeEmail is applied by every operation, so an account is found under
// the same key it was created with.
func normalizeEmail(email string) string {
	return strings.TrimSpace(email)
}

// SignupService provides the signup steps. Each step may be called in any
// order and repeated while the account is pending; once all three fields are
// present the account is active and every step fails with
// common.ErrorAlreadyCompleted.
type SignupService struct {
	accounts accounts.Repository
	images   *images.Validator
	blobs    blobs.Store
	validate *validator.Validate
	log      logging.Logger
}

// NewSignupService constructs a SignupService.
func NewSignupService(repo accounts.Repository, v *images.Validator, store blobs.Store, log logging.Logger) *SignupService {
	return &SignupService{
		accounts: repo,
		images:   v,
		blobs:    store,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		log:      log.With("module", "signup"),
	}
}

func (s *SignupService) validateBasic(in basicInfo) error {
	if err := s.validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%w: invalid %s", common.ErrorValidation, strings.ToLower(verrs[0].Field()))
		}
		return fmt.Errorf("%w: %v", common.ErrorValidation, err)
	}
	return nil
}

// SubmitBasicInfo creates a pending account or overwrites the firstname of a
// pending one. created reports whether a new record was inserted.
func (s *SignupService) SubmitBasicInfo(ctx context.Context, email, firstname string) (acc *models.Account, created bool, err error) {
	in := basicInfo{Email: normalizeEmail(email), Firstname: strings.TrimSpace(firstname)}
	if err := s.validateBasic(in); err != nil {
		return nil, false, err
	}
	ctx = logging.ContextWith(ctx, "email", in.Email)

	_, err = s.accounts.Get(ctx, in.Email)
	switch {
	case errors.Is(err, common.ErrorNotFound):
		acc = &models.Account{Email: in.Email, Firstname: in.Firstname}
		err = s.accounts.Create(ctx, acc)
		if err == nil {
			s.log.Info(ctx, "account created", "status", acc.Status())
			return acc, true, nil
		}
		if !errors.Is(err, common.ErrorAlreadyExists) {
			return nil, false, err
		}
		// a concurrent request created it first
	case err != nil:
		return nil, false, err
	}

	acc, err = s.accounts.Update(ctx, in.Email, func(a *models.Account) error {
		if a.IsActive() {
			return common.ErrorAlreadyCompleted
		}
		a.Firstname = in.Firstname
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	s.log.Info(ctx, "basic info updated", "status", acc.Status())
	return acc, false, nil
}

// pending loads the account and fails when it cannot take another step.
func (s *SignupService) pending(ctx context.Context, email string) error {
	acc, err := s.accounts.Get(ctx, email)
	if err != nil {
		return err
	}
	if acc.IsActive() {
		return common.ErrorAlreadyCompleted
	}
	return nil
}

// SubmitImages validates the batch and replaces the account's images.
func (s *SignupService) SubmitImages(ctx context.Context, email string, uploads []images.Upload) (*models.Account, error) {
	email = normalizeEmail(email)
	ctx = logging.ContextWith(ctx, "email", email)

	if err := s.pending(ctx, email); err != nil {
		return nil, err
	}

	imgs, err := s.images.Validate(uploads)
	if err != nil {
		return nil, err
	}

	stored, err := s.blobs.Offload(ctx, imgs)
	if err != nil {
		return nil, fmt.Errorf("store images: %w", err)
	}

	var previous []models.Image
	acc, err := s.accounts.Update(ctx, email, func(a *models.Account) error {
		if a.IsActive() {
			return common.ErrorAlreadyCompleted
		}
		previous = a.Images
		a.Images = stored
		return nil
	})
	if err != nil {
		s.discard(ctx, stored)
		return nil, err
	}
	s.discard(ctx, previous)

	s.log.Info(ctx, "images stored", "count", len(stored), "status", acc.Status())
	return acc, nil
}

func (s *SignupService) discard(ctx context.Context, imgs []models.Image) {
	if len(imgs) == 0 {
		return
	}
	if err := s.blobs.Discard(ctx, imgs); err != nil {
		s.log.Warn(ctx, "discard image blobs", "error", err)
	}
}

// SubmitPasswordSequence stores the graphical password. raw is the JSON
// array submitted by the client.
func (s *SignupService) SubmitPasswordSequence(ctx context.Context, email string, raw []byte) (*models.Account, error) {
	email = normalizeEmail(email)
	ctx = logging.ContextWith(ctx, "email", email)

	if err := s.pending(ctx, email); err != nil {
		return nil, err
	}

	seq, err := sequence.Parse(raw)
	if err != nil {
		return nil, err
	}
	text, err := sequence.Encode(seq)
	if err != nil {
		return nil, err
	}

	acc, err := s.accounts.Update(ctx, email, func(a *models.Account) error {
		if a.IsActive() {
			return common.ErrorAlreadyCompleted
		}
		a.GraphicalPassword = text
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "password sequence stored", "taps", len(seq), "status", acc.Status())
	return acc, nil
}
