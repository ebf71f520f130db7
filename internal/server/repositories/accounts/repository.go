// Package accounts stores signup records keyed by email.
//
// Every backend serializes Update calls for the same email, so a
// read-modify-write of one account never loses a concurrent update. Updates
// of different accounts do not coordinate.
package accounts

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/graphpass/internal/common"
	"github.com/dmitrijs2005/graphpass/internal/server/models"
)

// MutateFunc changes an account in place. Returning an error aborts the
// update and nothing is written. Optimistic backends may call it more than
// once, each time with a freshly loaded account.
type MutateFunc func(acc *models.Account) error

type Repository interface {
	// Get returns common.ErrorNotFound when no account has the email.
	Get(ctx context.Context, email string) (*models.Account, error)
	// Create inserts a new account and fills its ID. It returns
	// common.ErrorAlreadyExists when the email is taken.
	Create(ctx context.Context, acc *models.Account) error
	// Update atomically loads the account, applies fn and writes it back.
	Update(ctx context.Context, email string, fn MutateFunc) (*models.Account, error)
}

// apply runs fn and rejects attempts to move the record to another email.
func apply(acc *models.Account, fn MutateFunc) error {
	email := acc.Email
	if err := fn(acc); err != nil {
		return err
	}
	if acc.Email != email {
		return fmt.Errorf("%w: email cannot be changed", common.ErrorValidation)
	}
	return nil
}
