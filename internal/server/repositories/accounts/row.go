package accounts

import (
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/graphpass/internal/common"
	"github.com/dmitrijs2005/graphpass/internal/server/models"
)

// row mirrors the users table: images and the password sequence are text
// blobs, status is a cache of the derived account status.
type row struct {
	ID                int64
	Email             string
	Firstname         sql.NullString
	UserImages        sql.NullString
	GraphicalPassword sql.NullString
	Status            sql.NullString
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func toRow(acc *models.Account) (*row, error) {
	images, err := models.EncodeImages(acc.Images)
	if err != nil {
		return nil, err
	}
	return &row{
		ID:                acc.ID,
		Email:             acc.Email,
		Firstname:         nullable(acc.Firstname),
		UserImages:        nullable(images),
		GraphicalPassword: nullable(acc.GraphicalPassword),
		Status:            nullable(string(acc.Status())),
	}, nil
}

// account rebuilds the record. The stored status is ignored: it is derived
// again from the other fields.
func (r *row) account() (*models.Account, error) {
	images, err := models.DecodeImages(r.UserImages.String)
	if err != nil {
		return nil, fmt.Errorf("%w: user_images of %s: %v", common.ErrorMalformedStoredData, r.Email, err)
	}
	return &models.Account{
		ID:                r.ID,
		Email:             r.Email,
		Firstname:         r.Firstname.String,
		Images:            images,
		GraphicalPassword: r.GraphicalPassword.String,
	}, nil
}
