package numbering

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

var ErrNumberTaken = errors.New("number_taken")

// TakenFunc reports whether number is already used by the company.
type TakenFunc func(ctx context.Context, db *gorm.DB, number string) (bool, error)

// Assign returns supplied when it is free, or the next generated number when
// supplied is blank. db should be the caller's transaction.
func Assign(ctx context.Context, db *gorm.DB, gen Generator, companyID snowflake.ID, docType, supplied string, issuedAt time.Time, taken TakenFunc) (string, error) {
	if number := strings.TrimSpace(supplied); number != "" {
		exists, err := taken(ctx, db, number)
		if err != nil {
			return "", err
		}
		if exists {
			return "", ErrNumberTaken
		}
		return number, nil
	}
	return gen.Next(ctx, db, companyID, docType, issuedAt)
}
