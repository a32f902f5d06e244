package services

import (
	"github.com/go-playground/validator/v10"
	"github.com/localnerve/videohost/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Default page sizes per listing
const (
	DefaultVideoTake        = 8
	DefaultCommentTake      = 10
	DefaultAdminTake        = 10
	DefaultSubscriptionTake = 10
	MaxTake                 = 100
)

// Page is a validated skip/take window
type Page struct {
	Skip int
	Take int
}

// NewPage validates skip and take. take above MaxTake is clamped.
func NewPage(skip, take int) (Page, error) {
	if skip < 0 {
		return Page{}, types.BadRequest("skip must not be negative.")
	}
	if take <= 0 {
		return Page{}, types.BadRequest("take must be positive.")
	}
	return Page{Skip: skip, Take: min(take, MaxTake)}, nil
}

func (p Page) apply(q *gorm.DB) *gorm.DB {
	return q.Offset(p.Skip).Limit(p.Take)
}

// quiet silences the SQL log for read paths
func quiet(db *gorm.DB) *gorm.DB {
	return db.Session(&gorm.Session{Logger: db.Logger.LogMode(logger.Silent)})
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// validationMessages flattens validator output into client readable lines
func validationMessages(err error) []string {
	ves, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{err.Error()}
	}
	out := make([]string, 0, len(ves))
	for _, fe := range ves {
		switch fe.Tag() {
		case "required":
			out = append(out, fe.Field()+" is required.")
		case "email":
			out = append(out, fe.Field()+" must be a valid email address.")
		case "max":
			out = append(out, fe.Field()+" must be at most "+fe.Param()+" characters.")
		default:
			out = append(out, fe.Field()+" is invalid.")
		}
	}
	return out
}

// checkStruct runs validator tags on an input struct
func checkStruct(v any, message string) error {
	if err := validate.Struct(v); err != nil {
		return types.BadRequest(message, validationMessages(err)...)
	}
	return nil
}
