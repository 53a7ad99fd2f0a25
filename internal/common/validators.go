package common

import (
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Book conditions a donor can declare.
const (
	ConditionGood    = "good"
	ConditionUsable  = "usable"
	ConditionDamaged = "damaged"
)

// ValidCondition reports whether c is a known book condition.
func ValidCondition(c string) bool {
	switch c {
	case ConditionGood, ConditionUsable, ConditionDamaged:
		return true
	}
	return false
}

var registerOnce sync.Once

// RegisterValidators adds the domain tags (book_condition, edu_role) to gin's validator.
// It is safe to call more than once.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("book_condition", func(fl validator.FieldLevel) bool {
			return ValidCondition(fl.Field().String())
		})
		_ = v.RegisterValidation("edu_role", func(fl validator.FieldLevel) bool {
			return ValidRole(fl.Field().String())
		})
	})
}
