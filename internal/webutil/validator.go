package webutil

import (
	"errors"
	"log"
	"reflect"
	"strings"

	"verify_keep/internal/model"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// Validator はアプリケーション全体で共有されるバリデータインスタンスです。
var Validator *validator.Validate

// Trans はエラーメッセージを翻訳するためのトランスレータです。
var Trans ut.Translator

func init() {
	Validator = validator.New(validator.WithRequiredStructEnabled())

	// JSONタグからフィールド名を取得するように設定
	Validator.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	english := en.New()
	uni := ut.New(english, english)
	var found bool
	Trans, found = uni.GetTranslator("en")
	if !found {
		log.Fatal("translator not found")
	}

	if err := en_translations.RegisterDefaultTranslations(Validator, Trans); err != nil {
		log.Fatal(err)
	}

	registerTranslation := func(tag string, msg string) {
		Validator.RegisterTranslation(tag, Trans, func(ut ut.Translator) error {
			return ut.Add(tag, msg, true)
		}, func(ut ut.Translator, fe validator.FieldError) string {
			t, _ := ut.T(tag, fe.Field(), fe.Param())
			return t
		})
	}

	registerTranslation("required", "{0} is required.")
	registerTranslation("email", "{0} must be a valid email address.")
	registerTranslation("min", "{0} must be at least {1} characters.")
	registerTranslation("max", "{0} must be at most {1} characters.")
}

// IsValidEmail はリクエスト検証と同じルールでメールアドレスを検証します
func IsValidEmail(email string) bool {
	return Validator.Var(email, "required,email") == nil
}

// ValidateStruct は構造体を検証し、失敗時は VALIDATION_ERROR の AppError を返します
func ValidateStruct(s interface{}) error {
	err := Validator.Struct(s)
	if err == nil {
		return nil
	}
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return NewValidationErrorResponse(validationErrs)
	}
	return model.NewAppError("VALIDATION_ERROR", "Request validation failed.", "", model.ErrInvalidInput)
}
