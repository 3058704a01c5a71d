package http

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/nyaruka/phonenumbers"

	"github.com/aussiebroadwan/adminusers/pkg/adminsdk"
	"github.com/aussiebroadwan/adminusers/pkg/httpx"
)

const (
	maxFieldLength = 255

	// Telephone numbers without a country code are read as UK numbers.
	defaultPhoneRegion = "GB"
)

func required(field string) validation.Rule {
	return validation.Required.Error(fmt.Sprintf("Field [%s] is required", field))
}

func notNil(field string) validation.Rule {
	return validation.NotNil.Error(fmt.Sprintf("Field [%s] is required", field))
}

func maxLength(field string) validation.Rule {
	return validation.RuneLength(0, maxFieldLength).
		Error(fmt.Sprintf("Field [%s] must have a maximum length of %d characters", field, maxFieldLength))
}

func numeric(field string) validation.Rule {
	return is.Digit.Error(fmt.Sprintf("Field [%s] must be a number", field))
}

func emailAddress(field string) validation.Rule {
	return is.Email.Error(fmt.Sprintf("Field [%s] must be a valid email address", field))
}

func telephone(field string) validation.Rule {
	return validation.By(func(value interface{}) error {
		s, _ := value.(string)
		if s == "" {
			return nil
		}
		if !validTelephone(s) {
			return fmt.Errorf("Field [%s] must be a valid telephone number", field)
		}
		return nil
	})
}

func oneOf(field string, values ...interface{}) validation.Rule {
	return validation.In(values...).Error(fmt.Sprintf("Field [%s] is not supported", field))
}

func validTelephone(s string) bool {
	num, err := phonenumbers.Parse(s, defaultPhoneRegion)
	return err == nil && phonenumbers.IsValidNumber(num)
}

// validationMessages flattens ozzo validation errors into messages ordered by
// field name so responses are stable.
func validationMessages(err error) []string {
	var errs validation.Errors
	if !errors.As(err, &errs) {
		return []string{err.Error()}
	}

	fields := make([]string, 0, len(errs))
	for f := range errs {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, errs[f].Error())
	}
	return out
}

// invalid answers 400 with the validation messages when err is not nil.
func invalid(w http.ResponseWriter, err error) bool {
	if err == nil {
		return false
	}
	httpx.WriteErrors(w, http.StatusBadRequest, validationMessages(err)...)
	return true
}

func validateCreateUser(req *adminsdk.CreateUserRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Username, required("username"), maxLength("username")),
		validation.Field(&req.Email, required("email"), maxLength("email"), emailAddress("email")),
		validation.Field(&req.Password, required("password")),
		validation.Field(&req.TelephoneNumber, required("telephone_number"), telephone("telephone_number")),
		validation.Field(&req.RoleName, required("role_name")),
		validation.Field(&req.ServiceID, maxLength("service_id")),
	)
}

func validateAuthenticate(req *adminsdk.AuthenticateRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Username, required("username")),
		validation.Field(&req.Password, required("password")),
	)
}

func validateSessionVersion(req *adminsdk.SessionVersionRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.ExpectedVersion, notNil("expected_version")),
	)
}

func validateSecondFactor(req *adminsdk.SecondFactorRequest) error {
	code := string(req.Code)
	return validation.Errors{
		"code": validation.Validate(code, required("code"), numeric("code")),
	}.Filter()
}

func validateForgottenPassword(req *adminsdk.ForgottenPasswordRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Username, required("username"), maxLength("username")),
	)
}

func validateResetPassword(req *adminsdk.ResetPasswordRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.ForgottenPasswordCode, required("forgotten_password_code"), maxLength("forgotten_password_code")),
		validation.Field(&req.NewPassword, required("new_password")),
	)
}

func validateServiceInvite(req *adminsdk.ServiceInviteRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Email, required("email"), maxLength("email"), emailAddress("email")),
		validation.Field(&req.TelephoneNumber, telephone("telephone_number")),
	)
}

func validateUserInvite(req *adminsdk.UserInviteRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Sender, required("sender")),
		validation.Field(&req.Email, required("email"), maxLength("email"), emailAddress("email")),
		validation.Field(&req.RoleName, required("role_name")),
		validation.Field(&req.ServiceID, required("service_id"), maxLength("service_id")),
	)
}

func validateInviteOTP(req *adminsdk.InviteOTPRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.TelephoneNumber, required("telephone_number"), telephone("telephone_number")),
		validation.Field(&req.Password, required("password")),
	)
}

func validateInviteValidate(req *adminsdk.InviteValidateRequest) error {
	return validation.Errors{
		"code": validation.Validate(req.Code, required("code"), maxLength("code")),
		"otp":  validation.Validate(string(req.OTP), required("otp"), numeric("otp")),
	}.Filter()
}

// validatePatch checks the operation shape and converts it into a service
// patch with a value of the type the path expects.
func validatePatch(req *adminsdk.PatchRequest) (patchOp, error) {
	err := validation.ValidateStruct(req,
		validation.Field(&req.Op, required("op"), oneOf("op", "replace")),
		validation.Field(&req.Path, required("path"), oneOf("path", "disabled", "telephone_number")),
		validation.Field(&req.Value, notNil("value")),
	)
	if err != nil {
		return patchOp{}, err
	}

	switch req.Path {
	case "disabled":
		b, ok := parseBool(req.Value)
		if !ok {
			return patchOp{}, validation.Errors{"value": errors.New("Field [value] must be a boolean")}
		}
		return patchOp{path: req.Path, value: b}, nil
	default:
		s, ok := req.Value.(string)
		if !ok || !validTelephone(s) {
			return patchOp{}, validation.Errors{"value": errors.New("Field [value] must be a valid telephone number")}
		}
		return patchOp{path: req.Path, value: s}, nil
	}
}

type patchOp struct {
	path  string
	value any
}

func parseBool(v any) (bool, bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case string:
		switch strings.ToLower(t) {
		case "true":
			return true, true
		case "false":
			return false, true
		}
	}
	return false, false
}
