package validation

import (
	"strings"

	"github.com/wolfeidau/roomzy/internal/models"
)

// Messages shared by several forms.
var (
	emailMessages = map[string]string{
		"required": "El email es requerido",
		"email":    "El formato del email no es válido",
		"max":      "El email no puede exceder 100 caracteres",
	}
	passwordMessages = map[string]string{
		"required":       "La contraseña es requerida",
		"min":            "La contraseña debe tener al menos 8 caracteres",
		"max":            "La contraseña no puede exceder 100 caracteres",
		"strongpassword": "La contraseña debe contener al menos una mayúscula, una minúscula y un número",
	}
	newPasswordMessages = withRequired(passwordMessages, "La nueva contraseña es requerida")
	phoneMessages       = map[string]string{
		"required": "El teléfono es requerido",
		"len":      "El teléfono debe tener exactamente 9 dígitos",
		"phone":    "El teléfono debe comenzar con 9 y tener 9 dígitos (ej: 987654321)",
	}
	codeMessages = map[string]string{
		"required": "El código de verificación es requerido",
		"len":      "El código debe tener exactamente 6 caracteres",
		"code":     "El código debe contener solo letras mayúsculas y números",
	}
	firstNameMessages = map[string]string{
		"required":   "El nombre es requerido",
		"min":        "El nombre debe tener al menos 2 caracteres",
		"max":        "El nombre no puede exceder 50 caracteres",
		"personname": "El nombre solo puede contener letras",
	}
	lastNameMessages = map[string]string{
		"required":   "El apellido es requerido",
		"min":        "El apellido debe tener al menos 2 caracteres",
		"max":        "El apellido no puede exceder 50 caracteres",
		"personname": "El apellido solo puede contener letras",
	}
)

const passwordMismatch = "Las contraseñas no coinciden"

func withRequired(m map[string]string, required string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	out["required"] = required
	return out
}

// RegisterForm is the sign up form.
type RegisterForm struct {
	FirstName       string `json:"firstName" validate:"required,min=2,max=50,personname"`
	LastName        string `json:"lastName" validate:"required,min=2,max=50,personname"`
	Email           string `json:"email" validate:"required,email,max=100"`
	Region          string `json:"region" validate:"required"`
	City            string `json:"city" validate:"required"`
	Phone           string `json:"phone" validate:"required,len=9,phone"`
	Password        string `json:"password" validate:"required,min=8,max=100,strongpassword"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

func (f *RegisterForm) normalize() {
	f.Email = NormalizeEmail(f.Email)
	f.Phone = NormalizePhone(f.Phone)
}

func (f *RegisterForm) messages() fieldMessages {
	return fieldMessages{
		"firstName":       firstNameMessages,
		"lastName":        lastNameMessages,
		"email":           emailMessages,
		"region":          {"required": "La región es requerida"},
		"city":            {"required": "La comuna es requerida"},
		"phone":           phoneMessages,
		"password":        passwordMessages,
		"confirmPassword": {"required": "Confirma tu contraseña", "eqfield": passwordMismatch},
	}
}

// Request builds the sign up request. New accounts are seekers.
func (f *RegisterForm) Request() models.RegisterRequest {
	return models.RegisterRequest{
		Name:     f.FirstName,
		LastName: f.LastName,
		Email:    f.Email,
		Region:   f.Region,
		City:     f.City,
		Phone:    f.Phone,
		Password: f.Password,
		Role:     models.RoleSeeker,
	}
}

type LoginForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (f *LoginForm) normalize() {
	f.Email = NormalizeEmail(f.Email)
}

func (f *LoginForm) messages() fieldMessages {
	return fieldMessages{
		"email":    emailMessages,
		"password": passwordMessages,
	}
}

func (f *LoginForm) Request() models.LoginRequest {
	return models.LoginRequest{Email: f.Email, Password: f.Password}
}

type VerifyEmailForm struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6,code"`
}

func (f *VerifyEmailForm) normalize() {
	f.Email = NormalizeEmail(f.Email)
	f.Code = NormalizeCode(f.Code)
}

func (f *VerifyEmailForm) messages() fieldMessages {
	return fieldMessages{
		"email": emailMessages,
		"code":  codeMessages,
	}
}

func (f *VerifyEmailForm) Request() models.VerifyEmailRequest {
	return models.VerifyEmailRequest{Email: f.Email, Code: f.Code}
}

// EmailForm is used by the forgot password and resend code forms.
type EmailForm struct {
	Email string `json:"email" validate:"required,email"`
}

func (f *EmailForm) normalize() {
	f.Email = NormalizeEmail(f.Email)
}

func (f *EmailForm) messages() fieldMessages {
	return fieldMessages{"email": emailMessages}
}

func (f *EmailForm) ResendRequest() models.ResendCodeRequest {
	return models.ResendCodeRequest{Email: f.Email}
}

func (f *EmailForm) ForgotPasswordRequest() models.ForgotPasswordRequest {
	return models.ForgotPasswordRequest{Email: f.Email}
}

type ResetPasswordForm struct {
	Email           string `json:"email" validate:"required,email"`
	Code            string `json:"code" validate:"required,len=6,code"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,max=100,strongpassword"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=NewPassword"`
}

func (f *ResetPasswordForm) normalize() {
	f.Email = NormalizeEmail(f.Email)
	f.Code = NormalizeCode(f.Code)
}

func (f *ResetPasswordForm) messages() fieldMessages {
	return fieldMessages{
		"email":           emailMessages,
		"code":            codeMessages,
		"newPassword":     newPasswordMessages,
		"confirmPassword": {"required": "Confirma tu nueva contraseña", "eqfield": passwordMismatch},
	}
}

func (f *ResetPasswordForm) Request() models.ResetPasswordRequest {
	return models.ResetPasswordRequest{Email: f.Email, Code: f.Code, NewPassword: f.NewPassword}
}

type ChangePasswordForm struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,max=100,strongpassword"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=NewPassword"`
}

func (f *ChangePasswordForm) normalize() {}

func (f *ChangePasswordForm) messages() fieldMessages {
	return fieldMessages{
		"currentPassword": {"required": "La contraseña actual es requerida"},
		"newPassword":     newPasswordMessages,
		"confirmPassword": {"required": "Confirma tu nueva contraseña", "eqfield": passwordMismatch},
	}
}

func (f *ChangePasswordForm) Request() models.ChangePasswordRequest {
	return models.ChangePasswordRequest{CurrentPassword: f.CurrentPassword, NewPassword: f.NewPassword}
}

// EditProfileForm holds the full editable profile, prefilled from the user.
type EditProfileForm struct {
	Name     string `json:"name" validate:"required,min=2,max=50"`
	LastName string `json:"lastName" validate:"required,min=2,max=50"`
	Phone    string `json:"phone" validate:"omitempty,phone"`
	City     string `json:"city" validate:"required,max=50"`
	Region   string `json:"region" validate:"required,max=50"`
	Bio      string `json:"bio" validate:"max=500"`
	Habits   string `json:"habits" validate:"max=1000"`
}

// NewEditProfileForm prefills the form with u's current values.
func NewEditProfileForm(u *models.User) *EditProfileForm {
	return &EditProfileForm{
		Name:     u.Name,
		LastName: u.LastName,
		Phone:    NormalizePhone(u.Phone),
		City:     u.City,
		Region:   u.Region,
		Bio:      u.Bio,
		Habits:   u.Habits,
	}
}

func (f *EditProfileForm) normalize() {
	f.Name = strings.TrimSpace(f.Name)
	f.LastName = strings.TrimSpace(f.LastName)
	f.Phone = NormalizePhone(f.Phone)
	f.City = strings.TrimSpace(f.City)
	f.Bio = strings.TrimSpace(f.Bio)
	f.Habits = strings.TrimSpace(f.Habits)
}

func (f *EditProfileForm) messages() fieldMessages {
	return fieldMessages{
		"name": {
			"required": "El nombre es requerido",
			"min":      "El nombre debe tener al menos 2 caracteres",
			"max":      "El nombre no puede exceder 50 caracteres",
		},
		"lastName": {
			"required": "El apellido es requerido",
			"min":      "El apellido debe tener al menos 2 caracteres",
			"max":      "El apellido no puede exceder 50 caracteres",
		},
		"phone":  {"phone": "El teléfono debe tener 9 dígitos y empezar con 9 (ej: 987654321)"},
		"city":   {"required": "La ciudad es requerida", "max": "La ciudad no puede exceder 50 caracteres"},
		"region": {"required": "La región es requerida", "max": "La región no puede exceder 50 caracteres"},
		"bio":    {"max": "La biografía no puede exceder 500 caracteres"},
		"habits": {"max": "Los hábitos no pueden exceder 1000 caracteres"},
	}
}

// Request builds a patch carrying only what differs from u. A nil u sends
// every field. An empty phone is left out.
func (f *EditProfileForm) Request(u *models.User) (models.UpdateProfileRequest, bool) {
	var req models.UpdateProfileRequest
	changed := false

	set := func(dst **string, value, current string) {
		if u != nil && value == current {
			return
		}
		v := value
		*dst = &v
		changed = true
	}

	var current models.User
	if u != nil {
		current = *u
	}

	set(&req.Name, f.Name, current.Name)
	set(&req.LastName, f.LastName, current.LastName)
	if f.Phone != "" {
		set(&req.Phone, f.Phone, NormalizePhone(current.Phone))
	}
	set(&req.City, f.City, current.City)
	set(&req.Region, f.Region, current.Region)
	set(&req.Bio, f.Bio, current.Bio)
	set(&req.Habits, f.Habits, current.Habits)

	return req, changed
}

// CreateUserForm is the back office form creating an account with any role.
type CreateUserForm struct {
	Name            string      `json:"name" validate:"required,min=2,max=50,personname"`
	LastName        string      `json:"lastName" validate:"required,min=2,max=50,personname"`
	Email           string      `json:"email" validate:"required,email,max=100"`
	Region          string      `json:"region" validate:"required"`
	City            string      `json:"city" validate:"required"`
	Phone           string      `json:"phone" validate:"required,len=9,phone"`
	Password        string      `json:"password" validate:"required,min=8,max=100,strongpassword"`
	ConfirmPassword string      `json:"confirmPassword" validate:"required,eqfield=Password"`
	Role            models.Role `json:"role" validate:"required,role"`
	Bio             string      `json:"bio" validate:"max=500"`
	Habits          string      `json:"habits" validate:"max=1000"`
}

func (f *CreateUserForm) normalize() {
	f.Email = NormalizeEmail(f.Email)
	f.Phone = NormalizePhone(f.Phone)
	f.Role = models.Role(strings.ToLower(strings.TrimSpace(string(f.Role))))
	f.Bio = strings.TrimSpace(f.Bio)
	f.Habits = strings.TrimSpace(f.Habits)
}

func (f *CreateUserForm) messages() fieldMessages {
	return fieldMessages{
		"name":            firstNameMessages,
		"lastName":        lastNameMessages,
		"email":           emailMessages,
		"region":          {"required": "La región es requerida"},
		"city":            {"required": "La comuna es requerida"},
		"phone":           phoneMessages,
		"password":        passwordMessages,
		"confirmPassword": {"required": "Confirma tu contraseña", "eqfield": passwordMismatch},
		"role":            {"required": "El rol es requerido", "role": "El rol debe ser admin, seeker o host"},
		"bio":             {"max": "La biografía no puede exceder 500 caracteres"},
		"habits":          {"max": "Los hábitos no pueden exceder 1000 caracteres"},
	}
}

func (f *CreateUserForm) Request() models.CreateUserRequest {
	return models.CreateUserRequest{
		Name:     f.Name,
		LastName: f.LastName,
		Email:    f.Email,
		Region:   f.Region,
		City:     f.City,
		Phone:    f.Phone,
		Password: f.Password,
		Role:     f.Role,
		Bio:      f.Bio,
		Habits:   f.Habits,
	}
}
