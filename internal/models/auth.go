package models

// Tokens is the credential pair issued by the backend on login, verification and refresh.
type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn,omitempty"`
}

// FieldError is a server-side validation failure attached to one input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Response is the uniform envelope every backend endpoint answers with.
type Response[T any] struct {
	Success                   bool         `json:"success"`
	Message                   string       `json:"message"`
	Data                      *T           `json:"data,omitempty"`
	User                      *User        `json:"user,omitempty"`
	Tokens                    *Tokens      `json:"tokens,omitempty"`
	RequiresEmailVerification bool         `json:"requiresEmailVerification,omitempty"`
	Errors                    []FieldError `json:"errors,omitempty"`
	Error                     string       `json:"error,omitempty"`
}

// Empty is used as the payload type for endpoints that return no data.
type Empty struct{}

// Result is what every session action hands back to its caller.
// Actions never fail with an error, they report through Success and Message.
type Result struct {
	Success                   bool
	Message                   string
	RequiresEmailVerification bool
	Errors                    []FieldError
}

type RegisterRequest struct {
	Name     string `json:"name"`
	LastName string `json:"lastName"`
	Email    string `json:"email"`
	Region   string `json:"region"`
	City     string `json:"city"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
	Role     Role   `json:"role,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type VerifyEmailRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type ResendCodeRequest struct {
	Email string `json:"email"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"newPassword"`
}

// UpdateProfileRequest only carries the fields being changed.
type UpdateProfileRequest struct {
	Name     *string `json:"name,omitempty"`
	LastName *string `json:"lastName,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	City     *string `json:"city,omitempty"`
	Region   *string `json:"region,omitempty"`
	Bio      *string `json:"bio,omitempty"`
	Habits   *string `json:"habits,omitempty"`
}
