package models

// CreateUserRequest is used by admins to create accounts directly.
type CreateUserRequest struct {
	Name     string `json:"name"`
	LastName string `json:"lastName"`
	Email    string `json:"email"`
	Region   string `json:"region"`
	City     string `json:"city"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
	Bio      string `json:"bio,omitempty"`
	Habits   string `json:"habits,omitempty"`
}

// UpdateUserRequest is a partial admin update, nil fields are left untouched.
type UpdateUserRequest struct {
	Name            *string `json:"name,omitempty"`
	LastName        *string `json:"lastName,omitempty"`
	Email           *string `json:"email,omitempty"`
	Region          *string `json:"region,omitempty"`
	City            *string `json:"city,omitempty"`
	Phone           *string `json:"phone,omitempty"`
	Role            *Role   `json:"role,omitempty"`
	Bio             *string `json:"bio,omitempty"`
	Habits          *string `json:"habits,omitempty"`
	IsEmailVerified *bool   `json:"isEmailVerified,omitempty"`
}

// UsersFilter narrows the admin user listing.
type UsersFilter struct {
	Page   int
	Limit  int
	Role   Role
	Search string
}

type Pagination struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	TotalUsers  int  `json:"totalUsers"`
	Limit       int  `json:"limit"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
}

type UsersPage struct {
	Users      []User     `json:"users"`
	Pagination Pagination `json:"pagination"`
}

type UserEnvelope struct {
	User User `json:"user"`
}

type RoleCounts struct {
	Admin  int `json:"admin"`
	Seeker int `json:"seeker"`
	Host   int `json:"host"`
}

type UserStats struct {
	Stats struct {
		TotalUsers      int        `json:"totalUsers"`
		UsersByRole     RoleCounts `json:"usersByRole"`
		VerifiedUsers   int        `json:"verifiedUsers"`
		UnverifiedUsers int        `json:"unverifiedUsers"`
	} `json:"stats"`
}
