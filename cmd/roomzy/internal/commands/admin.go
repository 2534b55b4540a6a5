package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/wolfeidau/roomzy/internal/guard"
	"github.com/wolfeidau/roomzy/internal/models"
	"github.com/wolfeidau/roomzy/internal/service"
	"github.com/wolfeidau/roomzy/internal/validation"
)

type AdminCmd struct {
	Users AdminUsersCmd `cmd:"" help:"Manage user accounts"`
}

type AdminUsersCmd struct {
	List   AdminUsersListCmd   `cmd:"" help:"List users"`
	Show   AdminUsersShowCmd   `cmd:"" help:"Show a user"`
	Create AdminUsersCreateCmd `cmd:"" help:"Create a user with any role"`
	Update AdminUsersUpdateCmd `cmd:"" help:"Update a user, only the given fields change"`
	Delete AdminUsersDeleteCmd `cmd:"" help:"Delete a user"`
	Stats  AdminUsersStatsCmd  `cmd:"" help:"Show user counts"`
}

// openAdmin opens the app and checks the signed in user is an admin.
func openAdmin(ctx context.Context, globals *Globals) (*app, error) {
	a, err := globals.open(ctx)
	if err != nil {
		return nil, err
	}
	if err := a.guarded(ctx, guard.AdminGuard{}); err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

type AdminUsersListCmd struct {
	Page   int    `help:"Page number" default:"1"`
	Limit  int    `help:"Users per page" default:"10"`
	Role   string `help:"Only users with this role: admin, seeker or host"`
	Search string `help:"Match name or email"`
}

func (c *AdminUsersListCmd) Run(ctx context.Context, globals *Globals) error {
	role := models.Role(strings.ToLower(c.Role))
	if role != "" && !role.Valid() {
		return fmt.Errorf("%w: unknown role %q", ErrInvalidInput, c.Role)
	}

	a, err := openAdmin(ctx, globals)
	if err != nil {
		return err
	}
	defer a.close()

	resp, err := a.admin.ListUsers(ctx, models.UsersFilter{
		Page:   c.Page,
		Limit:  c.Limit,
		Role:   role,
		Search: c.Search,
	})
	if err != nil {
		return a.apiError(ctx, err, "could not list users")
	}
	if !resp.Success || resp.Data == nil {
		return resultError(resp.Message, "could not list users")
	}

	printUsers(a.out, resp.Data.Users)
	p := resp.Data.Pagination
	fmt.Fprintf(a.out, "Page %d of %d, %d users\n", p.CurrentPage, p.TotalPages, p.TotalUsers)
	return nil
}

type AdminUsersShowCmd struct {
	ID int64 `arg:"" help:"User ID"`
}

func (c *AdminUsersShowCmd) Run(ctx context.Context, globals *Globals) error {
	a, err := openAdmin(ctx, globals)
	if err != nil {
		return err
	}
	defer a.close()

	resp, err := a.admin.GetUser(ctx, c.ID)
	if err != nil {
		return a.apiError(ctx, err, "could not load the user")
	}
	if !resp.Success || resp.Data == nil {
		return resultError(resp.Message, "could not load the user")
	}

	printUser(a.out, &resp.Data.User)
	return nil
}

type AdminUsersCreateCmd struct {
	Name     string `help:"First name"`
	LastName string `help:"Last name"`
	Email    string `help:"Email address"`
	Region   string `help:"Region"`
	City     string `help:"City (comuna)"`
	Phone    string `help:"Mobile phone, 9 digits starting with 9"`
	Role     string `help:"Role: admin, seeker or host" default:"seeker"`
	Bio      string `help:"Short biography"`
	Habits   string `help:"Living habits"`
	Password string `help:"Initial password, prompted when empty" env:"ROOMZY_NEW_PASSWORD"`
}

func (c *AdminUsersCreateCmd) Run(ctx context.Context, globals *Globals) error {
	a, err := openAdmin(ctx, globals)
	if err != nil {
		return err
	}
	defer a.close()

	form := &validation.CreateUserForm{
		Name:     c.Name,
		LastName: c.LastName,
		Email:    c.Email,
		Region:   c.Region,
		City:     c.City,
		Phone:    c.Phone,
		Role:     models.Role(c.Role),
		Bio:      c.Bio,
		Habits:   c.Habits,
	}
	if form.Password, form.ConfirmPassword, err = a.prompt.newPassword("Password", c.Password); err != nil {
		return err
	}

	if err := validation.Validate(form); err != nil {
		return invalidInput(a.out, err)
	}

	resp, err := a.admin.CreateUser(ctx, form.Request())
	if err != nil {
		var svcErr *service.Error
		if errors.As(err, &svcErr) {
			printFieldErrors(a.out, svcErr.Errors)
		}
		return a.apiError(ctx, err, "could not create the user")
	}
	if !resp.Success {
		printFieldErrors(a.out, resp.Errors)
		return resultError(resp.Message, "could not create the user")
	}

	if resp.Data != nil {
		fmt.Fprintf(a.out, "Created user %d <%s>\n", resp.Data.User.ID, resp.Data.User.Email)
		return nil
	}
	fmt.Fprintln(a.out, resp.Message)
	return nil
}

type AdminUsersUpdateCmd struct {
	ID int64 `arg:"" help:"User ID"`

	Name           string `help:"First name"`
	LastName       string `help:"Last name"`
	Email          string `help:"Email address"`
	Region         string `help:"Region"`
	City           string `help:"City (comuna)"`
	Phone          string `help:"Mobile phone, 9 digits starting with 9"`
	Role           string `help:"Role: admin, seeker or host"`
	Bio            string `help:"Short biography"`
	Habits         string `help:"Living habits"`
	MarkVerified   bool   `help:"Mark the email as verified" xor:"verified"`
	MarkUnverified bool   `help:"Mark the email as not verified" xor:"verified"`
}

// ErrNothingToUpdate is returned when no field flag was given.
var ErrNothingToUpdate = errors.New("nothing to update, pass at least one field flag")

// Request builds the partial update from the flags that were set.
func (c *AdminUsersUpdateCmd) Request() (models.UpdateUserRequest, error) {
	var req models.UpdateUserRequest
	changed := false

	set := func(dst **string, v string) {
		if v == "" {
			return
		}
		*dst = &v
		changed = true
	}

	set(&req.Name, strings.TrimSpace(c.Name))
	set(&req.LastName, strings.TrimSpace(c.LastName))
	set(&req.Email, validation.NormalizeEmail(c.Email))
	set(&req.Region, c.Region)
	set(&req.City, strings.TrimSpace(c.City))
	set(&req.Bio, strings.TrimSpace(c.Bio))
	set(&req.Habits, strings.TrimSpace(c.Habits))

	if c.Phone != "" {
		phone := validation.NormalizePhone(c.Phone)
		if !validation.IsPhone(phone) {
			return req, validation.Errors{"phone": "El teléfono debe tener 9 dígitos y empezar con 9 (ej: 987654321)"}
		}
		req.Phone = &phone
		changed = true
	}
	if c.Role != "" {
		role := models.Role(strings.ToLower(c.Role))
		if !role.Valid() {
			return req, validation.Errors{"role": "El rol debe ser admin, seeker o host"}
		}
		req.Role = &role
		changed = true
	}
	if c.MarkVerified || c.MarkUnverified {
		verified := c.MarkVerified
		req.IsEmailVerified = &verified
		changed = true
	}

	if !changed {
		return req, ErrNothingToUpdate
	}
	return req, nil
}

func (c *AdminUsersUpdateCmd) Run(ctx context.Context, globals *Globals) error {
	a, err := openAdmin(ctx, globals)
	if err != nil {
		return err
	}
	defer a.close()

	req, err := c.Request()
	if err != nil {
		return invalidInput(a.out, err)
	}

	resp, err := a.admin.UpdateUser(ctx, c.ID, req)
	if err != nil {
		var svcErr *service.Error
		if errors.As(err, &svcErr) {
			printFieldErrors(a.out, svcErr.Errors)
		}
		return a.apiError(ctx, err, "could not update the user")
	}
	if !resp.Success {
		printFieldErrors(a.out, resp.Errors)
		return resultError(resp.Message, "could not update the user")
	}

	// Editing yourself keeps the local session current
	if me := a.session.Snapshot().User; me != nil && me.ID == c.ID && resp.Data != nil {
		a.session.SetUser(&resp.Data.User)
	}

	fmt.Fprintf(a.out, "Updated user %d\n", c.ID)
	return nil
}

type AdminUsersDeleteCmd struct {
	ID  int64 `arg:"" help:"User ID"`
	Yes bool  `short:"y" help:"Do not ask for confirmation"`
}

// ErrAborted is returned when a confirmation prompt is declined.
var ErrAborted = errors.New("aborted")

func (c *AdminUsersDeleteCmd) Run(ctx context.Context, globals *Globals) error {
	a, err := openAdmin(ctx, globals)
	if err != nil {
		return err
	}
	defer a.close()

	if me := a.session.Snapshot().User; me != nil && me.ID == c.ID {
		return errors.New("refusing to delete the signed in user")
	}

	if !c.Yes {
		answer, err := a.prompt.Text(fmt.Sprintf("Delete user %d? [y/N]", c.ID), "")
		if err != nil {
			return err
		}
		if !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
			return ErrAborted
		}
	}

	resp, err := a.admin.DeleteUser(ctx, c.ID)
	if err != nil {
		return a.apiError(ctx, err, "could not delete the user")
	}
	if !resp.Success {
		return resultError(resp.Message, "could not delete the user")
	}

	fmt.Fprintf(a.out, "Deleted user %d\n", c.ID)
	return nil
}

type AdminUsersStatsCmd struct{}

func (c *AdminUsersStatsCmd) Run(ctx context.Context, globals *Globals) error {
	a, err := openAdmin(ctx, globals)
	if err != nil {
		return err
	}
	defer a.close()

	resp, err := a.admin.UserStats(ctx)
	if err != nil {
		return a.apiError(ctx, err, "could not load statistics")
	}
	if !resp.Success || resp.Data == nil {
		return resultError(resp.Message, "could not load statistics")
	}

	s := resp.Data.Stats
	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Total:\t%d\n", s.TotalUsers)
	fmt.Fprintf(w, "Admins:\t%d\n", s.UsersByRole.Admin)
	fmt.Fprintf(w, "Seekers:\t%d\n", s.UsersByRole.Seeker)
	fmt.Fprintf(w, "Hosts:\t%d\n", s.UsersByRole.Host)
	fmt.Fprintf(w, "Verified:\t%d\n", s.VerifiedUsers)
	fmt.Fprintf(w, "Unverified:\t%d\n", s.UnverifiedUsers)
	return w.Flush()
}
