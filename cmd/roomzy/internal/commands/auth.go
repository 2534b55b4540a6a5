package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/wolfeidau/roomzy/internal/guard"
	"github.com/wolfeidau/roomzy/internal/validation"
)

// RegisterCmd creates a new account.
type RegisterCmd struct {
	FirstName string `help:"First name" name:"first-name"`
	LastName  string `help:"Last name"`
	Email     string `help:"Email address"`
	Region    string `help:"Region"`
	City      string `help:"City (comuna)"`
	Phone     string `help:"Mobile phone, 9 digits starting with 9"`
	Password  string `help:"Password, prompted when empty" env:"ROOMZY_PASSWORD"`
}

func (c *RegisterCmd) Run(ctx context.Context, globals *Globals) error {
	a, err := globals.open(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	form := &validation.RegisterForm{}
	if form.FirstName, err = a.prompt.Text("First name", c.FirstName); err != nil {
		return err
	}
	if form.LastName, err = a.prompt.Text("Last name", c.LastName); err != nil {
		return err
	}
	if form.Email, err = a.prompt.Text("Email", c.Email); err != nil {
		return err
	}
	if form.Region, err = a.prompt.Text("Region", c.Region); err != nil {
		return err
	}
	if form.City, err = a.prompt.Text("City", c.City); err != nil {
		return err
	}
	if form.Phone, err = a.prompt.Text("Phone "+validation.PhonePrefix, c.Phone); err != nil {
		return err
	}
	if form.Password, form.ConfirmPassword, err = a.prompt.newPassword("Password", c.Password); err != nil {
		return err
	}

	if err := validation.Validate(form); err != nil {
		return invalidInput(a.out, err)
	}

	res := a.session.Register(ctx, form.Request())
	if !res.Success {
		printFieldErrors(a.out, res.Errors)
		return resultError(res.Message, "registration failed")
	}

	fmt.Fprintln(a.out, res.Message)
	fmt.Fprintf(a.out, "A verification code was sent to %s, confirm it with `roomzy verify-email --code <code>`\n", form.Email)
	return nil
}

// LoginCmd signs in.
type LoginCmd struct {
	Email    string `help:"Email address"`
	Password string `help:"Password, prompted when empty" env:"ROOMZY_PASSWORD"`
}

func (c *LoginCmd) Run(ctx context.Context, globals *Globals) error {
	a, err := globals.open(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	form := &validation.LoginForm{}
	if form.Email, err = a.prompt.Text("Email", c.Email); err != nil {
		return err
	}
	if form.Password, err = a.prompt.Password("Password", c.Password); err != nil {
		return err
	}

	if err := validation.Validate(form); err != nil {
		return invalidInput(a.out, err)
	}

	res := a.session.Login(ctx, form.Request())
	if !res.Success {
		return resultError(res.Message, "login failed")
	}

	if res.RequiresEmailVerification {
		fmt.Fprintln(a.out, res.Message)
		fmt.Fprintf(a.out, "Your email must be verified first, run `roomzy verify-email --code <code>`\n")
		return nil
	}

	st := a.session.Snapshot()
	if st.User != nil {
		fmt.Fprintf(a.out, "Signed in as %s <%s>\n", st.User.FullName(), st.User.Email)
		return nil
	}
	fmt.Fprintln(a.out, res.Message)
	return nil
}

// VerifyEmailCmd confirms the code sent by email.
type VerifyEmailCmd struct {
	Email string `help:"Email to verify, defaults to the pending one"`
	Code  string `help:"6 character verification code"`
}

var ErrNoPendingEmail = errors.New("no email is pending verification, pass --email")

func (c *VerifyEmailCmd) Run(ctx context.Context, globals *Globals) error {
	a, err := globals.open(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	email := c.Email
	if email == "" {
		email = a.session.Snapshot().PendingVerificationEmail
	}
	if email == "" {
		return ErrNoPendingEmail
	}

	form := &validation.VerifyEmailForm{Email: email}
	if form.Code, err = a.prompt.Text("Verification code", c.Code); err != nil {
		return err
	}

	if err := validation.Validate(form); err != nil {
		return invalidInput(a.out, err)
	}

	res := a.session.VerifyEmail(ctx, form.Request())
	if !res.Success {
		return resultError(res.Message, "verification failed")
	}

	a.session.ClearPendingVerification()

	fmt.Fprintln(a.out, res.Message)
	return nil
}

// ResendCodeCmd asks for a new verification code.
type ResendCodeCmd struct {
	Email string `help:"Email to verify, defaults to the pending one"`
}

func (c *ResendCodeCmd) Run(ctx context.Context, globals *Globals) error {
	a, err := globals.open(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	email := c.Email
	if email == "" {
		email = a.session.Snapshot().PendingVerificationEmail
	}
	if email == "" {
		return ErrNoPendingEmail
	}

	form := &validation.EmailForm{Email: email}
	if err := validation.Validate(form); err != nil {
		return invalidInput(a.out, err)
	}

	res := a.session.ResendVerificationCode(ctx, form.ResendRequest())
	if !res.Success {
		return resultError(res.Message, "could not resend the code")
	}

	fmt.Fprintln(a.out, res.Message)
	return nil
}

// LogoutCmd signs out. Local credentials are removed even when the API is unreachable.
type LogoutCmd struct{}

func (c *LogoutCmd) Run(ctx context.Context, globals *Globals) error {
	a, err := globals.open(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	a.session.Logout(ctx)

	fmt.Fprintln(a.out, "Signed out")
	return nil
}

// WhoamiCmd shows the signed in user.
type WhoamiCmd struct{}

func (c *WhoamiCmd) Run(ctx context.Context, globals *Globals) error {
	a, err := globals.open(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.guarded(ctx, guard.Guard{Require: guard.Authenticated}); err != nil {
		return err
	}

	printUser(a.out, a.session.Snapshot().User)
	return nil
}
