package commands

import (
	"context"
	"fmt"

	"github.com/wolfeidau/roomzy/internal/guard"
	"github.com/wolfeidau/roomzy/internal/validation"
)

type PasswordCmd struct {
	Change PasswordChangeCmd `cmd:"" help:"Change the password of the signed in user"`
	Forgot PasswordForgotCmd `cmd:"" help:"Request a password reset code by email"`
	Reset  PasswordResetCmd  `cmd:"" help:"Set a new password with a reset code"`
}

type PasswordChangeCmd struct {
	Current string `help:"Current password, prompted when empty" env:"ROOMZY_PASSWORD"`
	New     string `help:"New password, prompted when empty" name:"new" env:"ROOMZY_NEW_PASSWORD"`
}

func (c *PasswordChangeCmd) Run(ctx context.Context, globals *Globals) error {
	a, err := globals.open(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.guarded(ctx, guard.Guard{Require: guard.Authenticated}); err != nil {
		return err
	}

	form := &validation.ChangePasswordForm{}
	if form.CurrentPassword, err = a.prompt.Password("Current password", c.Current); err != nil {
		return err
	}
	if form.NewPassword, form.ConfirmPassword, err = a.prompt.newPassword("New password", c.New); err != nil {
		return err
	}

	if err := validation.Validate(form); err != nil {
		return invalidInput(a.out, err)
	}

	res := a.session.ChangePassword(ctx, form.Request())
	if !res.Success {
		printFieldErrors(a.out, res.Errors)
		return resultError(res.Message, "password change failed")
	}

	fmt.Fprintln(a.out, res.Message)
	return nil
}

type PasswordForgotCmd struct {
	Email string `help:"Account email"`
}

func (c *PasswordForgotCmd) Run(ctx context.Context, globals *Globals) error {
	a, err := globals.open(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	form := &validation.EmailForm{}
	if form.Email, err = a.prompt.Text("Email", c.Email); err != nil {
		return err
	}

	if err := validation.Validate(form); err != nil {
		return invalidInput(a.out, err)
	}

	res := a.session.ForgotPassword(ctx, form.ForgotPasswordRequest())
	if !res.Success {
		return resultError(res.Message, "could not request a reset code")
	}

	fmt.Fprintln(a.out, res.Message)
	fmt.Fprintf(a.out, "Set a new password with `roomzy password reset --email %s --code <code>`\n", form.Email)
	return nil
}

type PasswordResetCmd struct {
	Email string `help:"Account email"`
	Code  string `help:"6 character reset code"`
	New   string `help:"New password, prompted when empty" name:"new" env:"ROOMZY_NEW_PASSWORD"`
}

func (c *PasswordResetCmd) Run(ctx context.Context, globals *Globals) error {
	a, err := globals.open(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	form := &validation.ResetPasswordForm{}
	if form.Email, err = a.prompt.Text("Email", c.Email); err != nil {
		return err
	}
	if form.Code, err = a.prompt.Text("Reset code", c.Code); err != nil {
		return err
	}
	if form.NewPassword, form.ConfirmPassword, err = a.prompt.newPassword("New password", c.New); err != nil {
		return err
	}

	if err := validation.Validate(form); err != nil {
		return invalidInput(a.out, err)
	}

	res := a.session.ResetPassword(ctx, form.Request())
	if !res.Success {
		printFieldErrors(a.out, res.Errors)
		return resultError(res.Message, "password reset failed")
	}

	fmt.Fprintln(a.out, res.Message)
	return nil
}
