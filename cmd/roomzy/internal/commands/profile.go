package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/wolfeidau/roomzy/internal/guard"
	"github.com/wolfeidau/roomzy/internal/models"
	"github.com/wolfeidau/roomzy/internal/validation"
)

const noChangesMessage = "No hay cambios para guardar"

type ProfileCmd struct {
	Show  ProfileShowCmd  `cmd:"" help:"Show a profile, defaults to your own"`
	Edit  ProfileEditCmd  `cmd:"" help:"Edit your profile, only the given fields change"`
	Photo ProfilePhotoCmd `cmd:"" help:"Upload a new profile photo"`
}

type ProfileShowCmd struct {
	ID int64 `arg:"" optional:"" help:"User ID, defaults to the signed in user"`
}

func (c *ProfileShowCmd) Run(ctx context.Context, globals *Globals) error {
	a, err := globals.open(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.guarded(ctx, guard.Guard{Require: guard.Verified}); err != nil {
		return err
	}

	id := c.ID
	if id == 0 {
		id = a.session.Snapshot().User.ID
	}

	resp, err := a.users.GetProfile(ctx, id)
	if err != nil {
		return a.apiError(ctx, err, "could not load the profile")
	}
	if !resp.Success || resp.User == nil {
		return resultError(resp.Message, "could not load the profile")
	}

	printUser(a.out, resp.User)
	return nil
}

type ProfileEditCmd struct {
	Name     string `help:"First name"`
	LastName string `help:"Last name"`
	Phone    string `help:"Mobile phone, 9 digits starting with 9"`
	City     string `help:"City (comuna)"`
	Region   string `help:"Region"`
	Bio      string `help:"Short biography"`
	Habits   string `help:"Living habits"`
}

func (c *ProfileEditCmd) Run(ctx context.Context, globals *Globals) error {
	a, err := globals.open(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.guarded(ctx, guard.Guard{Require: guard.Verified}); err != nil {
		return err
	}

	user := a.session.Snapshot().User

	form := validation.NewEditProfileForm(user)
	overlay(&form.Name, c.Name)
	overlay(&form.LastName, c.LastName)
	overlay(&form.Phone, c.Phone)
	overlay(&form.City, c.City)
	overlay(&form.Region, c.Region)
	overlay(&form.Bio, c.Bio)
	overlay(&form.Habits, c.Habits)

	if err := validation.Validate(form); err != nil {
		return invalidInput(a.out, err)
	}

	req, changed := form.Request(user)
	if !changed {
		fmt.Fprintln(a.out, noChangesMessage)
		return nil
	}

	resp, err := a.users.UpdateProfile(ctx, user.ID, req)
	if err != nil {
		return a.apiError(ctx, err, "could not update the profile")
	}
	if !resp.Success {
		printFieldErrors(a.out, resp.Errors)
		return resultError(resp.Message, "could not update the profile")
	}

	a.syncUser(ctx, resp.User)

	fmt.Fprintln(a.out, resp.Message)
	return nil
}

type ProfilePhotoCmd struct {
	Path string `arg:"" type:"existingfile" help:"Image file to upload"`
}

func (c *ProfilePhotoCmd) Run(ctx context.Context, globals *Globals) error {
	a, err := globals.open(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.guarded(ctx, guard.Guard{Require: guard.Verified}); err != nil {
		return err
	}

	f, err := os.Open(c.Path)
	if err != nil {
		return fmt.Errorf("failed to open photo: %w", err)
	}
	defer f.Close()

	resp, err := a.users.UpdateProfilePhoto(ctx, filepath.Base(c.Path), f)
	if err != nil {
		return a.apiError(ctx, err, "could not upload the photo")
	}
	if !resp.Success {
		return resultError(resp.Message, "could not upload the photo")
	}

	a.syncUser(ctx, resp.User)

	if resp.Message != "" {
		fmt.Fprintln(a.out, resp.Message)
	} else {
		fmt.Fprintln(a.out, "Profile photo updated")
	}
	return nil
}

// overlay replaces dst when a flag was given.
func overlay(dst *string, flag string) {
	if flag != "" {
		*dst = flag
	}
}

// syncUser stores the user returned by an update, or reloads it when the
// response did not include one.
func (a *app) syncUser(ctx context.Context, u *models.User) {
	if u != nil {
		a.session.SetUser(u)
		return
	}
	a.session.RefreshUser(ctx)
}
