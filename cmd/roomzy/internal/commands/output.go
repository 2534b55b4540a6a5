package commands

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/wolfeidau/roomzy/internal/models"
	"github.com/wolfeidau/roomzy/internal/validation"
)

var ErrInvalidInput = errors.New("invalid input")

// invalidInput prints field errors from local validation and returns
// ErrInvalidInput. Other errors are returned unchanged.
func invalidInput(w io.Writer, err error) error {
	var errs validation.Errors
	if !errors.As(err, &errs) {
		return err
	}
	printFieldErrors(w, errs.FieldErrors())
	return ErrInvalidInput
}

func printFieldErrors(w io.Writer, fieldErrors []models.FieldError) {
	for _, fe := range fieldErrors {
		fmt.Fprintf(w, "  %s: %s\n", fe.Field, fe.Message)
	}
}

func printUser(w io.Writer, u *models.User) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%d\n", u.ID)
	fmt.Fprintf(tw, "Name:\t%s\n", u.FullName())
	fmt.Fprintf(tw, "Email:\t%s\n", u.Email)
	fmt.Fprintf(tw, "Verified:\t%s\n", yesNo(u.IsEmailVerified))
	fmt.Fprintf(tw, "Role:\t%s\n", u.Role)
	fmt.Fprintf(tw, "Phone:\t%s\n", validation.FormatPhone(u.Phone))
	fmt.Fprintf(tw, "Location:\t%s\n", location(u))
	if u.Bio != "" {
		fmt.Fprintf(tw, "Bio:\t%s\n", u.Bio)
	}
	if u.Habits != "" {
		fmt.Fprintf(tw, "Habits:\t%s\n", u.Habits)
	}
	if u.ProfilePhoto != nil {
		fmt.Fprintf(tw, "Photo:\t%s\n", *u.ProfilePhoto)
	}
	if !u.CreatedAt.IsZero() {
		fmt.Fprintf(tw, "Member since:\t%s\n", u.CreatedAt.Format(time.DateOnly))
	}
	tw.Flush()
}

func printUsers(w io.Writer, users []models.User) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tROLE\tVERIFIED")
	for _, u := range users {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", u.ID, u.FullName(), u.Email, u.Role, yesNo(u.IsEmailVerified))
	}
	tw.Flush()
}

func location(u *models.User) string {
	switch {
	case u.City != "" && u.Region != "":
		return u.City + ", " + u.Region
	case u.City != "":
		return u.City
	}
	return u.Region
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
