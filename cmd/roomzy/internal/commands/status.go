package commands

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/wolfeidau/roomzy/internal/storage"
)

// StatusCmd prints the local session and credential state without calling the API.
type StatusCmd struct{}

func (c *StatusCmd) Run(ctx context.Context, globals *Globals) error {
	a, err := globals.open(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	st := a.session.Snapshot()

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintf(w, "API:\t%s\n", a.cfg.APIURL)
	fmt.Fprintf(w, "Session:\t%s\n", a.session.Phase())
	fmt.Fprintf(w, "Authenticated:\t%s\n", yesNo(st.IsAuthenticated))
	if st.User != nil {
		fmt.Fprintf(w, "User:\t%s <%s>\n", st.User.FullName(), st.User.Email)
		fmt.Fprintf(w, "Role:\t%s\n", st.User.Role)
	}
	if st.PendingVerificationEmail != "" {
		fmt.Fprintf(w, "Pending verification:\t%s\n", st.PendingVerificationEmail)
	}

	fmt.Fprintf(w, "Refresh token:\t%s\n", yesNo(a.tokens.RefreshToken() != ""))

	claims, err := a.tokens.InspectAccessToken()
	switch {
	case errors.Is(err, storage.ErrNoAccessToken):
		fmt.Fprintf(w, "Access token:\t%s\n", "none")
	case errors.Is(err, storage.ErrNotJWT):
		fmt.Fprintf(w, "Access token:\t%s\n", "present (opaque)")
	case err != nil:
		return fmt.Errorf("failed to inspect access token: %w", err)
	default:
		state := "valid"
		if claims.Expired {
			state = "expired"
		}
		fmt.Fprintf(w, "Access token:\t%s\n", state)
		if claims.Subject != "" {
			fmt.Fprintf(w, "Subject:\t%s\n", claims.Subject)
		}
		if !claims.ExpiresAt.IsZero() {
			fmt.Fprintf(w, "Expires:\t%s (%s)\n", claims.ExpiresAt.Format(time.RFC3339), relative(time.Until(claims.ExpiresAt)))
		}
	}

	return nil
}

func relative(d time.Duration) string {
	d = d.Round(time.Second)
	if d < 0 {
		return fmt.Sprintf("%s ago", -d)
	}
	return fmt.Sprintf("in %s", d)
}
