// Package navigate is the CLI rendition of route redirects. A redirect to
// /login tells the user to sign in and remembers the attempted location for
// after the next login; a redirect home just explains why the surface was
// refused.
package navigate

import (
	"fmt"
	"io"

	"github.com/mealhub-dev/mealhub/internal/cli/userconfig"
)

// Navigator satisfies both api.Navigator and guard.Navigator.
type Navigator struct {
	out io.Writer

	// LastPath and LastReturnTo record the most recent redirect, mainly for
	// tests and for commands that want to react to a mid-run redirect.
	LastPath     string
	LastReturnTo string
}

// New creates a navigator writing its messages to out.
func New(out io.Writer) *Navigator {
	return &Navigator{out: out}
}

// Navigate performs a redirect.
func (n *Navigator) Navigate(path, returnTo string) {
	n.LastPath = path
	n.LastReturnTo = returnTo

	switch path {
	case "/login":
		if returnTo != "" {
			if err := userconfig.SetReturnTo(returnTo); err == nil {
				fmt.Fprintf(n.out, "Please sign in first: mealhub login (you will be returned to %q)\n", returnTo)
				return
			}
		}
		fmt.Fprintln(n.out, "Please sign in first: mealhub login")
	default:
		fmt.Fprintln(n.out, "You don't have access to this area.")
	}
}
