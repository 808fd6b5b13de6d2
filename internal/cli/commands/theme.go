package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mealhub-dev/mealhub/internal/cli/userconfig"
)

var themes = map[string]bool{
	"light": true,
	"dark":  true,
}

// NewThemeCmd creates the theme command group. The theme is a purely local
// preference; it never reaches the backend.
func NewThemeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "theme",
		Short: "Get or set the display theme",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "get",
		Short: "Print the current theme",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runThemeGet(os.Stdout)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "set <light|dark>",
		Short: "Set the theme",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runThemeSet(os.Stdout, args[0])
		},
	})
	return cmd
}

func runThemeGet(out io.Writer) error {
	theme, err := userconfig.GetTheme()
	if err != nil {
		return err
	}
	if theme == "" {
		theme = "light"
	}
	fmt.Fprintln(out, theme)
	return nil
}

func runThemeSet(out io.Writer, theme string) error {
	if !themes[theme] {
		return fmt.Errorf("unknown theme %q (use light or dark)", theme)
	}
	if err := userconfig.SetTheme(theme); err != nil {
		return err
	}
	fmt.Fprintf(out, "✓ Theme set to %s\n", theme)
	return nil
}
