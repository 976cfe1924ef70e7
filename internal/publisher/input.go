package publisher

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dmitrijs2005/nowstatus/internal/common"
	"golang.org/x/term"
)

// Test seams for the terminal and the environment.
var (
	readPassword = term.ReadPassword
	lookupEnv    = os.LookupEnv
)

// AdminSecret returns NOW_ADMIN_SESSION when set, otherwise prompts on w and
// reads the secret from the terminal without echo.
func AdminSecret(w io.Writer) (string, error) {
	if v, ok := lookupEnv(common.EnvAdminSecret); ok && v != "" {
		return v, nil
	}

	if _, err := fmt.Fprint(w, "Enter admin session: "); err != nil {
		return "", err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return "", err
	}

	secret := strings.TrimSpace(string(pw))
	if secret == "" {
		return "", common.ErrorMissingSecret
	}
	return secret, nil
}
