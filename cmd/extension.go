package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"github.com/etnz/stockchat/config"
)

// Environment passed to extensions.
const (
	EnvServerURL = config.EnvPrefix + "SERVER_URL"
	EnvCurrency  = config.EnvPrefix + "CURRENCY"
	EnvVerbose   = config.EnvPrefix + "VERBOSE"
)

// ExtensionPrefix prefixes the executables run as subcommands.
const ExtensionPrefix = "schat-"

// RunExtension attempts to find and execute an external schat-<subcommand> binary.
// It returns (true, exitCode) if an extension was found and executed,
// and (false, 0) if no extension was found.
func RunExtension(subcommand string, args []string) (bool, int) {
	name := ExtensionPrefix + subcommand
	lp, err := exec.LookPath(name)
	if err != nil {
		return false, 0
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return true, 1
	}

	cmd := exec.Command(lp, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = extensionEnv(os.Environ(), cfg)

	if err := cmd.Run(); err != nil {
		var exitError *exec.ExitError
		if errors.As(err, &exitError) {
			return true, exitError.ExitCode()
		}
		fmt.Fprintf(os.Stderr, "Error executing external command %q: %v\n", name, err)
		return true, 1
	}
	return true, 0
}

// extensionEnv passes the resolved settings to an extension.
func extensionEnv(environ []string, cfg *config.Config) []string {
	env := append([]string(nil), environ...)
	return append(env,
		EnvServerURL+"="+cfg.Server.URL,
		EnvCurrency+"="+cfg.Display.Currency,
		EnvVerbose+"="+strconv.FormatBool(cfg.Logging.Console),
	)
}
