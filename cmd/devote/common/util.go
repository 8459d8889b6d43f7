package common

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"boscoin.io/devote/lib/errors"
)

/**
 * Issue a message on Stderr then exit with an error code
 */
func PrintFlagsError(cmd *cobra.Command, flagName string, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: invalid '%s'; %s\n\n", flagName, ErrorString(err))
	}

	cmd.Help()

	os.Exit(1)
}

// PrintError prints a failed command; unlike `PrintFlagsError` the usage
// is not printed.
func PrintError(cmd *cobra.Command, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", ErrorString(err))
	}

	os.Exit(1)
}

// ErrorString is the message of `err`, with the data of a coded error.
func ErrorString(err error) string {
	e, ok := errors.As(err)
	if !ok {
		return err.Error()
	}
	if len(e.Data) < 1 {
		return e.Message
	}

	b, jerr := json.Marshal(e.Data)
	if jerr != nil {
		return e.Message
	}

	return fmt.Sprintf("%s; %s", e.Message, string(b))
}

type ListFlags []string

func (i *ListFlags) Type() string {
	return "list"
}

func (i *ListFlags) String() string {
	return strings.Join([]string(*i), " ")
}

func (i *ListFlags) Set(value string) error {
	*i = append(*i, value)
	return nil
}
