package key

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/spf13/cobra"

	cmdcommon "boscoin.io/devote/cmd/devote/common"
	"boscoin.io/devote/lib/common/keypair"
)

var (
	GenerateCmd *cobra.Command

	flagParse  bool
	flagFormat string
)

type keyPair struct {
	Seed    string `json:"seed"`
	Address string `json:"address"`
}

var defaultTemplate = template.Must(template.New("").Parse(`   Secret Seed: {{ .Seed }}
Public Address: {{ .Address }}
`))

func defaultEncode(v interface{}, w io.Writer) error {
	return defaultTemplate.Execute(w, v)
}

func onelineEncode(v interface{}, w io.Writer) error {
	kp := v.(keyPair)
	_, err := fmt.Fprintf(w, "%s %s\n", kp.Seed, kp.Address)
	return err
}

var encodes = map[string]cmdcommon.Encode{
	"default": defaultEncode,
	"oneline": onelineEncode,
}

func init() {
	GenerateCmd = &cobra.Command{
		Use:   "generate [<secret seed> | <passphrase>]",
		Short: "Generate keypair",
		Long:  "Generate a random keypair, one derived from a passphrase, or parse a secret seed with --parse",
		Run: func(c *cobra.Command, args []string) {
			input := strings.TrimSpace(strings.Join(args, " "))
			if flagParse && len(input) < 1 {
				cmdcommon.PrintFlagsError(c, "--parse", errors.New("--parse needs <secret seed>"))
			}

			encode, found := cmdcommon.GetEncode(flagFormat, encodes)
			if !found {
				cmdcommon.PrintFlagsError(c, "--format", fmt.Errorf("%q not recognized", flagFormat))
			}

			kp, err := generateKP(input, flagParse)
			if err != nil {
				cmdcommon.PrintFlagsError(c, "<input>", fmt.Errorf("failed to parse secret seed: %v", err))
			}

			if err = encode(keyPair{Seed: kp.Seed(), Address: kp.Address()}, os.Stdout); err != nil {
				cmdcommon.PrintError(c, err)
			}
		},
	}

	GenerateCmd.Flags().BoolVar(&flagParse, "parse", false, "parse secret seed")
	GenerateCmd.Flags().StringVar(&flagFormat, "format", "default", "format={default, json, oneline, prettyjson, yaml}")
}

func generateKP(seedOrPassphrase string, fromSeed bool) (full *keypair.Full, err error) {
	switch {
	case len(seedOrPassphrase) < 1:
		full, err = keypair.RandomCanFail()
	case fromSeed:
		full, err = keypair.ParseFull(seedOrPassphrase)
	default:
		full = keypair.Master(seedOrPassphrase).(*keypair.Full)
	}

	return
}
