package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	cmdcommon "boscoin.io/devote/cmd/devote/common"
	"boscoin.io/devote/lib/ballot"
	"boscoin.io/devote/lib/client"
	"boscoin.io/devote/lib/common"
	"boscoin.io/devote/lib/identity"
	"boscoin.io/devote/lib/ledger"
	"boscoin.io/devote/lib/lifecycle"
	"boscoin.io/devote/lib/session"
	"boscoin.io/devote/lib/store"
	"boscoin.io/devote/lib/vote"
)

const defaultEndpoint string = "http://127.0.0.1:12345"

var (
	flagEndpoint     string = common.GetENVValue("DEVOTE_ENDPOINT", defaultEndpoint)
	flagNetworkID    string = common.GetENVValue("DEVOTE_NETWORK_ID", "")
	flagKPSecretSeed string = common.GetENVValue("DEVOTE_SECRET_SEED", "")
	flagConfigFile   string = common.GetENVValue("DEVOTE_CONFIG", "")
	flagFormat       string = "prettyjson"

	flagBallotName     string
	flagBallotProposal string
	flagBallotChoices  cmdcommon.ListFlags
	flagBallotVoters   cmdcommon.ListFlags
	flagShowVoters     cmdcommon.ListFlags
	flagEnrolled       cmdcommon.ListFlags
)

var ballotCmd *cobra.Command

func init() {
	ballotCmd = &cobra.Command{
		Use:   "ballot",
		Short: "Read and drive the ballot",
		Run: func(c *cobra.Command, args []string) {
			if len(args) < 1 {
				c.Usage()
			}
		},
	}

	ballotCmd.PersistentFlags().StringVar(&flagEndpoint, "endpoint", flagEndpoint, "ledger api endpoint")
	ballotCmd.PersistentFlags().StringVar(&flagNetworkID, "network-id", flagNetworkID, "network id; overrides the config file")
	ballotCmd.PersistentFlags().StringVar(&flagKPSecretSeed, "secret-seed", flagKPSecretSeed, "secret seed of the signer")
	ballotCmd.PersistentFlags().StringVar(&flagConfigFile, "config", flagConfigFile, "yaml config file of timeouts and retries")
	ballotCmd.PersistentFlags().StringVar(&flagFormat, "format", flagFormat, "format={json, prettyjson, yaml}")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the ballot",
		Run: func(c *cobra.Command, args []string) {
			if err := runBallotShow(os.Stdout); err != nil {
				cmdcommon.PrintError(c, err)
			}
		},
	}
	showCmd.Flags().Var(&flagShowVoters, "voter", "also show the record of the voter; can be repeated")

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create the ballot; the signer becomes the creator",
		Run: func(c *cobra.Command, args []string) {
			if err := runBallotCreate(os.Stdout); err != nil {
				cmdcommon.PrintError(c, err)
			}
		},
	}
	createCmd.Flags().StringVar(&flagBallotName, "name", "", "ballot name")
	createCmd.Flags().StringVar(&flagBallotProposal, "proposal", "", "ballot proposal")
	createCmd.Flags().Var(&flagBallotChoices, "choice", "choice label; can be repeated")
	createCmd.Flags().Var(&flagBallotVoters, "voter", "public address of a voter; can be repeated")

	registerCmd := &cobra.Command{
		Use:   "register <public address> [<public address>...]",
		Short: "Register voters before voting starts",
		Args:  cobra.MinimumNArgs(1),
		Run: func(c *cobra.Command, args []string) {
			if err := runBallotRegister(os.Stdout, args); err != nil {
				cmdcommon.PrintError(c, err)
			}
		},
	}

	startCmd := &cobra.Command{
		Use:   "start",
		Short: "Open voting",
		Run: func(c *cobra.Command, args []string) {
			if err := runBallotStart(os.Stdout); err != nil {
				cmdcommon.PrintError(c, err)
			}
		},
	}

	endCmd := &cobra.Command{
		Use:   "end",
		Short: "Close voting",
		Run: func(c *cobra.Command, args []string) {
			if err := runBallotEnd(os.Stdout); err != nil {
				cmdcommon.PrintError(c, err)
			}
		},
	}

	voteCmd := &cobra.Command{
		Use:   "vote <choice index>",
		Short: "Cast the vote of the signer",
		Args:  cobra.ExactArgs(1),
		Run: func(c *cobra.Command, args []string) {
			choice, err := strconv.Atoi(args[0])
			if err != nil {
				cmdcommon.PrintFlagsError(c, "<choice index>", err)
			}
			if err = runBallotVote(os.Stdout, choice); err != nil {
				cmdcommon.PrintError(c, err)
			}
		},
	}

	voteCmd.Flags().Var(&flagEnrolled, "enrolled", "address allowed to vote from this terminal; can be repeated")

	ballotCmd.AddCommand(showCmd, createCmd, registerCmd, startCmd, endCmd, voteCmd)
	rootCmd.AddCommand(ballotCmd)
}

// ballotSession is the ballot client of one command run.
type ballotSession struct {
	config    common.Config
	client    *client.Client
	submitter *session.Submitter
	provider  *identity.Keypair
}

func loadConfig() (config common.Config, err error) {
	config = common.NewConfig([]byte(common.DefaultNetworkID))
	if len(flagConfigFile) > 0 {
		if err = config.LoadFile(flagConfigFile); err != nil {
			return
		}
	}
	if len(flagNetworkID) > 0 {
		config.NetworkID = []byte(flagNetworkID)
	}

	err = config.Validate()

	return
}

func newBallotSession(needSigner bool) (s *ballotSession, err error) {
	s = &ballotSession{}
	if s.config, err = loadConfig(); err != nil {
		return
	}

	if needSigner {
		if len(flagKPSecretSeed) < 1 {
			err = errors.New("--secret-seed must be given")
			return
		}
		if s.provider, err = identity.FromSeed(flagKPSecretSeed); err != nil {
			return
		}
	}

	if s.client, err = client.NewClientWithConfig(flagEndpoint, s.config); err != nil {
		return
	}

	var gateway *ledger.HTTPGateway
	if gateway, err = ledger.NewHTTPGateway(s.client, s.config); err != nil {
		return
	}
	var st *store.Store
	if st, err = store.New(gateway, s.config); err != nil {
		return
	}
	if s.submitter, err = session.NewSubmitter(gateway, st, s.config); err != nil {
		return
	}

	log.Debug(
		"ballot session",
		"endpoint", flagEndpoint,
		"network-id", string(s.config.NetworkID),
		"config", flagConfigFile,
	)

	return
}

func (s *ballotSession) Close() {
	s.client.Close()
}

func (s *ballotSession) Store() *store.Store {
	return s.submitter.Store()
}

// refresh loads the snapshot the local checks of a write run against.
func (s *ballotSession) refresh(voters ...string) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.SubmitTimeout)
	defer cancel()

	s.Store().Track(voters...)

	return s.Store().Refresh(ctx)
}

// write runs `f` with the lifecycle controller of the signer and waits
// for its outcome.
func (s *ballotSession) write(w io.Writer, f func(*lifecycle.Controller) func(context.Context) (session.Result, error)) error {
	if err := s.refresh(); err != nil {
		return err
	}

	controller := lifecycle.NewController(s.submitter, s.provider)

	return encodeResult(w, controller.Go(f(controller)))
}

func encodeResult(w io.Writer, o *session.Operation) error {
	result, err := o.Wait(context.Background())
	if err != nil {
		return err
	}

	return encode(w, result)
}

func encode(w io.Writer, v interface{}) error {
	e, found := cmdcommon.GetEncode(flagFormat, nil)
	if !found {
		return fmt.Errorf("unknown format: %q", flagFormat)
	}

	return e(v, w)
}

type ballotView struct {
	Ballot      ballot.Ballot        `json:"ballot"`
	Choices     []ballot.Choice      `json:"choices"`
	TotalVoters uint64               `json:"total_voters"`
	TotalVotes  uint64               `json:"total_votes"`
	Height      uint64               `json:"height"`
	RefreshedAt string               `json:"refreshed_at"`
	Voters      []ballot.VoterRecord `json:"voters,omitempty"`
}

func runBallotShow(w io.Writer) error {
	s, err := newBallotSession(false)
	if err != nil {
		return err
	}
	defer s.Close()

	voters := common.UniqueStrings(flagShowVoters)
	if err = s.refresh(voters...); err != nil {
		return err
	}

	snapshot := s.Store().Snapshot()
	view := ballotView{
		Ballot:      snapshot.Ballot,
		Choices:     snapshot.Choices,
		TotalVoters: snapshot.TotalVoters,
		TotalVotes:  snapshot.TotalVotes(),
		Height:      snapshot.Height,
		RefreshedAt: common.FormatISO8601(s.Store().RefreshedAt()),
	}
	for _, address := range voters {
		record, err := s.Store().LookupVoter(address)
		if err != nil {
			return err
		}
		view.Voters = append(view.Voters, record)
	}

	return encode(w, view)
}

func runBallotCreate(w io.Writer) error {
	s, err := newBallotSession(true)
	if err != nil {
		return err
	}
	defer s.Close()

	data := ballot.BallotData{Name: flagBallotName, Proposal: flagBallotProposal}

	return s.write(w, func(c *lifecycle.Controller) func(context.Context) (session.Result, error) {
		return func(ctx context.Context) (session.Result, error) {
			return c.Create(ctx, data, flagBallotChoices, flagBallotVoters)
		}
	})
}

func runBallotRegister(w io.Writer, voters []string) error {
	s, err := newBallotSession(true)
	if err != nil {
		return err
	}
	defer s.Close()

	return s.write(w, func(c *lifecycle.Controller) func(context.Context) (session.Result, error) {
		return func(ctx context.Context) (session.Result, error) {
			return c.RegisterVoters(ctx, voters)
		}
	})
}

func runBallotStart(w io.Writer) error {
	s, err := newBallotSession(true)
	if err != nil {
		return err
	}
	defer s.Close()

	return s.write(w, func(c *lifecycle.Controller) func(context.Context) (session.Result, error) {
		return c.StartVoting
	})
}

func runBallotEnd(w io.Writer) error {
	s, err := newBallotSession(true)
	if err != nil {
		return err
	}
	defer s.Close()

	return s.write(w, func(c *lifecycle.Controller) func(context.Context) (session.Result, error) {
		return c.EndVoting
	})
}

func runBallotVote(w io.Writer, choice int) error {
	s, err := newBallotSession(true)
	if err != nil {
		return err
	}
	defer s.Close()

	if err = s.refresh(s.provider.Address()); err != nil {
		return err
	}

	coordinator := vote.NewCoordinator(s.submitter)
	defer coordinator.Close()

	if len(flagEnrolled) > 0 {
		coordinator.SetVerifier(identity.NewEnrolled(flagEnrolled...))
	}

	return encodeResult(w, coordinator.Go(s.provider, choice))
}
