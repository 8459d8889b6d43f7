package cmd

import (
	"bytes"
	"encoding/json"
	"io/ioutil"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	yaml "gopkg.in/yaml.v2"

	cmdcommon "boscoin.io/devote/cmd/devote/common"
	"boscoin.io/devote/lib/ballot"
	"boscoin.io/devote/lib/common"
	"boscoin.io/devote/lib/common/keypair"
	"boscoin.io/devote/lib/devnet"
	"boscoin.io/devote/lib/errors"
	"boscoin.io/devote/lib/session"
)

const testConfigYAML = `
network-id: devote-unittest
submit-timeout: 5s
read-timeout: 2s
receipt-poll-interval: 10ms
read-retries: 0
refresh-interval: 10ms
`

// newTestDevnet serves a dev ledger and points the ballot flags at it.
func newTestDevnet(t *testing.T) func() {
	l := devnet.NewTestLedger()
	handler, err := devnet.NewHandler(l, devnet.NewServerConfig("localhost:0"))
	require.NoError(t, err)
	server := httptest.NewServer(handler)

	f, err := ioutil.TempFile("", "devote-config-")
	require.NoError(t, err)
	_, err = f.WriteString(testConfigYAML)
	require.NoError(t, err)
	f.Close()

	flagEndpoint = server.URL
	flagConfigFile = f.Name()
	flagNetworkID = ""
	flagFormat = "json"
	flagShowVoters = nil
	flagEnrolled = nil

	return func() {
		server.Close()
		l.Close()
		os.Remove(f.Name())
	}
}

func decodeResult(t *testing.T, b *bytes.Buffer) (result session.Result) {
	require.NoError(t, json.Unmarshal(b.Bytes(), &result))
	b.Reset()
	return
}

func TestLoadConfig(t *testing.T) {
	defer newTestDevnet(t)()

	config, err := loadConfig()
	require.NoError(t, err)
	require.Equal(t, "devote-unittest", string(config.NetworkID))
	require.Equal(t, 0, config.ReadRetries)
	require.Equal(t, common.DefaultRefreshAttempts, config.RefreshAttempts)

	flagNetworkID = "findme"
	config, err = loadConfig()
	require.NoError(t, err)
	require.Equal(t, "findme", string(config.NetworkID))

	flagConfigFile = "/not/found"
	_, err = loadConfig()
	require.True(t, errors.Is(err, errors.InvalidConfig))
}

func TestBallotCommands(t *testing.T) {
	defer newTestDevnet(t)()

	creator := keypair.Random()
	voter := keypair.Random()

	var b bytes.Buffer

	{ // nothing on the ledger yet
		require.NoError(t, runBallotShow(&b))
		var view ballotView
		require.NoError(t, json.Unmarshal(b.Bytes(), &view))
		require.Equal(t, ballot.PhaseUncreated, view.Ballot.Phase)
		b.Reset()
	}

	flagKPSecretSeed = creator.Seed()
	flagBallotName = "lunch"
	flagBallotProposal = "what to eat"
	flagBallotChoices = cmdcommon.ListFlags{"A", "B"}
	flagBallotVoters = nil

	require.NoError(t, runBallotCreate(&b))
	result := decodeResult(t, &b)
	require.Equal(t, ballot.PhaseCreated, result.Snapshot.Ballot.Phase)
	require.Equal(t, creator.Address(), result.Snapshot.Ballot.Creator)

	require.NoError(t, runBallotRegister(&b, []string{voter.Address()}))
	result = decodeResult(t, &b)
	require.Equal(t, uint64(1), result.Snapshot.TotalVoters)

	require.NoError(t, runBallotStart(&b))
	result = decodeResult(t, &b)
	require.Equal(t, ballot.PhaseVotingOpen, result.Snapshot.Ballot.Phase)

	flagKPSecretSeed = voter.Seed()

	{ // the voter is not enrolled at this terminal
		flagEnrolled = cmdcommon.ListFlags{creator.Address()}
		err := runBallotVote(&b, 1)
		require.True(t, errors.Is(err, errors.NotVerified))
		flagEnrolled = cmdcommon.ListFlags{voter.Address()}
	}

	require.NoError(t, runBallotVote(&b, 1))
	result = decodeResult(t, &b)
	require.Equal(t, uint64(1), result.Snapshot.Choices[1].VoteCount)

	err := runBallotVote(&b, 0)
	require.True(t, errors.Is(err, errors.AlreadyVoted))

	// only the creator ends voting
	err = runBallotEnd(&b)
	require.True(t, errors.Is(err, errors.InvalidTransition))

	flagKPSecretSeed = creator.Seed()
	require.NoError(t, runBallotEnd(&b))
	result = decodeResult(t, &b)
	require.Equal(t, ballot.PhaseVotingClosed, result.Snapshot.Ballot.Phase)

	{ // show in yaml with the voter
		flagFormat = "yaml"
		flagShowVoters = cmdcommon.ListFlags{voter.Address()}
		require.NoError(t, runBallotShow(&b))

		var view map[string]interface{}
		require.NoError(t, yaml.Unmarshal(b.Bytes(), &view))
		require.Equal(t, 1, view["total_votes"])
		require.Equal(t, 1, len(view["voters"].([]interface{})))
	}
}

func TestBallotCommandsNeedSecretSeed(t *testing.T) {
	defer newTestDevnet(t)()

	flagKPSecretSeed = ""

	var b bytes.Buffer
	require.Error(t, runBallotStart(&b))

	flagKPSecretSeed = keypair.Random().Address()
	err := runBallotStart(&b)
	require.True(t, errors.Is(err, errors.BadPublicAddress))
}

func TestBallotUnknownFormat(t *testing.T) {
	defer newTestDevnet(t)()

	flagFormat = "xml"

	var b bytes.Buffer
	require.Error(t, runBallotShow(&b))
	require.Equal(t, 0, b.Len())
}

func TestParseFlagsDevnet(t *testing.T) {
	flagBind = "localhost:0"
	flagDevnetNetworkID = "findme"
	flagStorage = "memory://"
	flagAccessLog = ""
	flagRateLimit = "10-S"

	config, err := parseFlagsDevnet()
	require.NoError(t, err)
	require.Equal(t, "findme", string(config.networkID))
	require.Equal(t, "memory://", config.storage)
	require.Equal(t, "10-S", config.server.RateLimit)
	require.Equal(t, ioutil.Discard, config.server.AccessLogOutput)

	flagTLSCertFile = "devote.crt"
	_, err = parseFlagsDevnet()
	require.Error(t, err)
	flagTLSCertFile = ""

	flagDevnetNetworkID = ""
	_, err = parseFlagsDevnet()
	require.Error(t, err)
}
