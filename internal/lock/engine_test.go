package lock

import (
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type runResult struct {
	unlocked bool
	err      error
}

func testConfig() Config {
	return Config{
		Theme:        "static",
		FrameDelay:   5 * time.Millisecond,
		Words:        []string{"please", "sorry"},
		Banner:       "locked",
		Messages:     []string{"bye"},
		MessageDelay: time.Millisecond,
		Sound:        false,
		BlockSignals: false,
	}
}

// startEngine launches the engine on a simulation screen and returns a
// channel carrying Run's result.
func startEngine(t *testing.T, e *Engine) (tcell.SimulationScreen, <-chan runResult) {
	t.Helper()
	sim := tcell.NewSimulationScreen("UTF-8")
	results := make(chan runResult, 1)
	go func() {
		unlocked, err := e.Run(sim)
		results <- runResult{unlocked, err}
	}()
	// Give the loop a moment to take over the screen.
	time.Sleep(50 * time.Millisecond)
	return sim, results
}

func typeOnScreen(sim tcell.SimulationScreen, s string) {
	for _, r := range s {
		sim.InjectKey(tcell.KeyRune, r, tcell.ModNone)
	}
}

func waitResult(t *testing.T, results <-chan runResult) runResult {
	t.Helper()
	select {
	case res := <-results:
		return res
	case <-time.After(5 * time.Second):
		t.Fatal("engine did not finish in time")
		return runResult{}
	}
}

func TestNewRejectsEmptyPassphrase(t *testing.T) {
	cfg := testConfig()
	cfg.Words = nil
	_, err := New(cfg)
	require.Error(t, err)
}

func TestEngineUnlocksOnPassphrase(t *testing.T) {
	e, err := New(testConfig())
	require.NoError(t, err)

	sim, results := startEngine(t, e)
	typeOnScreen(sim, "well i am sorry ok? please")

	res := waitResult(t, results)
	require.NoError(t, res.err)
	assert.True(t, res.unlocked)
	assert.Equal(t, StateExited, e.State())
}

func TestEngineTimesOutWithoutMatch(t *testing.T) {
	cfg := testConfig()
	cfg.Timeout = 150 * time.Millisecond
	e, err := New(cfg)
	require.NoError(t, err)

	sim, results := startEngine(t, e)
	typeOnScreen(sim, "never gonna say it")

	res := waitResult(t, results)
	require.NoError(t, res.err)
	assert.False(t, res.unlocked, "timeout path must not report an unlock")
	assert.Equal(t, StateExited, e.State())
}

func TestEngineStopsRenderingAfterExit(t *testing.T) {
	cfg := testConfig()
	cfg.Timeout = 100 * time.Millisecond
	e, err := New(cfg)
	require.NoError(t, err)

	_, results := startEngine(t, e)
	waitResult(t, results)

	frames := e.Frames()
	assert.Greater(t, frames, uint64(0), "should have rendered while locked")
	time.Sleep(5 * cfg.FrameDelay)
	assert.Equal(t, frames, e.Frames(), "no frames may render after leaving the locked state")
}

func TestEngineInterruptKeysBeepWhenBlocked(t *testing.T) {
	cfg := testConfig()
	cfg.BlockSignals = true
	e, err := New(cfg)
	require.NoError(t, err)

	sim, results := startEngine(t, e)
	sim.InjectKey(tcell.KeyCtrlC, rune(tcell.KeyCtrlC), tcell.ModCtrl)
	sim.InjectKey(tcell.KeyCtrlBackslash, rune(tcell.KeyCtrlBackslash), tcell.ModCtrl)
	typeOnScreen(sim, "sorry please")

	res := waitResult(t, results)
	require.NoError(t, res.err, "blocked interrupt keys must not end the lock")
	assert.True(t, res.unlocked)
}

func TestEngineInterruptKeyExitsWhenAllowed(t *testing.T) {
	e, err := New(testConfig())
	require.NoError(t, err)

	sim, results := startEngine(t, e)
	sim.InjectKey(tcell.KeyCtrlC, rune(tcell.KeyCtrlC), tcell.ModCtrl)

	res := waitResult(t, results)
	assert.ErrorIs(t, res.err, ErrInterrupted)
	assert.False(t, res.unlocked)
}

func TestEngineBackspaceIsTracked(t *testing.T) {
	e, err := New(testConfig())
	require.NoError(t, err)

	sim, results := startEngine(t, e)
	// Typos corrected with backspace still converge on the passphrase.
	typeOnScreen(sim, "sorry pleaze")
	sim.InjectKey(tcell.KeyBackspace2, 0, tcell.ModNone)
	typeOnScreen(sim, "se")

	res := waitResult(t, results)
	require.NoError(t, res.err)
	assert.True(t, res.unlocked)
}

func TestEngineUnlocksOnHashedLine(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("open sesame"), bcrypt.MinCost)
	require.NoError(t, err)

	cfg := testConfig()
	cfg.Words = nil
	cfg.Hash = hash
	e, err := New(cfg)
	require.NoError(t, err)

	sim, results := startEngine(t, e)
	typeOnScreen(sim, "open sesame")
	sim.InjectKey(tcell.KeyEnter, '\r', tcell.ModNone)

	res := waitResult(t, results)
	require.NoError(t, res.err)
	assert.True(t, res.unlocked)
}

func TestEngineSurvivesResize(t *testing.T) {
	e, err := New(testConfig())
	require.NoError(t, err)

	sim, results := startEngine(t, e)
	sim.SetSize(120, 40)
	time.Sleep(30 * time.Millisecond)
	typeOnScreen(sim, "sorry please")

	res := waitResult(t, results)
	require.NoError(t, res.err)
	assert.True(t, res.unlocked)
}

func TestEngineRejectsUnknownTheme(t *testing.T) {
	cfg := testConfig()
	cfg.Theme = "plasma"
	e, err := New(cfg)
	require.NoError(t, err)

	sim := tcell.NewSimulationScreen("UTF-8")
	unlocked, err := e.Run(sim)
	require.Error(t, err)
	assert.False(t, unlocked)
}
