package backend

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Mock types ---

type MockRunner struct {
	mock.Mock
}

func (m *MockRunner) Run(ctx context.Context, name string, args []string, stdin io.Reader) ([]byte, []byte, error) {
	var input string
	if stdin != nil {
		b, _ := io.ReadAll(stdin)
		input = string(b)
	}
	callArgs := m.Called(name, args, input)
	return []byte(callArgs.String(0)), []byte(callArgs.String(1)), callArgs.Error(2)
}

// --- Tests ---

func TestParseIdentifier(t *testing.T) {
	id, err := ParseIdentifier("Kokoro")
	require.NoError(t, err)
	assert.Equal(t, Kokoro, id)

	id, err = ParseIdentifier(" supertonic ")
	require.NoError(t, err)
	assert.Equal(t, Supertonic, id)

	_, err = ParseIdentifier("bogus")
	assert.ErrorIs(t, err, ErrUnknownBackend)
	assert.EqualError(t, err, `unknown backend: "bogus"`)
}

func TestIdentifiers(t *testing.T) {
	assert.Equal(t, []Identifier{Kokoro, Supertonic}, Identifiers())
	assert.Contains(t, Identifiers(), DefaultIdentifier)
}

func TestExecutor_Execute(t *testing.T) {
	runner := new(MockRunner)
	runner.On("Run", "/usr/bin/espeak-ng", []string{"-q"}, "hello").Return("həlˈoʊ\n", "", nil).Once()

	exec := NewExecutorWithRunner("/usr/bin/espeak-ng", time.Second, runner)
	stdout, _, err := exec.Execute(context.Background(), []string{"-q"}, strings.NewReader("hello"))

	require.NoError(t, err)
	assert.Equal(t, "həlˈoʊ\n", string(stdout))
	assert.Equal(t, "/usr/bin/espeak-ng", exec.BinaryPath())
	runner.AssertExpectations(t)
}

func TestExecutor_ExecuteIncludesStderr(t *testing.T) {
	runner := new(MockRunner)
	runner.On("Run", "espeak-ng", []string(nil), "").Return("", "voice not found\n", errors.New("exit status 1")).Once()

	exec := NewExecutorWithRunner("espeak-ng", 0, runner)
	_, _, err := exec.Execute(context.Background(), nil, nil)

	assert.EqualError(t, err, "espeak-ng: exit status 1: voice not found")
	runner.AssertExpectations(t)
}

func TestNewExecutor_MissingBinary(t *testing.T) {
	_, err := NewExecutor("definitely-not-a-real-binary-vocalis", time.Second)
	assert.ErrorContains(t, err, "binary not found")
}

