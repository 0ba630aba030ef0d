// Package testutil provides testing utilities for configator.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// MockCommandExecutor stands in for the op CLI. Responses are keyed by a
// command-line prefix such as "op item get" or "op item list --vault v1";
// the longest registered prefix of the actual command line wins. Commands
// without a registered response fail.
type MockCommandExecutor struct {
	mu        sync.Mutex
	fixed     map[string]MockResponse
	sequences map[string][]MockResponse
	calls     []RecordedCall
}

// MockResponse is the canned result of one command.
type MockResponse struct {
	Stdout []byte
	Stderr []byte
	Err    error
}

// RecordedCall is one command the mock was asked to run.
type RecordedCall struct {
	Command string
	Args    []string
}

// Line joins the command and its arguments with spaces.
func (c RecordedCall) Line() string {
	return commandLine(c.Command, c.Args)
}

// NewMockCommandExecutor returns a mock with nothing registered.
func NewMockCommandExecutor() *MockCommandExecutor {
	return &MockCommandExecutor{
		fixed:     make(map[string]MockResponse),
		sequences: make(map[string][]MockResponse),
	}
}

// Execute records the call and replays the matching response. Sequences are
// consulted before fixed responses.
func (m *MockCommandExecutor) Execute(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, RecordedCall{Command: name, Args: append([]string(nil), args...)})
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	line := commandLine(name, args)
	if prefix, ok := longestPrefix(line, m.sequences); ok {
		queue := m.sequences[prefix]
		next := queue[0]
		if len(queue) > 1 {
			m.sequences[prefix] = queue[1:]
		}
		return next.Stdout, next.Stderr, next.Err
	}
	if prefix, ok := longestPrefix(line, m.fixed); ok {
		r := m.fixed[prefix]
		return r.Stdout, r.Stderr, r.Err
	}
	return nil, nil, fmt.Errorf("mock op: unexpected command %q", line)
}

// AddResponse answers every command starting with prefix with response.
func (m *MockCommandExecutor) AddResponse(prefix string, response MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fixed[prefix] = response
}

// AddJSONResponse answers commands starting with prefix with body on stdout.
func (m *MockCommandExecutor) AddJSONResponse(prefix, body string) {
	m.AddResponse(prefix, MockResponse{Stdout: []byte(body)})
}

// AddErrorResponse makes commands starting with prefix exit with exitCode
// and print stderr.
func (m *MockCommandExecutor) AddErrorResponse(prefix, stderr string, exitCode int) {
	m.AddResponse(prefix, ErrorResponse(stderr, exitCode))
}

// AddSequence answers successive commands starting with prefix with
// responses in order, repeating the last one once the queue runs dry.
func (m *MockCommandExecutor) AddSequence(prefix string, responses ...MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sequences[prefix] = responses
}

// ErrorResponse is a failed op invocation.
func ErrorResponse(stderr string, exitCode int) MockResponse {
	return MockResponse{
		Stderr: []byte(stderr),
		Err:    fmt.Errorf("exit status %d", exitCode),
	}
}

// Calls lists the recorded calls whose command line starts with prefix.
func (m *MockCommandExecutor) Calls(prefix string) []RecordedCall {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []RecordedCall
	for _, c := range m.calls {
		if strings.HasPrefix(c.Line(), prefix) {
			out = append(out, c)
		}
	}
	return out
}

// CallCount is the total number of recorded calls.
func (m *MockCommandExecutor) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func commandLine(name string, args []string) string {
	return strings.TrimSpace(name + " " + strings.Join(args, " "))
}

func longestPrefix[V any](line string, registered map[string]V) (string, bool) {
	best, found := "", false
	for prefix := range registered {
		if strings.HasPrefix(line, prefix) && len(prefix) >= len(best) {
			best, found = prefix, true
		}
	}
	return best, found
}
