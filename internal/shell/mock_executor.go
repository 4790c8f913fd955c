package shell

import "context"

// MockCommandExecutor is a mock implementation of CommandExecutor for testing
type MockCommandExecutor struct {
	results map[string]Result
	errors  map[string]error
	specs   []CommandSpec
}

// NewMockCommandExecutor creates a new MockCommandExecutor instance
func NewMockCommandExecutor() *MockCommandExecutor {
	return &MockCommandExecutor{
		results: make(map[string]Result),
		errors:  make(map[string]error),
		specs:   make([]CommandSpec, 0),
	}
}

// SetResult sets the result returned for a command name
func (m *MockCommandExecutor) SetResult(name string, result Result) {
	m.results[name] = result
}

// SetError sets an error to return for a command name
func (m *MockCommandExecutor) SetError(name string, err error) {
	m.errors[name] = err
}

// GetSpecs returns every spec that was executed
func (m *MockCommandExecutor) GetSpecs() []CommandSpec {
	return m.specs
}

func (m *MockCommandExecutor) Execute(ctx context.Context, spec CommandSpec) (Result, error) {
	m.specs = append(m.specs, spec)

	if err, ok := m.errors[spec.Name]; ok {
		return Result{}, err
	}
	if result, ok := m.results[spec.Name]; ok {
		return result, nil
	}
	return Result{}, nil
}
