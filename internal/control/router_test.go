// internal/control/router_test.go
package control

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testSurface struct{}

type testResult struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func (t *testSurface) Ping() string { return "pong" }

func (t *testSurface) Add(a, b int) int { return a + b }

func (t *testSurface) Describe(name string, count int) testResult {
	return testResult{Name: name, Count: count}
}

func (t *testSurface) Fail() error { return errors.New("boom") }

func (t *testSurface) Lookup(id string) (string, error) {
	if id == "" {
		return "", errors.New("empty id")
	}
	return "found:" + id, nil
}

type testOptions struct {
	StartIndex int  `json:"start_index"`
	Strict     bool `json:"strict"`
}

func (t *testSurface) Configure(opts testOptions) int { return opts.StartIndex }

func TestRouterCallNoArgs(t *testing.T) {
	r := NewRouter(&testSurface{})

	result, err := r.Call("Ping", nil)
	require.NoError(t, err)
	assert.Equal(t, "pong", result)
}

func TestRouterCallNumericParams(t *testing.T) {
	r := NewRouter(&testSurface{})

	// JSON-decoded numbers arrive as float64.
	result, err := r.Call("Add", []interface{}{float64(2), float64(3)})
	require.NoError(t, err)
	assert.Equal(t, 5, result)
}

func TestRouterCallMixedParams(t *testing.T) {
	r := NewRouter(&testSurface{})

	result, err := r.Call("Describe", []interface{}{"widget", float64(4)})
	require.NoError(t, err)
	assert.Equal(t, testResult{Name: "widget", Count: 4}, result)
}

func TestRouterCallStructParam(t *testing.T) {
	r := NewRouter(&testSurface{})

	result, err := r.Call("Configure", []interface{}{
		map[string]interface{}{"start_index": float64(7), "strict": true},
	})
	require.NoError(t, err)
	assert.Equal(t, 7, result)
}

func TestRouterCallReturnsError(t *testing.T) {
	r := NewRouter(&testSurface{})

	_, err := r.Call("Fail", nil)
	assert.EqualError(t, err, "boom")
}

func TestRouterCallValueAndError(t *testing.T) {
	r := NewRouter(&testSurface{})

	result, err := r.Call("Lookup", []interface{}{"abc"})
	require.NoError(t, err)
	assert.Equal(t, "found:abc", result)

	_, err = r.Call("Lookup", []interface{}{""})
	assert.EqualError(t, err, "empty id")
}

func TestRouterCallUnknownMethod(t *testing.T) {
	r := NewRouter(&testSurface{})

	_, err := r.Call("Missing", nil)
	assert.ErrorContains(t, err, "method not found")
}

func TestRouterCallWrongArity(t *testing.T) {
	r := NewRouter(&testSurface{})

	_, err := r.Call("Add", []interface{}{float64(1)})
	assert.ErrorContains(t, err, "expects 2 params")
}
