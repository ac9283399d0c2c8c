package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/pizzabot"
	"github.com/aretw0/pizzabot/pkg/domain"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "pizzabot version "+pizzabot.Version+"\n", out)
}

func TestGraphCommand(t *testing.T) {
	t.Run("Mermaid", func(t *testing.T) {
		out, err := execute(t, "graph", "--format", "mermaid", "--highlight", "")
		require.NoError(t, err)
		assert.Contains(t, out, "graph TD")
		assert.Contains(t, out, "ask_size")
	})

	t.Run("Highlight", func(t *testing.T) {
		out, err := execute(t, "graph", "--format", "mermaid", "--highlight", "ask_payment")
		require.NoError(t, err)
		assert.Contains(t, out, "ask_payment")
	})

	t.Run("JSON", func(t *testing.T) {
		out, err := execute(t, "graph", "--format", "json", "--highlight", "")
		require.NoError(t, err)

		var transitions []domain.TransitionInfo
		require.NoError(t, json.Unmarshal([]byte(out), &transitions))
		assert.Len(t, transitions, len(pizzabot.New().Transitions()))
	})

	t.Run("Unknown state", func(t *testing.T) {
		_, err := execute(t, "graph", "--format", "mermaid", "--highlight", "oven")
		assert.ErrorContains(t, err, "unknown state")
	})

	t.Run("Unknown format", func(t *testing.T) {
		_, err := execute(t, "graph", "--format", "svg", "--highlight", "")
		assert.ErrorContains(t, err, "unknown format")
	})
}

func TestValidateCommand(t *testing.T) {
	out, err := execute(t, "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "Dialog is valid!")

	out, err = execute(t, "validate", "../../pkg/classifier/testdata/vocabulary.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "Dialog is valid!")

	_, err = execute(t, "validate", "missing.yaml")
	assert.ErrorContains(t, err, "validation failed")
}
