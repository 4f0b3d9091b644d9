package framework

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func AssertOutputContains(t *testing.T, output, expected string) {
	t.Helper()
	assert.Contains(t, output, expected, "Expected output containing '%s', got: %s", expected, output)
}

func AssertOutputNotContains(t *testing.T, output, unexpected string) {
	t.Helper()
	assert.NotContains(t, output, unexpected, "Expected output without '%s', got: %s", unexpected, output)
}

func AssertHelpfulError(t *testing.T, output string) {
	t.Helper()

	helpfulElements := []string{
		"Solutions:",
		"Solution:",
		"Cause:",
		"Tip:",
		"•",
		"Usage:",
	}

	for _, element := range helpfulElements {
		if strings.Contains(output, element) {
			return
		}
	}
	t.Errorf("Error message does not appear to be helpful. Got: %s", output)
}

func AssertMultipleStringsInOutput(t *testing.T, output string, expected []string) {
	t.Helper()
	for _, exp := range expected {
		assert.Contains(t, output, exp, "Expected output to contain '%s', got: %s", exp, output)
	}
}

func AssertNoError(t *testing.T, err error, output string) {
	t.Helper()
	assert.NoError(t, err, "Output: %s", output)
}

func AssertError(t *testing.T, err error) {
	t.Helper()
	assert.Error(t, err)
}

func AssertDeployed(t *testing.T, env *TestEnvironment, file, content string) {
	t.Helper()
	if !assert.True(t, env.HasDestFile(file), "Expected '%s' in the destination", file) {
		return
	}
	assert.Equal(t, content, env.ReadDestFile(file))
}

func AssertNotDeployed(t *testing.T, env *TestEnvironment, file string) {
	t.Helper()
	assert.False(t, env.HasDestFile(file), "Expected '%s' not to be deployed", file)
}

func AssertEqual(t *testing.T, expected, actual any) {
	t.Helper()
	assert.Equal(t, expected, actual)
}
