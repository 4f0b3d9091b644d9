package e2e

import (
	"path/filepath"
	"testing"

	"github.com/GG-O-BP/mendix-multi-widget-diployer/test/e2e/framework"
)

func TestAppCommands(t *testing.T) {
	env := framework.NewTestEnvironment(t)
	defer env.Cleanup()

	output, err := env.RunMWD("app", "add", "--name", "Sales Portal", "--path", env.DestDir())
	framework.AssertNoError(t, err, output)
	framework.AssertOutputContains(t, output, "App 'sales-portal' added (path: "+env.DestDir()+")")

	missing := filepath.Join(env.TmpDir(), "hr", "widgets")
	output, err = env.RunMWD("app", "add", "hr", "--path", missing)
	framework.AssertNoError(t, err, output)

	t.Run("List", func(t *testing.T) {
		output, err := env.RunMWD("app", "list")
		framework.AssertNoError(t, err, output)
		framework.AssertOutputContains(t, output, "sales-portal")
		framework.AssertOutputContains(t, output, "(missing)")
	})

	t.Run("Move", func(t *testing.T) {
		output, err := env.RunMWD("app", "move", "hr", "--to", "1")
		framework.AssertNoError(t, err, output)

		output, err = env.RunMWD("app", "ls", "--quiet")
		framework.AssertNoError(t, err, output)
		framework.AssertEqual(t, "hr\nsales-portal\n", output)
	})

	t.Run("SelectUnknown", func(t *testing.T) {
		output, err := env.RunMWD("app", "select", "erp")
		framework.AssertError(t, err)
		framework.AssertOutputContains(t, output, "app with key 'erp' not found")
		framework.AssertOutputContains(t, output, "• sales-portal")
	})

	t.Run("Duplicate", func(t *testing.T) {
		output, err := env.RunMWD("app", "add", "hr", "--path", env.DestDir())
		framework.AssertError(t, err)
		framework.AssertOutputContains(t, output, "already exists")
		framework.AssertHelpfulError(t, output)
	})
}
