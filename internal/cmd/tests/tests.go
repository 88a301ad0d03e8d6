// Package tests contains the test state and helpers used to run rxtk
// commands end to end against an in-memory file system.
package tests

import (
	"fmt"
	"os"
	"testing"

	"go.uber.org/goleak"
)

// Main is a TestMain function that can be imported by other test packages that
// run commands through a GlobalTestState. It fails the run if any goroutine
// outlives the tests.
func Main(m *testing.M) {
	exitCode := 1 // error out by default
	defer func() {
		os.Exit(exitCode)
	}()

	defer func() {
		// logrus' Logger.Writer() keeps a goroutine reading its pipe until
		// the writer is closed by the root command.
		opt := goleak.IgnoreTopFunction("io.(*pipe).read")
		if err := goleak.Find(opt); err != nil {
			fmt.Println(err) //nolint:forbidigo
			exitCode = 3
		}
	}()

	exitCode = m.Run()
}
