// Package testing forces test mode before any package under test runs.
// Test files blank-import it so binaries guarded by InTestMode never start
// real servers or workers during go test.
package testing

import (
	"os"
	stdtesting "testing"

	_ "github.com/capria-app/capria/internal/testing/guard"
)

func TestMain(m *stdtesting.M) {
	os.Exit(m.Run())
}
