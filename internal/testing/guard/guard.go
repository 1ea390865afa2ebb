// Package guard sets CAPRIA_TEST_MODE on import. It must be imported before
// app.InTestMode caches its value, which the root testing package guarantees.
package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("CAPRIA_TEST_MODE") == "" {
			_ = os.Setenv("CAPRIA_TEST_MODE", "1")
		}
	})
}
