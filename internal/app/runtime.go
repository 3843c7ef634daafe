package app

import (
	"os"
	"strconv"
	"sync"
)

// TestModeEnv, when truthy, makes the binaries exit before touching Redis or
// the gateway. The testing package sets it for every test binary.
const TestModeEnv = "STOCKDESK_TEST_MODE"

var testMode = sync.OnceValue(func() bool {
	on, _ := strconv.ParseBool(os.Getenv(TestModeEnv))
	return on
})

// InTestMode reports whether the application should skip runtime side effects.
func InTestMode() bool {
	return testMode()
}
