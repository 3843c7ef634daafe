// Package testing switches the binaries into test mode. Test files import it
// for its side effect:
//
//	import _ "github.com/odyssey-erp/stockdesk/testing"
package testing

import "os"

func init() {
	defaults := map[string]string{
		"STOCKDESK_TEST_MODE": "1",
		"GATEWAY_BASE_URL":    "http://127.0.0.1:0",
	}
	for key, value := range defaults {
		if _, set := os.LookupEnv(key); !set {
			_ = os.Setenv(key, value)
		}
	}
}
