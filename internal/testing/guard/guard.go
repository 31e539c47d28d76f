package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("GATEWAY_TEST_MODE") == "" {
			_ = os.Setenv("GATEWAY_TEST_MODE", "1")
		}
	})
}
