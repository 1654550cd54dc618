package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("LEXORA_TEST_MODE") == "" {
			_ = os.Setenv("LEXORA_TEST_MODE", "1")
		}
	})
}
