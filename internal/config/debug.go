package config

import "os"

func IsDebug() bool {
	return os.Getenv("ANNA_DEBUG") == "1"
}
