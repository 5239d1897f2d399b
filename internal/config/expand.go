package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// now is swapped out by tests.
var now = time.Now

// ExpandTilde replaces a leading ~ or ~/ with the user's home directory.
// ~user forms are returned unchanged.
func ExpandTilde(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
}

// Expand resolves variables in local paths such as the kubeconfig or the WAV
// recording, then a leading ~. Known variables, in $NAME or ${NAME} form:
//
//	HOME  user's home directory
//	USER  current username
//	DATE  start time as 20060102-150405, for one recording per run
//
// Any other variable is left as written.
func Expand(s string) string {
	if s == "" {
		return s
	}
	expanded := os.Expand(s, func(name string) string {
		switch name {
		case "HOME":
			return homeDir()
		case "USER":
			return userName()
		case "DATE":
			return now().Format("20060102-150405")
		default:
			return "${" + name + "}"
		}
	})
	return ExpandTilde(expanded)
}

func userName() string {
	for _, key := range []string{"USER", "LOGNAME", "USERNAME"} {
		if user := os.Getenv(key); user != "" {
			return user
		}
	}
	return "user"
}

func homeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "~"
}
