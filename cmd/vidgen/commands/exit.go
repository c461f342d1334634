package commands

import "github.com/haivivi/vidgen/pkg/videogen"

// Process exit codes by error category.
const (
	ExitOK         = 0
	ExitOther      = 1
	ExitValidation = 2
	ExitConfig     = 3
	ExitAuth       = 4
	ExitNetwork    = 5
	ExitRemote     = 6
	ExitFailed     = 7
	ExitTimeout    = 8
	ExitIO         = 9
)

// ExitCode maps err to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	switch videogen.Category(err) {
	case videogen.CategoryValidation:
		return ExitValidation
	case videogen.CategoryConfig:
		return ExitConfig
	case videogen.CategoryAuth:
		return ExitAuth
	case videogen.CategoryNetwork:
		return ExitNetwork
	case videogen.CategoryRemote:
		return ExitRemote
	case videogen.CategoryFailed:
		return ExitFailed
	case videogen.CategoryTimeout:
		return ExitTimeout
	case videogen.CategoryIO:
		return ExitIO
	}
	return ExitOther
}
