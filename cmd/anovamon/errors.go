package main

import (
	"errors"

	"github.com/srg/anovamon/internal/anova"
)

// FormatUserError turns internal errors into messages fit for the terminal
func FormatUserError(err error) string {
	var cerr *anova.ConnectionError
	if errors.As(err, &cerr) {
		switch cerr.State {
		case anova.StackFailed:
			return "Bluetooth stack unavailable: " + err.Error()
		case anova.ConnectTimeout:
			return "connection timed out: " + err.Error()
		}
	}
	return err.Error()
}
