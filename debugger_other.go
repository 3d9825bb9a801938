//go:build !linux

package keyguard

import (
	"context"
	"errors"
)

func selfTrace(context.Context) (bool, error) {
	return false, errors.New("keyguard: self-trace is only supported on linux and android")
}
