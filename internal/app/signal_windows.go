//go:build windows

package app

import "github.com/sticky-situation/sticky/internal/sticky"

const supported = false

func terminate(pid int) error {
	return sticky.ErrUnsupported
}
