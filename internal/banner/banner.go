// Package banner renders the startup banner.
package banner

import (
	"fmt"

	"github.com/common-nighthawk/go-figure"
)

// Banner returns the ASCII-art program name followed by the version.
func Banner(version string) string {
	logo := figure.NewFigure("niyet", "standard", true)
	return fmt.Sprintf("%s  intent classifier %s\n\n", logo.String(), version)
}
