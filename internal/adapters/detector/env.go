// Package detector selects how results are presented based on the environment.
package detector

import (
	"os"

	"golang.org/x/term"
)

// OutputFormat is the presentation of a computed affected set.
type OutputFormat int

const (
	// FormatAuto detects the format from the environment.
	FormatAuto OutputFormat = iota
	// FormatPretty prints a styled table with decision reasons.
	FormatPretty
	// FormatPlain prints one module id per line, suitable for piping.
	FormatPlain
	// FormatJSON prints the decisions as a JSON document.
	FormatJSON
)

// String returns the flag spelling of the format.
func (f OutputFormat) String() string {
	switch f {
	case FormatPretty:
		return "pretty"
	case FormatPlain:
		return "plain"
	case FormatJSON:
		return "json"
	default:
		return "auto"
	}
}

// DetectEnvironment returns the recommended format for stdout.
// Pretty output is only chosen for an interactive terminal outside of CI.
func DetectEnvironment() OutputFormat {
	return detect(term.IsTerminal(int(os.Stdout.Fd())), os.Getenv("CI"))
}

func detect(isTTY bool, ci string) OutputFormat {
	isCI := ci == "true" || ci == "1"
	if !isTTY || isCI {
		return FormatPlain
	}
	return FormatPretty
}

// ResolveFormat applies the user's flag to the detected format.
// userFlag should be one of: "auto", "pretty", "plain", "json", or empty.
func ResolveFormat(autoDetected OutputFormat, userFlag string) OutputFormat {
	switch userFlag {
	case "pretty":
		return FormatPretty
	case "plain":
		return FormatPlain
	case "json":
		return FormatJSON
	default:
		return autoDetected
	}
}
