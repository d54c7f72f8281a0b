package detector_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/affected/internal/adapters/detector"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name     string
		isTTY    bool
		ci       string
		expected detector.OutputFormat
	}{
		{name: "terminal outside CI", isTTY: true, ci: "", expected: detector.FormatPretty},
		{name: "terminal with CI=false", isTTY: true, ci: "false", expected: detector.FormatPretty},
		{name: "terminal with CI=true", isTTY: true, ci: "true", expected: detector.FormatPlain},
		{name: "terminal with CI=1", isTTY: true, ci: "1", expected: detector.FormatPlain},
		{name: "pipe", isTTY: false, ci: "", expected: detector.FormatPlain},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, detector.DetectExported(tt.isTTY, tt.ci))
		})
	}
}

func TestDetectEnvironment_CI(t *testing.T) {
	t.Setenv("CI", "true")
	assert.Equal(t, detector.FormatPlain, detector.DetectEnvironment())
}

func TestResolveFormat(t *testing.T) {
	tests := []struct {
		name         string
		autoDetected detector.OutputFormat
		userFlag     string
		expected     detector.OutputFormat
	}{
		{name: "auto keeps pretty", autoDetected: detector.FormatPretty, userFlag: "auto", expected: detector.FormatPretty},
		{name: "empty keeps plain", autoDetected: detector.FormatPlain, userFlag: "", expected: detector.FormatPlain},
		{name: "pretty overrides", autoDetected: detector.FormatPlain, userFlag: "pretty", expected: detector.FormatPretty},
		{name: "plain overrides", autoDetected: detector.FormatPretty, userFlag: "plain", expected: detector.FormatPlain},
		{name: "json overrides", autoDetected: detector.FormatPretty, userFlag: "json", expected: detector.FormatJSON},
		{name: "unknown falls back", autoDetected: detector.FormatPlain, userFlag: "fancy", expected: detector.FormatPlain},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, detector.ResolveFormat(tt.autoDetected, tt.userFlag))
		})
	}
}

func TestOutputFormat_String(t *testing.T) {
	assert.Equal(t, "auto", detector.FormatAuto.String())
	assert.Equal(t, "pretty", detector.FormatPretty.String())
	assert.Equal(t, "plain", detector.FormatPlain.String())
	assert.Equal(t, "json", detector.FormatJSON.String())
}
