package detector

// DetectExported exposes detect for testing.
func DetectExported(isTTY bool, ci string) OutputFormat {
	return detect(isTTY, ci)
}
