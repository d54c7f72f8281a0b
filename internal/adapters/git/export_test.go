package git

// ParseNameStatusExported exposes parseNameStatus for testing.
var ParseNameStatusExported = parseNameStatus

// RebaseExported exposes rebase for testing.
var RebaseExported = rebase
