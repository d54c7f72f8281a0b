package shell

// ResolveEnvironmentExported exposes resolveEnvironment for testing.
var ResolveEnvironmentExported = resolveEnvironment
