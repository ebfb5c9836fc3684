package machine

// Version is the runner version reported by the CLI and the HTTP adapter.
const Version = "0.4.0"
