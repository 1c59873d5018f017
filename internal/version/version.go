package version

// Version is the current release of web-atlas.
const Version = "0.1.0"
