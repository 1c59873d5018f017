// Package main provides the entry point for the web-atlas CLI.
//
// web-atlas is a focused web-graph crawler: given one or more seed URLs it
// discovers the graph of pages and the hyperlinks between them, bounded by
// domain scope, crawl depth, and result count.
//
// Usage:
//
//	webatlas crawl <url> [url...]
//	webatlas crawl --config config.json
//
// See --help for all available options.
package main

func main() {
	Execute()
}
