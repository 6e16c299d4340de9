// Command veloxrender renders HTML documents into positioned layout items.
//
// Usage:
//
//	veloxrender render page.html            # Render a file to JSON on stdout
//	veloxrender render - < page.html        # Render stdin
//	veloxrender render page.html -o out.json --pretty
//	veloxrender version                     # Print the version
package main

import "github.com/veloxhtml/velox/cmd/veloxrender/cmd"

// Populated by the release build via ldflags.
var version = "dev"

func main() {
	cmd.Version = version
	cmd.Execute()
}
