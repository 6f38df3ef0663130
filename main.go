package main

import "github.com/jonandersen/tdam/cmd"

// version is set at build time with -ldflags "-X main.version=...".
var version = "0.1.0"

func main() {
	cmd.Version = version
	cmd.Execute()
}
