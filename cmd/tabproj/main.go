package main

import (
	"os"

	"github.com/JonMunkholm/tabproj/internal/cli"
	_ "github.com/JonMunkholm/tabproj/internal/core/pipelines" // Register built-in pipelines
)

func main() {
	os.Exit(cli.Execute())
}
