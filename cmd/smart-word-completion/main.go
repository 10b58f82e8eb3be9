package main

import "github.com/momomo623/smart-word-completion/internal/cli"

func main() {
	cli.Execute()
}
