package main

import "github.com/storefront/backend/cmd/catalogctl/commands"

func main() {
	commands.Execute()
}
