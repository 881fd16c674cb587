package main

import "github.com/appdock/appdock/cmd/appdock/cmd"

func main() {
	cmd.Execute()
}
