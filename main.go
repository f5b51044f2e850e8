package main

import "github.com/user/nessus2xlsx/cmd"

func main() {
	cmd.Execute()
}
