package main

import "github.com/frahmantamala/smartsupply/cmd"

func main() {
	cmd.Execute()
}
