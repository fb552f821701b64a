package main

import "github.com/frahmantamala/office-hr/cmd"

func main() {
	cmd.Execute()
}
