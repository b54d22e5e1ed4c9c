package main

import "contactform/cmd"

func main() {
	cmd.Execute()
}
