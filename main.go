package main

import "dealerops/cmd"

func main() {
	cmd.Execute()
}
