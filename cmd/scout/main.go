package main

import "award_cpp/cmd/scout/cmd"

func main() {
	cmd.Execute()
}
