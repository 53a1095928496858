package main

import "shootdesk-backend/cmd"

func main() {
	cmd.Execute()
}
