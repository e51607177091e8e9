package main

import "pinpal-backend/cmd"

func main() {
	cmd.Run()
}
