package main

import "github.com/Vodeneev/surebetbot/internal/cli"

func main() {
	cli.Execute()
}
