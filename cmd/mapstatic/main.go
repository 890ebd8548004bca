package main

import "github.com/MeKo-Tech/mapstatic/internal/cmd"

func main() {
	cmd.Execute()
}
