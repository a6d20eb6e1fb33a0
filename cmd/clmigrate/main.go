package main

import "github.com/dbsmedya/clmigrate/cmd/clmigrate/cmd"

func main() {
	cmd.Execute()
}
