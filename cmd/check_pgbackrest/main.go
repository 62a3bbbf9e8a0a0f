package main

import "github.com/mhagander/check-pgbackrest/internal/cli"

func main() {
	cli.Execute()
}
