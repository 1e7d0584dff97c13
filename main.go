package main

import (
	"github.com/ridoystarlord/schedmigrate/cmd"

	_ "github.com/ridoystarlord/schedmigrate/apps/api/migrations"
)

func main() {
	cmd.Execute()
}
