package main

import "mssql-backup/cmd"

func main() {
	cmd.Execute()
}
