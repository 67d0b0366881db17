// tabledump exports database tables to JSON arrays or SQL INSERT scripts.
//
// Usage:
//
//	tabledump [--config config.json] [--output /tmp] [--type json|sql]
//	  Export every table listed in the config file
//	tabledump tables
//	  List all tables in the database
//	tabledump fields <table_name>
//	  List all fields in the specified table
package main

import "tabledump/cmd"

func main() {
	cmd.Execute()
}
