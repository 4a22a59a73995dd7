package main

import (
	"fmt"
	"huletfish/src/boot"
	"io"
	"os"

	"ariga.io/atlas-provider-gorm/gormschema"
)

// Prints the desired schema for `atlas schema diff --to external_schema://gorm`.
func main() {
	stmts, err := gormschema.New("postgres").Load(boot.Models()...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load gorm schema: %v\n", err)
		os.Exit(1)
	}
	io.WriteString(os.Stdout, stmts)
	io.WriteString(os.Stdout, boot.ActivePaymentIndexSQL+";\n")
}
