// atlas 的 external schema loader，輸出 models 對應的 postgres DDL
//
//	data "external_schema" "gorm" {
//	  program = ["go", "run", "./tools/atlas"]
//	}
package main

import (
	"fmt"
	"io"
	"os"

	"ariga.io/atlas-provider-gorm/gormschema"

	"uoauth/models"
)

func main() {
	stmts, err := gormschema.New("postgres").Load(models.All()...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load gorm schema: %v\n", err)
		os.Exit(1)
	}
	_, _ = io.WriteString(os.Stdout, stmts)
}
