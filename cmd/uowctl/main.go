package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/suparena/unitofwork"
	"github.com/suparena/unitofwork/processor"
)

var (
	versionFlag  = flag.Bool("version", false, "Show version information")
	vFlag        = flag.Bool("v", false, "Show version information (short)")
	metadataFlag = flag.String("metadata", "", "Metadata YAML file (overrides UOW_METADATA_FILE)")
	debugFlag    = flag.Bool("debug", false, "Enable development logging")
)

func main() {
	flag.Parse()

	if *versionFlag || *vFlag {
		fmt.Println(unitofwork.GetVersionInfo())
		os.Exit(0)
	}

	os.Exit(processor.Main(processor.Options{
		MetadataFile: *metadataFlag,
		Debug:        *debugFlag,
	}))
}
