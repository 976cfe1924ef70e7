package main

import (
	"context"
	"errors"
	"log"
	"os"

	"github.com/dmitrijs2005/nowstatus/internal/buildinfo"
	"github.com/dmitrijs2005/nowstatus/internal/common"
	"github.com/dmitrijs2005/nowstatus/internal/publisher"
	"github.com/spf13/pflag"
)

func main() {

	err := publisher.Run(context.Background(), os.Args[1:], os.Stdout)

	switch {
	case err == nil:
	case errors.Is(err, pflag.ErrHelp):
		buildinfo.PrintBuildData(os.Stdout)
	case errors.Is(err, common.ErrorUnauthorized):
		log.Printf("rejected: admin session is not valid")
		os.Exit(2)
	default:
		log.Printf("%v", err)
		os.Exit(1)
	}

}
