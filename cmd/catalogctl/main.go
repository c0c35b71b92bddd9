package main

import (
	"context"
	"fmt"
	"os"

	"marketplace/internal/cli"
	"marketplace/internal/config"

	"github.com/spf13/afero"
)

func main() {
	cfg := config.LoadClient()

	cmd := cli.NewRootCommand(cfg, afero.NewOsFs())
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
