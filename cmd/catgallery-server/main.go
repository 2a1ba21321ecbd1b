// @title Cat Gallery Proxy API
// @version 1.0
// @description Proxy to the public cat image search API
// @host localhost:25000
// @BasePath /
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"catgallery-server-go/internal/bootstrap"
	"catgallery-server-go/internal/platform/config"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to the YAML config file")
	noDotEnv := flag.Bool("no-dotenv", false, "do not load variables from .env")
	flag.Parse()

	fmt.Printf("[%s] [INFO] [Bootstrap] starting catgallery-server...\n", time.Now().Format("2006-01-02 15:04:05.000"))
	if err := bootstrap.Run(context.Background(), bootstrap.Options{
		ConfigPath: *configPath,
		DotEnv:     !*noDotEnv,
	}); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "catgallery-server failed: %v\n", err)
		os.Exit(1)
	}
}
