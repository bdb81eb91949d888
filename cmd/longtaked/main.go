// Command longtaked runs the longtake daemon in the foreground without the
// CLI wrapper. It is the target for service managers like systemd.
package main

import (
	"context"
	"log"

	"longtake/internal/config"
	"longtake/internal/daemonrun"
)

func main() {
	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	if err := daemonrun.Run(context.Background(), cfg, daemonrun.Options{}); err != nil {
		log.Fatalf("run daemon: %v", err)
	}
}
