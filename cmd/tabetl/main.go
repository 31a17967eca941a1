package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"tabetl/internal/config"
	"tabetl/internal/engine"
	"tabetl/internal/logging"
	"tabetl/internal/transform"
	"tabetl/internal/transport"
)

type cliFlags struct {
	configPath  string
	metricsPort int
	grpcPort    int
	watch       bool
	printConfig bool
	probe       string
}

func parseFlags() cliFlags {
	var f cliFlags
	flag.StringVar(&f.configPath, "config", "config.json", "pipeline file (JSON or YAML)")
	flag.IntVar(&f.metricsPort, "metrics-port", 0, "serve /metrics and /healthz on this port (0 = off)")
	flag.IntVar(&f.grpcPort, "grpc-port", 0, "serve gRPC health on this port (0 = off)")
	flag.BoolVar(&f.watch, "watch", false, "rerun whenever the pipeline file changes")
	flag.BoolVar(&f.printConfig, "print-config", false, "print the effective pipeline and exit")
	flag.StringVar(&f.probe, "probe", "", "check the health of a running engine at host:port and exit")
	flag.Parse()
	return f
}

func addr(port int) string {
	if port <= 0 {
		return ""
	}
	return fmt.Sprintf(":%d", port)
}

func main() {
	logging.InitFromEnv()
	f := parseFlags()

	if f.probe != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		st, err := transport.Probe(ctx, f.probe)
		if err != nil {
			log.Fatalf("probe: %v", err)
		}
		fmt.Println(st.String())
		if st != healthpb.HealthCheckResponse_SERVING {
			os.Exit(1)
		}
		return
	}

	if f.printConfig {
		cfg, err := config.LoadPipelineSpec(f.configPath)
		if err != nil {
			log.Fatalf("config: %v", err)
		}
		if err := config.Dump(os.Stdout, cfg); err != nil {
			log.Fatalf("config: %v", err)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	e, err := engine.Bootstrap(ctx, engine.Config{
		PipelinePath: f.configPath,
		GRPCAddr:     addr(f.grpcPort),
		MetricsAddr:  addr(f.metricsPort),
		Watch:        f.watch,
	})
	if err != nil {
		log.Fatalf("bootstrap: %v", err)
	}

	if err := e.Run(ctx); err != nil {
		if hint := transform.Hint(err); hint != "" {
			log.Fatalf("engine: %v\n%s", err, hint)
		}
		log.Fatalf("engine: %v", err)
	}
}
