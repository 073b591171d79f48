// Command crawler runs a standalone network-topology crawler against a
// Zcash-protocol network, periodically writing a summary of the nodes and
// connections it has discovered.
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	flags "github.com/jessevdk/go-flags"

	"github.com/excc-labs/zconform/crawler"
	"github.com/excc-labs/zconform/internal/logging"
)

var log = logging.Logger("MAIN")

// startupTimeout bounds how long the crawler waits for at least one seed
// address to become reachable before giving up, per the exit-code contract
// in the package's external interface.
const startupTimeout = 120 * time.Second

type options struct {
	SeedAddrs           string        `long:"seed-addrs" description:"comma-separated host:port addresses to seed the crawl with" required:"true"`
	ListenAddr          string        `long:"listen-addr" description:"address the crawler's own synthetic peer listens on" default:"0.0.0.0:0"`
	CrawlInterval       time.Duration `long:"crawl-interval" description:"how often to re-scan known nodes for reconnection candidates" default:"5s"`
	MaxConnections      int           `long:"max-connections" description:"maximum number of simultaneous connections, inbound and outbound" default:"1000"`
	ReconnectInterval   time.Duration `long:"reconnect-interval" description:"how long a node must go unconnected before becoming reconnect-eligible" default:"5m"`
	PeriodicSample      int           `long:"periodic-sample" description:"number of known nodes considered per crawl-interval tick" default:"500"`
	ConnectionRetention time.Duration `long:"connection-retention" description:"how long a known connection is kept before being pruned as stale" default:"30m"`
	SummaryInterval     time.Duration `long:"summary-interval" description:"how often the network summary is recomputed and written" default:"60s"`
	SummaryPath         string        `long:"summary-path" description:"file the network summary is written to" default:"crawler-log.txt"`
	LogFile             string        `long:"log-file" description:"file to additionally write rotated logs to" default:"crawler.log"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	var opts options
	if _, err := flags.Parse(&opts); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			return nil
		}
		return err
	}

	if err := logging.InitLogRotator(opts.LogFile); err != nil {
		return fmt.Errorf("initializing log rotator: %w", err)
	}

	seeds, err := parseSeedAddrs(opts.SeedAddrs)
	if err != nil {
		return fmt.Errorf("parsing seed addresses: %w", err)
	}

	cfg := crawler.DefaultConfig()
	cfg.ListenAddr = opts.ListenAddr
	cfg.DiscoveryInterval = opts.CrawlInterval
	cfg.MaxConcurrentConnections = opts.MaxConnections
	cfg.ReconnectInterval = opts.ReconnectInterval
	cfg.PeriodicSampleSize = opts.PeriodicSample
	cfg.ConnectionRetention = opts.ConnectionRetention
	cfg.SummaryInterval = opts.SummaryInterval
	cfg.SummaryPath = opts.SummaryPath

	c, err := crawler.New(cfg)
	if err != nil {
		return fmt.Errorf("starting crawler: %w", err)
	}

	log.Infof("crawler listening on %s, seeding %d address(es)", c.ListenAddr(), len(seeds))
	c.Seed(seeds)

	if err := c.WaitForFirstHandshake(startupTimeout); err != nil {
		return fmt.Errorf("startup: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("received shutdown signal, stopping crawler")
		cancel()
	}()

	c.Run(ctx)
	log.Info("crawler stopped")
	return nil
}

// parseSeedAddrs splits a comma-separated host:port list into resolved TCP
// addresses.
func parseSeedAddrs(raw string) ([]net.Addr, error) {
	parts := strings.Split(raw, ",")
	addrs := make([]net.Addr, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		addr, err := net.ResolveTCPAddr("tcp", p)
		if err != nil {
			return nil, fmt.Errorf("resolving %q: %w", p, err)
		}
		addrs = append(addrs, addr)
	}
	return addrs, nil
}
