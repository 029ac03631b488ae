// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/tokendist/api"
	"github.com/vechain/tokendist/builtin/vesting"
	"github.com/vechain/tokendist/distributor"
	"github.com/vechain/tokendist/log"
	"github.com/vechain/tokendist/metrics"
	"github.com/vechain/tokendist/thor"
)

var (
	version   string
	gitCommit string
	gitTag    string
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	logFlags := []cli.Flag{verbosityFlag, jsonLogsFlag}
	app := cli.App{
		Version:   fullVersion(),
		Name:      "tokendist",
		Usage:     "Token sale, vesting and staking ledger",
		Copyright: "2025 VeChain Foundation <https://vechain.org/>",
		Commands: []cli.Command{
			{
				Name:   "init",
				Usage:  "initialize the data dir from a genesis file",
				Flags:  append([]cli.Flag{dataDirFlag, genesisFlag, devFlag}, logFlags...),
				Action: initAction,
			},
			{
				Name:   "replay",
				Usage:  "apply a list of operations and commit",
				Flags:  append([]cli.Flag{dataDirFlag, opsFlag, keepGoingFlag, feedRPCFlag}, logFlags...),
				Action: replayAction,
			},
			{
				Name:  "serve",
				Usage: "serve the read API",
				Flags: append([]cli.Flag{
					dataDirFlag,
					feedRPCFlag,
					apiAddrFlag,
					apiCorsFlag,
					enableAPILogsFlag,
					enableMetricsFlag,
					metricsAddrFlag,
					ntpServerFlag,
					maxClockOffsetFlag,
				}, logFlags...),
				Action: serveAction,
			},
			{
				Name:   "inspect",
				Usage:  "print the position of a holder",
				Flags:  append([]cli.Flag{dataDirFlag, holderFlag, atFlag, rawFlag}, logFlags...),
				Action: inspectAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initAction(ctx *cli.Context) error {
	initLogger(ctx)
	gen := selectGenesis(ctx)

	db := openDB(ctx)
	defer func() { log.Info("closing database..."); db.Close() }()

	if _, err := storedGenesis(db); err == nil {
		return errors.New("database already initialized")
	}
	cfg, boot, err := gen.Build()
	if err != nil {
		return err
	}
	feed, closeFeed, err := selectFeed(ctx, gen, unixNow)
	if err != nil {
		return err
	}
	defer closeFeed()

	d, err := distributor.New(db, cfg, feed)
	if err != nil {
		return err
	}
	if err := d.Bootstrap(boot); err != nil {
		return err
	}
	if err := d.Commit(); err != nil {
		return err
	}
	if err := storeGenesis(db, gen); err != nil {
		return err
	}
	supply, err := d.Supply()
	if err != nil {
		return err
	}
	log.Info("initialized", "launchTime", gen.LaunchTime, "phases", len(cfg.Phases), "supply", supply.Total)
	return nil
}

func replayAction(ctx *cli.Context) error {
	initLogger(ctx)
	path := ctx.String(opsFlag.Name)
	if path == "" {
		return errors.Errorf("-%s is required", opsFlag.Name)
	}
	ops, err := loadOps(path)
	if err != nil {
		return err
	}

	db := openDB(ctx)
	defer func() { log.Info("closing database..."); db.Close() }()
	clock := &opClock{}
	d, _, closeFeed := openDistributor(ctx, db, clock.Now)
	defer closeFeed()

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	applied, err := replay(sigCtx, d, ops, clock, ctx.Bool(keepGoingFlag.Name))
	if err != nil {
		return err
	}
	if err := d.Commit(); err != nil {
		return err
	}
	log.Info("replayed", "applied", applied, "total", len(ops))
	return nil
}

func serveAction(ctx *cli.Context) error {
	initLogger(ctx)
	ntpServer, maxOffset := ctx.String(ntpServerFlag.Name), ctx.Duration(maxClockOffsetFlag.Name)
	if err := checkClockOffset(ntpServer, maxOffset); err != nil {
		return err
	}
	enableMetrics := ctx.Bool(enableMetricsFlag.Name)
	if enableMetrics {
		metrics.InitializePrometheusMetrics()
	}

	db := openDB(ctx)
	defer func() { log.Info("closing database..."); db.Close() }()
	d, _, closeFeed := openDistributor(ctx, db, unixNow)
	defer closeFeed()

	handler := api.New(d, api.Options{
		AllowedOrigins:  ctx.String(apiCorsFlag.Name),
		EnableMetrics:   enableMetrics,
		EnableReqLogger: ctx.Bool(enableAPILogsFlag.Name),
		Clock:           unixNow,
	})

	services := []*service{{name: "api", addr: ctx.String(apiAddrFlag.Name), handler: handler}}
	if enableMetrics {
		services = append(services, &service{name: "metrics", addr: ctx.String(metricsAddrFlag.Name), handler: metrics.HTTPHandler()})
	}
	if err := listenAll(services); err != nil {
		return err
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return serveAll(sigCtx, services, func(ctx context.Context) error {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if err := checkClockOffset(ntpServer, maxOffset); err != nil {
					return err
				}
			}
		}
	})
}

func inspectAction(ctx *cli.Context) error {
	initLogger(ctx)
	holder, err := thor.ParseAddress(ctx.String(holderFlag.Name))
	if err != nil {
		return errors.WithMessage(err, holderFlag.Name)
	}
	now := ctx.Uint64(atFlag.Name)
	if now == 0 {
		now = unixNow()
	}

	db := openDB(ctx)
	defer db.Close()
	d, _, closeFeed := openDistributor(ctx, db, unixNow)
	defer closeFeed()

	sum, err := d.Holder(*holder, now)
	if err != nil {
		return err
	}
	if ctx.Bool(rawFlag.Name) {
		cfg := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, SortKeys: true}
		cfg.Fdump(os.Stdout, sum)
		return nil
	}
	printSummary(sum, now)
	return nil
}

func printSummary(sum *distributor.HolderSummary, now uint64) {
	fmt.Printf("holder         %v\n", sum.Address)
	fmt.Printf("at             %v\n", time.Unix(int64(now), 0).UTC().Format(time.RFC3339))
	fmt.Printf("balance        %v\n", sum.Balance)
	fmt.Printf("transferable   %v\n", sum.Transferable)
	fmt.Printf("staked         %v\n", sum.Staked)
	fmt.Printf("pending reward %v\n", sum.PendingRewards)
	for _, src := range vesting.Sources() {
		fmt.Printf("%-14s locked %v unlocked %v\n", src, sum.Locked[src], sum.Unlocked[src])
	}
	if sum.Migration != nil && sum.Migration.Migrated {
		fmt.Printf("migrated at    %v\n", sum.Migration.Timestamp)
	}
}
