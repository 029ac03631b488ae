// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"time"

	"github.com/beevik/ntp"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/tokendist/distributor"
	"github.com/vechain/tokendist/genesis"
	"github.com/vechain/tokendist/kv"
	"github.com/vechain/tokendist/log"
	"github.com/vechain/tokendist/lvldb"
	"github.com/vechain/tokendist/pricefeed"
)

const metaBucket = kv.Bucket("m")

var genesisKey = []byte("genesis")

func fatal(args ...any) {
	var w io.Writer
	if runtime.GOOS == "windows" {
		// The SameFile check below doesn't work on Windows.
		// stdout is unlikely to get redirected though, so just print there.
		w = os.Stdout
	} else {
		outf, _ := os.Stdout.Stat()
		errf, _ := os.Stderr.Stat()
		if outf != nil && errf != nil && os.SameFile(outf, errf) {
			w = os.Stderr
		} else {
			w = io.MultiWriter(os.Stdout, os.Stderr)
		}
	}
	fmt.Fprint(w, "Fatal: ")
	fmt.Fprintln(w, args...)
	os.Exit(1)
}

func fatalf(format string, args ...any) {
	fatal(fmt.Sprintf(format, args...))
}

func initLogger(ctx *cli.Context) {
	lvl := ctx.Int(verbosityFlag.Name)
	var handler slog.Handler
	if ctx.Bool(jsonLogsFlag.Name) {
		handler = log.NewJSONHandler(os.Stderr, lvl)
	} else {
		fd := os.Stderr.Fd()
		useColor := (isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)) && os.Getenv("TERM") != "dumb"
		handler = log.NewTerminalHandler(os.Stderr, lvl, useColor)
	}
	log.SetDefault(handler)
}

func homeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}

func defaultDataDir() string {
	home := homeDir()
	if home == "" {
		return ""
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "org.vechain.tokendist")
	case "windows":
		return filepath.Join(home, "AppData", "Roaming", "org.vechain.tokendist")
	default:
		return filepath.Join(home, ".org.vechain.tokendist")
	}
}

func openDB(ctx *cli.Context) *lvldb.LevelDB {
	dataDir := ctx.String(dataDirFlag.Name)
	if dataDir == "" {
		fatalf("unable to infer default data dir, use -%s to specify one", dataDirFlag.Name)
	}
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		fatalf("create data dir at '%v': %v", dataDir, err)
	}
	dir := filepath.Join(dataDir, "distribution.db")
	db, err := lvldb.New(dir, lvldb.Options{CacheSize: 64, OpenFilesCacheCapacity: 64})
	if err != nil {
		fatalf("open database at '%v': %v", dir, err)
	}
	return db
}

// selectGenesis returns the genesis named on the command line.
func selectGenesis(ctx *cli.Context) *genesis.Genesis {
	if ctx.Bool(devFlag.Name) {
		return genesis.Devnet(uint64(time.Now().Unix()))
	}
	path := ctx.String(genesisFlag.Name)
	if path == "" {
		fatalf("either -%s or -%s is required", genesisFlag.Name, devFlag.Name)
	}
	gen, err := genesis.Load(path)
	if err != nil {
		fatal(err)
	}
	return gen
}

// storedGenesis returns the genesis the database was initialized with.
func storedGenesis(db kv.Store) (*genesis.Genesis, error) {
	meta := metaBucket.NewStore(db)
	data, err := meta.Get(genesisKey)
	if err != nil {
		if meta.IsNotFound(err) {
			return nil, errors.New("database not initialized, run init first")
		}
		return nil, err
	}
	return genesis.Parse(data)
}

func storeGenesis(db kv.Store, gen *genesis.Genesis) error {
	meta := metaBucket.NewStore(db)
	if ok, err := meta.Has(genesisKey); err != nil {
		return err
	} else if ok {
		return errors.New("database already initialized")
	}
	data, err := gen.Encode()
	if err != nil {
		return err
	}
	return meta.Put(genesisKey, data)
}

func unixNow() uint64 {
	return uint64(time.Now().Unix())
}

// selectFeed uses the on-chain aggregator when both an endpoint and an
// aggregator address are given, otherwise the fixed answer of the genesis
// stamped by clock.
func selectFeed(ctx *cli.Context, gen *genesis.Genesis, clock func() uint64) (pricefeed.Feed, func(), error) {
	rpc := ctx.String(feedRPCFlag.Name)
	if rpc != "" && gen.Feed.Aggregator != nil {
		client, err := ethclient.DialContext(context.Background(), rpc)
		if err != nil {
			return nil, nil, errors.Wrap(err, "dial feed rpc")
		}
		log.Info("using price aggregator", "rpc", rpc, "address", gen.Feed.Aggregator)
		return pricefeed.NewAggregator(client, common.Address(*gen.Feed.Aggregator)), client.Close, nil
	}
	feed, err := gen.FixedFeed(clock)
	if err != nil {
		return nil, nil, err
	}
	return feed, func() {}, nil
}

// openDistributor rebuilds the distribution recorded in db.
func openDistributor(ctx *cli.Context, db kv.Store, clock func() uint64) (*distributor.Distributor, *genesis.Genesis, func()) {
	gen, err := storedGenesis(db)
	if err != nil {
		fatal(err)
	}
	cfg, _, err := gen.Build()
	if err != nil {
		fatal(err)
	}
	feed, closeFeed, err := selectFeed(ctx, gen, clock)
	if err != nil {
		fatal(err)
	}
	d, err := distributor.New(db, cfg, feed)
	if err != nil {
		closeFeed()
		fatal(err)
	}
	return d, gen, closeFeed
}

// checkClockOffset compares the local clock with an NTP server. Every quantity
// served is derived from the local time.
func checkClockOffset(server string, limit time.Duration) error {
	if server == "" {
		return nil
	}
	resp, err := ntp.Query(server)
	if err != nil {
		log.Debug("failed to access NTP", "err", err)
		return nil
	}
	offset := resp.ClockOffset
	if offset < 0 {
		offset = -offset
	}
	if limit > 0 && offset > limit {
		return errors.Errorf("clock offset %v exceeds %v", resp.ClockOffset, limit)
	}
	if offset > time.Second {
		log.Warn("clock offset detected", "offset", common.PrettyDuration(resp.ClockOffset))
	}
	return nil
}
