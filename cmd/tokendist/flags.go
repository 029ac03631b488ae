// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	cli "gopkg.in/urfave/cli.v1"
)

var (
	dataDirFlag = cli.StringFlag{
		Name:  "data-dir",
		Value: defaultDataDir(),
		Usage: "directory for the distribution database",
	}
	genesisFlag = cli.StringFlag{
		Name:  "genesis",
		Usage: "path to the genesis YAML file",
	}
	devFlag = cli.BoolFlag{
		Name:  "dev",
		Usage: "use the built-in dev network genesis",
	}
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Value: 3,
		Usage: "log verbosity (0-5)",
	}
	jsonLogsFlag = cli.BoolFlag{
		Name:  "json-logs",
		Usage: "output logs in JSON format",
	}
	feedRPCFlag = cli.StringFlag{
		Name:  "feed-rpc",
		Usage: "JSON-RPC endpoint of the chain hosting the price aggregator",
	}
	opsFlag = cli.StringFlag{
		Name:  "ops",
		Usage: "path to the YAML list of operations",
	}
	keepGoingFlag = cli.BoolFlag{
		Name:  "keep-going",
		Usage: "skip rejected operations instead of aborting",
	}
	apiAddrFlag = cli.StringFlag{
		Name:  "api-addr",
		Value: "localhost:8670",
		Usage: "API service listening address",
	}
	apiCorsFlag = cli.StringFlag{
		Name:  "api-cors",
		Value: "",
		Usage: "comma separated list of domains from which to accept cross origin requests to API",
	}
	enableAPILogsFlag = cli.BoolFlag{
		Name:  "enable-api-logs",
		Usage: "enables API requests logging",
	}
	enableMetricsFlag = cli.BoolFlag{
		Name:  "enable-metrics",
		Usage: "enables metrics collection",
	}
	metricsAddrFlag = cli.StringFlag{
		Name:  "metrics-addr",
		Value: "localhost:2112",
		Usage: "metrics service listening address",
	}
	ntpServerFlag = cli.StringFlag{
		Name:  "ntp-server",
		Value: "pool.ntp.org",
		Usage: "NTP server used to check the local clock, empty to skip",
	}
	maxClockOffsetFlag = cli.DurationFlag{
		Name:  "max-clock-offset",
		Value: 0,
		Usage: "refuse to serve when the clock offset exceeds this duration, 0 to only warn",
	}
	holderFlag = cli.StringFlag{
		Name:  "holder",
		Usage: "address of the holder to inspect",
	}
	atFlag = cli.Uint64Flag{
		Name:  "at",
		Usage: "unix time to evaluate at, defaults to now",
	}
	rawFlag = cli.BoolFlag{
		Name:  "raw",
		Usage: "dump the raw structures instead of a summary",
	}
)
