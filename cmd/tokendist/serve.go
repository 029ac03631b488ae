// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/vechain/tokendist/log"
)

type service struct {
	name     string
	addr     string
	handler  http.Handler
	listener net.Listener
}

// listenAll binds every service. On failure the listeners already bound are closed.
func listenAll(services []*service) error {
	for i, svc := range services {
		listener, err := net.Listen("tcp", svc.addr)
		if err != nil {
			for _, prev := range services[:i] {
				prev.listener.Close()
			}
			return errors.Wrapf(err, "listen %s addr [%v]", svc.name, svc.addr)
		}
		svc.listener = listener
	}
	return nil
}

// serveAll serves the bound services and runs tasks until ctx is done or any
// of them fails. Every server is shut down before it returns.
func serveAll(ctx context.Context, services []*service, tasks ...func(ctx context.Context) error) error {
	g, gctx := errgroup.WithContext(ctx)

	servers := make([]*http.Server, 0, len(services))
	for _, svc := range services {
		srv := &http.Server{Handler: svc.handler, ReadHeaderTimeout: 10 * time.Second}
		servers = append(servers, srv)
		log.Info("serving", "service", svc.name, "url", "http://"+svc.listener.Addr().String()+"/")
		listener := svc.listener
		g.Go(func() error {
			if err := srv.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
				return errors.Wrap(err, "serve")
			}
			return nil
		})
	}
	for _, task := range tasks {
		task := task
		g.Go(func() error { return task(gctx) })
	}
	g.Go(func() error {
		<-gctx.Done()
		log.Info("stopping servers...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		for _, srv := range servers {
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Warn("server shutdown", "err", err)
			}
		}
		return nil
	})
	return g.Wait()
}
