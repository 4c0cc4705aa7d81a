// Copyright 2025 The vsockrpc Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package observability

import (
	"net"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/enclaveio/vsockrpc/internal/confengine"
	"github.com/enclaveio/vsockrpc/internal/logger"
)

// Config describes the optional HTTP sidecar. It is never the vsock
// listener the RPC server accepts on; the two never share a socket.
type Config struct {
	Enabled bool          `config:"enabled"`
	Address string        `config:"address"`
	Pprof   bool          `config:"pprof"`
	Timeout time.Duration `config:"timeout"`
}

// Server is the optional metrics/pprof sidecar.
type Server struct {
	config   Config
	router   *mux.Router
	server   *http.Server
	registry *prometheus.Registry
}

// New builds a Server from conf's "metrics" section. It returns a nil
// *Server, nil error when the section is absent or disables the sidecar —
// callers must check for a nil pointer before starting it.
func New(conf *confengine.Config) (*Server, error) {
	if !conf.Has("metrics") {
		return nil, nil
	}
	var config Config
	if err := conf.UnpackChild("metrics", &config); err != nil {
		return nil, err
	}
	if !config.Enabled {
		return nil, nil
	}

	reg := prometheus.NewRegistry()
	router := mux.NewRouter()
	s := &Server{
		config:   config,
		router:   router,
		registry: reg,
		server: &http.Server{
			Handler:      router,
			ReadTimeout:  config.Timeout,
			WriteTimeout: config.Timeout,
		},
	}
	s.RegisterGetRoute("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}).ServeHTTP)
	if config.Pprof {
		s.registerPprofRoutes()
	}
	return s, nil
}

// Registry exposes the sidecar's Prometheus registry so the caller can
// hand it to observability.NewMetrics.
func (s *Server) Registry() *prometheus.Registry { return s.registry }

func (s *Server) ListenAndServe() error {
	l, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return err
	}
	logger.Infof("observability sidecar listening on %s", s.config.Address)
	return s.server.Serve(l)
}

func (s *Server) RegisterGetRoute(path string, f http.HandlerFunc) {
	s.router.Methods(http.MethodGet).Path(path).HandlerFunc(f)
}

func (s *Server) registerPprofRoutes() {
	s.RegisterGetRoute("/debug/pprof/cmdline", pprof.Cmdline)
	s.RegisterGetRoute("/debug/pprof/profile", pprof.Profile)
	s.RegisterGetRoute("/debug/pprof/symbol", pprof.Symbol)
	s.RegisterGetRoute("/debug/pprof/trace", pprof.Trace)
	s.RegisterGetRoute("/debug/pprof/{other}", pprof.Index)
}
