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

package cmd

import (
	"context"
	"fmt"
	"net"
	"os"

	"github.com/spf13/cobra"

	"github.com/enclaveio/vsockrpc/examples/echo"
	"github.com/enclaveio/vsockrpc/internal/confengine"
	"github.com/enclaveio/vsockrpc/internal/logger"
	"github.com/enclaveio/vsockrpc/internal/option"
	"github.com/enclaveio/vsockrpc/internal/sigs"
	"github.com/enclaveio/vsockrpc/observability"
	"github.com/enclaveio/vsockrpc/rpc"
	"github.com/enclaveio/vsockrpc/rpc/vsock"
)

type echoConfig struct {
	MaxMessageLength int  `config:"max_message_length"`
	Degraded         bool `config:"degraded"`
}

type serveConfig struct {
	Transport string         `config:"transport"` // "vsock" or "tcp"; tcp is for local development only
	Port      uint32         `config:"port"`
	Address   string         `config:"address"` // used only when transport == "tcp"
	Log       logger.Options `config:"log"`
	Echo      echoConfig     `config:"echo"`
}

var (
	serveConfigPath string
	serveTransport  string
	servePort       uint32
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the echo_v1/health_v1 example server",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := serveConfig{Transport: "vsock", Port: 9000, Log: logger.Options{Stdout: true, Level: "info"}}
		var sidecar *observability.Server
		if serveConfigPath != "" {
			conf, err := confengine.LoadConfigPath(serveConfigPath)
			if err != nil {
				fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
				os.Exit(1)
			}
			if err := conf.Unpack(&cfg); err != nil {
				fmt.Fprintf(os.Stderr, "failed to unpack config: %v\n", err)
				os.Exit(1)
			}
			sidecar, err = observability.New(conf)
			if err != nil {
				fmt.Fprintf(os.Stderr, "failed to configure observability sidecar: %v\n", err)
				os.Exit(1)
			}
		}
		if serveTransport != "" {
			cfg.Transport = serveTransport
		}
		if servePort != 0 {
			cfg.Port = servePort
		}
		logger.SetOptions(cfg.Log)

		ln, err := listen(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to bind: %v\n", err)
			os.Exit(1)
		}

		router := rpc.NewRouter(echo.NewState())
		opts := option.New()
		opts.Set("max_message_length", cfg.Echo.MaxMessageLength)
		opts.Set("degraded", cfg.Echo.Degraded)
		if err := echo.RegisterRoutes(router, opts); err != nil {
			fmt.Fprintf(os.Stderr, "failed to register routes: %v\n", err)
			os.Exit(1)
		}

		if sidecar != nil {
			metrics := observability.NewMetrics(sidecar.Registry())
			router.WithObserver(metrics)
			go func() {
				if err := sidecar.ListenAndServe(); err != nil {
					logger.Errorf("observability sidecar stopped: %v", err)
				}
			}()
		}

		ctx, cancel := context.WithCancel(context.Background())
		serveErr := make(chan error, 1)
		go func() { serveErr <- rpc.Serve(ctx, router, ln) }()

		for {
			select {
			case <-sigs.Terminate():
				cancel()
				_ = ln.Close()
				return

			case <-sigs.Reload():
				logger.Infof("reload: log level only")
				if serveConfigPath != "" {
					next := serveConfig{Log: cfg.Log}
					conf, err := confengine.LoadConfigPath(serveConfigPath)
					if err == nil {
						err = conf.Unpack(&next)
					}
					if err != nil {
						logger.Errorf("reload: %v", err)
						continue
					}
					cfg.Log.Level = next.Log.Level
				}
				logger.SetLevel(cfg.Log.Level)

			case err := <-serveErr:
				if err != nil {
					logger.Errorf("serve stopped: %v", err)
				}
				return
			}
		}
	},
	Example: "# vsockrpcd serve --transport vsock --port 9000",
}

func listen(cfg serveConfig) (net.Listener, error) {
	switch cfg.Transport {
	case "tcp":
		return net.Listen("tcp", cfg.Address)
	default:
		return vsock.Listen(cfg.Port)
	}
}

func init() {
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Configuration file path (optional)")
	serveCmd.Flags().StringVar(&serveTransport, "transport", "", "Transport: vsock (default) or tcp")
	serveCmd.Flags().Uint32Var(&servePort, "port", 0, "vsock port to bind (ignored for tcp)")
	rootCmd.AddCommand(serveCmd)
}
