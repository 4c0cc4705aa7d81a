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
	"time"

	"github.com/spf13/cobra"

	"github.com/enclaveio/vsockrpc/examples/echo"
	"github.com/enclaveio/vsockrpc/rpc"
	"github.com/enclaveio/vsockrpc/rpc/vsock"
)

var (
	callTransport string
	callAddress   string
	callContextID uint32
	callPort      uint32
	callTimeout   time.Duration
)

var callCmd = &cobra.Command{
	Use:   "call [message]",
	Short: "Smoke-test a running server with echo_v1, or health_v1 when no message is given",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		dial := dialerFor(callTransport)
		client := rpc.NewClient(dial)

		ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
		defer cancel()

		if len(args) == 0 {
			resp, err := echo.Health(ctx, client)
			if err != nil {
				fmt.Fprintf(os.Stderr, "health_v1 failed: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("healthy=%v version=%s\n", resp.Healthy, resp.Version)
			return
		}

		resp, err := echo.Echo(ctx, client, args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "echo_v1 failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("echoed=%q timestamp=%d\n", resp.Echoed, resp.Timestamp)
	},
	Example: "# vsockrpcd call --transport vsock --context-id 3 --port 9000 'hello'",
}

func dialerFor(transport string) rpc.Dialer {
	if transport == "tcp" {
		return func(ctx context.Context) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(ctx, "tcp", callAddress)
		}
	}
	ep := vsock.Endpoint{ContextID: callContextID, Port: callPort}
	return ep.Dial
}

func init() {
	callCmd.Flags().StringVar(&callTransport, "transport", "vsock", "Transport: vsock (default) or tcp")
	callCmd.Flags().StringVar(&callAddress, "address", "127.0.0.1:9000", "TCP address to dial (tcp transport only)")
	callCmd.Flags().Uint32Var(&callContextID, "context-id", vsock.HostContextID, "vsock context ID to dial (vsock transport only)")
	callCmd.Flags().Uint32Var(&callPort, "port", 9000, "vsock port to dial (vsock transport only)")
	callCmd.Flags().DurationVar(&callTimeout, "timeout", 5*time.Second, "Call deadline")
	rootCmd.AddCommand(callCmd)
}
