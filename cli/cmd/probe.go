// ABOUTME: Probe command for container health checks
// ABOUTME: Succeeds when the package-index server accepts a TCP connection

package cmd

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

var (
	probeHost    string
	probePort    int
	probeTimeout time.Duration
)

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Check that the server port accepts connections",
	Long: `Open a TCP connection to the package-index server and close it again.
Intended as the container health check command.

Exit codes:
  0 - Port accepted the connection
  1 - Connection refused or timed out`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		exitCode := runProbe(context.Background(), os.Stdout, os.Stderr)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(probeCmd)
	probeCmd.Flags().StringVar(&probeHost, "host", "127.0.0.1", "Address to connect to")
	probeCmd.Flags().IntVar(&probePort, "port", 8080, "Port the server listens on")
	probeCmd.Flags().DurationVar(&probeTimeout, "timeout", 5*time.Second, "Connection timeout")
}

// runProbe dials the server once and returns exit code
func runProbe(ctx context.Context, stdout, stderr io.Writer) int {
	addr := net.JoinHostPort(probeHost, strconv.Itoa(probePort))

	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		fmt.Fprintf(stderr, "Health check failed: %v\n", err)
		return exitError
	}
	conn.Close()

	fmt.Fprintf(stdout, "Health check passed: server responding on port %d\n", probePort)
	return exitOK
}
