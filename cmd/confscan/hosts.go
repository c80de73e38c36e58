package confscan

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/confscan/confscan/internal/inventory"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "hosts",
		Short: "List the hostnames an audit would cover",
		RunE:  runHosts,
	}
	rootCmd.AddCommand(cmd)

	cmd.Flags().StringVar(&flagURL, "url", "", "inventory API base URL")
	cmd.Flags().StringVar(&flagToken, "token", "", "inventory API token (prompted when omitted)")
	cmd.Flags().StringVar(&flagSnapshot, "snapshot", "", "inventory snapshot selector (e.g. $last)")
	cmd.Flags().BoolVar(&flagInsecure, "insecure", false, "skip TLS certificate verification")
	cmd.Flags().StringVarP(&flagFilter, "filter", "f", "", "comma-separated hostname globs")
	cmd.Flags().StringVarP(&flagDir, "dir", "d", "", "list config files under this directory instead of the inventory")
}

func runHosts(_ *cobra.Command, _ []string) error {
	s := resolveSettings()
	provider, _, err := buildProvider(s)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	hosts, err := provider.Hostnames(ctx)
	if err != nil {
		return err
	}
	hosts = inventory.FilterHostnames(hosts, s.Filter)
	for _, h := range hosts {
		fmt.Println(h)
	}
	fmt.Fprintf(os.Stderr, "%d hosts\n", len(hosts))
	return nil
}
