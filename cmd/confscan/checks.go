package confscan

import (
	"errors"
	"fmt"
	"os"

	"github.com/confscan/confscan/internal/rules"
	"github.com/spf13/cobra"
)

var (
	checksFile   string
	checksOutput string
)

// discoverChecksFile resolves --checks against the default filenames.
func discoverChecksFile() (string, error) {
	if checksFile != "" {
		return checksFile, nil
	}
	if p := rules.Discover("."); p != "" {
		return p, nil
	}
	return "", errors.New("no checks file found; run 'confscan checks init' or pass --checks")
}

func init() {
	cmd := &cobra.Command{
		Use:   "checks",
		Short: "Manage the compliance checks file",
	}
	rootCmd.AddCommand(cmd)
	cmd.PersistentFlags().StringVar(&checksFile, "checks", "", "checks file (default: confscan.checks.yml in cwd)")

	list := &cobra.Command{
		Use:   "list",
		Short: "List the checks that would run",
		RunE: func(_ *cobra.Command, _ []string) error {
			path, err := discoverChecksFile()
			if err != nil {
				return err
			}
			checks, err := rules.Load(path)
			if err != nil {
				return err
			}
			for _, c := range checks {
				if c.Section != "" {
					fmt.Printf("%-8s %q in section %q\n", c.Ref, c.Match, c.Section)
				} else {
					fmt.Printf("%-8s %q anywhere\n", c.Ref, c.Match)
				}
			}
			fmt.Printf("\n%d checks from %s\n", len(checks), path)
			return nil
		},
	}
	cmd.AddCommand(list)

	validate := &cobra.Command{
		Use:   "validate",
		Short: "Validate the checks file without running an audit",
		RunE: func(_ *cobra.Command, _ []string) error {
			path, err := discoverChecksFile()
			if err != nil {
				return err
			}
			checks, err := rules.Load(path)
			if err != nil {
				return err
			}
			fmt.Printf("%s: %d checks, all valid\n", path, len(checks))
			return nil
		},
	}
	cmd.AddCommand(validate)

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter checks file with a common hardening baseline",
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := rules.WriteDefault(checksOutput); err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, "Wrote", checksOutput)
			return nil
		},
	}
	initCmd.Flags().StringVar(&checksOutput, "output", rules.DefaultFilenames[0], "output file path")
	cmd.AddCommand(initCmd)
}
