// Command intentctl runs the shopping-intent parser from the shell.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"affiliate-notify/internal/domain/intent"
	"affiliate-notify/internal/domain/marketplace"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "intentctl",
	Short:         "Inspect how free-text shopping requests are parsed",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	rootCmd.AddCommand(newParseCmd(), newDetectPlatformCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newParseCmd() *cobra.Command {
	var pretty bool
	cmd := &cobra.Command{
		Use:   "parse [text...]",
		Short: "Print the parsed intent for the given text, or stdin when no text is given",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := inputText(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			return writeIntent(cmd.OutOrStdout(), intent.Parse(text), pretty)
		},
	}
	cmd.Flags().BoolVarP(&pretty, "pretty", "p", false, "Indent the JSON output")
	return cmd
}

func newDetectPlatformCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "detect-platform <url>",
		Short: "Print the marketplace an affiliate link points to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := marketplace.DetectFromURL(args[0])
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "platform: %s\n", p)
			fmt.Fprintf(out, "strategy: %s\n", marketplace.StrategyFor(p))
			if asin := marketplace.ExtractASIN(args[0]); asin != "" {
				fmt.Fprintf(out, "asin:     %s\n", asin)
			}
			return nil
		},
	}
}

func inputText(stdin io.Reader, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", fmt.Errorf("no text given")
	}
	return text, nil
}

func writeIntent(w io.Writer, parsed intent.ParsedIntent, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(parsed)
}
