package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/germanamz/aix/pkg/compose"
	"github.com/germanamz/aix/pkg/modeladapter"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

type composeOptions struct {
	*rootOptions

	variant    string
	paramsFile string
	dryRun     bool
	rawJSON    bool
	timeout    time.Duration

	tokenMinLength int
	tokenMaxLength int
	responseLength int
	temperature    float64
	topP           float64
	topK           int
	stopSequence   string
	customModelID  string
}

func newComposeCmd(root *rootOptions) *cobra.Command {
	opts := &composeOptions{rootOptions: root}

	cmd := &cobra.Command{
		Use:   "compose [prompt]",
		Short: "Generate a completion for a prompt",
		Long: "Generate a completion for a prompt.\n\n" +
			"The prompt is taken from the arguments, the params file, standard input,\n" +
			"or an interactive prompt, in that order.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompose(cmd, opts, args)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.variant, "variant", "", "request shape: current or legacy (overrides config)")
	f.StringVar(&opts.paramsFile, "params", "", "YAML or JSON file of parameters")
	f.BoolVar(&opts.dryRun, "dry-run", false, "print the request body instead of sending it")
	f.BoolVar(&opts.rawJSON, "json", false, "print the response body as returned by the server")
	f.DurationVar(&opts.timeout, "timeout", 0, "deadline for the call (overrides config)")

	f.IntVar(&opts.tokenMinLength, "token-min-length", compose.DefaultTokenMinLength, "minimum tokens to generate")
	f.IntVar(&opts.tokenMaxLength, "token-max-length", compose.DefaultTokenMaxLength, "maximum tokens to generate")
	f.IntVar(&opts.responseLength, "response-length", compose.DefaultResponseLength, "tokens to generate (legacy)")
	f.Float64Var(&opts.temperature, "temperature", compose.DefaultTemperature, "sampling temperature")
	f.Float64Var(&opts.topP, "top-p", compose.DefaultTopP, "nucleus sampling mass")
	f.IntVar(&opts.topK, "top-k", compose.DefaultTopK, "top-k sampling")
	f.StringVar(&opts.stopSequence, "stop-sequence", "", "stop generating at this text")
	f.StringVar(&opts.customModelID, "model", "", "custom model id")

	return cmd
}

// flagOptions returns an Option for every parameter flag set on the command
// line. Unset flags are left to the config and params defaults.
func (o *composeOptions) flagOptions(cmd *cobra.Command) []compose.Option {
	changed := cmd.Flags().Changed

	var opts []compose.Option
	if changed("token-min-length") {
		opts = append(opts, compose.WithTokenMinLength(o.tokenMinLength))
	}
	if changed("token-max-length") {
		opts = append(opts, compose.WithTokenMaxLength(o.tokenMaxLength))
	}
	if changed("response-length") {
		opts = append(opts, compose.WithResponseLength(o.responseLength))
	}
	if changed("temperature") {
		opts = append(opts, compose.WithTemperature(o.temperature))
	}
	if changed("top-p") {
		opts = append(opts, compose.WithTopP(o.topP))
	}
	if changed("top-k") {
		opts = append(opts, compose.WithTopK(o.topK))
	}
	if changed("stop-sequence") {
		opts = append(opts, compose.WithStopSequence(o.stopSequence))
	}
	if changed("model") {
		opts = append(opts, compose.WithCustomModelID(o.customModelID))
	}

	return opts
}

func runCompose(cmd *cobra.Command, o *composeOptions, args []string) error {
	cfg, err := o.loadConfig()
	if err != nil {
		return err
	}

	var extra []compose.ClientOption
	if o.variant != "" {
		v, err := compose.ParseVariant(o.variant)
		if err != nil {
			return err
		}
		extra = append(extra, compose.WithVariant(v))
	}

	var params compose.Params
	if o.paramsFile != "" {
		data, err := os.ReadFile(o.paramsFile)
		if err != nil {
			return fmt.Errorf("read params: %w", err)
		}
		if params, err = compose.DecodeParams(data); err != nil {
			return err
		}
	}

	prompt := strings.Join(args, " ")
	if prompt == "" && params.HasPrompt {
		prompt = params.Prompt
	}
	if prompt == "" {
		if prompt, err = readPrompt(cmd.InOrStdin()); err != nil {
			return err
		}
	}

	opts := append(params.Options, o.flagOptions(cmd)...)

	client, err := cfg.NewClient(extra...)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	if o.dryRun {
		payload, err := client.Payload(prompt, opts...)
		if err != nil {
			return err
		}
		return writeIndented(out, payload)
	}

	timeout := cfg.Timeout
	if cmd.Flags().Changed("timeout") {
		timeout = o.timeout
	}

	mws := []compose.Middleware{compose.Recovery(), compose.Logger(o.logger(cmd.ErrOrStderr()))}
	if timeout > 0 {
		mws = append(mws, compose.Timeout(timeout))
	}

	resp, err := compose.Wrap(client, mws...).Compose(cmd.Context(), prompt, opts...)
	if err != nil {
		return err
	}

	if o.rawJSON {
		_, err := fmt.Fprintln(out, string(resp.Body))
		return err
	}

	return printCompletion(out, resp)
}

// readPrompt asks for the prompt interactively when in is a terminal and
// reads all of in otherwise.
func readPrompt(in io.Reader) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) { //nolint:gosec // fd fits in int
		return askPrompt()
	}

	data, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("read prompt: %w", err)
	}

	prompt := strings.TrimRight(string(data), "\r\n")
	if prompt == "" {
		return "", errors.New("a prompt is required")
	}

	return prompt, nil
}

func askPrompt() (string, error) {
	var prompt string

	if err := huh.NewForm(huh.NewGroup(
		huh.NewText().
			Title("Prompt").
			Value(&prompt).
			Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return errors.New("a prompt is required")
				}
				return nil
			}),
	)).Run(); err != nil {
		return "", err
	}

	return prompt, nil
}

func printCompletion(w io.Writer, resp *modeladapter.Response) error {
	c, err := compose.DecodeCompletion(resp)
	if err != nil {
		var respErr *compose.ResponseError
		if errors.As(err, &respErr) && len(respErr.Body) > 0 {
			_, _ = fmt.Fprintln(w, string(respErr.Body))
		}
		return err
	}

	if _, err := fmt.Fprintln(w, completionStyle.Render(c.Text)); err != nil {
		return err
	}

	var footer []string
	if c.Model != "" {
		footer = append(footer, c.Model)
	}
	if c.ComputeTime > 0 {
		footer = append(footer, fmt.Sprintf("%.2fs", c.ComputeTime))
	}
	if len(footer) == 0 {
		return nil
	}

	_, err = fmt.Fprintln(w, footerStyle.Render(strings.Join(footer, " · ")))
	return err
}

func writeIndented(w io.Writer, payload []byte) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, payload, "", "  "); err != nil {
		return err
	}
	buf.WriteByte('\n')

	_, err := buf.WriteTo(w)
	return err
}
