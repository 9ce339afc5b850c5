package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/abgdnv/storefront/internal/chat"
	"github.com/abgdnv/storefront/pkg/bootstrap"
	"github.com/abgdnv/storefront/pkg/config"
	"github.com/abgdnv/storefront/pkg/httpclient"
	"github.com/spf13/cobra"
)

type options struct {
	baseURL      string
	conversation string
	author       string
	timeout      time.Duration
	retries      int
	logLevel     string
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "supportchat",
		Short:         "Talk to storefront support from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.SetErr(errOut)

	flags := root.PersistentFlags()
	flags.StringVar(&opts.baseURL, "base-url", "http://localhost:8080", "backend base URL")
	flags.StringVarP(&opts.conversation, "conversation", "c", "", "conversation id (required)")
	flags.StringVarP(&opts.author, "author", "a", "client", "author name attached to sent messages")
	flags.DurationVar(&opts.timeout, "timeout", 5*time.Second, "per request timeout")
	flags.IntVar(&opts.retries, "retries", 2, "retries on transient failures")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "debug, info, warn or error")
	_ = root.MarkPersistentFlagRequired("conversation")

	root.AddCommand(newWatchCmd(opts), newSendCmd(opts))
	return root
}

func newWatchCmd(opts *options) *cobra.Command {
	var interval time.Duration
	var once bool
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Poll the conversation and print new messages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conv, logger, err := opts.conversationFor(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			printer := newPrinter(cmd.OutOrStdout())
			if once {
				if err := conv.Refresh(cmd.Context()); err != nil {
					return err
				}
				printer.print(conv.Messages())
				return nil
			}
			poller := chat.NewPoller(conv, interval, logger,
				chat.WithUpdateHandler(printer.print),
				chat.WithErrorHandler(func(err error) {
					fmt.Fprintf(cmd.ErrOrStderr(), "refresh failed: %v\n", err)
				}))
			if err := poller.Run(cmd.Context()); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().DurationVarP(&interval, "interval", "i", chat.DefaultPollInterval, "polling interval")
	cmd.Flags().BoolVar(&once, "once", false, "print the history once and exit")
	return cmd
}

func newSendCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "send <text>",
		Short: "Send a message to the conversation",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conv, _, err := opts.conversationFor(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			stored, err := conv.Send(cmd.Context(), opts.author, strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "sent %s\n", stored.ID)
			return nil
		},
	}
}

func (o *options) conversationFor(logOut io.Writer) (*chat.Conversation, *slog.Logger, error) {
	cfg := config.HTTPClientConfig{
		BaseURL: o.baseURL,
		Timeout: o.timeout,
		Retry: config.RetryConfig{
			MaxAttempts: o.retries,
			WaitMin:     200 * time.Millisecond,
			WaitMax:     2 * time.Second,
		},
		CircuitBreaker: config.CircuitBreakerConfig{
			ConsecutiveFailures: 5,
			OpenTimeout:         10 * time.Second,
		},
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	logger := bootstrap.NewLoggerTo(logOut, o.logLevel)
	client, err := httpclient.New("supportchat", cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return chat.NewConversation(o.conversation, chat.NewHTTPHistory(client)), logger, nil
}

// printer writes each confirmed message once.
type printer struct {
	out  io.Writer
	seen map[string]struct{}
}

func newPrinter(out io.Writer) *printer {
	return &printer{out: out, seen: make(map[string]struct{})}
}

func (p *printer) print(messages []chat.Message) {
	for _, m := range messages {
		if m.Pending {
			continue
		}
		if _, ok := p.seen[m.ID]; ok {
			continue
		}
		p.seen[m.ID] = struct{}{}
		fmt.Fprintf(p.out, "[%s] %s: %s\n", m.SentAt.Local().Format(time.TimeOnly), m.Author, m.Text)
	}
}
