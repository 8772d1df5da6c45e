// Copyright 2026 The Convobench Authors
// SPDX-License-Identifier: Apache-2.0

// Command convobench drives a LivePerson conversation from the command
// line: resolving service domains, checking credentials, and running a
// single scripted exchange. It is the manual counterpart of the test
// harness — same adapter, human at the keyboard.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/convobench/convobench/harness"
	"github.com/convobench/convobench/lib/version"
	"github.com/convobench/convobench/liveperson"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func usage() {
	fmt.Fprintf(os.Stderr, `usage: convobench <command> [flags]

commands:
  resolve   resolve service domains for the configured account
  token     exchange credentials and report the bearer token expiry
  chat      open a conversation, send one turn, and close it
  version   print build information

Run "convobench <command> --help" for command flags.
`)
}

func run(args []string) int {
	if len(args) == 0 {
		usage()
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch args[0] {
	case "resolve":
		return cmdResolve(ctx, args[1:])
	case "token":
		return cmdToken(ctx, args[1:])
	case "chat":
		return cmdChat(ctx, args[1:])
	case "version":
		fmt.Println(version.Info())
		return 0
	case "help", "-h", "--help":
		usage()
		return 0
	default:
		fmt.Fprintf(os.Stderr, "convobench: unknown command %q\n", args[0])
		usage()
		return 2
	}
}

// commonFlags registers the flags every network command shares.
func commonFlags(flags *pflag.FlagSet) (configPath, discoveryURL, logLevel *string) {
	configPath = flags.String("config", "", "path to the adapter config (.json, .jsonc, .yaml, .yml)")
	discoveryURL = flags.String("discovery-url", "", "override the service discovery base URL")
	logLevel = flags.String("log-level", "info", "log level (debug, info, warn, error)")
	return configPath, discoveryURL, logLevel
}

func setup(configPath, discoveryURL, logLevel string) (*liveperson.Client, *harness.Config, error) {
	if configPath == "" {
		return nil, nil, fmt.Errorf("--config is required")
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q", logLevel)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	config, err := harness.LoadConfig(configPath)
	if err != nil {
		return nil, nil, err
	}

	client, err := liveperson.NewClient(liveperson.ClientConfig{
		DiscoveryURL: discoveryURL,
		Logger:       logger,
	})
	if err != nil {
		return nil, nil, err
	}
	return client, config, nil
}

func cmdResolve(ctx context.Context, args []string) int {
	flags := pflag.NewFlagSet("resolve", pflag.ExitOnError)
	configPath, discoveryURL, logLevel := commonFlags(flags)
	flags.Parse(args)

	client, config, err := setup(*configPath, *discoveryURL, *logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "convobench: %v\n", err)
		return 1
	}

	domains, err := client.ResolveAll(ctx, config.AccountID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "convobench: %v\n", err)
		return 1
	}
	for _, entry := range domains {
		fmt.Printf("%-20s %s\n", entry.Service, entry.Domain)
	}
	return 0
}

func cmdToken(ctx context.Context, args []string) int {
	flags := pflag.NewFlagSet("token", pflag.ExitOnError)
	configPath, discoveryURL, logLevel := commonFlags(flags)
	flags.Parse(args)

	client, config, err := setup(*configPath, *discoveryURL, *logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "convobench: %v\n", err)
		return 1
	}

	manager := liveperson.NewTokenManager(client, config.AccountID, config.ClientID, config.ClientSecret, config.ExtConsumerID)
	defer manager.Discard()

	// The token value itself is never printed.
	expiry, err := manager.CheckCredentials(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "convobench: %v\n", err)
		return 1
	}
	if expiry.IsZero() {
		fmt.Println("credentials accepted (token expiry not decodable)")
	} else {
		fmt.Printf("credentials accepted, bearer token expires %s\n", expiry.Format("2006-01-02T15:04:05Z07:00"))
	}
	return 0
}

func cmdChat(ctx context.Context, args []string) int {
	flags := pflag.NewFlagSet("chat", pflag.ExitOnError)
	configPath, discoveryURL, logLevel := commonFlags(flags)
	text := flags.String("text", "hello", "message text to send")
	flags.Parse(args)

	client, config, err := setup(*configPath, *discoveryURL, *logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "convobench: %v\n", err)
		return 1
	}

	conversation := liveperson.NewConversation(client, *config)
	if err := conversation.Open(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "convobench: %v\n", err)
		return 1
	}
	fmt.Printf("conversation %s opened\n", conversation.ConversationID())

	exitCode := 0
	if err := conversation.Send(ctx, harness.Message{Text: *text}); err != nil {
		fmt.Fprintf(os.Stderr, "convobench: send: %v\n", err)
		exitCode = 1
	}

	if err := conversation.Close(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "convobench: close: %v\n", err)
		exitCode = 1
	} else {
		fmt.Printf("conversation %s closed\n", conversation.ConversationID())
	}
	return exitCode
}
