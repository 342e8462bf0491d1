package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// execIface is the command surface the REPL dispatches to. App satisfies
// it; tests use a stub.
type execIface interface {
	hasToken() bool
	Ping(ctx context.Context) error
	Analyze(ctx context.Context, args []string) error
	Verify(ctx context.Context, args []string) error
	Report(ctx context.Context, args []string) error
	Image(ctx context.Context, args []string) error
	Reports(ctx context.Context, args []string) error
	User(ctx context.Context, args []string) error
	Token(ctx context.Context, args []string) error
	Logout(ctx context.Context) error
}

const (
	helpText         = "Available commands: analyze, report, image, reports, user, ping, token, help, exit"
	helpVerifierText = "Available commands: analyze, verify, report, image, reports, user, ping, logout, help, exit"
)

// runREPL reads commands from scanner and dispatches them to a until EOF or
// "exit"/"quit". Command errors are printed and the loop continues.
//
//	analyze <report_id> <user_id> <lat> <lon> [image=<path>] [text...]
//	verify <report_id>            (needs a verifier token)
//	report <report_id>
//	image <report_id>             save the archived image under ./images
//	reports <user_id>
//	user <user_id>
//	token <subject>               mint a verifier token from the signing secret
//	token set <jwt>               use an existing token
//	logout                        drop the token
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner, w io.Writer) {
	for {
		fmt.Fprintf(w, "veracity %s> ", statusFn())
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}

		cmd, args := parts[0], parts[1:]

		var err error
		switch cmd {
		case "help":
			if a.hasToken() {
				fmt.Fprintln(w, helpVerifierText)
			} else {
				fmt.Fprintln(w, helpText)
			}
		case "ping":
			if err = a.Ping(ctx); err == nil {
				fmt.Fprintln(w, "OK")
			}
		case "analyze":
			err = a.Analyze(ctx, args)
		case "verify":
			err = a.Verify(ctx, args)
		case "report":
			err = a.Report(ctx, args)
		case "image":
			err = a.Image(ctx, args)
		case "reports":
			err = a.Reports(ctx, args)
		case "user":
			err = a.User(ctx, args)
		case "token":
			err = a.Token(ctx, args)
		case "logout":
			err = a.Logout(ctx)
		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return
		default:
			fmt.Fprintln(w, "Unknown command:", cmd)
		}

		if err != nil {
			fmt.Fprintln(w, "Error:", err)
		}
	}
}
