package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nadzzz/jarvis/internal/client"
	"github.com/nadzzz/jarvis/internal/message"
)

func newConnectCmd(load loader) *cobra.Command {
	var (
		url  string
		lang string
	)
	cmd := &cobra.Command{
		Use:   "connect",
		Short: "Open an interactive session with a running daemon",
		Long: `Open a persistent session and send each line typed on stdin as a command.

When the daemon asks for confirmation, answer yes/no (haan/nahi, हाँ/नहीं).`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if url != "" {
				cfg.Client.URL = url
			}
			c, err := client.New(cfg.Client)
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			return interact(ctx, c, os.Stdin, cmd.OutOrStdout(), lang)
		},
	}
	cmd.Flags().StringVar(&url, "url", "", "websocket URL (overrides client.url)")
	cmd.Flags().StringVar(&lang, "lang", "", "language hint (en or hi)")
	return cmd
}

// interact drives a client from line input until in closes or ctx ends.
func interact(ctx context.Context, c *client.Client, in io.Reader, out io.Writer, lang string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu      sync.Mutex
		pending string
		wg      sync.WaitGroup
		outMu   sync.Mutex
	)
	printf := func(format string, args ...any) {
		outMu.Lock()
		defer outMu.Unlock()
		fmt.Fprintf(out, format, args...)
	}

	wg.Add(2)
	go func() {
		defer wg.Done()
		_ = c.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case f := <-c.Frames():
				switch f.Type {
				case message.TypeCommandResponse:
					if r, err := f.CommandResponse(); err == nil {
						printf("jarvis: %s\n", r.Response)
					}
				case message.TypeConfirmationRequest:
					mu.Lock()
					pending = f.ConfirmationID
					mu.Unlock()
					printf("jarvis: %s (yes/no, %ds)\n", f.Response, f.Timeout)
				case message.TypeError:
					printf("error: %s\n", f.Message)
				}
			}
		}
	}()

	lines := bufio.NewScanner(in)
	for lines.Scan() {
		line := strings.TrimSpace(lines.Text())
		if line == "" {
			continue
		}

		mu.Lock()
		id := pending
		mu.Unlock()
		if approved, ok := answer(line); ok && id != "" {
			mu.Lock()
			pending = ""
			mu.Unlock()
			// The outcome arrives as a command_response frame.
			_, err := c.Confirm(ctx, id, approved)
			switch {
			case errors.Is(err, client.ErrNotFound):
				printf("error: that confirmation is no longer pending\n")
			case err != nil:
				printf("error: %v\n", err)
			}
			continue
		}

		if err := c.Send(line, lang); err != nil {
			printf("error: %v (state %s)\n", err, c.State())
		}
	}

	cancel()
	wg.Wait()
	return lines.Err()
}

// answer recognises a yes/no reply in either language.
func answer(line string) (approved, ok bool) {
	switch strings.ToLower(line) {
	case "y", "yes", "haan", "han", "ha", "हाँ", "हां", "confirm":
		return true, true
	case "n", "no", "nahi", "nahin", "नहीं", "cancel":
		return false, true
	}
	return false, false
}
