package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/nadzzz/jarvis/internal/config"
	"github.com/nadzzz/jarvis/internal/dispatch"
	"github.com/nadzzz/jarvis/internal/message"
	grpctransport "github.com/nadzzz/jarvis/internal/transport/grpc"
)

func newParseCmd(load loader) *cobra.Command {
	var (
		remote string
		lang   string
	)
	cmd := &cobra.Command{
		Use:   "parse [utterance...]",
		Short: "Run one utterance through the pipeline and print the response",
		Long: `Run one utterance through the command pipeline and print the JSON response.

Without --remote the pipeline runs in-process against the configured
automation host. Dangerous commands are parked but never confirmed.
With --remote the utterance is sent to a running daemon over gRPC.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if remote != "" {
				return parseRemote(cmd.Context(), cmd.OutOrStdout(), remote, text, lang)
			}
			cfg, err := load()
			if err != nil {
				return err
			}
			return parseLocal(cmd.Context(), cmd.OutOrStdout(), cfg, text, lang)
		},
	}
	cmd.Flags().StringVar(&remote, "remote", "", "gRPC address of a running daemon (e.g. localhost:50051)")
	cmd.Flags().StringVar(&lang, "lang", "", "language hint (en or hi)")
	return cmd
}

func parseLocal(ctx context.Context, w io.Writer, cfg *config.Config, text, lang string) error {
	p, err := buildPipeline(cfg, false)
	if err != nil {
		return err
	}
	defer p.Close()

	reply := p.dispatcher.Handle(ctx, dispatch.Request{
		SessionID:    "cli",
		Source:       "cli",
		Text:         text,
		LanguageHint: lang,
	})
	return printJSON(w, grpctransport.DispatchReply{Response: reply.Response, Confirmation: reply.Confirmation})
}

func parseRemote(ctx context.Context, w io.Writer, addr, text, lang string) error {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", addr, err)
	}
	defer conn.Close()

	reply, err := grpctransport.NewClient(conn).Dispatch(ctx, &message.CommandRequest{Command: text, Language: lang})
	if err != nil {
		return fmt.Errorf("dispatch: %w", err)
	}
	return printJSON(w, reply)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
