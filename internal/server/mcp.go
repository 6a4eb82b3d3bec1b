package server

import (
	"context"
	"fmt"

	"github.com/RobinCoderZhao/pdfsite/internal/linkrewrite"
	"github.com/RobinCoderZhao/pdfsite/pkg/i18n"
	"github.com/RobinCoderZhao/pdfsite/pkg/mcpserver"
)

func (s *Server) newMCPServer() *mcpserver.Server {
	m := mcpserver.New("pdfsite", s.version)
	m.Use(mcpserver.RecoveryMiddleware(s.logger))
	m.Use(mcpserver.LoggingMiddleware(s.logger))

	m.RegisterTools(
		&mcpserver.Tool{
			ToolName:        "resolve_route",
			ToolDescription: "Shows how the server routes a request path: redirect, localized page, fallback or pass-through.",
			ToolSchema:      mcpserver.ObjectSchema(map[string]string{"path": "Request path, e.g. /de/merge-pdf"}, "path"),
			Fn: func(_ context.Context, args map[string]any) (*mcpserver.ToolCallResult, error) {
				p, err := mcpserver.StringArg(args, "path")
				if err != nil {
					return nil, err
				}
				return mcpserver.JSONResult(s.resolver.Resolve(p, "")), nil
			},
		},
		&mcpserver.Tool{
			ToolName:        "list_pages",
			ToolDescription: "Lists the known page names and configured languages.",
			ToolSchema:      mcpserver.ObjectSchema(nil),
			Fn: func(context.Context, map[string]any) (*mcpserver.ToolCallResult, error) {
				return mcpserver.JSONResult(map[string]any{
					"pages":     s.pages.Names(),
					"languages": s.matcher.Languages(),
				}), nil
			},
		},
		&mcpserver.Tool{
			ToolName:        "localize_links",
			ToolDescription: "Rewrites the in-site links of an HTML document or fragment for a language.",
			ToolSchema: mcpserver.ObjectSchema(map[string]string{
				"html":     "HTML document or fragment",
				"language": "Target language code",
			}, "html", "language"),
			Fn: func(_ context.Context, args map[string]any) (*mcpserver.ToolCallResult, error) {
				doc, err := mcpserver.StringArg(args, "html")
				if err != nil {
					return nil, err
				}
				lang, err := mcpserver.StringArg(args, "language")
				if err != nil {
					return nil, err
				}
				if !i18n.Contains(s.matcher.Languages(), lang) {
					return nil, fmt.Errorf("unsupported language %q", lang)
				}
				out, err := linkrewrite.RewriteHTML(doc, linkrewrite.Options{
					Language: i18n.Language(lang),
					Default:  s.detector.Default(),
					BasePath: s.base,
					Matcher:  s.matcher,
				})
				if err != nil {
					return nil, err
				}
				return mcpserver.TextResult(out), nil
			},
		},
	)
	return m
}
