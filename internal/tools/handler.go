package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"docmcp/internal/http/middleware"
	"docmcp/internal/model"
	"docmcp/internal/service"
)

// Tool names as exposed to MCP clients.
const (
	ToolGetFilesInPath  = "getFilesInPath"
	ToolGetDocumentByID = "getDocumentById"
	ToolCreateDocument  = "createDocument"
	ToolUpdateDocument  = "updateDocument"
	ToolDeleteDocument  = "deleteDocument"
)

const (
	msgNotFound = "Document not found"
	msgDeleted  = "Document deleted successfully"
)

// Call outcomes recorded in metrics and logs.
const (
	outcomeOK       = "ok"
	outcomeNotFound = "not_found"
	outcomeError    = "error"
)

type errorPayload struct {
	Error string `json:"error"`
}

// Handler adapts DocumentService to MCP tool calls. Every call produces a text
// result carrying JSON; failures are rendered as {"error": message} and are never
// returned to the transport as Go errors.
type Handler struct {
	svc    service.DocumentService
	log    *zap.Logger
	tracer trace.Tracer
	calls  *prometheus.CounterVec
}

// NewHandler registers the tool call counter on reg and returns a Handler.
func NewHandler(svc service.DocumentService, log *zap.Logger, reg prometheus.Registerer) (*Handler, error) {
	calls := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docmcp_tool_calls_total",
			Help: "Total number of MCP tool calls by tool and outcome.",
		},
		[]string{"tool", "outcome"},
	)
	if err := reg.Register(calls); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		svc:    svc,
		log:    log.Named("tools"),
		tracer: otel.Tracer("docmcp/tools"),
		calls:  calls,
	}, nil
}

type toolFunc func(ctx context.Context, req mcp.CallToolRequest) (payload any, outcome string, err error)

// wrap adds tracing, metrics and logging around fn and renders its result.
func (h *Handler) wrap(name string, fn toolFunc) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ctx, span := h.tracer.Start(ctx, name, trace.WithAttributes(attribute.String("mcp.tool", name)))
		defer span.End()
		start := time.Now()

		payload, outcome, err := fn(ctx, req)
		if err != nil {
			outcome = outcomeError
			payload = errorPayload{Error: err.Error()}
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.SetAttributes(attribute.String("mcp.outcome", outcome))
		h.calls.WithLabelValues(name, outcome).Inc()

		fields := []zap.Field{
			zap.String("tool", name),
			zap.String("outcome", outcome),
			zap.Duration("latency", time.Since(start)),
		}
		if rid := middleware.RequestIDFromContext(ctx); rid != "" {
			fields = append(fields, zap.String("request_id", rid))
			span.SetAttributes(attribute.String("request.id", rid))
		}
		if err != nil {
			h.log.Warn("tool call failed", append(fields, zap.Error(err))...)
		} else if ce := h.log.Check(zap.DebugLevel, "tool call"); ce != nil {
			ce.Write(fields...)
		}

		return textResult(payload), nil
	}
}

func textResult(payload any) *mcp.CallToolResult {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(payload); err != nil {
		buf.Reset()
		_ = enc.Encode(errorPayload{Error: err.Error()})
	}
	return mcp.NewToolResultText(string(bytes.TrimRight(buf.Bytes(), "\n")))
}

func notFound() (any, string, error) {
	return errorPayload{Error: msgNotFound}, outcomeNotFound, nil
}

// GetFilesInPath lists metadata under a path prefix.
func (h *Handler) GetFilesInPath(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return h.wrap(ToolGetFilesInPath, func(ctx context.Context, req mcp.CallToolRequest) (any, string, error) {
		var args pathArgs
		if err := bind(req, &args); err != nil {
			return nil, "", err
		}
		prefix, err := args.validate()
		if err != nil {
			return nil, "", err
		}
		files, err := h.svc.ListByPathPrefix(ctx, prefix)
		if err != nil {
			return nil, "", err
		}
		return model.NewFileListResponse(files), outcomeOK, nil
	})(ctx, req)
}

// GetDocumentByID returns a document joined with its metadata.
func (h *Handler) GetDocumentByID(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return h.wrap(ToolGetDocumentByID, func(ctx context.Context, req mcp.CallToolRequest) (any, string, error) {
		var args documentIDArgs
		if err := bind(req, &args); err != nil {
			return nil, "", err
		}
		id, path, err := args.validate()
		if err != nil {
			return nil, "", err
		}
		doc, err := h.svc.GetByID(ctx, id, path)
		if errors.Is(err, service.ErrNotFound) {
			return notFound()
		}
		if err != nil {
			return nil, "", err
		}
		return doc, outcomeOK, nil
	})(ctx, req)
}

// CreateDocument stores a new document and its metadata.
func (h *Handler) CreateDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return h.wrap(ToolCreateDocument, func(ctx context.Context, req mcp.CallToolRequest) (any, string, error) {
		var args documentArgs
		if err := bind(req, &args); err != nil {
			return nil, "", err
		}
		doc, err := args.toDocument(false)
		if err != nil {
			return nil, "", err
		}
		resp, err := h.svc.Create(ctx, doc)
		if err != nil {
			return nil, "", err
		}
		return resp, outcomeOK, nil
	})(ctx, req)
}

// UpdateDocument overwrites an existing document and upserts its metadata.
func (h *Handler) UpdateDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return h.wrap(ToolUpdateDocument, func(ctx context.Context, req mcp.CallToolRequest) (any, string, error) {
		var args documentArgs
		if err := bind(req, &args); err != nil {
			return nil, "", err
		}
		doc, err := args.toDocument(true)
		if err != nil {
			return nil, "", err
		}
		resp, err := h.svc.Update(ctx, doc)
		if errors.Is(err, service.ErrNotFound) {
			return notFound()
		}
		if err != nil {
			return nil, "", err
		}
		return resp, outcomeOK, nil
	})(ctx, req)
}

// DeleteDocument removes a document and its metadata.
func (h *Handler) DeleteDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return h.wrap(ToolDeleteDocument, func(ctx context.Context, req mcp.CallToolRequest) (any, string, error) {
		var args documentIDArgs
		if err := bind(req, &args); err != nil {
			return nil, "", err
		}
		id, _, err := args.validate()
		if err != nil {
			return nil, "", err
		}
		deleted, err := h.svc.Delete(ctx, id)
		if err != nil {
			return nil, "", err
		}
		if !deleted {
			return notFound()
		}
		return model.DeleteResponse{Message: msgDeleted, DocumentID: id}, outcomeOK, nil
	})(ctx, req)
}
