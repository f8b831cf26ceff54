package tools

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// metadataSchema describes the metadata object accepted by create and update.
var metadataSchema = map[string]any{
	"path":        map[string]any{"type": "string"},
	"name":        map[string]any{"type": "string"},
	"description": map[string]any{"type": "string"},
	"fileType":    map[string]any{"type": "string"},
	"size":        map[string]any{"type": "number", "minimum": 0},
	"createdAt":   map[string]any{"type": "string", "format": "date-time"},
	"updatedAt":   map[string]any{"type": "string", "format": "date-time"},
}

var metadataRequired = []string{"path", "name", "fileType", "size"}

func documentWriteOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("path", mcp.Required(), mcp.Description("Document path")),
		mcp.WithObject("content", mcp.Required(), mcp.Description("Document content as a JSON object")),
		mcp.WithObject("metadata",
			mcp.Required(),
			mcp.Description("File metadata stored alongside the document"),
			mcp.Properties(metadataSchema),
			func(schema map[string]any) { schema["required"] = metadataRequired },
		),
	}
}

// Tools returns the tool definitions in registration order.
func Tools() []mcp.Tool {
	return []mcp.Tool{
		mcp.NewTool(ToolGetFilesInPath,
			mcp.WithDescription("List file metadata whose path starts with the given prefix"),
			mcp.WithString("path", mcp.Required(), mcp.Description("Directory path to list files")),
		),
		mcp.NewTool(ToolGetDocumentByID,
			mcp.WithDescription("Get a document with its metadata by ID"),
			mcp.WithString("documentId", mcp.Required(), mcp.Description("Document ID")),
			mcp.WithString("path", mcp.Description("Optional path the document must have")),
		),
		mcp.NewTool(ToolCreateDocument, append([]mcp.ToolOption{
			mcp.WithDescription("Create a document with content and metadata"),
		}, documentWriteOptions()...)...),
		mcp.NewTool(ToolUpdateDocument, append([]mcp.ToolOption{
			mcp.WithDescription("Replace the content and metadata of an existing document"),
			mcp.WithString("documentId", mcp.Required(), mcp.Description("Document ID")),
		}, documentWriteOptions()...)...),
		mcp.NewTool(ToolDeleteDocument,
			mcp.WithDescription("Delete a document and its metadata"),
			mcp.WithString("documentId", mcp.Required(), mcp.Description("Document ID")),
		),
	}
}

// Register adds all document tools to s.
func (h *Handler) Register(s *server.MCPServer) {
	handlers := map[string]server.ToolHandlerFunc{
		ToolGetFilesInPath:  h.GetFilesInPath,
		ToolGetDocumentByID: h.GetDocumentByID,
		ToolCreateDocument:  h.CreateDocument,
		ToolUpdateDocument:  h.UpdateDocument,
		ToolDeleteDocument:  h.DeleteDocument,
	}
	for _, tool := range Tools() {
		s.AddTool(tool, handlers[tool.Name])
	}
}

// NewServer builds an MCP server exposing the document tools.
func NewServer(name, version string, h *Handler) *server.MCPServer {
	s := server.NewMCPServer(name, version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	h.Register(s)
	return s
}
