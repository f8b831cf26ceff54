package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"docmcp/internal/repository/memory"
	"docmcp/internal/service"
)

func TestToolsSchemas(t *testing.T) {
	required := map[string][]string{}
	for _, tool := range Tools() {
		required[tool.Name] = tool.InputSchema.Required
	}

	assert.ElementsMatch(t, []string{"path"}, required[ToolGetFilesInPath])
	assert.ElementsMatch(t, []string{"documentId"}, required[ToolGetDocumentByID])
	assert.ElementsMatch(t, []string{"path", "content", "metadata"}, required[ToolCreateDocument])
	assert.ElementsMatch(t, []string{"documentId", "path", "content", "metadata"}, required[ToolUpdateDocument])
	assert.ElementsMatch(t, []string{"documentId"}, required[ToolDeleteDocument])

	for _, tool := range Tools() {
		if tool.Name != ToolCreateDocument {
			continue
		}
		meta := tool.InputSchema.Properties["metadata"].(map[string]any)
		assert.Equal(t, "object", meta["type"])
		assert.ElementsMatch(t, []string{"path", "name", "fileType", "size"}, meta["required"])
	}
}

func TestServerRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	h, err := NewHandler(service.NewDocumentService(store.Documents(), store.Metadata(), zap.NewNop()), zap.NewNop(), prometheus.NewRegistry())
	require.NoError(t, err)
	s := NewServer("docmcp", "test", h)

	send := func(msg string) map[string]any {
		t.Helper()
		raw, err := json.Marshal(s.HandleMessage(ctx, json.RawMessage(msg)))
		require.NoError(t, err)
		var out map[string]any
		require.NoError(t, json.Unmarshal(raw, &out))
		return out
	}

	send(`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-03-26","capabilities":{},"clientInfo":{"name":"test","version":"0"}}}`)

	list := send(`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`)
	tools := list["result"].(map[string]any)["tools"].([]any)
	var names []string
	for _, tool := range tools {
		names = append(names, tool.(map[string]any)["name"].(string))
	}
	assert.ElementsMatch(t, []string{
		ToolGetFilesInPath, ToolGetDocumentByID, ToolCreateDocument, ToolUpdateDocument, ToolDeleteDocument,
	}, names)

	resp := send(`{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"deleteDocument","arguments":{"documentId":"000000000000000000000000"}}}`)
	content := resp["result"].(map[string]any)["content"].([]any)
	require.Len(t, content, 1)
	first := content[0].(map[string]any)
	assert.Equal(t, "text", first["type"])
	assert.JSONEq(t, `{"error":"Document not found"}`, first["text"].(string))
}
