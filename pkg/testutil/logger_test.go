package testutil

import (
	"strings"
	"sync"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
)

func TestCaptureLogger(t *testing.T) {
	logger, logs := CaptureLogger()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			logger.Debug("test message", "key", "value")
		}()
	}
	wg.Wait()
	assert.Equal(t, 4, strings.Count(logs.String(), "key=value"))
}

func TestDiscardLogger(t *testing.T) {
	logger := DiscardLogger()
	assert.NotPanics(t, func() {
		logger.Info("test message", "key", "value")
		logger.Error("error message", "key", "value")
	})
}

func TestToolRequestAndResultTexts(t *testing.T) {
	req := ToolRequest("routing", map[string]any{"fromLat": -33.87})
	assert.Equal(t, "routing", req.Params.Name)
	assert.Equal(t, -33.87, req.Params.Arguments["fromLat"])

	result := &mcp.CallToolResult{Content: []mcp.Content{
		mcp.NewTextContent(`{"a":1}`),
		mcp.NewTextContent("summary"),
	}}
	assert.Equal(t, []string{`{"a":1}`, "summary"}, ResultTexts(result))
	assert.Equal(t, `{"a":1}`, FirstText(result))
	assert.Equal(t, "", FirstText(nil))
}
