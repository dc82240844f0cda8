package mcp

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"partsmcp/internal/protocol"
	"partsmcp/internal/store/storetest"
)

const initializeBody = `{"jsonrpc":"2.0","id":"init-1","method":"initialize","params":{"protocolVersion":"2025-03-26","capabilities":{},"clientInfo":{"name":"test","version":"0.0.0"}}}`

type rpcResponse struct {
	ID     any `json:"id"`
	Result struct {
		Tools []struct {
			Name        string         `json:"name"`
			InputSchema map[string]any `json:"inputSchema"`
		} `json:"tools"`
		Content []struct {
			Type     string `json:"type"`
			Text     string `json:"text"`
			Data     string `json:"data"`
			MIMEType string `json:"mimeType"`
		} `json:"content"`
		IsError bool `json:"isError"`
	} `json:"result"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func newTestServer(t *testing.T, opts ServerOptions) *Server {
	t.Helper()
	srv, err := NewServer(newTestDispatcher(t, storetest.Default(), nil), opts)
	require.NoError(t, err)
	return srv
}

func postRPC(t *testing.T, h http.Handler, sessionID, body string) (*httptest.ResponseRecorder, rpcResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/mcp", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")
	if sessionID != "" {
		req.Header.Set(protocol.MCPSessionHeader, sessionID)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp rpcResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp), rr.Body.String())
	return rr, resp
}

func TestServer_HTTPToolsListAndCall(t *testing.T) {
	h := newTestServer(t, ServerOptions{}).MCPHandler()

	rr, resp := postRPC(t, h, "", initializeBody)
	require.Nil(t, resp.Error)
	sessionID := rr.Header().Get(protocol.MCPSessionHeader)

	_, resp = postRPC(t, h, sessionID, `{"jsonrpc":"2.0","id":2,"method":"tools/list","params":{}}`)
	require.Nil(t, resp.Error)
	require.Len(t, resp.Result.Tools, len(toolOrder))
	for i, tool := range resp.Result.Tools {
		assert.Equal(t, toolOrder[i], tool.Name)
	}
	getCategory := resp.Result.Tools[2].InputSchema
	props := getCategory["properties"].(map[string]any)
	assert.EqualValues(t, 1, props["category_id"].(map[string]any)["minimum"])

	_, resp = postRPC(t, h, sessionID,
		`{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"get_category","arguments":{"category_id":999999}}}`)
	require.Nil(t, resp.Error)
	require.Len(t, resp.Result.Content, 1)
	assert.False(t, resp.Result.IsError)
	assert.Equal(t, "text", resp.Result.Content[0].Type)
	assert.Equal(t, "No matching category found", resp.Result.Content[0].Text)

	_, resp = postRPC(t, h, sessionID,
		`{"jsonrpc":"2.0","id":4,"method":"tools/call","params":{"name":"get_category","arguments":{"category_id":0}}}`)
	require.Nil(t, resp.Error)
	assert.True(t, resp.Result.IsError)
	assert.Contains(t, resp.Result.Content[0].Text, "INVALID_FIELD: category_id")
}

func TestServer_StdioRoundTrip(t *testing.T) {
	srv := newTestServer(t, ServerOptions{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	inR, inW := io.Pipe()
	outR, outW := io.Pipe()
	done := make(chan error, 1)
	go func() {
		done <- srv.ServeStdio(ctx, inR, outW)
		_ = outW.Close()
	}()

	lines := bufio.NewScanner(outR)
	lines.Buffer(make([]byte, 0, 64*1024), 1<<20)
	send := func(msg string) rpcResponse {
		t.Helper()
		_, err := io.WriteString(inW, msg+"\n")
		require.NoError(t, err)
		require.True(t, lines.Scan(), "no response to %s", msg)
		var resp rpcResponse
		require.NoError(t, json.Unmarshal(lines.Bytes(), &resp))
		return resp
	}

	resp := send(initializeBody)
	require.Nil(t, resp.Error)
	_, err := io.WriteString(inW, `{"jsonrpc":"2.0","method":"notifications/initialized"}`+"\n")
	require.NoError(t, err)

	resp = send(`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"get_manufacturer","arguments":{"manufacturer_id":2}}}`)
	require.Nil(t, resp.Error)
	require.Len(t, resp.Result.Content, 1)
	assert.Equal(t, "Samsung Electro-Mechanics", resp.Result.Content[0].Text)

	cancel()
	_ = inW.Close()
	go func() { _, _ = io.Copy(io.Discard, outR) }()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("stdio server did not stop")
	}
}

func TestServer_ServeShutsDownOnCancel(t *testing.T) {
	srv := newTestServer(t, ServerOptions{MCPPath: "/mcp"})
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	client := &http.Client{Timeout: 5 * time.Second}
	defer client.CloseIdleConnections()
	base := "http://" + ln.Addr().String()

	resp, err := client.Get(base + "/metrics")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(string(body), "go_goroutines"))

	resp, err = client.Post(base+"/mcp", "application/json", strings.NewReader(initializeBody))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}
}
